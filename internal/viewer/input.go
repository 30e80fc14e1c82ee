package viewer

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"sanguigore/internal/palette"
)

var layerKeys = map[ebiten.Key]palette.Layer{
	ebiten.Key1: palette.Biome,
	ebiten.Key2: palette.Height,
	ebiten.Key3: palette.Moisture,
	ebiten.Key4: palette.Temperature,
}

func (v *Viewer) Update() error {
	v.mgr.Clock().Advance(time.Second / time.Duration(ebiten.TPS()))
	v.shader.Update()
	v.handleInput()
	return nil
}

func (v *Viewer) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if v.section != nil {
			v.closeSection()
		} else {
			v.requestCancel()
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && v.section != nil {
		v.closeSection()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.closeSection()
		v.regenerate()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		v.closeSection()
		v.load()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		v.export()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		v.scaleTime(2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		v.scaleTime(0.5)
	}

	for key, layer := range layerKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.setLayer(layer)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.setLayer(v.layer.Next())
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && v.section == nil {
		mx, my := ebiten.CursorPosition()
		tile := v.cfg.GetTileSize()
		v.openSection(mx/tile, my/tile)
	}
}

// scaleTime speeds the game clock up or down, keeping it between 1/16x and 4096x.
func (v *Viewer) scaleTime(factor float64) {
	clock := v.mgr.Clock()
	m := clock.Multiplier() * factor
	if m <= 0 {
		m = 1
	}
	clock.SetMultiplier(min(max(m, 1.0/16), 4096))
}

func (v *Viewer) setLayer(l palette.Layer) {
	v.mu.Lock()
	v.layer = l
	v.mu.Unlock()
	v.sectionImg = nil
	cv := v.currentCanvas()
	if cv == nil {
		return
	}
	if err := cv.SetLayer(l); err != nil {
		v.log.Warn("layer switch failed", "layer", l, "err", err)
	}
}

func (v *Viewer) openSection(cellX, cellY int) {
	sec, err := v.mgr.SectionAt(cellX, cellY)
	if err != nil {
		v.log.Debug("no section under cursor", "x", cellX, "y", cellY, "err", err)
		return
	}
	v.section = sec
	v.sectionImg = nil
	v.log.Info("opened section", "x", sec.Segment.X, "y", sec.Segment.Y, "size", sec.Width)
}

func (v *Viewer) closeSection() {
	v.section = nil
	v.sectionImg = nil
}
