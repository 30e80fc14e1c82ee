package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	ebitext "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"sanguigore/internal/palette"
	"sanguigore/internal/reveal"
)

const helpLine = "Esc cancel  R regenerate  S save  L load  E export  1-4/Tab layers  +/- time  click section"

var (
	hudBackground = color.RGBA{0, 0, 0, 160}
	hudText       = color.RGBA{230, 230, 230, 255}
	hudDim        = color.RGBA{150, 150, 150, 255}
)

func (v *Viewer) Draw(screen *ebiten.Image) {
	ft := v.monitor.StartFrame()
	defer ft.EndFrame()

	screen.Fill(color.Black)
	if v.section != nil {
		v.drawSection(screen)
	} else {
		v.drawMap(screen)
	}
	v.drawNightOverlay(screen)
	v.drawHUD(screen)
}

func (v *Viewer) drawMap(screen *ebiten.Image) {
	cv := v.currentCanvas()
	if cv == nil {
		return
	}
	b := cv.Bounds()
	if v.mapImg == nil || v.mapImg.Bounds().Dx() != b.Dx() || v.mapImg.Bounds().Dy() != b.Dy() {
		v.mapImg = ebiten.NewImage(b.Dx(), b.Dy())
		cv.Invalidate()
	}
	cv.Flush(func(pix []byte) {
		v.mapImg.WritePixels(pix)
	})

	tile := float64(v.cfg.GetTileSize())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(tile, tile)
	screen.DrawImage(v.mapImg, op)
}

// drawSection shows the selected section scaled to fit the screen.
func (v *Viewer) drawSection(screen *ebiten.Image) {
	if v.sectionImg == nil {
		img, err := palette.Render(v.section, v.layer)
		if err != nil {
			v.log.Warn("section render failed", "err", err)
			v.closeSection()
			return
		}
		v.sectionImg = ebiten.NewImageFromImage(img)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := min(float64(sw)/float64(v.section.Width), float64(sh)/float64(v.section.Height))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		(float64(sw)-scale*float64(v.section.Width))/2,
		(float64(sh)-scale*float64(v.section.Height))/2,
	)
	screen.DrawImage(v.sectionImg, op)
}

func (v *Viewer) drawNightOverlay(screen *ebiten.Image) {
	c := v.shader.Color()
	if c.A == 0 {
		return
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()),
		color.NRGBA{c.R, c.G, c.B, c.A}, false)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	v.mu.Lock()
	status := v.status
	rc := v.reveal
	v.mu.Unlock()

	lines := []string{
		fmt.Sprintf("Time %s (x%g)   Layer %s", v.mgr.Clock(), v.mgr.Clock().Multiplier(), v.layer),
	}
	if w := v.mgr.Current(); w != nil {
		lines[0] += fmt.Sprintf("   Seed %d   Villages %d", w.Seed, len(w.Settlements))
	}
	if rc != nil {
		st := rc.State()
		if st == reveal.Running || st == reveal.Cancelling {
			lines = append(lines, fmt.Sprintf("Revealing %d/%d (%s)", rc.VisitedCount(), rc.Total(), st))
		}
	}
	m := v.monitor.GetCurrentMetrics()
	lines = append(lines, fmt.Sprintf("FPS %.0f   synthesis %v", m.FramesPerSecond, m.LastSynthesis.Round(time.Millisecond)))
	if v.section != nil {
		s := v.section.Segment
		lines = append(lines, fmt.Sprintf("Section (%d, %d) %dx%d   Esc/right-click to close", s.X, s.Y, s.Width, s.Height))
	}
	if status != "" {
		lines = append(lines, status)
	}

	face := basicfont.Face7x13
	lineH := face.Height + 2
	boxH := float32((len(lines)+1)*lineH + 8)
	vector.DrawFilledRect(screen, 0, 0, float32(screen.Bounds().Dx()), boxH, hudBackground, false)

	y := 4 + face.Ascent
	for _, line := range lines {
		ebitext.Draw(screen, line, face, 6, y, hudText)
		y += lineH
	}
	ebitext.Draw(screen, helpLine, face, 6, y, hudDim)
}
