package world

import (
	"fmt"
	"time"

	"sanguigore/internal/grid"
	"sanguigore/internal/reveal"
	"sanguigore/internal/snapshot"
)

// Center is where reveals start: the middle cell of the map.
func Center(w *snapshot.World) grid.Point {
	return grid.Point{X: w.Width / 2, Y: w.Height / 2}
}

// StartReveal creates a reveal controller over w using the configured batch
// size and pause, wires its progress into the monitor and starts it at the map
// centre. onProgress may be nil.
func (g *Generator) StartReveal(w *snapshot.World, onProgress func(reveal.Progress)) (*reveal.Controller, error) {
	rc := g.cfg.Reveal
	c, err := reveal.New(w.Width, w.Height, reveal.Options{
		BatchSize: rc.BatchSize,
		Pause:     time.Duration(rc.PauseMs) * time.Millisecond,
		Logger:    g.log,
		OnProgress: func(p reveal.Progress) {
			g.monitor.RecordRevealBatch(len(p.Batch))
			switch p.State {
			case reveal.Completed:
				g.monitor.RecordRevealEnd(false)
			case reveal.Cancelled:
				g.monitor.RecordRevealEnd(true)
			}
			if onProgress != nil {
				onProgress(p)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start reveal: %w", err)
	}
	if err := c.Start(Center(w)); err != nil {
		return nil, fmt.Errorf("start reveal: %w", err)
	}
	return c, nil
}
