package monitoring

import (
	"sync"
	"testing"
	"time"
)

func TestNewGenerationMonitor(t *testing.T) {
	gm := NewGenerationMonitor()
	if gm == nil {
		t.Fatal("NewGenerationMonitor returned nil")
	}
	if time.Since(gm.startTime) > time.Second {
		t.Error("Start time should be recent")
	}
}

func TestSynthesisTiming(t *testing.T) {
	gm := NewGenerationMonitor()

	timer := gm.StartSynthesis()
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.EndSynthesis(64)

	if elapsed < 5*time.Millisecond {
		t.Errorf("Expected at least 5ms, got %v", elapsed)
	}
	m := gm.GetCurrentMetrics()
	if m.CellsSynthesized != 64 {
		t.Errorf("Expected 64 cells, got %d", m.CellsSynthesized)
	}
	if m.WorldsGenerated != 1 {
		t.Errorf("Expected 1 world, got %d", m.WorldsGenerated)
	}
	if m.LastSynthesis != elapsed {
		t.Errorf("Expected last synthesis %v, got %v", elapsed, m.LastSynthesis)
	}
}

func TestRevealAndSettlementCounters(t *testing.T) {
	gm := NewGenerationMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gm.RecordRevealBatch(200)
		}()
	}
	wg.Wait()

	gm.RecordSettlements(20, 7)
	gm.RecordRevealEnd(false)
	gm.RecordRevealEnd(true)

	m := gm.GetCurrentMetrics()
	if m.RevealBatches != 10 || m.CellsRevealed != 2000 {
		t.Errorf("Expected 10 batches / 2000 cells, got %d / %d", m.RevealBatches, m.CellsRevealed)
	}
	if m.SettlementAttempts != 20 || m.SettlementsPlaced != 7 {
		t.Errorf("Unexpected settlement counters: %+v", m)
	}
	if m.RevealsFinished != 1 || m.RevealsCancelled != 1 {
		t.Errorf("Unexpected reveal end counters: %+v", m)
	}
}

func TestFrameTimingAndStats(t *testing.T) {
	gm := NewGenerationMonitor()
	ft := gm.StartFrame()
	time.Sleep(2 * time.Millisecond)
	ft.EndFrame()

	if fps := gm.GetCurrentMetrics().FramesPerSecond; fps <= 0 || fps > 500 {
		t.Errorf("Unexpected FPS %v", fps)
	}

	stats := gm.GetDetailedStats()
	for _, key := range []string{"avg_synthesis_ms", "cells_revealed", "goroutines"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("Missing stat %q", key)
		}
	}
}

func TestReset(t *testing.T) {
	gm := NewGenerationMonitor()
	gm.StartSynthesis().EndSynthesis(10)
	gm.RecordRevealBatch(5)
	gm.Reset()

	m := gm.GetCurrentMetrics()
	if m.CellsSynthesized != 0 || m.CellsRevealed != 0 || m.WorldsGenerated != 0 {
		t.Errorf("Expected zeroed metrics, got %+v", m)
	}
}
