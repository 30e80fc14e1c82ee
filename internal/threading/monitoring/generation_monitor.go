package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GenerationMonitor tracks world generation and reveal metrics. Counters are
// atomic so the synthesis workers, the reveal goroutine and the viewer can all
// report without sharing a lock.
type GenerationMonitor struct {
	// Synthesis metrics
	synthesisTime    atomic.Uint64 // nanoseconds, last pass
	cellsSynthesized atomic.Uint64
	worldsGenerated  atomic.Uint64

	// Settlement metrics
	settlementAttempts atomic.Uint64
	settlementsPlaced  atomic.Uint64

	// Reveal metrics
	revealBatches   atomic.Uint64
	cellsRevealed   atomic.Uint64
	revealsFinished atomic.Uint64
	revealsCanceled atomic.Uint64

	// Presentation metrics
	frameCount atomic.Uint64
	frameTime  atomic.Uint64 // nanoseconds, last frame

	mutex            sync.RWMutex
	avgSynthesisTime float64
	startTime        time.Time
}

// NewGenerationMonitor creates a new monitor
func NewGenerationMonitor() *GenerationMonitor {
	return &GenerationMonitor{startTime: time.Now()}
}

// SynthesisTimer measures one synthesis pass
type SynthesisTimer struct {
	monitor   *GenerationMonitor
	startTime time.Time
}

// StartSynthesis begins synthesis timing
func (gm *GenerationMonitor) StartSynthesis() *SynthesisTimer {
	return &SynthesisTimer{monitor: gm, startTime: time.Now()}
}

// EndSynthesis records the pass duration and the number of cells produced
func (st *SynthesisTimer) EndSynthesis(cells int) time.Duration {
	elapsed := time.Since(st.startTime)
	gm := st.monitor
	gm.synthesisTime.Store(uint64(elapsed.Nanoseconds()))
	gm.cellsSynthesized.Add(uint64(cells))
	count := gm.worldsGenerated.Add(1)

	gm.mutex.Lock()
	// Running mean over all passes.
	gm.avgSynthesisTime += (float64(elapsed.Nanoseconds()) - gm.avgSynthesisTime) / float64(count)
	gm.mutex.Unlock()
	return elapsed
}

// RecordSettlements adds one placement round
func (gm *GenerationMonitor) RecordSettlements(attempts, placed int) {
	gm.settlementAttempts.Add(uint64(attempts))
	gm.settlementsPlaced.Add(uint64(placed))
}

// RecordRevealBatch adds one progress batch covering cells newly visited cells
func (gm *GenerationMonitor) RecordRevealBatch(cells int) {
	gm.revealBatches.Add(1)
	gm.cellsRevealed.Add(uint64(cells))
}

// RecordRevealEnd counts a finished reveal
func (gm *GenerationMonitor) RecordRevealEnd(cancelled bool) {
	if cancelled {
		gm.revealsCanceled.Add(1)
		return
	}
	gm.revealsFinished.Add(1)
}

// FrameTimer helps measure frame timing
type FrameTimer struct {
	monitor   *GenerationMonitor
	startTime time.Time
}

// StartFrame begins frame timing
func (gm *GenerationMonitor) StartFrame() *FrameTimer {
	return &FrameTimer{monitor: gm, startTime: time.Now()}
}

// EndFrame completes frame timing
func (ft *FrameTimer) EndFrame() {
	ft.monitor.frameTime.Store(uint64(time.Since(ft.startTime).Nanoseconds()))
	ft.monitor.frameCount.Add(1)
}

// Metrics is a point-in-time copy of the counters
type Metrics struct {
	LastSynthesis      time.Duration
	CellsSynthesized   uint64
	WorldsGenerated    uint64
	SettlementAttempts uint64
	SettlementsPlaced  uint64
	RevealBatches      uint64
	CellsRevealed      uint64
	RevealsFinished    uint64
	RevealsCancelled   uint64
	FramesPerSecond    float64
}

// GetCurrentMetrics returns current metrics
func (gm *GenerationMonitor) GetCurrentMetrics() Metrics {
	fps := 0.0
	if ft := gm.frameTime.Load(); ft > 0 {
		fps = float64(time.Second) / float64(ft)
	}
	return Metrics{
		LastSynthesis:      time.Duration(gm.synthesisTime.Load()),
		CellsSynthesized:   gm.cellsSynthesized.Load(),
		WorldsGenerated:    gm.worldsGenerated.Load(),
		SettlementAttempts: gm.settlementAttempts.Load(),
		SettlementsPlaced:  gm.settlementsPlaced.Load(),
		RevealBatches:      gm.revealBatches.Load(),
		CellsRevealed:      gm.cellsRevealed.Load(),
		RevealsFinished:    gm.revealsFinished.Load(),
		RevealsCancelled:   gm.revealsCanceled.Load(),
		FramesPerSecond:    fps,
	}
}

// GetDetailedStats returns detailed statistics keyed for structured logging
func (gm *GenerationMonitor) GetDetailedStats() map[string]interface{} {
	gm.mutex.RLock()
	avg := gm.avgSynthesisTime
	uptime := time.Since(gm.startTime)
	gm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m := gm.GetCurrentMetrics()
	return map[string]interface{}{
		"uptime_seconds":      uptime.Seconds(),
		"last_synthesis_ms":   float64(m.LastSynthesis) / float64(time.Millisecond),
		"avg_synthesis_ms":    avg / float64(time.Millisecond),
		"cells_synthesized":   m.CellsSynthesized,
		"worlds_generated":    m.WorldsGenerated,
		"settlement_attempts": m.SettlementAttempts,
		"settlements_placed":  m.SettlementsPlaced,
		"reveal_batches":      m.RevealBatches,
		"cells_revealed":      m.CellsRevealed,
		"reveals_finished":    m.RevealsFinished,
		"reveals_cancelled":   m.RevealsCancelled,
		"memory_alloc_mb":     memStats.Alloc / 1024 / 1024,
		"goroutines":          runtime.NumGoroutine(),
		"cpu_cores":           runtime.NumCPU(),
	}
}

// Reset resets all counters
func (gm *GenerationMonitor) Reset() {
	for _, c := range []*atomic.Uint64{
		&gm.synthesisTime, &gm.cellsSynthesized, &gm.worldsGenerated,
		&gm.settlementAttempts, &gm.settlementsPlaced,
		&gm.revealBatches, &gm.cellsRevealed, &gm.revealsFinished, &gm.revealsCanceled,
		&gm.frameCount, &gm.frameTime,
	} {
		c.Store(0)
	}

	gm.mutex.Lock()
	gm.avgSynthesisTime = 0
	gm.startTime = time.Now()
	gm.mutex.Unlock()
}
