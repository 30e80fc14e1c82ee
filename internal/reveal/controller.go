// Package reveal walks a grid breadth-first from an origin, reporting newly
// reached cells in batches so a presentation layer can draw the world as it
// "generates" outward.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sanguigore/internal/grid"
	"sanguigore/internal/threading/core"
)

var (
	ErrInvalidTransition = errors.New("reveal: invalid state transition")
	ErrOutOfBounds       = errors.New("reveal: origin out of bounds")
)

const (
	DefaultBatchSize = 200
	DefaultPause     = 30 * time.Millisecond
)

type State int

const (
	Idle State = iota
	Running
	Cancelling
	Cancelled
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelling:
		return "cancelling"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Progress is delivered at batch boundaries and once more when the walk ends.
// Batch holds the cells reached since the previous event, in visit order.
type Progress struct {
	Visited int
	Total   int
	State   State
	Batch   []grid.Point
}

type Options struct {
	BatchSize  int           // newly reached cells per progress event
	Pause      time.Duration // Run sleeps this long after each batch
	OnProgress func(Progress)
	Logger     *slog.Logger
}

// token is the cancellation flag. It has its own lock so Cancel never touches
// the traversal data.
type token struct {
	mu  sync.Mutex
	set bool
}

func (t *token) Set() {
	t.mu.Lock()
	t.set = true
	t.mu.Unlock()
}

func (t *token) IsSet() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set
}

func (t *token) Clear() {
	t.mu.Lock()
	t.set = false
	t.mu.Unlock()
}

// Controller owns one reveal at a time. State, Cancel and VisitedCount may be
// called from any goroutine; Start, Step, Run, Reset and Visited belong to the
// goroutine driving the walk.
//
// Lock order is mu then cancel.mu.
type Controller struct {
	width, height int
	opts          Options
	log           *slog.Logger

	mu     sync.Mutex
	state  State
	cancel token

	frontier []grid.Point
	visited  []bool
	count    core.SafeCounter
	pending  []grid.Point
	yield    bool
}

// New creates an idle controller for a width x height grid.
func New(width, height int, opts Options) (*Controller, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", grid.ErrInvalidDimensions, width, height)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		width:   width,
		height:  height,
		opts:    opts,
		log:     log,
		visited: make([]bool, width*height),
	}, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// VisitedCount is the number of cells reached so far, origin included.
func (c *Controller) VisitedCount() int {
	return int(c.count.Get())
}

func (c *Controller) Total() int {
	return c.width * c.height
}

// Visited reports whether p has been reached.
func (c *Controller) Visited(p grid.Point) bool {
	if !c.inBounds(p) {
		return false
	}
	return c.visited[p.Y*c.width+p.X]
}

func (c *Controller) inBounds(p grid.Point) bool {
	return p.X >= 0 && p.X < c.width && p.Y >= 0 && p.Y < c.height
}

// Start begins a walk at origin. Only valid from Idle.
func (c *Controller) Start(origin grid.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, c.state)
	}
	if !c.inBounds(origin) {
		return fmt.Errorf("%w: %v not in %dx%d", ErrOutOfBounds, origin, c.width, c.height)
	}

	c.frontier = append(c.frontier[:0], origin)
	c.pending = append(c.pending[:0], origin)
	c.visited[origin.Y*c.width+origin.X] = true
	c.count.Set(1)
	c.state = Running

	c.log.Debug("reveal started", "origin", origin, "total", c.Total())
	return nil
}

// Step processes one frontier cell. When cancellation has been requested it
// moves to Cancelled instead, leaving the frontier untouched.
func (c *Controller) Step() (State, error) {
	c.mu.Lock()
	if c.state != Running && c.state != Cancelling {
		st := c.state
		c.mu.Unlock()
		return st, fmt.Errorf("%w: step while %s", ErrInvalidTransition, st)
	}
	if c.cancel.IsSet() {
		c.state = Cancelled
		c.mu.Unlock()
		c.log.Debug("reveal cancelled", "visited", c.VisitedCount(), "total", c.Total())
		c.flush(Cancelled)
		return Cancelled, nil
	}
	c.mu.Unlock()

	p := c.frontier[0]
	c.frontier = c.frontier[1:]
	for _, n := range p.Neighbors4() {
		if !c.inBounds(n) {
			continue
		}
		i := n.Y*c.width + n.X
		if c.visited[i] {
			continue
		}
		// marked on enqueue so a cell can never be queued twice
		c.visited[i] = true
		c.frontier = append(c.frontier, n)
		c.pending = append(c.pending, n)
		c.count.Increment()
	}

	if len(c.frontier) == 0 {
		c.mu.Lock()
		final := Completed
		if c.state == Cancelling {
			final = Cancelled
		}
		c.state = final
		c.mu.Unlock()
		c.log.Debug("reveal finished", "state", final, "visited", c.VisitedCount())
		c.flush(final)
		return final, nil
	}

	if len(c.pending) >= c.opts.BatchSize {
		c.flush(Running)
		c.yield = true
	}
	return c.State(), nil
}

func (c *Controller) flush(st State) {
	batch := c.pending
	c.pending = nil
	if c.opts.OnProgress == nil {
		return
	}
	c.opts.OnProgress(Progress{
		Visited: c.VisitedCount(),
		Total:   c.Total(),
		State:   st,
		Batch:   batch,
	})
}

// Cancel requests that the walk stop. It is a no-op while already Cancelling.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Running:
		c.cancel.Set()
		c.state = Cancelling
		return nil
	case Cancelling:
		return nil
	default:
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, c.state)
	}
}

// Reset returns a finished controller to Idle so it can be started again.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		return nil
	case Completed, Cancelled:
	default:
		return fmt.Errorf("%w: reset while %s", ErrInvalidTransition, c.state)
	}

	c.frontier = c.frontier[:0]
	c.pending = nil
	c.yield = false
	clear(c.visited)
	c.count.Set(0)
	c.cancel.Clear()
	c.state = Idle
	return nil
}

// Run steps until the walk completes or is cancelled, pausing after every
// batch. Cancelling ctx cancels the walk; Run still returns nil once the
// controller has settled in Cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.cancelFromContext()
		}

		st, err := c.Step()
		if err != nil {
			return err
		}
		if st == Completed || st == Cancelled {
			return nil
		}

		if !c.yield {
			continue
		}
		c.yield = false
		if c.opts.Pause <= 0 {
			continue
		}
		timer := time.NewTimer(c.opts.Pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.cancelFromContext()
		case <-timer.C:
		}
	}
}

func (c *Controller) cancelFromContext() {
	if err := c.Cancel(); err != nil {
		c.log.Debug("context cancel ignored", "err", err)
	}
}
