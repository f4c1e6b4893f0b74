package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/gassim/internal/gas"
)

// Controller drives a gas.System on a fixed cadence. It is the only owner of
// the system once constructed: every read and write goes through its lock,
// so renderers and servers on other goroutines can share it.
type Controller struct {
	mu        sync.Mutex
	sys       *gas.System
	cfg       Config
	metrics   []Metric
	observers []Observer
	paused    bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(sys *gas.System, cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = 1
	}
	return &Controller{
		sys:       sys,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (c *Controller) AddMetric(m Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Step runs one tick and notifies observers with the resulting snapshot.
func (c *Controller) Step() Snapshot {
	c.mu.Lock()
	c.sys.Update(c.cfg.Width, c.cfg.Height)
	snap := Capture(c.sys, c.cfg.Width, c.cfg.Height)
	observers := c.observers
	c.mu.Unlock()

	for _, o := range observers {
		o.OnTick(snap)
	}
	return snap
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Capture(c.sys, c.cfg.Width, c.cfg.Height)
}

// SetBounds resizes the container; it takes effect on the next tick.
func (c *Controller) SetBounds(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Width, c.cfg.Height = width, height
}

func (c *Controller) Bounds() (width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Width, c.cfg.Height
}

// Do runs fn with exclusive access to the system, between ticks.
func (c *Controller) Do(fn func(sys *gas.System)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.sys)
}

func (c *Controller) SetPaused(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = p
}

func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Start ticks the system every Config.Interval on a background goroutine
// until Stop is called or ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	ticker := time.NewTicker(c.cfg.Interval)
	c.mu.Unlock()

	go func() {
		defer func() {
			ticker.Stop()
			c.mu.Lock()
			if c.done == done {
				c.cancel, c.done = nil, nil
			}
			c.mu.Unlock()
			close(done)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !c.Paused() {
					c.Step()
				}
			}
		}
	}()
	return nil
}

// Stop halts the background loop and waits for it to exit.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Run advances the system ticks times as fast as possible, feeding metrics
// every tick and sampling them every Config.SampleEvery ticks.
func (c *Controller) Run(ctx context.Context, ticks int) (*Result, error) {
	if ticks < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidTicks, ticks)
	}

	c.mu.Lock()
	metrics := c.metrics
	c.mu.Unlock()

	result := &Result{
		Columns: make([]string, len(metrics)),
		Ticks:   make([]int, 0, ticks/c.cfg.SampleEvery+1),
		Rows:    make([][]float64, 0, ticks/c.cfg.SampleEvery+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for i, m := range metrics {
		m.Reset()
		result.Columns[i] = m.Name()
	}

	start := time.Now()
	snap := c.Snapshot()
	c.observe(metrics, snap, result)

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			result.Final = c.Snapshot()
			result.Elapsed = time.Since(start)
			return result, ctx.Err()
		default:
		}

		snap = c.Step()

		if c.cfg.ValidateState && !snap.IsValid() {
			result.Errors = append(result.Errors, TickError{Tick: snap.Tick, Message: "invalid particle state (NaN/Inf)"})
			break
		}

		result.TicksTaken++
		if result.TicksTaken%c.cfg.SampleEvery == 0 {
			c.observe(metrics, snap, result)
		} else {
			for _, m := range metrics {
				m.Observe(snap)
			}
		}
	}

	result.Final = c.Snapshot()
	result.Elapsed = time.Since(start)
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (c *Controller) observe(metrics []Metric, snap Snapshot, result *Result) {
	row := make([]float64, len(metrics))
	for i, m := range metrics {
		m.Observe(snap)
		row[i] = m.Value()
	}
	result.Ticks = append(result.Ticks, snap.Tick)
	result.Rows = append(result.Rows, row)
}

// RunWithCallback steps the system until fn returns false or ctx is done.
func (c *Controller) RunWithCallback(ctx context.Context, fn func(Snapshot) bool) error {
	snap := c.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(snap) {
			return nil
		}

		snap = c.Step()
		if c.cfg.ValidateState && !snap.IsValid() {
			return TickError{Tick: snap.Tick, Message: "invalid particle state (NaN/Inf)"}
		}
	}
}
