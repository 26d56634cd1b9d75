// Package loop drives the per-frame sequence: pump events, bind the target,
// clear, draw, present.
package loop

import (
	"context"
	"fmt"
	"time"

	"corewindow/internal/gpu"
)

// DefaultClearColor is the color every frame is cleared to.
var DefaultClearColor = gpu.Color{R: 0.071, G: 0.04, B: 0.561, A: 1.0}

// Pump processes all pending window events without waiting for new ones.
type Pump interface {
	Pump() error
}

// Target is the presentation chain as seen by the loop.
type Target interface {
	TargetView() gpu.TargetView
	Present(syncInterval int) error
}

// Stats counts presented frames.
type Stats struct {
	Frames uint64
	// FPS is the number of frames presented during the last full second.
	FPS int
}

// Loop renders frames. All fields must be set before the first Step except
// Hook, OnSecond and ClearColor.
type Loop struct {
	Pump    Pump
	Chain   Target
	Context gpu.Context

	// Hook draws scene content into the bound target after the clear.
	Hook func(ctx gpu.Context)
	// OnSecond is called once per second with the current statistics.
	OnSecond func(Stats)

	ClearColor   gpu.Color
	SyncInterval int

	stats       Stats
	secondStart time.Time
	secondCount int
	now         func() time.Time
}

// New returns a loop that clears to DefaultClearColor and presents on every
// vertical blank.
func New(pump Pump, target Target, ctx gpu.Context) *Loop {
	return &Loop{
		Pump:         pump,
		Chain:        target,
		Context:      ctx,
		ClearColor:   DefaultClearColor,
		SyncInterval: gpu.PresentSyncInterval,
	}
}

// Stats returns the frame statistics so far.
func (l *Loop) Stats() Stats { return l.stats }

// Step renders one frame. Each step must succeed before the next runs; the
// first error ends the frame and is returned as is.
func (l *Loop) Step() error {
	if err := l.Pump.Pump(); err != nil {
		return fmt.Errorf("pump events: %w", err)
	}

	view := l.Chain.TargetView()
	if view == nil {
		return fmt.Errorf("%w: no target view", gpu.ErrInvalidTransition)
	}
	l.Context.SetRenderTargets(view)

	if err := l.Context.ClearRenderTargetView(view, l.ClearColor); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if l.Hook != nil {
		l.Hook(l.Context)
	}

	if err := l.Chain.Present(l.SyncInterval); err != nil {
		return fmt.Errorf("present: %w", err)
	}

	l.count()
	return nil
}

func (l *Loop) count() {
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	t := now()
	if l.secondStart.IsZero() {
		l.secondStart = t
	}

	l.stats.Frames++
	l.secondCount++
	if t.Sub(l.secondStart) >= time.Second {
		l.stats.FPS = l.secondCount
		l.secondCount = 0
		l.secondStart = t
		if l.OnSecond != nil {
			l.OnSecond(l.stats)
		}
	}
}

// Run renders frames until ctx is cancelled, checking it before every
// frame. It returns nil on cancellation and the frame error otherwise.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunFrames(ctx, 0)
}

// RunFrames is Run limited to n frames. n <= 0 means no limit.
func (l *Loop) RunFrames(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
	return nil
}
