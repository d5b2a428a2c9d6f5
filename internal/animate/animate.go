// Package animate interpolates a number towards a target over a fixed
// duration, one frame per tick. It backs the price count-up and the
// statistics counters.
package animate

import (
	"context"
	"math"
	"sync"
	"time"
)

type EasingFunc func(t float64) float64

// EaseOutCubic starts fast and settles on the target: 1 - (1-t)^3.
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

func Linear(t float64) float64 {
	return t
}

// Frame is one rendered step. Progress is already eased.
type Frame struct {
	Progress float64
	Final    bool
}

// Value maps the frame onto [from, to]. The final frame is always exactly
// to, whatever the easing function produced.
func (f Frame) Value(from, to int64) int64 {
	if f.Final {
		return to
	}
	p := math.Max(0, math.Min(1, f.Progress))
	return from + int64(math.Round(p*float64(to-from)))
}

// Animator runs at most one animation at a time. Starting a new one
// supersedes the previous: once Start returns, no frame of an older run
// is rendered anymore.
type Animator struct {
	duration time.Duration
	interval time.Duration
	ease     EasingFunc

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func New(duration, interval time.Duration, ease EasingFunc) *Animator {
	if ease == nil {
		ease = EaseOutCubic
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Animator{
		duration: duration,
		interval: interval,
		ease:     ease,
	}
}

// Start begins a new run, rendering frames until the duration elapses or
// ctx is cancelled. render is called with the animator locked and must
// not call Start or Stop. The returned channel closes when the run ends.
func (a *Animator) Start(ctx context.Context, render func(Frame)) <-chan struct{} {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	gen := a.gen
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	done := make(chan struct{})
	go a.run(runCtx, cancel, gen, render, done)
	return done
}

// Stop cancels the running animation, if any.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
}

func (a *Animator) run(ctx context.Context, cancel context.CancelFunc, gen uint64, render func(Frame), done chan<- struct{}) {
	defer close(done)
	defer cancel()

	if a.duration <= 0 {
		a.emit(ctx, gen, render, Frame{Progress: 1, Final: true})
		return
	}

	start := time.Now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			progress := float64(now.Sub(start)) / float64(a.duration)
			if progress >= 1 {
				a.emit(ctx, gen, render, Frame{Progress: 1, Final: true})
				return
			}
			if !a.emit(ctx, gen, render, Frame{Progress: a.ease(progress)}) {
				return
			}
		}
	}
}

func (a *Animator) emit(ctx context.Context, gen uint64, render func(Frame), f Frame) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || ctx.Err() != nil {
		return false
	}
	render(f)
	return true
}
