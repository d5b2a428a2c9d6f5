package animate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []int64
}

func (r *recorder) render(to int64) func(Frame) {
	return func(f Frame) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.values = append(r.values, f.Value(0, to))
	}
}

func (r *recorder) snapshot() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.values...)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("animation did not finish")
	}
}

func TestEaseOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(0))
	assert.Equal(t, 1.0, EaseOutCubic(1))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-12)

	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseOutCubic(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestFrameValue(t *testing.T) {
	assert.Equal(t, int64(0), Frame{Progress: 0}.Value(0, 1000))
	assert.Equal(t, int64(875), Frame{Progress: EaseOutCubic(0.5)}.Value(0, 1000))
	assert.Equal(t, int64(150), Frame{Progress: 0.5}.Value(100, 200))
	// counting down works too
	assert.Equal(t, int64(150), Frame{Progress: 0.5}.Value(200, 100))
	// final frame ignores progress drift
	assert.Equal(t, int64(310_320_000), Frame{Progress: 0.9999999, Final: true}.Value(0, 310_320_000))
	assert.Equal(t, int64(1000), Frame{Progress: 1.7}.Value(0, 1000))
}

func TestAnimator_EndsOnTarget(t *testing.T) {
	a := New(60*time.Millisecond, 5*time.Millisecond, EaseOutCubic)
	rec := &recorder{}

	waitDone(t, a.Start(context.Background(), rec.render(310_320_000)))

	values := rec.snapshot()
	require.NotEmpty(t, values)
	assert.Equal(t, int64(310_320_000), values[len(values)-1])
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
}

func TestAnimator_ZeroDurationRendersFinalFrame(t *testing.T) {
	a := New(0, time.Millisecond, nil)
	rec := &recorder{}

	waitDone(t, a.Start(context.Background(), rec.render(42)))
	assert.Equal(t, []int64{42}, rec.snapshot())
}

func TestAnimator_NewRunSupersedesOld(t *testing.T) {
	a := New(300*time.Millisecond, 5*time.Millisecond, EaseOutCubic)
	first := &recorder{}
	second := &recorder{}

	firstDone := a.Start(context.Background(), first.render(1_000_000))
	time.Sleep(20 * time.Millisecond)

	secondDone := a.Start(context.Background(), second.render(500))
	waitDone(t, firstDone)
	renderedBySecondStart := len(first.snapshot())

	waitDone(t, secondDone)
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, first.snapshot(), renderedBySecondStart, "superseded run kept rendering")
	values := second.snapshot()
	require.NotEmpty(t, values)
	assert.Equal(t, int64(500), values[len(values)-1])
}

func TestAnimator_Stop(t *testing.T) {
	a := New(time.Second, 5*time.Millisecond, Linear)
	rec := &recorder{}

	done := a.Start(context.Background(), rec.render(100))
	time.Sleep(15 * time.Millisecond)
	a.Stop()
	waitDone(t, done)

	for _, v := range rec.snapshot() {
		assert.Less(t, v, int64(100))
	}
}

func TestAnimator_ContextCancel(t *testing.T) {
	a := New(time.Second, 5*time.Millisecond, Linear)
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := a.Start(ctx, rec.render(100))
	cancel()
	waitDone(t, done)

	n := len(rec.snapshot())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), n)
}
