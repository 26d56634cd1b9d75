package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corewindow/internal/chain"
	"corewindow/internal/gpu"
	"corewindow/internal/gpu/gputest"
	"corewindow/internal/graphics"
)

type fixture struct {
	drv     *gputest.Driver
	dev     *graphics.Device
	surface *gputest.Surface
	chain   *chain.Chain
	pump    *gputest.Pump
	loop    *Loop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		drv:     gputest.NewDriver(gpu.Level11_0),
		surface: gputest.NewSurface(800, 600),
		chain:   chain.New(),
		pump:    &gputest.Pump{},
	}
	var err error
	f.dev, err = graphics.Create(f.drv, []gpu.FeatureLevel{gpu.Level11_0}, false)
	require.NoError(t, err)
	require.NoError(t, f.chain.Ensure(f.dev, f.surface))
	f.drv.Log.Reset()
	f.loop = New(f.pump, f.chain, f.dev.Context())
	return f
}

func (f *fixture) ctx() *gputest.Context {
	return f.dev.Handle().(*gputest.Device).Ctx()
}

func TestStep_Order(t *testing.T) {
	f := newFixture(t)
	var hooked []string
	f.loop.Hook = func(ctx gpu.Context) {
		hooked = append(hooked, "hook")
		assert.Same(t, f.ctx(), ctx)
		assert.Equal(t, []string{"SetRenderTargets", "Clear"}, f.drv.Log.Calls())
	}

	require.NoError(t, f.loop.Step())

	assert.Equal(t, 1, f.pump.Calls)
	assert.Equal(t, []string{"hook"}, hooked)
	assert.Equal(t, []string{"SetRenderTargets", "Clear", "Present(1)"}, f.drv.Log.Calls())
	assert.Same(t, f.chain.TargetView(), f.ctx().Target)
	assert.Equal(t, []gpu.Color{DefaultClearColor}, f.ctx().Clears)
	assert.Equal(t, uint64(1), f.loop.Stats().Frames)
}

func TestStep_ResizeDuringPump(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.loop.Step())

	f.pump.Queue(func() {
		f.surface.W, f.surface.H = 1024, 768
		require.NoError(t, f.chain.Resize(1024, 768))
	})
	require.NoError(t, f.loop.Step())

	bound, ok := f.ctx().Target.(*gputest.View)
	require.True(t, ok)
	assert.True(t, bound.Valid())
	w, h := bound.Size()
	assert.Equal(t, []int{1024, 768}, []int{w, h})
	assert.Equal(t, float32(1024), f.ctx().Viewport.Width)
}

func TestStep_PumpDoesNotBlock(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		start := time.Now()
		require.NoError(t, f.pump.Pump())
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	}
	assert.Equal(t, 5, f.pump.Calls)
	assert.Empty(t, f.drv.Log.Calls())
}

type failingPump struct{}

func (failingPump) Pump() error { return errors.New("window gone") }

func TestStep_PumpErrorStopsFrame(t *testing.T) {
	f := newFixture(t)
	f.loop.Pump = failingPump{}

	err := f.loop.Step()
	assert.EqualError(t, err, "pump events: window gone")
	assert.Empty(t, f.drv.Log.Calls())
}

func TestStep_NoTarget(t *testing.T) {
	f := newFixture(t)
	f.chain.Release()
	f.drv.Log.Reset()

	err := f.loop.Step()
	assert.ErrorIs(t, err, gpu.ErrInvalidTransition)
	assert.Empty(t, f.drv.Log.Calls())
}

func TestRunFrames(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.loop.RunFrames(context.Background(), 4))
	assert.Equal(t, 4, f.pump.Calls)
	assert.Equal(t, []int{1, 1, 1, 1}, f.chain.SwapChain().(*gputest.SwapChain).Presents)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.loop.Hook = func(gpu.Context) {
		if f.loop.Stats().Frames == 2 {
			cancel()
		}
	}

	require.NoError(t, f.loop.Run(ctx))
	assert.Equal(t, uint64(3), f.loop.Stats().Frames)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.loop.Run(ctx))
	assert.Zero(t, f.pump.Calls)
}

func TestStats_OnSecond(t *testing.T) {
	f := newFixture(t)
	clock := time.Unix(0, 0)
	f.loop.now = func() time.Time { return clock }
	var got []Stats
	f.loop.OnSecond = func(s Stats) { got = append(got, s) }

	for i := 0; i < 50; i++ {
		require.NoError(t, f.loop.Step())
		clock = clock.Add(20 * time.Millisecond)
	}
	assert.Empty(t, got)
	require.NoError(t, f.loop.Step())

	require.Len(t, got, 1)
	assert.Equal(t, 51, got[0].FPS)
	assert.Equal(t, uint64(51), got[0].Frames)
}
