package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corewindow/internal/chain"
	"corewindow/internal/gpu"
	"corewindow/internal/gpu/gputest"
	"corewindow/internal/graphics"
)

type fakeHost struct {
	pumps     int
	activated int
	arrow     int
	onPump    func()
}

func (h *fakeHost) PumpEvents() {
	h.pumps++
	if h.onPump != nil {
		h.onPump()
	}
}

func (h *fakeHost) Activate()       { h.activated++ }
func (h *fakeHost) SetArrowCursor() { h.arrow++ }

type fixture struct {
	drv     *gputest.Driver
	dev     *graphics.Device
	chain   *chain.Chain
	host    *fakeHost
	surface *gputest.Surface
	bridge  *Bridge
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		drv:     gputest.NewDriver(gpu.Level11_0),
		chain:   chain.New(),
		host:    &fakeHost{},
		surface: gputest.NewSurface(800, 600),
	}
	var err error
	f.dev, err = graphics.Create(f.drv, []gpu.FeatureLevel{gpu.Level11_0}, false)
	require.NoError(t, err)
	f.bridge = New(f.host, f.dev, f.chain)
	return f
}

func TestSurfaceReady_CreatesChain(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.bridge.OnSurfaceReady(f.surface))

	assert.Equal(t, chain.Ready, f.chain.State())
	assert.Equal(t, 1, f.host.arrow)
	assert.Equal(t, gpu.Viewport{Width: 800, Height: 600, MaxDepth: 1}, f.chain.Viewport())
}

func TestActivated(t *testing.T) {
	f := newFixture(t)
	f.bridge.OnActivated()
	assert.Equal(t, 1, f.host.activated)
	assert.Equal(t, chain.Absent, f.chain.State())
}

func TestSizeChanged_ResizesChain(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.OnSurfaceReady(f.surface))
	old := f.chain.TargetView().(*gputest.View)

	f.surface.W, f.surface.H = 1024, 768
	require.NoError(t, f.bridge.OnSizeChanged(1024, 768))

	assert.False(t, old.Valid(), "old view invalid once the call returns")
	w, h := f.chain.Size()
	assert.Equal(t, []int{1024, 768}, []int{w, h})
}

func TestSizeChanged_BeforeSurfaceIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.OnSizeChanged(640, 480))
	assert.Equal(t, chain.Absent, f.chain.State())
	assert.Equal(t, []string{"CreateDevice(11.0)"}, f.drv.Log.Calls())
}

func TestSizeChanged_EmptySkipped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.OnSurfaceReady(f.surface))
	gen := f.chain.SwapChain().(*gputest.SwapChain).Generation()

	require.NoError(t, f.bridge.OnSizeChanged(0, 0))
	assert.Equal(t, gen, f.chain.SwapChain().(*gputest.SwapChain).Generation())
	assert.Equal(t, chain.Ready, f.chain.State())
}

func TestTeardown_ChainThenDevice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.OnSurfaceReady(f.surface))
	f.drv.Log.Reset()

	f.bridge.OnTeardown()
	f.bridge.OnTeardown()

	assert.Equal(t, []string{"SetRenderTargets", "ReleaseTargetView", "ReleaseSwapChain", "ReleaseDevice"}, f.drv.Log.Calls())
	assert.True(t, f.bridge.TornDown())
	assert.True(t, f.dev.Released())
	assert.Equal(t, chain.Released, f.chain.State())

	assert.NoError(t, f.bridge.OnSizeChanged(10, 10))
	assert.ErrorIs(t, f.bridge.OnSurfaceReady(f.surface), gpu.ErrReleased)
}

func TestPump_DrainsQueueAfterHost(t *testing.T) {
	f := newFixture(t)
	q := f.bridge.Queue()
	f.host.onPump = func() {
		q.Post(Event{Kind: SurfaceReady, Surface: f.surface})
		q.Post(Event{Kind: Activated})
	}

	require.NoError(t, f.bridge.Pump())

	assert.Equal(t, 1, f.host.pumps)
	assert.Equal(t, 1, f.host.activated)
	assert.Equal(t, chain.Ready, f.chain.State())
	assert.Zero(t, q.Len())
}

func TestPump_EmptyIsNonBlocking(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.bridge.Pump())
	}
	assert.Equal(t, 5, f.host.pumps)
	assert.Equal(t, []string{"CreateDevice(11.0)"}, f.drv.Log.Calls())
}

func TestPump_ResizeSequence(t *testing.T) {
	f := newFixture(t)
	q := f.bridge.Queue()
	q.Post(Event{Kind: SurfaceReady, Surface: f.surface})
	for _, size := range [][2]int{{1024, 768}, {1280, 720}, {640, 480}} {
		q.Post(Event{Kind: SizeChanged, Width: size[0], Height: size[1]})
	}
	f.surface.W, f.surface.H = 640, 480

	require.NoError(t, f.bridge.Pump())

	w, h := f.chain.Size()
	assert.Equal(t, []int{640, 480}, []int{w, h})
	assert.Equal(t, float32(640), f.chain.Viewport().Width)
	assert.Equal(t, 1, f.chain.SwapChain().(*gputest.SwapChain).LiveViews())
}

type recorder struct {
	kinds []Kind
	fail  Kind
}

func (r *recorder) Handle(e Event) error {
	r.kinds = append(r.kinds, e.Kind)
	if e.Kind == r.fail {
		return errors.New("boom")
	}
	return nil
}

func TestQueue_ErrorKeepsRemaining(t *testing.T) {
	var q Queue
	q.Post(Event{Kind: Activated})
	q.Post(Event{Kind: SizeChanged})
	q.Post(Event{Kind: Teardown})

	r := &recorder{fail: SizeChanged}
	err := q.Drain(r)
	assert.EqualError(t, err, "size-changed: boom")
	assert.Equal(t, []Kind{Activated, SizeChanged}, r.kinds)
	assert.Equal(t, 1, q.Len())

	r.fail = -1
	require.NoError(t, q.Drain(r))
	assert.Equal(t, []Kind{Activated, SizeChanged, Teardown}, r.kinds)
}

func TestQueue_ConcurrentPost(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Post(Event{Kind: Activated})
			}
		}()
	}
	wg.Wait()

	r := &recorder{fail: -1}
	require.NoError(t, q.Drain(r))
	assert.Len(t, r.kinds, 800)
}
