package bridge

import (
	"fmt"
	"sync"

	"corewindow/internal/gpu"
)

// Kind identifies a window event.
type Kind int

const (
	SurfaceReady Kind = iota
	Activated
	SizeChanged
	Teardown
)

func (k Kind) String() string {
	switch k {
	case SurfaceReady:
		return "surface-ready"
	case Activated:
		return "activated"
	case SizeChanged:
		return "size-changed"
	case Teardown:
		return "teardown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a window notification.
type Event struct {
	Kind Kind
	// Surface is set for SurfaceReady.
	Surface gpu.Surface
	// Width and Height are set for SizeChanged.
	Width, Height int
}

// Handler receives drained events.
type Handler interface {
	Handle(e Event) error
}

// Queue is a FIFO of window events. Post may be called from any goroutine;
// Drain runs on the render thread.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// Post appends e.
func (q *Queue) Post(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drain hands every event pending at the time of the call to h, in order,
// and returns without waiting when there are none. Events posted by h are
// left for the next Drain. The first handler error stops the drain; the
// remaining events stay queued.
func (q *Queue) Drain(h Handler) error {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()

	for i, e := range events {
		if err := h.Handle(e); err != nil {
			q.mu.Lock()
			q.events = append(append([]Event(nil), events[i+1:]...), q.events...)
			q.mu.Unlock()
			return fmt.Errorf("%s: %w", e.Kind, err)
		}
	}
	return nil
}
