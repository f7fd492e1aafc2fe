package blacksky

import (
	"sync"
)

type ReadyState int

const (
	ReadyPending ReadyState = iota
	ReadyOK
	ReadyFailed
)

func (s ReadyState) String() string {
	switch s {
	case ReadyOK:
		return "ready"
	case ReadyFailed:
		return "failed"
	}
	return "pending"
}

// ReadySignal settles exactly once, either ready or failed. Callbacks passed to
// OnReady run once when the signal fires, or immediately if it already has.
// They never run for a failed signal. Safe for concurrent use; callbacks run
// on the goroutine that settles the signal or subscribes late.
type ReadySignal struct {
	mu     sync.Mutex
	state  ReadyState
	err    error
	ready  []func()
	failed []func(error)
	done   chan struct{}
}

func NewReadySignal() *ReadySignal {
	return &ReadySignal{done: make(chan struct{})}
}

// Fire marks the signal ready. It returns false if the signal had already settled.
func (s *ReadySignal) Fire() bool {
	s.mu.Lock()
	if s.state != ReadyPending {
		s.mu.Unlock()
		return false
	}
	s.state = ReadyOK
	callbacks := s.ready
	s.ready, s.failed = nil, nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return true
}

// Fail marks the signal failed with err. It returns false if the signal had
// already settled.
func (s *ReadySignal) Fail(err error) bool {
	s.mu.Lock()
	if s.state != ReadyPending {
		s.mu.Unlock()
		return false
	}
	s.state = ReadyFailed
	s.err = err
	callbacks := s.failed
	s.ready, s.failed = nil, nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(err)
	}
	return true
}

func (s *ReadySignal) OnReady(fn func()) {
	s.mu.Lock()
	switch s.state {
	case ReadyPending:
		s.ready = append(s.ready, fn)
		s.mu.Unlock()
	case ReadyOK:
		s.mu.Unlock()
		fn()
	default:
		s.mu.Unlock()
	}
}

func (s *ReadySignal) OnFail(fn func(error)) {
	s.mu.Lock()
	switch s.state {
	case ReadyPending:
		s.failed = append(s.failed, fn)
		s.mu.Unlock()
	case ReadyFailed:
		err := s.err
		s.mu.Unlock()
		fn(err)
	default:
		s.mu.Unlock()
	}
}

func (s *ReadySignal) State() (ReadyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}

// Done is closed once the signal settles either way.
func (s *ReadySignal) Done() <-chan struct{} {
	return s.done
}

// RendererReady is fired by the installed renderer once it can draw.
type RendererReady struct {
	*ReadySignal
}

// ensureRendererReady returns the app's RendererReady, creating it on first use
// so renderers and consumers can install in either order.
func ensureRendererReady(app *App) *RendererReady {
	if ready, ok := Resource[RendererReady](app); ok {
		return ready
	}
	ready := &RendererReady{ReadySignal: NewReadySignal()}
	app.addResources(ready)
	return ready
}

// RendererState reports the renderer readiness of app. Without a renderer it
// stays pending.
func RendererState(app *App) (ReadyState, error) {
	if ready, ok := Resource[RendererReady](app); ok {
		return ready.State()
	}
	return ReadyPending, nil
}
