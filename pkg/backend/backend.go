// Package backend holds the shared lazy-load lifecycle for inference
// backends. A Handle moves Unloaded -> Loading -> Ready, or
// Unloaded -> Loading -> Failed. Ready is permanent for the process
// lifetime; Failed is sticky until an explicit Reset.
package backend

import (
	"sync"
	"sync/atomic"
)

type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

type Handle struct {
	mu      sync.Mutex
	state   atomic.Int32
	loadErr error
}

// Ensure runs load at most once. Concurrent callers during a load block until
// the single in-flight load settles and all observe its outcome. Once Failed,
// the recorded error is returned without re-running load; only Reset clears
// it. This keeps a broken model from being re-initialized on every request.
func (h *Handle) Ensure(load func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch State(h.state.Load()) {
	case StateReady:
		return nil
	case StateFailed:
		return h.loadErr
	}

	h.state.Store(int32(StateLoading))
	if err := load(); err != nil {
		h.loadErr = err
		h.state.Store(int32(StateFailed))
		return err
	}

	h.state.Store(int32(StateReady))
	return nil
}

// Ready reports whether the backend finished loading successfully.
func (h *Handle) Ready() bool {
	return State(h.state.Load()) == StateReady
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Reset returns the handle to Unloaded so a supervisor can retry a failed
// load once resources change. It is not called on the request path.
func (h *Handle) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loadErr = nil
	h.state.Store(int32(StateUnloaded))
}
