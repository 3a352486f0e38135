// Package handle provides observable reference cells.
//
// A Handle is the only way callers refer to workspace objects. It holds one
// of three states: a resolved value, an error, or an invalidated marker
// carrying a reason. Whoever issued the handle keeps it current; holders
// read it or subscribe to changes.
package handle

import (
	"context"
	"fmt"
	"sync"
)

// Status is the kind of state a handle is in.
type Status int

const (
	// StatusOK means the handle holds a resolved value.
	StatusOK Status = iota

	// StatusError means resolving the value failed.
	StatusError

	// StatusInvalid means the referenced object is gone. This is terminal.
	StatusInvalid
)

// ReasonEnded is the invalidation reason set by End.
const ReasonEnded = "SESSION_ENDED"

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a snapshot of a handle.
type State[T any] struct {
	Status Status
	Value  T
	Err    error
	Reason string
}

// OK reports whether the state holds a resolved value.
func (s State[T]) OK() bool {
	return s.Status == StatusOK
}

// Handle is an observable cell. The zero value is not usable; use New or
// Failed.
type Handle[T any] struct {
	mu      sync.RWMutex
	state   State[T]
	seq     uint64
	subs    map[uint64]*subscriber[T]
	order   []uint64
	nextSub uint64
	onEnd   []func()
	ended   bool
}

// subscriber serializes deliveries to one callback. States are tagged with
// the handle's sequence number; anything not newer than the last delivered
// state is dropped, and a state arriving while the callback runs replaces
// any pending one.
type subscriber[T any] struct {
	fn func(State[T])

	mu         sync.Mutex
	last       uint64
	pending    State[T]
	pendingSeq uint64
	running    bool
}

func (s *subscriber[T]) offer(st State[T], seq uint64) {
	s.mu.Lock()
	if seq <= s.last || seq <= s.pendingSeq {
		s.mu.Unlock()
		return
	}
	s.pending, s.pendingSeq = st, seq
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	for s.pendingSeq > s.last {
		next := s.pending
		s.last = s.pendingSeq
		s.mu.Unlock()
		s.fn(next)
		s.mu.Lock()
	}
	s.running = false
	s.mu.Unlock()
}

// New returns a handle resolved to v.
func New[T any](v T) *Handle[T] {
	return &Handle[T]{
		state: State[T]{Status: StatusOK, Value: v},
		seq:   1,
		subs:  make(map[uint64]*subscriber[T]),
	}
}

// Failed returns a handle in the error state.
func Failed[T any](err error) *Handle[T] {
	return &Handle[T]{
		state: State[T]{Status: StatusError, Err: err},
		seq:   1,
		subs:  make(map[uint64]*subscriber[T]),
	}
}

// Get returns the current state.
func (h *Handle[T]) Get() State[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Value returns the resolved value and whether the handle is OK.
func (h *Handle[T]) Value() (T, bool) {
	s := h.Get()
	return s.Value, s.OK()
}

// Set resolves the handle to v. Ignored once the handle is invalid.
func (h *Handle[T]) Set(v T) {
	h.transition(State[T]{Status: StatusOK, Value: v})
}

// Fail moves the handle to the error state. Ignored once the handle is
// invalid.
func (h *Handle[T]) Fail(err error) {
	h.transition(State[T]{Status: StatusError, Err: err})
}

// Invalidate marks the handle invalid with the given reason. Only the first
// call has an effect.
func (h *Handle[T]) Invalidate(reason string) {
	h.transition(State[T]{Status: StatusInvalid, Reason: reason})
}

func (h *Handle[T]) transition(next State[T]) {
	h.mu.Lock()
	if h.state.Status == StatusInvalid {
		h.mu.Unlock()
		return
	}
	h.state = next
	h.seq++
	seq := h.seq
	subs := make([]*subscriber[T], 0, len(h.order))
	for _, id := range h.order {
		subs = append(subs, h.subs[id])
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.offer(next, seq)
	}
}

// Subscribe registers fn to be called after every state change. Calls to
// fn never overlap and never go back to an older state; when changes race,
// intermediate states may be skipped. The returned function removes the
// subscription.
func (h *Handle[T]) Subscribe(fn func(State[T])) (cancel func()) {
	_, _, _, cancel = h.subscribe(fn)
	return cancel
}

// subscribe registers fn and returns the state current at registration
// together with its sequence number.
func (h *Handle[T]) subscribe(fn func(State[T])) (*subscriber[T], State[T], uint64, func()) {
	sub := &subscriber[T]{fn: fn}

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = sub
	h.order = append(h.order, id)
	cur, seq := h.state, h.seq
	h.mu.Unlock()

	var once sync.Once
	return sub, cur, seq, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Watch returns a channel carrying the current state followed by updates.
// Slow readers only see the latest state. The channel is closed when ctx is
// done.
func (h *Handle[T]) Watch(ctx context.Context) <-chan State[T] {
	ch := make(chan State[T], 1)

	var mu sync.Mutex
	closed := false
	push := func(s State[T]) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- s
	}

	sub, cur, seq, cancel := h.subscribe(push)
	sub.offer(cur, seq)

	go func() {
		<-ctx.Done()
		cancel()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// OnEnd registers fn to run when End is called. If the handle has already
// ended, fn runs immediately.
func (h *Handle[T]) OnEnd(fn func()) {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		fn()
		return
	}
	h.onEnd = append(h.onEnd, fn)
	h.mu.Unlock()
}

// End closes the handle's session: it invalidates the handle with
// ReasonEnded and runs OnEnd hooks once.
func (h *Handle[T]) End() {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		return
	}
	h.ended = true
	hooks := h.onEnd
	h.onEnd = nil
	h.mu.Unlock()

	h.Invalidate(ReasonEnded)
	for _, fn := range hooks {
		fn()
	}
}
