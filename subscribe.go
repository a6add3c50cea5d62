package landscapist

import (
	"context"
	"errors"
)

var errNoLoader = errors.New("no loader configured")

// Subscription is a live image-load stream. It emits Loading immediately,
// then exactly one terminal state, then closes. Cancelling before the
// terminal state arrives closes the stream without a terminal emission.
type Subscription struct {
	states chan State
	cancel context.CancelFunc
}

// Subscribe starts loading req through l and returns the state stream.
// The Loading emission is already buffered when Subscribe returns, so a
// consumer draining the channel always observes Loading before any
// terminal state, even when the load completes instantly. The request
// listener, if set, fires for every emission; it runs synchronously for
// Loading and on the loader goroutine for the terminal state.
func Subscribe(ctx context.Context, l Loader, req Request) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		states: make(chan State, 2),
		cancel: cancel,
	}
	listener := req.Listener()

	sub.states <- Loading{}
	if listener != nil {
		listener(Loading{})
	}

	go func() {
		defer close(sub.states)
		if l == nil {
			sub.emit(ctx, Failure{Err: errNoLoader}, listener)
			return
		}
		payload, err := l.Load(ctx, req)
		if ctx.Err() != nil {
			// Superseded or torn down mid-flight; the consumer must not
			// observe a terminal state for this request.
			return
		}
		sub.emit(ctx, mapResult(payload, err), listener)
	}()
	return sub
}

// emit delivers a terminal state unless the subscription was cancelled.
// The channel has a reserved slot for the terminal emission, so the send
// itself never blocks.
func (s *Subscription) emit(ctx context.Context, st State, listener func(State)) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	select {
	case s.states <- st:
		if listener != nil {
			listener(st)
		}
	case <-ctx.Done():
	}
}

// States returns the receive side of the stream. The channel closes after
// the terminal emission, or after Cancel.
func (s *Subscription) States() <-chan State {
	return s.states
}

// Cancel stops the in-flight load. Safe to call repeatedly and after the
// stream has closed.
func (s *Subscription) Cancel() {
	s.cancel()
}
