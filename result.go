package fasttranslator

import "context"

// outcome is the shared result fanned out to every waiter of a key.
type outcome struct {
	translation string
	err         error
}

// Pending is the caller's handle on a submitted request. Each handle is
// fulfilled exactly once; coalesced callers each hold their own Pending
// but observe the same underlying outcome.
type Pending struct {
	d   *Dispatcher
	key string
	ch  chan outcome // buffered, receives exactly one outcome
}

func newResolvedPending(key, translation string) *Pending {
	p := &Pending{key: key, ch: make(chan outcome, 1)}
	p.ch <- outcome{translation: translation}
	return p
}

// Wait blocks until the request resolves or ctx is cancelled. Cancelling
// the wait detaches this caller; the underlying network call, if already
// in flight, runs to completion and its result is kept for the cache.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case out := <-p.ch:
		return out.translation, out.err
	case <-ctx.Done():
		p.Cancel()
		return "", ctx.Err()
	}
}

// Cancel withdraws this caller's interest. A request whose waiters have
// all cancelled before a worker picks it up is dropped without a network
// call; once in flight, the call completes and the result is discarded
// for this caller only.
func (p *Pending) Cancel() {
	if p.d == nil {
		return
	}
	p.d.detach(p.key, p.ch)
}
