package lifecycle

import (
	"context"
	"sync"
)

// Token is a single-shot broadcast cancellation signal. It transitions once
// from live to cancelled and never reverses; observing it after the
// transition always reports cancelled. Cancelling an already-cancelled
// token has no effect.
type Token struct {
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken derives a token from parent: the token fires when Cancel is
// called or when parent is cancelled, whichever happens first.
func NewToken(parent context.Context) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel fires the token. Only the first call has any effect.
func (t *Token) Cancel() {
	t.once.Do(t.cancel)
}

// Cancelled reports whether the token has fired.
func (t *Token) Cancelled() bool {
	return t.ctx.Err() != nil
}

// Done returns a channel that is closed when the token fires.
func (t *Token) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context returns the context view of the token for passing into blocking
// operations.
func (t *Token) Context() context.Context {
	return t.ctx
}
