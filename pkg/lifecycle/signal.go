package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/marmos91/flotilla/internal/logger"
)

// signalBridge translates external termination events (OS signals, parent
// context cancellation) into a one-shot Token. It performs no cleanup of
// its own; it only fires the token.
type signalBridge struct {
	token   *Token
	signals []os.Signal

	sigCh      chan os.Signal
	done       chan struct{}
	listenOnce sync.Once
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// newSignalBridge wires a bridge around parent. The token fires on the
// first of: one of the given signals arriving, parent being cancelled, or
// an explicit Cancel on the token. Default signals are SIGINT and SIGTERM.
func newSignalBridge(parent context.Context, signals ...os.Signal) *signalBridge {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &signalBridge{
		token:   NewToken(parent),
		signals: signals,
		sigCh:   make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// listen starts forwarding signals into the token and returns it. Calling
// listen again returns the same token without spawning another forwarder.
// A second signal after the token has fired is absorbed without effect
// until close restores default signal handling.
func (b *signalBridge) listen() *Token {
	b.listenOnce.Do(func() {
		signal.Notify(b.sigCh, b.signals...)
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			select {
			case sig := <-b.sigCh:
				logger.Info("Termination signal received, initiating shutdown", logger.Signal(sig.String()))
				b.token.Cancel()
			case <-b.token.Done():
			case <-b.done:
			}
		}()
	})
	return b.token
}

// close stops signal forwarding and waits for the forwarder goroutine to
// exit. After close a repeated signal falls through to the process default
// handler. Safe to call multiple times; the token is left untouched.
func (b *signalBridge) close() {
	b.closeOnce.Do(func() {
		signal.Stop(b.sigCh)
		close(b.done)
	})
	b.wg.Wait()
}
