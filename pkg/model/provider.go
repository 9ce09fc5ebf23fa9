// Package model owns the lifecycle of the shared classifier instance.
//
// The backing vision model is large and expensive to initialize, so the
// provider collapses concurrent load requests onto a single in-flight attempt:
// every caller of EnsureReady observes the outcome of exactly one load. A
// failed attempt is never cached; the next call starts over.
package model

import (
	"context"
	"sync"

	"github.com/menta2k/waste-scanner/pkg/client"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// State describes the lifecycle of the shared model handle.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// Loader constructs and warms up a classifier. It runs at most once per load
// attempt, regardless of how many callers are waiting.
type Loader func(ctx context.Context) (client.Classifier, error)

// Provider is the process-wide owner of the classifier handle. Construct one
// and pass it by reference into pipelines; they hold a borrowed reference only.
type Provider struct {
	loader Loader

	mu         sync.Mutex
	classifier client.Classifier
	attempt    *loadAttempt
}

// loadAttempt is the shared outcome of one in-flight load. classifier and err
// are written once before done is closed and read-only afterwards.
type loadAttempt struct {
	done       chan struct{}
	classifier client.Classifier
	err        error
}

// NewProvider creates a provider that loads the classifier with the given loader.
func NewProvider(loader Loader) *Provider {
	return &Provider{loader: loader}
}

// EnsureReady returns the classifier, loading it first if necessary.
//
// If the classifier is already loaded it returns immediately. If a load is in
// flight, the caller waits on that same attempt rather than starting a second
// one. On failure every waiter receives the same *types.ModelLoadError and
// the provider resets to unloaded so a later call can retry.
//
// ctx cancels this caller's wait, not the shared load itself; other waiters
// still receive the attempt's outcome.
func (p *Provider) EnsureReady(ctx context.Context) (client.Classifier, error) {
	p.mu.Lock()
	if p.classifier != nil {
		c := p.classifier
		p.mu.Unlock()
		return c, nil
	}

	att := p.attempt
	if att == nil {
		att = &loadAttempt{done: make(chan struct{})}
		p.attempt = att
		go p.load(att)
	}
	p.mu.Unlock()

	select {
	case <-att.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if att.err != nil {
		return nil, att.err
	}
	return att.classifier, nil
}

// load runs the loader once and publishes the outcome to every waiter.
func (p *Provider) load(att *loadAttempt) {
	// The load is shared by all waiters, so it runs under its own context
	// rather than any single caller's.
	classifier, err := p.loader(context.Background())
	if err != nil {
		att.err = &types.ModelLoadError{Message: "classifier initialization failed", Err: err}
	} else {
		att.classifier = classifier
	}

	p.mu.Lock()
	if err == nil {
		p.classifier = classifier
	}
	// Failed or not, the attempt is over; a new call starts a fresh one.
	p.attempt = nil
	p.mu.Unlock()

	close(att.done)
}

// State reports the current lifecycle state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.classifier != nil:
		return StateReady
	case p.attempt != nil:
		return StateLoading
	default:
		return StateUnloaded
	}
}

// Ready reports whether the classifier is loaded and usable.
func (p *Provider) Ready() bool {
	return p.State() == StateReady
}
