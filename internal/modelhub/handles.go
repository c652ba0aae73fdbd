// Package modelhub holds the process-wide embedding and generation models and
// tracks whether they are ready to serve.
package modelhub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
)

// State is the lifecycle of a Handles value.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Models is the loaded pair plus the embedding options every caller must use.
type Models struct {
	Embedder     embedding.Embedder
	Generator    generation.Generator
	EmbedOptions embedding.Options
}

// LoadFunc builds the models. It runs once, inside Load.
type LoadFunc func(ctx context.Context) (Models, error)

// ErrAlreadyLoaded is returned by Load when called a second time.
var ErrAlreadyLoaded = errors.New("models already loaded")

// Handles moves through Uninitialized -> Loading -> Ready | Failed exactly
// once. Get never blocks on an in-progress load.
type Handles struct {
	mu     sync.Mutex
	state  State
	models Models
	cause  error
}

// NewHandles returns uninitialized handles.
func NewHandles() *Handles {
	return &Handles{}
}

// Load runs fn and records the outcome. Only the first call does anything.
func (h *Handles) Load(ctx context.Context, fn LoadFunc) error {
	h.mu.Lock()
	if h.state != StateUninitialized {
		h.mu.Unlock()
		return ErrAlreadyLoaded
	}
	h.state = StateLoading
	h.mu.Unlock()

	m, err := fn(ctx)
	if err == nil {
		switch {
		case m.Embedder == nil || m.Generator == nil:
			err = fmt.Errorf("%w: loader returned nil models", models.ErrConfig)
		default:
			err = m.EmbedOptions.Validate()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.state = StateFailed
		h.cause = err
		return err
	}
	h.models = m
	h.state = StateReady
	return nil
}

// Get returns the models, or an error wrapping ErrModelsNotReady in any
// state other than Ready. A failed load's cause is included in the message.
func (h *Handles) Get() (Models, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case StateReady:
		return h.models, nil
	case StateFailed:
		return Models{}, fmt.Errorf("%w: load failed: %v", models.ErrModelsNotReady, h.cause)
	default:
		return Models{}, fmt.Errorf("%w: state %s", models.ErrModelsNotReady, h.state)
	}
}

// State returns the current lifecycle state.
func (h *Handles) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the load failure, if any.
func (h *Handles) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cause
}

// Close releases the models. Handles stay in their current state.
func (h *Handles) Close() error {
	h.mu.Lock()
	m := h.models
	h.mu.Unlock()
	var errs []error
	if m.Embedder != nil {
		errs = append(errs, m.Embedder.Close())
	}
	if m.Generator != nil {
		errs = append(errs, m.Generator.Close())
	}
	return errors.Join(errs...)
}
