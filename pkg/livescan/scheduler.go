// Package livescan drives repeated classification against a live frame source.
//
// The scheduler is a self-rescheduling timer, not a fixed-rate one: the next
// tick is armed only after the current one finishes, so variable inference
// latency can never put two inferences in flight for the same session. A busy
// flag enforces the same single-flight discipline when a stray tick fires
// while a sample is still running.
//
// Per-frame inference failures are absorbed by policy so a single bad frame
// never interrupts scanning; the optional OnError callback makes the
// absorption observable without breaking that guarantee.
package livescan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/waste-scanner/pkg/capture"
	"github.com/menta2k/waste-scanner/pkg/pipeline"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// SessionState is the lifecycle state of a live-scan session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateStarting
	StateStreaming
	StateStopped
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// DefaultInterval is the delay between the end of one sample and the next tick.
const DefaultInterval = 800 * time.Millisecond

// DefaultMinConfidence is the acceptance threshold for live results. Results
// at or below it are discarded as too unreliable to display.
const DefaultMinConfidence = 0.2

// Sink receives accepted classification results.
type Sink func(result types.ClassificationResult)

// Config holds scheduler configuration.
type Config struct {
	// Interval between the completion of one sample and the next tick.
	Interval time.Duration
	// MinConfidence is the exclusive lower bound for forwarded results.
	MinConfidence float64
	// Constraints passed to the capture device on acquisition.
	Constraints capture.Constraints
	// OnError observes absorbed per-frame errors. Optional.
	OnError func(err error)
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Interval:      DefaultInterval,
		MinConfidence: DefaultMinConfidence,
	}
}

// Scheduler owns one capture session and its sampling loop. It is not
// reusable: after Stop a new Scheduler must be created for the next session.
type Scheduler struct {
	pipeline *pipeline.Pipeline
	device   capture.Device
	sink     Sink
	config   Config

	mu        sync.Mutex
	state     SessionState
	busy      bool
	timer     *time.Timer
	source    capture.Source
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a scheduler with the default configuration.
func New(p *pipeline.Pipeline, device capture.Device, sink Sink) *Scheduler {
	return NewWithConfig(p, device, sink, DefaultConfig())
}

// NewWithConfig creates a scheduler with a custom configuration.
func NewWithConfig(p *pipeline.Pipeline, device capture.Device, sink Sink, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.MinConfidence == 0 {
		config.MinConfidence = DefaultMinConfidence
	}
	return &Scheduler{
		pipeline: p,
		device:   device,
		sink:     sink,
		config:   config,
		state:    StateIdle,
	}
}

// Start acquires the capture device and begins the sampling loop. On device
// failure the session stays idle and the error (typically a
// *types.DeviceAccessError) is returned; no scanning starts.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return &AlreadyActiveError{State: s.state}
	}
	s.state = StateStarting
	s.mu.Unlock()

	source, err := s.device.Acquire(s.config.Constraints)
	if err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.state != StateStarting {
		// Stopped while acquiring; release the device immediately.
		s.mu.Unlock()
		return source.Close()
	}
	s.source = source
	s.sessionID = uuid.NewString()
	s.state = StateStreaming
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.schedule()
	s.mu.Unlock()

	return nil
}

// Stop deactivates the session: the pending tick is cancelled, the capture
// device is released, and any in-flight sample's result will be discarded on
// arrival. Idempotent.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.state != StateStarting && s.state != StateStreaming {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopped
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	source := s.source
	s.source = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if source != nil {
		return source.Close()
	}
	return nil
}

// State reports the current session state.
func (s *Scheduler) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// schedule arms the next tick. Caller must hold s.mu.
func (s *Scheduler) schedule() {
	if s.state != StateStreaming {
		return
	}
	s.timer = time.AfterFunc(s.config.Interval, s.tick)
}

// tick runs one sampling cycle. It skips work when the session is inactive,
// the source is not producing frames yet, or a sample is still in flight.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return
	}
	if s.busy || s.source == nil || !s.source.Ready() {
		s.schedule()
		s.mu.Unlock()
		return
	}
	s.busy = true
	source := s.source
	session := s.sessionID
	ctx := s.ctx
	s.mu.Unlock()

	result, err := s.sample(ctx, source)

	s.mu.Lock()
	s.busy = false
	// A result that arrives after deactivation belongs to a dead session
	// and must not reach the sink.
	active := s.state == StateStreaming && s.sessionID == session
	if active {
		s.schedule()
	}
	s.mu.Unlock()

	if !active {
		return
	}
	if err != nil {
		s.absorb(err)
		return
	}
	if result.Confidence > s.config.MinConfidence {
		s.sink(result)
	}
}

// sample reads the current frame and classifies it.
func (s *Scheduler) sample(ctx context.Context, source capture.Source) (types.ClassificationResult, error) {
	frame, err := source.Read()
	if err != nil {
		return types.ClassificationResult{}, err
	}
	return s.pipeline.ClassifyImage(ctx, frame.Image)
}

// absorb applies the live-mode error policy: swallowed, optionally observed.
func (s *Scheduler) absorb(err error) {
	if s.config.OnError != nil {
		s.config.OnError(err)
	}
}

// AlreadyActiveError is returned by Start when the session is not idle.
type AlreadyActiveError struct {
	State SessionState
}

func (e *AlreadyActiveError) Error() string {
	return "live scan session already " + e.State.String()
}
