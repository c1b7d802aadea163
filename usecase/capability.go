package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Capability identifies one of the external services the server depends on.
type Capability string

const (
	CapabilitySpeechToText Capability = "speech_to_text"
	CapabilityDialogue     Capability = "dialogue"
	CapabilitySynthesis    Capability = "synthesis"
)

// Status is the readiness state of a capability.
type Status int

const (
	StatusUninitialized Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// RetryPolicy governs what EnsureReady does after a failed initialization.
type RetryPolicy struct {
	// Mode is RetryAlways or RetryCooldown.
	Mode RetryMode
	// Cooldown is how long a failure stays cached under RetryCooldown.
	Cooldown time.Duration
}

type RetryMode int

const (
	// RetryAlways re-attempts setup from scratch on every call, so transient
	// outages self-heal without a process restart.
	RetryAlways RetryMode = iota
	// RetryCooldown returns the cached failure until Cooldown has elapsed
	// since the last attempt.
	RetryCooldown
)

// InitFunc performs the expensive, capability-specific setup.
type InitFunc func(ctx context.Context) error

type capabilityState struct {
	mu       sync.Mutex
	status   Status
	init     InitFunc
	lastErr  error
	failedAt time.Time
}

// Configurator lazily initializes each capability exactly once, caches
// success, and re-attempts failed setups according to its retry policy. It
// is the only writer of capability state.
type Configurator struct {
	policy RetryPolicy
	logger *zap.Logger

	mu     sync.Mutex
	states map[Capability]*capabilityState
}

// NewConfigurator creates a configurator with the given retry policy.
func NewConfigurator(policy RetryPolicy, logger *zap.Logger) *Configurator {
	return &Configurator{
		policy: policy,
		logger: logger,
		states: make(map[Capability]*capabilityState),
	}
}

// Register binds the setup function for a capability. Registering again
// replaces the function and resets the state to Uninitialized.
func (c *Configurator) Register(capability Capability, init InitFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[capability] = &capabilityState{init: init}
}

// Status reports the current readiness of a capability.
func (c *Configurator) Status(capability Capability) Status {
	c.mu.Lock()
	st, ok := c.states[capability]
	c.mu.Unlock()
	if !ok {
		return StatusUninitialized
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.status
}

// EnsureReady initializes a capability if needed. Ready state returns
// immediately without contacting the external service. A prior failure is
// retried or returned cached, per the retry policy. The per-capability mutex
// serializes concurrent first-requests so the expensive setup runs once.
func (c *Configurator) EnsureReady(ctx context.Context, capability Capability) error {
	c.mu.Lock()
	st, ok := c.states[capability]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("capability %s is not registered", capability)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.status {
	case StatusReady:
		return nil
	case StatusFailed:
		if c.policy.Mode == RetryCooldown && time.Since(st.failedAt) < c.policy.Cooldown {
			c.logger.Warn("capability still cooling down after failure",
				zap.String("capability", string(capability)),
				zap.Error(st.lastErr))
			return st.lastErr
		}
	}

	c.logger.Info("initializing capability", zap.String("capability", string(capability)))

	if err := st.init(ctx); err != nil {
		st.status = StatusFailed
		st.lastErr = err
		st.failedAt = time.Now()
		c.logger.Error("capability initialization failed",
			zap.String("capability", string(capability)),
			zap.Error(err))
		return err
	}

	st.status = StatusReady
	st.lastErr = nil
	c.logger.Info("capability ready", zap.String("capability", string(capability)))
	return nil
}

// Warmup runs EnsureReady for every registered capability, logging failures
// without aborting. Used at boot; lazy re-init remains the recovery path.
func (c *Configurator) Warmup(ctx context.Context) {
	c.mu.Lock()
	caps := make([]Capability, 0, len(c.states))
	for capability := range c.states {
		caps = append(caps, capability)
	}
	c.mu.Unlock()

	for _, capability := range caps {
		if err := c.EnsureReady(ctx, capability); err != nil {
			c.logger.Warn("capability warmup failed, will retry lazily",
				zap.String("capability", string(capability)),
				zap.Error(err))
		}
	}
}
