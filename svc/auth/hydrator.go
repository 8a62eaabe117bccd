package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/flowgrid/flowgrid-go/client"
	"github.com/flowgrid/flowgrid-go/pkg/credstore"
	"github.com/flowgrid/flowgrid-go/pkg/statemachine"
)

// Hydration states. A Hydrator starts in StatePending, moves to
// StateLoading while a run is in flight and lands in exactly one
// terminal state per run.
const (
	StatePending   statemachine.State = "pending"
	StateLoading   statemachine.State = "loading"
	StateSucceeded statemachine.State = "succeeded"
	StateFailed    statemachine.State = "failed"
	StateTimedOut  statemachine.State = "timed_out"
)

const (
	eventStart   statemachine.Event = "start"
	eventSucceed statemachine.Event = "succeed"
	eventFail    statemachine.Event = "fail"
	eventTimeout statemachine.Event = "timeout"
)

// HydrationConfig bounds a hydration run.
type HydrationConfig struct {
	// MaxRetries is the total number of attempts per run.
	MaxRetries int           `env:"FLOWGRID_HYDRATION_MAX_RETRIES" envDefault:"3" yaml:"max_retries"`
	RetryDelay time.Duration `env:"FLOWGRID_HYDRATION_RETRY_DELAY" envDefault:"1s" yaml:"retry_delay"`
	// Timeout caps the whole run across all attempts. Exceeding it is
	// terminal; no further attempts are made.
	Timeout time.Duration `env:"FLOWGRID_HYDRATION_TIMEOUT" envDefault:"10s" yaml:"timeout"`
	// ValidateToken verifies the stored session against the server.
	// When false the locally stored user is trusted as-is.
	ValidateToken bool `env:"FLOWGRID_HYDRATION_VALIDATE_TOKEN" envDefault:"true" yaml:"validate_token"`
	// FallbackToGuest turns an exhausted run into a guest session
	// instead of a failure.
	FallbackToGuest bool `env:"FLOWGRID_HYDRATION_FALLBACK_TO_GUEST" envDefault:"true" yaml:"fallback_to_guest"`
}

// DefaultHydrationConfig returns the standard hydration policy.
func DefaultHydrationConfig() HydrationConfig {
	return HydrationConfig{
		MaxRetries:      3,
		RetryDelay:      time.Second,
		Timeout:         10 * time.Second,
		ValidateToken:   true,
		FallbackToGuest: true,
	}
}

// Result is the outcome of a hydration run. A successful run with a
// nil User is a guest session.
type Result struct {
	Success   bool
	User      *AuthUser
	Err       *AuthError
	Timestamp time.Time
	Attempts  int
}

// Stats is a point-in-time snapshot of a Hydrator's history.
type Stats struct {
	State     statemachine.State
	Runs      int
	Successes int
	Failures  int
	LastRun   time.Time
}

// Hydrator restores a session at process start: it reads stored
// credentials, optionally verifies them against the server and reports
// the user the application should boot with. Concurrent Hydrate calls
// share a single in-flight run.
type Hydrator struct {
	svc   *Service
	creds *credstore.Credentials
	cfg   HydrationConfig
	log   *authLogger

	machine *statemachine.Machine

	mu         sync.Mutex
	inflight   chan struct{}
	lastResult *Result
	runs       int
	successes  int
	failures   int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// HydratorOption configures a Hydrator.
type HydratorOption func(*Hydrator)

// WithHydratorLogger sets the logger used for hydration events.
func WithHydratorLogger(log *slog.Logger) HydratorOption {
	return func(h *Hydrator) {
		h.log = newAuthLogger(log)
	}
}

// NewHydrator creates a Hydrator that restores sessions through svc and
// reads credentials from creds.
func NewHydrator(svc *Service, creds *credstore.Credentials, cfg HydrationConfig, opts ...HydratorOption) *Hydrator {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	h := &Hydrator{
		svc:   svc,
		creds: creds,
		cfg:   cfg,
		log:   newAuthLogger(nil),
		machine: statemachine.MustNew(StatePending,
			statemachine.WithTransition(StatePending, StateLoading, eventStart),
			statemachine.WithTransition(StateLoading, StateSucceeded, eventSucceed),
			statemachine.WithTransition(StateLoading, StateFailed, eventFail),
			statemachine.WithTransition(StateLoading, StateTimedOut, eventTimeout),
		),
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns the current hydration state.
func (h *Hydrator) State() statemachine.State { return h.machine.Current() }

// LastResult returns the outcome of the most recent completed run, or
// nil when no run has finished.
func (h *Hydrator) LastResult() *Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastResult
}

// Stats returns a snapshot of the hydrator's run history.
func (h *Hydrator) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{
		State:     h.machine.Current(),
		Runs:      h.runs,
		Successes: h.successes,
		Failures:  h.failures,
	}
	if h.lastResult != nil {
		s.LastRun = h.lastResult.Timestamp
	}
	return s
}

// Reset returns the hydrator to pending so the next Hydrate call runs
// fresh. Run counters are preserved.
func (h *Hydrator) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.machine.Reset()
	h.lastResult = nil
}

// Refresh resets and immediately re-runs hydration.
func (h *Hydrator) Refresh(ctx context.Context) *Result {
	h.Reset()
	return h.Hydrate(ctx)
}

// Hydrate runs the hydration flow and returns its result. Once a run
// has completed the cached result is returned until Reset; a call that
// arrives while a run is in flight waits for that run and shares its
// result.
func (h *Hydrator) Hydrate(ctx context.Context) *Result {
	h.mu.Lock()
	if h.lastResult != nil {
		res := h.lastResult
		h.mu.Unlock()
		return res
	}
	if h.inflight != nil {
		done := h.inflight
		h.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return &Result{
				Success:   false,
				Err:       translateError(ctx.Err()),
				Timestamp: h.now(),
			}
		}
		return h.LastResult()
	}
	done := make(chan struct{})
	h.inflight = done
	h.runs++
	_ = h.machine.Fire(ctx, eventStart, nil)
	h.mu.Unlock()

	result := h.run(ctx)

	h.mu.Lock()
	h.lastResult = result
	if result.Success {
		h.successes++
	} else {
		h.failures++
	}
	event := eventSucceed
	switch {
	case result.Success:
	case result.Err != nil && result.Err.Code == CodeTimeout:
		event = eventTimeout
	default:
		event = eventFail
	}
	_ = h.machine.Fire(ctx, event, result)
	h.inflight = nil
	close(done)
	h.mu.Unlock()
	return result
}

func (h *Hydrator) run(ctx context.Context) *Result {
	start := h.now()
	var lastErr *AuthError

	for attempt := 1; attempt <= h.cfg.MaxRetries; attempt++ {
		if h.now().Sub(start) > h.cfg.Timeout {
			h.log.hydration(ctx, "hydration timed out",
				slog.Int("attempt", attempt),
				slog.Duration("timeout", h.cfg.Timeout))
			return h.finish(ctx, &Result{
				Err: &AuthError{
					Code:     CodeTimeout,
					Category: CategoryNetwork,
					Message:  "Session restore timed out",
				},
				Timestamp: h.now(),
				Attempts:  attempt,
			})
		}

		user, err := h.attempt(ctx)
		if err == nil {
			h.log.hydration(ctx, "hydration attempt succeeded",
				slog.Int("attempt", attempt),
				slog.Bool("guest", user == nil))
			return &Result{
				Success:   true,
				User:      user,
				Timestamp: h.now(),
				Attempts:  attempt,
			}
		}

		lastErr = translateError(err)
		h.log.hydration(ctx, "hydration attempt failed",
			slog.Int("attempt", attempt),
			slog.String("code", string(lastErr.Code)))
		if lastErr.Code == CodeTimeout {
			return h.finish(ctx, &Result{
				Err:       lastErr,
				Timestamp: h.now(),
				Attempts:  attempt,
			})
		}
		if attempt < h.cfg.MaxRetries {
			if err := h.sleep(ctx, h.cfg.RetryDelay); err != nil {
				return h.finish(ctx, &Result{
					Err:       translateError(err),
					Timestamp: h.now(),
					Attempts:  attempt,
				})
			}
		}
	}

	return h.finish(ctx, &Result{
		Err: &AuthError{
			Code:     CodeHydrationFailed,
			Category: CategoryInternal,
			Message:  "Failed to restore session",
			Err:      lastErr,
		},
		Timestamp: h.now(),
		Attempts:  h.cfg.MaxRetries,
	})
}

// finish applies the guest fallback to a failed result.
func (h *Hydrator) finish(ctx context.Context, res *Result) *Result {
	if !h.cfg.FallbackToGuest {
		return res
	}
	h.log.hydration(ctx, "falling back to guest session",
		slog.String("code", string(res.Err.Code)))
	return &Result{
		Success:   true,
		User:      nil,
		Timestamp: res.Timestamp,
		Attempts:  res.Attempts,
	}
}

// attempt performs one pass over stored credentials. A nil user with a
// nil error is a clean guest session.
func (h *Hydrator) attempt(ctx context.Context) (*AuthUser, error) {
	token, err := h.creds.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	raw, err := h.creds.User(ctx)
	if err != nil {
		return nil, err
	}
	var local AuthUser
	if len(raw) == 0 || json.Unmarshal(raw, &local) != nil {
		// A token without a readable user record is an orphan. Drop the
		// token and boot as guest rather than carry half a session.
		if err := h.creds.DeleteAccessToken(ctx); err != nil {
			return nil, err
		}
		h.log.token(ctx, "orphaned token cleared")
		return nil, nil
	}

	if !h.cfg.ValidateToken {
		return &local, nil
	}

	user, err := h.svc.CurrentUser(ctx)
	if err == nil {
		return user, nil
	}
	if client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusForbidden) {
		// The server rejected the token outright. Clear everything and
		// boot as guest.
		if clearErr := h.creds.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		h.log.token(ctx, "stored token rejected by server")
		return nil, nil
	}
	if isNetworkError(err) {
		// Server unreachable. Trust the local copy so the app can start
		// offline; the next authenticated request re-verifies.
		h.log.hydration(ctx, "server unreachable, using stored user",
			slog.String("user_id", local.ID))
		return &local, nil
	}
	return nil, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
