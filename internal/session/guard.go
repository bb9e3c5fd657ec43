package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthcare-app-client/internal/models"
)

// Guard answers session questions from the credential store. Nothing decoded
// is cached: every call re-reads the slot and re-checks expiry against the
// clock.
type Guard struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger

	mu    sync.Mutex
	hooks []func()
}

// Option configures a Guard
type Option func(*Guard)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger sets the guard's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// NewGuard creates a Guard over store
func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login checks credential and stores it, starting a session.
func (g *Guard) Login(credential string) (*Subject, error) {
	subject, err := Check(credential, g.now())
	if err != nil {
		return nil, err
	}
	if err := g.store.Save(credential); err != nil {
		return nil, err
	}
	g.logger.Info().Str("subject", subject.Subject).Time("expires_at", subject.Expiry).Msg("session started")
	return subject, nil
}

// current returns the live session. A stored credential that fails to decode
// or has expired is purged before the error is returned.
func (g *Guard) current() (*Subject, string, error) {
	credential, err := g.store.Load()
	if err != nil {
		g.logger.Error().Err(err).Msg("credential store unavailable")
		return nil, "", err
	}
	if credential == "" {
		return nil, "", ErrNoCredential
	}

	subject, err := Check(credential, g.now())
	if err != nil {
		g.purge(credential, err)
		return nil, "", err
	}
	return subject, credential, nil
}

func (g *Guard) purge(credential string, cause error) {
	purged, err := g.store.ClearIf(credential)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to purge credential")
		return
	}
	if purged {
		g.logger.Info().Str("reason", cause.Error()).Msg("stale credential purged")
	}
}

// IsValid reports whether a stored credential decodes and has not expired.
func (g *Guard) IsValid() bool {
	_, _, err := g.current()
	return err == nil
}

// CurrentSubject returns the decoded identity, or nil without a valid session.
func (g *Guard) CurrentSubject() *Subject {
	subject, _, err := g.current()
	if err != nil {
		return nil
	}
	return subject
}

// HasRole is false without a valid session.
func (g *Guard) HasRole(role models.Role) bool {
	subject := g.CurrentSubject()
	return subject != nil && subject.HasRole(role)
}

// Authorize returns the current subject when the session is valid and holds
// at least one of roles. With no roles any valid session is accepted.
func (g *Guard) Authorize(roles ...models.Role) (*Subject, error) {
	subject, _, err := g.current()
	if err != nil {
		return nil, &AuthorizationError{Reason: "no valid session", Required: roles, Err: err}
	}
	if len(roles) == 0 {
		return subject, nil
	}
	for _, role := range roles {
		if subject.HasRole(role) {
			return subject, nil
		}
	}
	return nil, &AuthorizationError{Reason: "missing role", Required: roles}
}

// Credential returns the bearer token to attach to requests.
func (g *Guard) Credential() (string, error) {
	_, credential, err := g.current()
	if err != nil {
		return "", err
	}
	return credential, nil
}

// OnLogout registers fn to run whenever the session is ended by Logout or
// Invalidate.
func (g *Guard) OnLogout(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, fn)
}

// Logout purges the credential and notifies listeners. Local only.
func (g *Guard) Logout() error {
	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	g.logger.Info().Msg("session ended")
	g.notify()
	return nil
}

// Invalidate ends the session the backend rejected. A credential stored after
// the rejected one was sent is left alone.
func (g *Guard) Invalidate(credential string) {
	purged, err := g.store.ClearIf(credential)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to invalidate credential")
		return
	}
	if !purged {
		return
	}
	g.logger.Warn().Msg("credential rejected by backend, session ended")
	g.notify()
}

func (g *Guard) notify() {
	g.mu.Lock()
	hooks := make([]func(), len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// IsSessionError reports whether err means "no usable session".
func IsSessionError(err error) bool {
	var decodeErr *DecodeError
	var expiryErr *ExpiryError
	var authErr *AuthorizationError
	return errors.Is(err, ErrNoCredential) ||
		errors.As(err, &decodeErr) ||
		errors.As(err, &expiryErr) ||
		errors.As(err, &authErr)
}
