// Package session tracks the authenticated backend session for the
// ordering client.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

// TokenSink receives the bearer token after a successful login.
// Implemented by api.Client.
type TokenSink interface {
	SetToken(token string)
}

// Session holds login state. Ordering and status updates require a live
// session; browsing the menu and the board does not.
type Session struct {
	auth   domain.Authenticator
	tokens TokenSink
	log    *logger.Logger

	mu       sync.RWMutex
	username string
	active   bool
	runCtx   context.Context
	cancel   context.CancelFunc
}

// New creates a logged-out session.
func New(auth domain.Authenticator, tokens TokenSink, log *logger.Logger) *Session {
	return &Session{auth: auth, tokens: tokens, log: log}
}

// Login authenticates against the backend. A rejected credential pair comes
// back as ErrAuthFailed carrying the server's message; transport problems
// surface as whatever the authenticator returned.
func (s *Session) Login(ctx context.Context, username, password string) error {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !res.Success {
		s.log.Warn("login rejected for %q: %s", username, res.Message)
		if res.Message != "" {
			return fmt.Errorf("%w: %s", domain.ErrAuthFailed, res.Message)
		}
		return domain.ErrAuthFailed
	}

	s.tokens.SetToken(res.Token)

	s.mu.Lock()
	// Re-login replaces the session; pollers of the previous one stop.
	if s.cancel != nil {
		s.cancel()
	}
	s.username = username
	s.active = true
	// Pollers started for this session run under this context; Logout
	// cancels it. In-flight fetches finish and are discarded.
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info("logged in as %s", username)
	return nil
}

// Context returns the context of the current login, cancelled by Logout.
// Returns a pre-cancelled context when logged out so a poller started by
// mistake exits immediately.
func (s *Session) Context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active {
		return s.runCtx
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// Logout drops the session and clears the token.
func (s *Session) Logout() {
	s.mu.Lock()
	was := s.username
	s.username = ""
	s.active = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.tokens.SetToken("")
	if was != "" {
		s.log.Info("logged out %s", was)
	}
}

// Active reports whether a login has succeeded and not been dropped.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Username returns the logged-in user, or "" when logged out.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Require returns ErrNotAuthenticated when no session is active. Call sites
// gate order submission and status updates with it.
func (s *Session) Require() error {
	if !s.Active() {
		return domain.ErrNotAuthenticated
	}
	return nil
}
