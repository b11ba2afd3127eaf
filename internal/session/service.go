// Package session owns the bearer credential lifecycle.
//
// A Service holds the active token in memory, mirrors it to a durable
// store so the session survives restarts, and notifies registered change
// listeners synchronously on every login and logout. It never contacts the
// remote service.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"restchat/internal/domain"
)

// Service implements domain.Session over a durable token store.
type Service struct {
	store domain.TokenStore

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	listeners []func()
}

// New constructs a Service, restoring any persisted credential. A persisted
// token that has already expired is discarded.
func New(store domain.TokenStore) (*Service, error) {
	s := &Service{store: store}
	rec, ok, err := store.LoadToken()
	if err != nil {
		return nil, errors.WithMessage(err, "restore session")
	}
	if ok && !expired(rec.ExpiresAt) {
		s.token = rec.AccessToken
		s.expiresAt = rec.ExpiresAt
	}
	return s, nil
}

// Login stores an already-issued bearer token. The credential exchange
// itself happens elsewhere; this call only records its result, so it is
// immediate and involves no network round-trip.
func (s *Service) Login(token string) error {
	exp := tokenExpiry(token)

	s.mu.Lock()
	s.token = token
	s.expiresAt = exp
	s.mu.Unlock()

	if err := s.store.SaveToken(domain.TokenRecord{AccessToken: token, ExpiresAt: exp}); err != nil {
		return errors.WithMessage(err, "persist token")
	}
	s.notify()
	return nil
}

// Logout clears the in-memory token and the durable store. It does not
// contact the remote service.
func (s *Service) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if err := s.store.ClearToken(); err != nil {
		return errors.WithMessage(err, "clear persisted token")
	}
	s.notify()
	return nil
}

// CurrentToken reports the active credential. A token past its recorded
// expiry is treated as absent.
func (s *Service) CurrentToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || expired(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

// LoggedIn reports whether a usable credential is present.
func (s *Service) LoggedIn() bool {
	_, ok := s.CurrentToken()
	return ok
}

// ExpiresAt reports the recorded token expiry, if the token carried one.
func (s *Service) ExpiresAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return s.expiresAt, true
}

// OnChange registers fn to run synchronously after every login and logout.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}

// tokenExpiry recovers the exp claim from a JWT access token without
// verifying its signature; verification is the server's job. Opaque tokens
// yield a zero expiry and never self-expire.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Compile-time assertion that Service implements domain.Session.
var _ domain.Session = (*Service)(nil)
