// Package identity resolves the current authenticated principal.
//
// The resolved record is cached under a key derived from the active token,
// so changing tokens re-keys the identity instead of mutating it. Session
// changes invalidate every identity entry synchronously, which keeps a
// logged-out client from ever observing a stale principal.
package identity

import (
	"context"

	"github.com/pkg/errors"

	"restchat/internal/cache"
	"restchat/internal/domain"
	"restchat/internal/errs"
)

// Service implements the identity resolver over the cache and session.
type Service struct {
	api     domain.ChatAPI
	cache   *cache.Cache
	session domain.Session
}

// New constructs the resolver and hooks it into session change
// notifications.
func New(api domain.ChatAPI, c *cache.Cache, session domain.Session) *Service {
	s := &Service{api: api, cache: c, session: session}
	session.OnChange(s.invalidate)
	return s
}

// Current subscribes to the identity of the active session. It reports
// false when no session is active; callers must not fall back to a
// previously observed identity in that case. Snapshots carry domain.Identity.
func (s *Service) Current(ctx context.Context) (*cache.Subscription, bool) {
	token, ok := s.session.CurrentToken()
	if !ok {
		return nil, false
	}
	return s.cache.Read(ctx, domain.IdentityKey(token), s.fetch(token)), true
}

// fetch builds the fetcher for the entry keyed by token. The credential is
// re-checked against the session at fetch time: once the session has moved
// off that token, a refetch fails instead of resolving the old principal
// with a credential the client no longer holds.
func (s *Service) fetch(token string) cache.Fetcher {
	return func(ctx context.Context) (any, error) {
		current, ok := s.session.CurrentToken()
		if !ok || current != token {
			return nil, errors.WithMessage(errs.ErrUnauthorized, "session ended")
		}
		return s.api.Me(ctx, current)
	}
}

// invalidate drops every cached identity. Runs synchronously inside login
// and logout.
func (s *Service) invalidate() {
	s.cache.InvalidateMatch(func(key domain.ResourceKey) bool {
		return key.Resource == domain.ResourceIdentity
	})
}
