// Package query is the read side of the client: every resource read goes
// through the cache, keyed canonically, with the session token attached at
// fetch time.
package query

import (
	"context"

	"restchat/internal/cache"
	"restchat/internal/domain"
)

// Service exposes cached reads for each resource the client consumes.
type Service struct {
	api     domain.ChatAPI
	cache   *cache.Cache
	session domain.Session
}

// New constructs a query Service over the given transport, cache and session.
func New(api domain.ChatAPI, c *cache.Cache, session domain.Session) *Service {
	return &Service{api: api, cache: c, session: session}
}

// Chats subscribes to the current user's chat collection.
// Snapshots carry domain.ChatList.
func (s *Service) Chats(ctx context.Context) *cache.Subscription {
	return s.cache.Read(ctx, domain.ChatListKey(), func(ctx context.Context) (any, error) {
		return s.api.Chats(ctx, s.token())
	})
}

// Chat subscribes to one chat's detail. Snapshots carry domain.ChatDetail.
func (s *Service) Chat(ctx context.Context, chatID int) *cache.Subscription {
	return s.cache.Read(ctx, domain.ChatKey(chatID), func(ctx context.Context) (any, error) {
		return s.api.Chat(ctx, s.token(), chatID, false)
	})
}

// ChatWithMembers subscribes to one chat's detail including its membership.
// Snapshots carry domain.ChatDetail with Users populated.
func (s *Service) ChatWithMembers(ctx context.Context, chatID int) *cache.Subscription {
	return s.cache.Read(ctx, domain.ChatMembersKey(chatID), func(ctx context.Context) (any, error) {
		return s.api.Chat(ctx, s.token(), chatID, true)
	})
}

// Messages subscribes to a chat's message list.
// Snapshots carry domain.MessageList.
func (s *Service) Messages(ctx context.Context, chatID int) *cache.Subscription {
	return s.cache.Read(ctx, domain.MessagesKey(chatID), func(ctx context.Context) (any, error) {
		return s.api.Messages(ctx, s.token(), chatID)
	})
}

// Users subscribes to the global user collection.
// Snapshots carry domain.UserList.
func (s *Service) Users(ctx context.Context) *cache.Subscription {
	return s.cache.Read(ctx, domain.UsersKey(), func(ctx context.Context) (any, error) {
		return s.api.Users(ctx, s.token())
	})
}

// token reads the credential at fetch time, not subscription time, so a
// refetch after re-login uses the fresh token. An absent credential yields
// an empty bearer value and the server's 401 surfaces as the entry's error.
func (s *Service) token() string {
	token, _ := s.session.CurrentToken()
	return token
}
