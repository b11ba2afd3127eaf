// Package mutation executes write operations against the chat service and
// keeps the resource cache consistent afterwards.
//
// Every operation follows the same shape: issue the remote call, and only
// on success invalidate the cache keys its invalidation table names, which
// refetches them for any active subscriber. Failures surface to the caller
// unmodified and leave the cache untouched; nothing is applied
// optimistically, so cached state always reflects confirmed server state.
//
// Permission preconditions are the caller's job (see internal/permission);
// the service trusts the remote side as the final arbiter and simply
// surfaces its rejections.
package mutation

import (
	"context"

	"restchat/internal/cache"
	"restchat/internal/domain"
)

// Service coordinates mutations and their cache invalidations.
type Service struct {
	api     domain.ChatAPI
	cache   *cache.Cache
	session domain.Session
}

// New constructs a mutation Service.
func New(api domain.ChatAPI, c *cache.Cache, session domain.Session) *Service {
	return &Service{api: api, cache: c, session: session}
}

// CreateChat creates a chat owned by the current user.
// Invalidates: chat list.
func (s *Service) CreateChat(ctx context.Context, name string) (domain.Chat, error) {
	chat, err := s.api.CreateChat(ctx, s.token(), name)
	if err != nil {
		return domain.Chat{}, err
	}
	s.cache.Invalidate(domain.ChatListKey())
	return chat, nil
}

// RenameChat sets a chat's name.
// Invalidates: the chat's detail, with and without membership.
func (s *Service) RenameChat(ctx context.Context, chatID int, name string) (domain.Chat, error) {
	chat, err := s.api.RenameChat(ctx, s.token(), chatID, name)
	if err != nil {
		return domain.Chat{}, err
	}
	s.invalidateChatDetail(chatID)
	return chat, nil
}

// AddMember adds a user to a chat.
// Invalidates: the chat's detail with membership.
func (s *Service) AddMember(ctx context.Context, chatID, userID int) (domain.UserList, error) {
	members, err := s.api.AddMember(ctx, s.token(), chatID, userID)
	if err != nil {
		return domain.UserList{}, err
	}
	s.cache.Invalidate(domain.ChatMembersKey(chatID))
	return members, nil
}

// RemoveMember removes a user from a chat.
// Invalidates: the chat's detail with membership.
func (s *Service) RemoveMember(ctx context.Context, chatID, userID int) (domain.UserList, error) {
	members, err := s.api.RemoveMember(ctx, s.token(), chatID, userID)
	if err != nil {
		return domain.UserList{}, err
	}
	s.cache.Invalidate(domain.ChatMembersKey(chatID))
	return members, nil
}

// SendMessage posts a message to a chat.
// Invalidates: the chat's message list.
func (s *Service) SendMessage(ctx context.Context, chatID int, text string) (domain.Message, error) {
	msg, err := s.api.SendMessage(ctx, s.token(), chatID, text)
	if err != nil {
		return domain.Message{}, err
	}
	s.cache.Invalidate(domain.MessagesKey(chatID))
	return msg, nil
}

// EditMessage replaces a message's text.
// Invalidates: the chat's message list.
func (s *Service) EditMessage(ctx context.Context, chatID, messageID int, text string) (domain.Message, error) {
	msg, err := s.api.EditMessage(ctx, s.token(), chatID, messageID, text)
	if err != nil {
		return domain.Message{}, err
	}
	s.cache.Invalidate(domain.MessagesKey(chatID))
	return msg, nil
}

// DeleteMessage removes a message.
// Invalidates: the chat's message list.
func (s *Service) DeleteMessage(ctx context.Context, chatID, messageID int) error {
	if err := s.api.DeleteMessage(ctx, s.token(), chatID, messageID); err != nil {
		return err
	}
	s.cache.Invalidate(domain.MessagesKey(chatID))
	return nil
}

// RegisterUser creates an account. No session is required.
// Invalidates: the user collection.
func (s *Service) RegisterUser(ctx context.Context, username, email, password string) (domain.User, error) {
	user, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Invalidate(domain.UsersKey())
	return user, nil
}

// invalidateChatDetail invalidates the detail key family for one chat.
func (s *Service) invalidateChatDetail(chatID int) {
	plain := domain.ChatKey(chatID)
	withMembers := domain.ChatMembersKey(chatID)
	s.cache.InvalidateMatch(func(key domain.ResourceKey) bool {
		return key == plain || key == withMembers
	})
}

func (s *Service) token() string {
	token, _ := s.session.CurrentToken()
	return token
}
