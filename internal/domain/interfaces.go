package domain

import (
	"context"
	"time"
)

// TokenStore persists the session credential across process restarts.
type TokenStore interface {
	SaveToken(rec TokenRecord) error
	LoadToken() (TokenRecord, bool, error)
	ClearToken() error
}

// Session owns the bearer credential lifecycle. Login and Logout update
// dependents synchronously through registered change listeners.
type Session interface {
	Login(token string) error
	Logout() error

	// CurrentToken reports the active credential; an expired persisted
	// token reads back as absent.
	CurrentToken() (string, bool)
	LoggedIn() bool
	ExpiresAt() (time.Time, bool)

	// OnChange registers fn to run synchronously after every login or
	// logout. Listeners cannot be deregistered; register process-lifetime
	// dependents only.
	OnChange(fn func())
}

// ChatAPI is how we talk to the remote chat service. All authenticated
// calls attach token as a bearer credential.
type ChatAPI interface {
	// Token performs the form-encoded credential exchange and returns a
	// bearer token on success.
	Token(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (User, error)

	Me(ctx context.Context, token string) (User, error)
	Users(ctx context.Context, token string) (UserList, error)

	Chats(ctx context.Context, token string) (ChatList, error)
	Chat(ctx context.Context, token string, chatID int, includeUsers bool) (ChatDetail, error)
	CreateChat(ctx context.Context, token, name string) (Chat, error)
	RenameChat(ctx context.Context, token string, chatID int, name string) (Chat, error)

	Messages(ctx context.Context, token string, chatID int) (MessageList, error)
	SendMessage(ctx context.Context, token string, chatID int, text string) (Message, error)
	EditMessage(ctx context.Context, token string, chatID, messageID int, text string) (Message, error)
	DeleteMessage(ctx context.Context, token string, chatID, messageID int) error

	AddMember(ctx context.Context, token string, chatID, userID int) (UserList, error)
	RemoveMember(ctx context.Context, token string, chatID, userID int) (UserList, error)
}
