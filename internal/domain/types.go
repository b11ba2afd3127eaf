package domain

import "time"

// User is a chat service principal. Email and CreatedAt are only populated
// on responses that include the full record (registration, /users/me).
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Identity is the resolved record of the currently authenticated user.
type Identity = User

// Chat is a named conversation. Owner is immutable after creation; only the
// owner may rename the chat or manage its membership.
type Chat struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Owner     User      `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// Message belongs to exactly one chat and is editable only by its author.
type Message struct {
	ID        int       `json:"id"`
	ChatID    int       `json:"chat_id"`
	User      User      `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Meta carries collection metadata returned alongside list responses.
type Meta struct {
	Count int `json:"count"`
}

// ChatList is the chat collection for the current user, sorted by name.
type ChatList struct {
	Meta  Meta   `json:"meta"`
	Chats []Chat `json:"chats"`
}

// MessageList is a chat's messages, sorted by creation time.
type MessageList struct {
	Meta     Meta      `json:"meta"`
	Messages []Message `json:"messages"`
}

// UserList is a collection of users, sorted by id.
type UserList struct {
	Meta  Meta   `json:"meta"`
	Users []User `json:"users"`
}

// ChatMeta summarises the size of a chat's contents on detail responses.
type ChatMeta struct {
	MessageCount int `json:"message_count"`
	UserCount    int `json:"user_count"`
}

// ChatDetail is a single chat with its content summary, optionally with its
// member list when the detail was requested with membership included.
type ChatDetail struct {
	Meta  ChatMeta `json:"meta"`
	Chat  Chat     `json:"chat"`
	Users []User   `json:"users,omitempty"`
}

// TokenRecord is the persisted session credential. ExpiresAt is zero when
// the token carries no readable expiry.
type TokenRecord struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}
