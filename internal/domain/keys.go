package domain

import "strconv"

// ResourceKey identifies one cached read: resource type, optional identifier
// and optional query qualifier. Keys are comparable so identical reads
// collapse onto the same cache entry.
type ResourceKey struct {
	Resource  string
	ID        string
	Qualifier string
}

func (k ResourceKey) String() string {
	s := k.Resource
	if k.ID != "" {
		s += "/" + k.ID
	}
	if k.Qualifier != "" {
		s += "?" + k.Qualifier
	}
	return s
}

// Resource names used in cache keys.
const (
	ResourceChatList = "chats"
	ResourceChat     = "chat"
	ResourceMessages = "messages"
	ResourceUsers    = "users"
	ResourceIdentity = "identity"
)

const qualifierMembers = "include=users"

// ChatListKey keys the current user's chat collection.
func ChatListKey() ResourceKey { return ResourceKey{Resource: ResourceChatList} }

// ChatKey keys a single chat's detail.
func ChatKey(chatID int) ResourceKey {
	return ResourceKey{Resource: ResourceChat, ID: strconv.Itoa(chatID)}
}

// ChatMembersKey keys a chat's detail with its membership included.
func ChatMembersKey(chatID int) ResourceKey {
	return ResourceKey{Resource: ResourceChat, ID: strconv.Itoa(chatID), Qualifier: qualifierMembers}
}

// MessagesKey keys a chat's message list.
func MessagesKey(chatID int) ResourceKey {
	return ResourceKey{Resource: ResourceMessages, ID: strconv.Itoa(chatID)}
}

// UsersKey keys the global user collection.
func UsersKey() ResourceKey { return ResourceKey{Resource: ResourceUsers} }

// IdentityKey keys the resolved identity for a given session token. A token
// change therefore re-keys the identity; the old entry is simply left behind.
func IdentityKey(token string) ResourceKey {
	return ResourceKey{Resource: ResourceIdentity, ID: token}
}
