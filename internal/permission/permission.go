// Package permission derives capability flags from an identity and a
// resource's ownership fields. Pure functions, no I/O.
//
// These checks gate which mutations a presentation layer offers; they are
// advisory only. The remote service independently rejects unauthorized
// mutations, so a bug here can degrade UX but never security.
package permission

import "restchat/internal/domain"

// CanEditMessage reports whether identity may edit or delete m: only the
// message's author may. False for an absent identity.
func CanEditMessage(identity domain.Identity, m domain.Message) bool {
	return identity.ID != 0 && identity.ID == m.User.ID
}

// CanManageChat reports whether identity may rename chat or manage its
// membership: only the chat's owner may. False for an absent identity.
func CanManageChat(identity domain.Identity, chat domain.Chat) bool {
	return identity.ID != 0 && identity.ID == chat.Owner.ID
}

// CanRemoveMember reports whether identity may remove member from chat.
// Owner only, and the owner themself can never be removed.
func CanRemoveMember(identity domain.Identity, chat domain.Chat, member domain.User) bool {
	return CanManageChat(identity, chat) && member.ID != chat.Owner.ID
}
