package mutation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restchat/internal/cache"
	"restchat/internal/domain"
	"restchat/internal/errs"
	"restchat/internal/permission"
	"restchat/internal/services/mutation"
	"restchat/internal/services/query"
	"restchat/internal/session"
	"restchat/internal/store"
)

var (
	alice = domain.User{ID: 1, Username: "alice"}
	bob   = domain.User{ID: 2, Username: "bob"}
)

// fakeAPI is an in-memory chat service. Tokens are user names prefixed with
// "tok-"; unimplemented contract methods panic via the embedded interface.
type fakeAPI struct {
	domain.ChatAPI

	mu        sync.Mutex
	chats     map[int]domain.Chat
	members   map[int][]domain.User
	messages  map[int][]domain.Message
	users     []domain.User
	nextID    int
	listCalls map[string]int // resource → fetch count

	failRename error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		chats:     make(map[int]domain.Chat),
		members:   make(map[int][]domain.User),
		messages:  make(map[int][]domain.Message),
		users:     []domain.User{alice, bob},
		nextID:    100,
		listCalls: make(map[string]int),
	}
}

func (f *fakeAPI) caller(token string) domain.User {
	for _, u := range f.users {
		if token == "tok-"+u.Username {
			return u
		}
	}
	return domain.User{}
}

func (f *fakeAPI) Chats(_ context.Context, token string) (domain.ChatList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["chats"]++
	out := domain.ChatList{}
	for _, c := range f.chats {
		out.Chats = append(out.Chats, c)
	}
	out.Meta.Count = len(out.Chats)
	return out, nil
}

func (f *fakeAPI) Chat(_ context.Context, token string, chatID int, includeUsers bool) (domain.ChatDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["chat"]++
	c, ok := f.chats[chatID]
	if !ok {
		return domain.ChatDetail{}, errs.ErrNotFound
	}
	detail := domain.ChatDetail{Chat: c}
	if includeUsers {
		detail.Users = append([]domain.User(nil), f.members[chatID]...)
	}
	return detail, nil
}

func (f *fakeAPI) CreateChat(_ context.Context, token, name string) (domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := domain.Chat{ID: f.nextID, Name: name, Owner: f.caller(token), CreatedAt: time.Now()}
	f.chats[c.ID] = c
	f.members[c.ID] = []domain.User{c.Owner}
	return c, nil
}

func (f *fakeAPI) RenameChat(_ context.Context, token string, chatID int, name string) (domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRename != nil {
		return domain.Chat{}, f.failRename
	}
	c := f.chats[chatID]
	c.Name = name
	f.chats[chatID] = c
	return c, nil
}

func (f *fakeAPI) Messages(_ context.Context, token string, chatID int) (domain.MessageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["messages"]++
	msgs := append([]domain.Message(nil), f.messages[chatID]...)
	return domain.MessageList{Meta: domain.Meta{Count: len(msgs)}, Messages: msgs}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, token string, chatID int, text string) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := domain.Message{ID: f.nextID, ChatID: chatID, User: f.caller(token), Text: text, CreatedAt: time.Now()}
	f.messages[chatID] = append(f.messages[chatID], m)
	return m, nil
}

func (f *fakeAPI) EditMessage(_ context.Context, token string, chatID, messageID int, text string) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.messages[chatID] {
		if m.ID == messageID {
			f.messages[chatID][i].Text = text
			return f.messages[chatID][i], nil
		}
	}
	return domain.Message{}, errs.ErrNotFound
}

func (f *fakeAPI) DeleteMessage(_ context.Context, token string, chatID, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[chatID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.messages[chatID] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeAPI) AddMember(_ context.Context, token string, chatID, userID int) (domain.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			f.members[chatID] = append(f.members[chatID], u)
		}
	}
	out := append([]domain.User(nil), f.members[chatID]...)
	return domain.UserList{Meta: domain.Meta{Count: len(out)}, Users: out}, nil
}

func (f *fakeAPI) RemoveMember(_ context.Context, token string, chatID, userID int) (domain.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.members[chatID][:0]
	for _, u := range f.members[chatID] {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	f.members[chatID] = kept
	out := append([]domain.User(nil), kept...)
	return domain.UserList{Meta: domain.Meta{Count: len(out)}, Users: out}, nil
}

func (f *fakeAPI) Users(_ context.Context, token string) (domain.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["users"]++
	out := append([]domain.User(nil), f.users...)
	return domain.UserList{Meta: domain.Meta{Count: len(out)}, Users: out}, nil
}

func (f *fakeAPI) Register(_ context.Context, username, email, password string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return domain.User{}, &errs.DuplicateFieldError{Field: "username"}
		}
	}
	f.nextID++
	u := domain.User{ID: f.nextID, Username: username, Email: email, CreatedAt: time.Now()}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeAPI) setFailRename(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRename = err
}

func (f *fakeAPI) calls(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[resource]
}

type harness struct {
	api       *fakeAPI
	cache     *cache.Cache
	queries   *query.Service
	mutations *mutation.Service
}

func newHarness(t *testing.T, loginAs domain.User) *harness {
	t.Helper()
	sess, err := session.New(store.NewTokenFileStore(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, sess.Login("tok-"+loginAs.Username))

	api := newFakeAPI()
	c := cache.New(nil)
	return &harness{
		api:       api,
		cache:     c,
		queries:   query.New(api, c, sess),
		mutations: mutation.New(api, c, sess),
	}
}

func awaitReady(t *testing.T, sub *cache.Subscription) cache.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.Updates():
			if snap.Status == cache.StatusReady {
				return snap
			}
			if snap.Status == cache.StatusError {
				t.Fatalf("entry %s errored: %v", sub.Key(), snap.Err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", sub.Key())
		}
	}
}

func TestCreateChat_RefreshesChatList(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	sub := h.queries.Chats(ctx)
	defer sub.Close()
	require.Empty(t, awaitReady(t, sub).Value.(domain.ChatList).Chats)

	chat, err := h.mutations.CreateChat(ctx, "Team")
	require.NoError(t, err)
	require.Equal(t, "Team", chat.Name)
	require.Equal(t, alice, chat.Owner)

	list := awaitReady(t, sub).Value.(domain.ChatList)
	require.Equal(t, 1, list.Meta.Count)
	assert.Equal(t, "Team", list.Chats[0].Name)
}

func TestSendMessage_RefreshesMessageList(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	chat, err := h.mutations.CreateChat(ctx, "general")
	require.NoError(t, err)

	sub := h.queries.Messages(ctx, chat.ID)
	defer sub.Close()
	require.Empty(t, awaitReady(t, sub).Value.(domain.MessageList).Messages)

	_, err = h.mutations.SendMessage(ctx, chat.ID, "hi")
	require.NoError(t, err)

	list := awaitReady(t, sub).Value.(domain.MessageList)
	require.Len(t, list.Messages, 1)
	msg := list.Messages[0]
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, alice.ID, msg.User.ID)

	// The author may edit it; anyone else may not.
	assert.True(t, permission.CanEditMessage(alice, msg))
	assert.False(t, permission.CanEditMessage(bob, msg))
}

func TestEditAndDeleteMessage_RefreshMessageList(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	chat, err := h.mutations.CreateChat(ctx, "general")
	require.NoError(t, err)
	msg, err := h.mutations.SendMessage(ctx, chat.ID, "draft")
	require.NoError(t, err)

	sub := h.queries.Messages(ctx, chat.ID)
	defer sub.Close()
	awaitReady(t, sub)

	_, err = h.mutations.EditMessage(ctx, chat.ID, msg.ID, "final")
	require.NoError(t, err)
	list := awaitReady(t, sub).Value.(domain.MessageList)
	require.Equal(t, "final", list.Messages[0].Text)

	require.NoError(t, h.mutations.DeleteMessage(ctx, chat.ID, msg.ID))
	list = awaitReady(t, sub).Value.(domain.MessageList)
	require.Empty(t, list.Messages)
}

func TestRenameChat_RefreshesDetailFamily(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	chat, err := h.mutations.CreateChat(ctx, "old")
	require.NoError(t, err)

	detail := h.queries.Chat(ctx, chat.ID)
	defer detail.Close()
	withMembers := h.queries.ChatWithMembers(ctx, chat.ID)
	defer withMembers.Close()
	require.Equal(t, "old", awaitReady(t, detail).Value.(domain.ChatDetail).Chat.Name)
	require.Equal(t, "old", awaitReady(t, withMembers).Value.(domain.ChatDetail).Chat.Name)

	_, err = h.mutations.RenameChat(ctx, chat.ID, "new")
	require.NoError(t, err)

	require.Equal(t, "new", awaitReady(t, detail).Value.(domain.ChatDetail).Chat.Name)
	require.Equal(t, "new", awaitReady(t, withMembers).Value.(domain.ChatDetail).Chat.Name)
}

func TestRejectedMutation_LeavesCacheUntouched(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()

	chat, err := h.mutations.CreateChat(ctx, "old")
	require.NoError(t, err)

	sub := h.queries.Chat(ctx, chat.ID)
	defer sub.Close()
	awaitReady(t, sub)
	fetches := h.api.calls("chat")

	h.api.setFailRename(errs.ErrForbidden)
	_, err = h.mutations.RenameChat(ctx, chat.ID, "new")
	require.ErrorIs(t, err, errs.ErrForbidden)

	// No invalidation, no refetch; the cached detail still holds.
	require.Equal(t, fetches, h.api.calls("chat"))
	latest := h.queries.Chat(ctx, chat.ID)
	defer latest.Close()
	require.Equal(t, "old", awaitReady(t, latest).Value.(domain.ChatDetail).Chat.Name)
}

func TestMembership_RefreshesChatMembers(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	chat, err := h.mutations.CreateChat(ctx, "team")
	require.NoError(t, err)

	sub := h.queries.ChatWithMembers(ctx, chat.ID)
	defer sub.Close()
	require.Len(t, awaitReady(t, sub).Value.(domain.ChatDetail).Users, 1)

	_, err = h.mutations.AddMember(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, awaitReady(t, sub).Value.(domain.ChatDetail).Users, 2)

	_, err = h.mutations.RemoveMember(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, awaitReady(t, sub).Value.(domain.ChatDetail).Users, 1)
}

func TestRegisterUser_RefreshesUserList(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	sub := h.queries.Users(ctx)
	defer sub.Close()
	require.Equal(t, 2, awaitReady(t, sub).Value.(domain.UserList).Meta.Count)

	_, err := h.mutations.RegisterUser(ctx, "carol", "carol@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, 3, awaitReady(t, sub).Value.(domain.UserList).Meta.Count)

	_, err = h.mutations.RegisterUser(ctx, "carol", "other@example.com", "pw")
	var dup *errs.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
}
