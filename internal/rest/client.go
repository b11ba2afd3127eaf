package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"restchat/internal/domain"
	"restchat/internal/errs"
)

// Client talks to the chat service over HTTP.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New returns a Client for the service at base. A nil httpClient falls back
// to http.DefaultClient; a nil logger disables logging.
func New(base string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: strings.TrimRight(base, "/"), http: httpClient, log: log}
}

type accessToken struct {
	AccessToken string `json:"access_token"`
}

// Token performs the form-encoded credential exchange.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.base+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out accessToken
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Register creates a new account. No credential is required.
func (c *Client) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	in := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{username, email, password}

	var out struct {
		User domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/registration", "", in, &out)
	return out.User, err
}

// Me fetches the record of the authenticated user.
func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &out)
	return out.User, err
}

// Users fetches the global user collection.
func (c *Client) Users(ctx context.Context, token string) (domain.UserList, error) {
	var out domain.UserList
	err := c.do(ctx, http.MethodGet, "/users", token, nil, &out)
	return out, err
}

// Chats fetches the current user's chat collection.
func (c *Client) Chats(ctx context.Context, token string) (domain.ChatList, error) {
	var out domain.ChatList
	err := c.do(ctx, http.MethodGet, "/chats", token, nil, &out)
	return out, err
}

// Chat fetches one chat, optionally with its membership included.
func (c *Client) Chat(ctx context.Context, token string, chatID int, includeUsers bool) (domain.ChatDetail, error) {
	path := "/chats/" + strconv.Itoa(chatID)
	if includeUsers {
		path += "?include=users"
	}
	var out domain.ChatDetail
	err := c.do(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

type chatName struct {
	Name string `json:"name"`
}

// CreateChat creates a chat owned by the authenticated user.
func (c *Client) CreateChat(ctx context.Context, token, name string) (domain.Chat, error) {
	var out struct {
		Chat domain.Chat `json:"chat"`
	}
	err := c.do(ctx, http.MethodPost, "/chats", token, chatName{name}, &out)
	return out.Chat, err
}

// RenameChat sets a chat's name. Owner only; the server enforces this.
func (c *Client) RenameChat(ctx context.Context, token string, chatID int, name string) (domain.Chat, error) {
	var out struct {
		Chat domain.Chat `json:"chat"`
	}
	err := c.do(ctx, http.MethodPut, "/chats/"+strconv.Itoa(chatID), token, chatName{name}, &out)
	return out.Chat, err
}

// Messages fetches a chat's message list.
func (c *Client) Messages(ctx context.Context, token string, chatID int) (domain.MessageList, error) {
	var out domain.MessageList
	err := c.do(ctx, http.MethodGet, messagesPath(chatID), token, nil, &out)
	return out, err
}

type messageText struct {
	Text string `json:"text"`
}

// SendMessage posts a new message authored by the authenticated user.
func (c *Client) SendMessage(ctx context.Context, token string, chatID int, text string) (domain.Message, error) {
	var out struct {
		Message domain.Message `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, messagesPath(chatID), token, messageText{text}, &out)
	return out.Message, err
}

// EditMessage replaces a message's text. Author only; the server enforces this.
func (c *Client) EditMessage(ctx context.Context, token string, chatID, messageID int, text string) (domain.Message, error) {
	var out struct {
		Message domain.Message `json:"message"`
	}
	path := messagesPath(chatID) + "/" + strconv.Itoa(messageID)
	err := c.do(ctx, http.MethodPut, path, token, messageText{text}, &out)
	return out.Message, err
}

// DeleteMessage removes a message. Author only; the server enforces this.
func (c *Client) DeleteMessage(ctx context.Context, token string, chatID, messageID int) error {
	path := messagesPath(chatID) + "/" + strconv.Itoa(messageID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// AddMember adds a user to a chat and returns the updated membership.
func (c *Client) AddMember(ctx context.Context, token string, chatID, userID int) (domain.UserList, error) {
	var out domain.UserList
	err := c.do(ctx, http.MethodPut, memberPath(chatID, userID), token, nil, &out)
	return out, err
}

// RemoveMember removes a user from a chat and returns the updated membership.
func (c *Client) RemoveMember(ctx context.Context, token string, chatID, userID int) (domain.UserList, error) {
	var out domain.UserList
	err := c.do(ctx, http.MethodDelete, memberPath(chatID, userID), token, nil, &out)
	return out, err
}

func messagesPath(chatID int) string {
	return "/chats/" + strconv.Itoa(chatID) + "/messages"
}

func memberPath(chatID, userID int) string {
	return "/chats/" + strconv.Itoa(chatID) + "/users/" + strconv.Itoa(userID)
}

// do issues one JSON request. A non-empty token is attached as a bearer
// credential; in and out may be nil.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return err
		}
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, nil)
	}
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessagef(errs.ErrNetwork, "%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorDetail matches the service's error envelope: 401 responses carry
// detail.error_description, 422 responses carry detail.entity_field.
type errorDetail struct {
	Detail struct {
		ErrorDescription string `json:"error_description"`
		EntityField      string `json:"entity_field"`
	} `json:"detail"`
}

func decodeError(resp *http.Response) error {
	var detail errorDetail
	_ = json.NewDecoder(resp.Body).Decode(&detail)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if d := detail.Detail.ErrorDescription; d != "" {
			return errors.WithMessage(errs.ErrUnauthorized, d)
		}
		return errs.ErrUnauthorized
	case http.StatusForbidden:
		if d := detail.Detail.ErrorDescription; d != "" {
			return errors.WithMessage(errs.ErrForbidden, d)
		}
		return errs.ErrForbidden
	case http.StatusUnprocessableEntity:
		if f := detail.Detail.EntityField; f != "" {
			return &errs.DuplicateFieldError{Field: f}
		}
		if d := detail.Detail.ErrorDescription; d != "" {
			return errors.WithMessage(errs.ErrValidation, d)
		}
		return errs.ErrValidation
	case http.StatusNotFound:
		return errs.ErrNotFound
	default:
		return errors.WithMessage(errs.ErrUnknown, resp.Status)
	}
}

// Compile-time assertion that Client implements domain.ChatAPI.
var _ domain.ChatAPI = (*Client)(nil)
