// Package chat talks to the AI chat backend: guest one-shot messages and the
// authenticated conversation API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

const defaultTimeout = 15 * time.Second

// TokenSource yields a bearer token for authenticated requests. Empty string
// means no user is signed in.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// Options configures the chat client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     zerolog.Logger
}

// Client is the HTTP client for the chat backend.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

// NewClient validates the options and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("chat: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		tokens:  opts.Tokens,
		logger:  opts.Logger,
	}, nil
}

// SendGuestMessage sends a single message without authentication and returns
// the assistant's reply text.
func (c *Client) SendGuestMessage(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/guest", map[string]any{"message": message}, &out, false)
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// SendMessage sends a message within a conversation and returns the reply.
// An empty conversationID asks the backend to start a new conversation; the
// id it chose comes back alongside the reply.
func (c *Client) SendMessage(ctx context.Context, message, conversationID string) (reply, convID string, err error) {
	payload := map[string]any{"message": message}
	if conversationID != "" {
		payload["conversationId"] = conversationID
	}
	var out struct {
		Reply          string `json:"reply"`
		ConversationID string `json:"conversationId"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat/send", payload, &out, true); err != nil {
		return "", "", err
	}
	return out.Reply, out.ConversationID, nil
}

// Conversations lists the signed-in user's conversations, newest first.
func (c *Client) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	var out struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// Conversation returns the message history of one conversation.
func (c *Client) Conversation(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("chat: conversation id is required")
	}
	var out struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	path := "/conversations/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// CreateConversation opens a new, empty conversation.
func (c *Client) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	var out domain.Conversation
	err := c.do(ctx, http.MethodPost, "/conversations", map[string]any{"title": title}, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation removes a conversation and its history.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("chat: conversation id is required")
	}
	return c.do(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any, authed bool) error {
	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return fmt.Errorf("chat: encode request: %w", err)
		}
	}
	req, err := newRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("chat: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.tokens.IDToken(ctx)
		if err != nil {
			return fmt.Errorf("chat: resolve token: %w", err)
		}
		if token == "" {
			return domain.ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("chat: decode response: %w", err)
	}
	return nil
}

func newRequest(ctx context.Context, method, endpoint string, body *bytes.Buffer) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	return http.NewRequestWithContext(ctx, method, endpoint, body)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
