// Package payments drives the subscription checkout: the backend payment
// API plus the hosted payment window the user completes the charge in.
package payments

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

// TokenSource yields a bearer token for authenticated requests.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// InitRequest asks the backend to open a pending transaction. Amount is in
// kobo, the smallest currency unit.
type InitRequest struct {
	Plan     domain.SubscriptionPlan `json:"plan"`
	Amount   int64                   `json:"amount"`
	Email    string                  `json:"email"`
	Features []string                `json:"features"`
}

// InitResponse carries the reference the payment window and the verify call
// are keyed on.
type InitResponse struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	AccessURL string `json:"authorizationUrl"`
}

// Record is one settled or failed transaction in the payment history.
type Record struct {
	Reference string                  `json:"reference"`
	Plan      domain.SubscriptionPlan `json:"plan"`
	Amount    int64                   `json:"amount"`
	Status    string                  `json:"status"`
	PaidAt    time.Time               `json:"paidAt"`
}

// Options configures the payments client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     zerolog.Logger
}

// Client is the HTTP client for the payment backend.
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
		return nil, fmt.Errorf("payments: base url is required")
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

// InitializePayment opens a pending transaction for the given plan.
func (c *Client) InitializePayment(ctx context.Context, req InitRequest) (*InitResponse, error) {
	if !req.Plan.Valid() {
		return nil, fmt.Errorf("payments: unknown plan %q", req.Plan)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive")
	}
	var out InitResponse
	if err := c.do(ctx, http.MethodPost, "/payments/paystack/initialize", req, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		return nil, fmt.Errorf("payments: backend returned no reference")
	}
	return &out, nil
}

// VerifyPayment returns the transaction status for a reference, normally
// "success", "failed" or "abandoned".
func (c *Client) VerifyPayment(ctx context.Context, reference string) (string, error) {
	if reference == "" {
		return "", fmt.Errorf("payments: reference is required")
	}
	var out struct {
		Status string `json:"status"`
	}
	path := "/payments/paystack/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// History lists the signed-in user's past transactions, newest first.
func (c *Client) History(ctx context.Context) ([]Record, error) {
	var out struct {
		Payments []Record `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/payments/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return fmt.Errorf("payments: encode request: %w", err)
		}
	}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("payments: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.IDToken(ctx)
	if err != nil {
		return fmt.Errorf("payments: resolve token: %w", err)
	}
	if token == "" {
		return domain.ErrNotAuthenticated
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("payments: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &domain.APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payments: decode response: %w", err)
	}
	return nil
}
