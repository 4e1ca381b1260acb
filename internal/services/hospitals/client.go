// Package hospitals talks to the hospital directory backend.
package hospitals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Options configures the hospitals client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the HTTP client for the hospital directory.
type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient validates the options and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("hospitals: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, client: client, logger: opts.Logger}, nil
}

// Nearby returns hospitals around the given coordinates within radius
// kilometers.
func (c *Client) Nearby(ctx context.Context, lat, lng float64, radiusKM int) ([]domain.Hospital, error) {
	q := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng":    {strconv.FormatFloat(lng, 'f', -1, 64)},
		"radius": {strconv.Itoa(radiusKM)},
	}
	var out struct {
		Hospitals []domain.Hospital `json:"hospitals"`
	}
	if err := c.get(ctx, "/hospitals/nearby?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Hospitals, nil
}

// Search queries the directory by free text.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Hospital, error) {
	q := url.Values{"q": {query}}
	var out struct {
		Hospitals []domain.Hospital `json:"hospitals"`
	}
	if err := c.get(ctx, "/hospitals/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Hospitals, nil
}

// Details fetches a single hospital's full record.
func (c *Client) Details(ctx context.Context, id string) (*domain.Hospital, error) {
	if id == "" {
		return nil, fmt.Errorf("hospitals: id is required")
	}
	var out domain.Hospital
	if err := c.get(ctx, "/hospitals/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("hospitals: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hospitals: get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &domain.APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hospitals: decode response: %w", err)
	}
	return nil
}
