package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

const firebaseDefaultTimeout = 15 * time.Second

// tokenSkew renews the ID token slightly before its actual expiry.
const tokenSkew = 30 * time.Second

// FirebaseOptions configures the Firebase Auth REST adapter.
type FirebaseOptions struct {
	APIKey     string
	BaseURL    string // identitytoolkit endpoint, no trailing slash
	TokenURL   string // securetoken endpoint, no trailing slash
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// FirebaseProvider implements Provider against the Firebase Auth REST API.
type FirebaseProvider struct {
	apiKey   string
	baseURL  string
	tokenURL string
	client   *http.Client
	logger   zerolog.Logger

	mu           sync.Mutex
	current      *domain.SessionUser
	idToken      string
	refreshToken string
	listeners    map[int]func(*domain.SessionUser)
	nextListener int
}

// NewFirebaseProvider validates the options and returns a ready adapter.
func NewFirebaseProvider(opts FirebaseOptions) (*FirebaseProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("auth: firebase api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	tokenURL := strings.TrimRight(opts.TokenURL, "/")
	if tokenURL == "" {
		tokenURL = "https://securetoken.googleapis.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: firebaseDefaultTimeout}
	}
	return &FirebaseProvider{
		apiKey:    strings.TrimSpace(opts.APIKey),
		baseURL:   baseURL,
		tokenURL:  tokenURL,
		client:    client,
		logger:    opts.Logger,
		listeners: make(map[int]func(*domain.SessionUser)),
	}, nil
}

type firebaseAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var out firebaseAuthResponse
	if err := p.post(ctx, "accounts:signInWithPassword", payload, &out); err != nil {
		return nil, err
	}
	user := &domain.SessionUser{
		ID:        out.LocalID,
		Name:      coalesce(out.DisplayName, "User"),
		Email:     out.Email,
		AvatarURL: out.PhotoURL,
	}
	p.setSession(user, out.IDToken, out.RefreshToken)
	return user.Clone(), nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, name, email, password string) (*domain.SessionUser, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var created firebaseAuthResponse
	if err := p.post(ctx, "accounts:signUp", payload, &created); err != nil {
		return nil, err
	}
	// New accounts carry no display name; set it in a follow-up update.
	update := map[string]any{
		"idToken":           created.IDToken,
		"displayName":       name,
		"returnSecureToken": true,
	}
	var updated firebaseAuthResponse
	if err := p.post(ctx, "accounts:update", update, &updated); err != nil {
		p.logger.Warn().Err(err).Msg("firebase: set display name after signup failed")
	}
	user := &domain.SessionUser{
		ID:    created.LocalID,
		Name:  name,
		Email: created.Email,
	}
	p.setSession(user, created.IDToken, created.RefreshToken)
	return user.Clone(), nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	// Firebase sessions are stateless on the client: dropping the tokens is
	// the sign-out.
	_ = ctx
	p.setSession(nil, "", "")
	return nil
}

func (p *FirebaseProvider) UpdateProfile(ctx context.Context, updates ProfileUpdate) (*domain.SessionUser, error) {
	token, err := p.IDToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	payload := map[string]any{
		"idToken":           token,
		"returnSecureToken": true,
	}
	if updates.Name != nil {
		payload["displayName"] = *updates.Name
	}
	if updates.AvatarURL != nil {
		payload["photoUrl"] = *updates.AvatarURL
	}
	var out firebaseAuthResponse
	if err := p.post(ctx, "accounts:update", payload, &out); err != nil {
		return nil, err
	}

	p.mu.Lock()
	user := p.current.Clone()
	if user == nil {
		p.mu.Unlock()
		return nil, domain.ErrNotAuthenticated
	}
	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.AvatarURL != nil {
		user.AvatarURL = *updates.AvatarURL
	}
	p.current = user
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	notify(listeners, user.Clone())
	return user.Clone(), nil
}

func (p *FirebaseProvider) CurrentUser() *domain.SessionUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

func (p *FirebaseProvider) IDToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	token := p.idToken
	refresh := p.refreshToken
	p.mu.Unlock()

	if token == "" {
		return "", nil
	}
	if !tokenExpired(token) {
		return token, nil
	}
	if refresh == "" {
		return "", domain.ErrNotAuthenticated
	}
	return p.refreshIDToken(ctx, refresh)
}

func (p *FirebaseProvider) OnChange(fn func(*domain.SessionUser)) func() {
	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *FirebaseProvider) refreshIDToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	endpoint := fmt.Sprintf("%s/token?key=%s", p.tokenURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("auth: build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: refresh token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return "", p.decodeError(resp)
	}
	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("auth: decode refresh response: %w", err)
	}

	p.mu.Lock()
	p.idToken = out.IDToken
	if out.RefreshToken != "" {
		p.refreshToken = out.RefreshToken
	}
	p.mu.Unlock()
	return out.IDToken, nil
}

func (p *FirebaseProvider) post(ctx context.Context, action string, payload, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("auth: encode %s request: %w", action, err)
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", p.baseURL, action, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("auth: build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: %s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return p.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("auth: decode %s response: %w", action, err)
	}
	return nil
}

// decodeError translates the provider's error codes into the human-readable
// messages surfaced to users; unknown codes are passed through as-is.
func (p *FirebaseProvider) decodeError(resp *http.Response) error {
	var body firebaseErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
		return &domain.APIError{Status: resp.StatusCode}
	}
	code := body.Error.Message
	if i := strings.IndexByte(code, ':'); i > 0 {
		code = strings.TrimSpace(code[:i])
	}
	switch {
	case code == "EMAIL_NOT_FOUND":
		return errors.New("no account found for that email")
	case code == "INVALID_PASSWORD", code == "INVALID_LOGIN_CREDENTIALS":
		return errors.New("incorrect email or password")
	case code == "EMAIL_EXISTS":
		return errors.New("an account already exists for that email")
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return errors.New("password should be at least 6 characters")
	case code == "TOO_MANY_ATTEMPTS_TRY_LATER":
		return errors.New("too many attempts, please try again later")
	}
	return errors.New(body.Error.Message)
}

func (p *FirebaseProvider) setSession(user *domain.SessionUser, idToken, refreshToken string) {
	p.mu.Lock()
	p.current = user
	p.idToken = idToken
	p.refreshToken = refreshToken
	listeners := p.snapshotListeners()
	p.mu.Unlock()
	notify(listeners, user.Clone())
}

// snapshotListeners must be called with the mutex held.
func (p *FirebaseProvider) snapshotListeners() []func(*domain.SessionUser) {
	out := make([]func(*domain.SessionUser), 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(*domain.SessionUser), user *domain.SessionUser) {
	for _, fn := range listeners {
		fn(user.Clone())
	}
}

// tokenExpired reports whether the JWT's exp claim is past (or near past).
// The claims are not verified here; verification is the backend's job.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) < tokenSkew
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Provider = (*FirebaseProvider)(nil)
