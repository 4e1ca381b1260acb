package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/statestore"
)

// DefaultLoadTimeout bounds how long the store waits for the provider's
// first auth-state notification before declaring loading finished.
const DefaultLoadTimeout = 3 * time.Second

// Event is emitted to subscribers whenever the session state changes.
type Event struct {
	User    *domain.SessionUser
	Loading bool
}

// Options configures the auth store.
type Options struct {
	Provider    Provider
	State       statestore.Store
	Logger      zerolog.Logger
	LoadTimeout time.Duration
}

// Store owns the Session User for the process. All operations follow the
// same shape: set loading, clear the previous error, delegate to the
// provider, replace the user and persist the snapshot on success, record a
// message and return the error on failure, and always clear loading.
type Store struct {
	provider Provider
	state    statestore.Store
	logger   zerolog.Logger
	validate *validator.Validate

	mu      sync.Mutex
	user    *domain.SessionUser
	loading bool
	lastErr string
	subs    map[int]func(Event)
	nextSub int

	unsubscribe func()
	loadTimer   *time.Timer
}

// NewStore restores the persisted user snapshot, subscribes to the
// provider's auth-state notifications and arms the loading safety timeout.
func NewStore(opts Options) *Store {
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	s := &Store{
		provider: opts.Provider,
		state:    opts.State,
		logger:   opts.Logger,
		validate: validator.New(),
		loading:  true,
		subs:     make(map[int]func(Event)),
	}
	s.restoreSnapshot()
	s.unsubscribe = s.provider.OnChange(func(user *domain.SessionUser) {
		s.mu.Lock()
		s.user = user
		s.loading = false
		s.persistSnapshotLocked()
		s.mu.Unlock()
		s.emit()
	})
	// The provider may never call back (e.g. unreachable network); do not
	// leave the app stuck on a spinner.
	s.loadTimer = time.AfterFunc(timeout, func() {
		s.mu.Lock()
		fire := s.loading
		s.loading = false
		s.mu.Unlock()
		if fire {
			s.logger.Warn().Msg("auth: loading timed out waiting for provider")
			s.emit()
		}
	})
	return s
}

// Close detaches from the provider and stops the safety timer.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.loadTimer != nil {
		s.loadTimer.Stop()
	}
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Login authenticates with the provider and installs the resulting user.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()
	defer s.finish()

	if err := s.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return s.fail("login", "Login failed: invalid email or password", err)
	}
	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return s.fail("login", errMessage(err, "Login failed"), err)
	}
	s.setUser(user)
	return nil
}

// Signup registers a new account and installs the resulting user.
func (s *Store) Signup(ctx context.Context, name, email, password string) error {
	s.begin()
	defer s.finish()

	if err := s.validate.Struct(signupInput{Name: name, Email: email, Password: password}); err != nil {
		return s.fail("signup", "Signup failed: all fields are required", err)
	}
	user, err := s.provider.SignUp(ctx, name, email, password)
	if err != nil {
		return s.fail("signup", errMessage(err, "Signup failed"), err)
	}
	s.setUser(user)
	return nil
}

// Logout signs out and clears the user and its persisted snapshot.
func (s *Store) Logout(ctx context.Context) error {
	s.begin()
	defer s.finish()

	if err := s.provider.SignOut(ctx); err != nil {
		return s.fail("logout", errMessage(err, "Logout failed"), err)
	}
	s.setUser(nil)
	return nil
}

// UpdateProfile applies partial profile fields through the provider.
func (s *Store) UpdateProfile(ctx context.Context, updates ProfileUpdate) error {
	s.begin()
	defer s.finish()

	user, err := s.provider.UpdateProfile(ctx, updates)
	if err != nil {
		return s.fail("update profile", errMessage(err, "Failed to update profile"), err)
	}
	s.setUser(user)
	return nil
}

// Subscribe marks the current user as subscribed to the given plan. Payment
// collection happens before this call; the subscription flag itself lives
// with the user record.
func (s *Store) Subscribe(ctx context.Context, plan domain.SubscriptionPlan) error {
	_ = ctx
	s.begin()
	defer s.finish()

	if !plan.Valid() {
		err := fmt.Errorf("auth: unknown plan %q", plan)
		return s.fail("subscribe", "Subscription failed", err)
	}
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		s.fail("subscribe", "You must be logged in to subscribe", domain.ErrNotAuthenticated)
		return domain.ErrNotAuthenticated
	}
	user := s.user.Clone()
	s.mu.Unlock()

	user.Subscribed = true
	user.Plan = plan
	user.SubscribedAt = time.Now()
	s.setUser(user)
	return nil
}

// ClearError resets the stored error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// User returns a copy of the current Session User, or nil.
func (s *Store) User() *domain.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether a Session User is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// IsSubscribed reports the current user's subscription flag.
func (s *Store) IsSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Subscribed
}

// Loading reports whether an operation or the initial provider sync is in
// flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last operation's error message, empty when none.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnEvent subscribes to auth-changed events; the returned function
// unsubscribes.
func (s *Store) OnEvent(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
	s.emit()
}

func (s *Store) finish() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.emit()
}

func (s *Store) fail(op, message string, err error) error {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
	s.logger.Error().Err(err).Str("op", op).Msg("auth: operation failed")
	return err
}

func (s *Store) setUser(user *domain.SessionUser) {
	s.mu.Lock()
	s.user = user
	s.persistSnapshotLocked()
	s.mu.Unlock()
	s.emit()
}

// persistSnapshotLocked mirrors the user into the statestore for reload
// continuity. Must be called with the mutex held.
func (s *Store) persistSnapshotLocked() {
	if s.user == nil {
		if err := s.state.Delete(statestore.KeyUser); err != nil {
			s.logger.Warn().Err(err).Msg("auth: clear user snapshot failed")
		}
		return
	}
	raw, err := json.Marshal(s.user)
	if err != nil {
		s.logger.Warn().Err(err).Msg("auth: encode user snapshot failed")
		return
	}
	if err := s.state.Set(statestore.KeyUser, string(raw)); err != nil {
		s.logger.Warn().Err(err).Msg("auth: persist user snapshot failed")
	}
}

func (s *Store) restoreSnapshot() {
	raw, ok, err := s.state.Get(statestore.KeyUser)
	if err != nil {
		s.logger.Warn().Err(err).Msg("auth: read user snapshot failed")
		return
	}
	if !ok {
		return
	}
	var user domain.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn().Err(err).Msg("auth: decode user snapshot failed")
		return
	}
	s.user = &user
}

func (s *Store) emit() {
	s.mu.Lock()
	ev := Event{User: s.user.Clone(), Loading: s.loading}
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
