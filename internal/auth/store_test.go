package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/statestore"
)

type fakeProvider struct {
	signIn   func(ctx context.Context, email, password string) (*domain.SessionUser, error)
	signUp   func(ctx context.Context, name, email, password string) (*domain.SessionUser, error)
	signOut  func(ctx context.Context) error
	update   func(ctx context.Context, updates ProfileUpdate) (*domain.SessionUser, error)
	onChange func(fn func(*domain.SessionUser)) func()
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	if f.signIn != nil {
		return f.signIn(ctx, email, password)
	}
	return nil, errors.New("sign in not implemented")
}

func (f *fakeProvider) SignUp(ctx context.Context, name, email, password string) (*domain.SessionUser, error) {
	if f.signUp != nil {
		return f.signUp(ctx, name, email, password)
	}
	return nil, errors.New("sign up not implemented")
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	if f.signOut != nil {
		return f.signOut(ctx)
	}
	return nil
}

func (f *fakeProvider) UpdateProfile(ctx context.Context, updates ProfileUpdate) (*domain.SessionUser, error) {
	if f.update != nil {
		return f.update(ctx, updates)
	}
	return nil, errors.New("update not implemented")
}

func (f *fakeProvider) CurrentUser() *domain.SessionUser { return nil }

func (f *fakeProvider) IDToken(ctx context.Context) (string, error) { return "", nil }

func (f *fakeProvider) OnChange(fn func(*domain.SessionUser)) func() {
	if f.onChange != nil {
		return f.onChange(fn)
	}
	return func() {}
}

func newTestStore(t *testing.T, provider Provider) (*Store, *statestore.Memory) {
	t.Helper()
	state := statestore.NewMemory()
	store := NewStore(Options{
		Provider:    provider,
		State:       state,
		Logger:      zerolog.Nop(),
		LoadTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(store.Close)
	return store, state
}

func TestLoginSuccessInstallsAndPersistsUser(t *testing.T) {
	want := &domain.SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	store, state := newTestStore(t, &fakeProvider{
		signIn: func(ctx context.Context, email, password string) (*domain.SessionUser, error) {
			return want.Clone(), nil
		},
	})

	require.NoError(t, store.Login(context.Background(), "ada@example.com", "secret1"))
	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())

	raw, ok, err := state.Get(statestore.KeyUser)
	require.NoError(t, err)
	require.True(t, ok, "user snapshot should be persisted")
	var snap domain.SessionUser
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, "u1", snap.ID)
}

func TestLoginFailureRecordsErrorAndClearsLoading(t *testing.T) {
	store, _ := newTestStore(t, &fakeProvider{
		signIn: func(ctx context.Context, email, password string) (*domain.SessionUser, error) {
			return nil, errors.New("incorrect email or password")
		},
	})

	err := store.Login(context.Background(), "ada@example.com", "wrongpw")
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.NotEmpty(t, store.Err())
	assert.False(t, store.Loading(), "loading must always be cleared")
}

func TestLoginValidatesInputBeforeDelegating(t *testing.T) {
	called := false
	store, _ := newTestStore(t, &fakeProvider{
		signIn: func(ctx context.Context, email, password string) (*domain.SessionUser, error) {
			called = true
			return nil, nil
		},
	})

	err := store.Login(context.Background(), "not-an-email", "pw")
	require.Error(t, err)
	assert.False(t, called, "provider must not be called for invalid input")
	assert.NotEmpty(t, store.Err())
}

func TestLogoutClearsUserAndSnapshot(t *testing.T) {
	store, state := newTestStore(t, &fakeProvider{
		signIn: func(ctx context.Context, email, password string) (*domain.SessionUser, error) {
			return &domain.SessionUser{ID: "u1", Email: email}, nil
		},
	})
	require.NoError(t, store.Login(context.Background(), "ada@example.com", "secret1"))

	require.NoError(t, store.Logout(context.Background()))
	assert.False(t, store.IsAuthenticated())
	_, ok, _ := state.Get(statestore.KeyUser)
	assert.False(t, ok, "snapshot must be removed on logout")
}

func TestSubscribeRequiresUserAndReplacesWholesale(t *testing.T) {
	store, _ := newTestStore(t, &fakeProvider{
		signIn: func(ctx context.Context, email, password string) (*domain.SessionUser, error) {
			return &domain.SessionUser{ID: "u1", Email: email}, nil
		},
	})

	err := store.Subscribe(context.Background(), domain.PlanStarter)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	require.NoError(t, store.Login(context.Background(), "ada@example.com", "secret1"))
	require.NoError(t, store.Subscribe(context.Background(), domain.PlanProfessional))

	user := store.User()
	require.NotNil(t, user)
	assert.True(t, user.Subscribed)
	assert.Equal(t, domain.PlanProfessional, user.Plan)
	assert.False(t, user.SubscribedAt.IsZero())
	assert.True(t, store.IsSubscribed())
}

func TestProviderChangeNotificationUpdatesUser(t *testing.T) {
	var notify func(*domain.SessionUser)
	store, _ := newTestStore(t, &fakeProvider{
		onChange: func(fn func(*domain.SessionUser)) func() {
			notify = fn
			return func() {}
		},
	})
	require.NotNil(t, notify)

	// Session appearing out of band (another tab, restored session).
	notify(&domain.SessionUser{ID: "u9", Email: "x@example.com"})
	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.Loading())

	// Session expiring out of band.
	notify(nil)
	assert.False(t, store.IsAuthenticated())
}

func TestLoadingSafetyTimeoutFires(t *testing.T) {
	store, _ := newTestStore(t, &fakeProvider{})
	assert.True(t, store.Loading(), "store starts loading")

	deadline := time.Now().Add(time.Second)
	for store.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("loading was never forced off by the safety timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSnapshotRestoredOnStartup(t *testing.T) {
	state := statestore.NewMemory()
	raw, _ := json.Marshal(&domain.SessionUser{ID: "u1", Name: "Ada", Subscribed: true, Plan: domain.PlanStarter})
	require.NoError(t, state.Set(statestore.KeyUser, string(raw)))

	store := NewStore(Options{
		Provider:    &fakeProvider{},
		State:       state,
		Logger:      zerolog.Nop(),
		LoadTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(store.Close)

	user := store.User()
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, store.IsSubscribed())
}
