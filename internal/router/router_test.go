package router

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galo61408022-ux/Aidoctalk/internal/statestore"
)

func newTestRouter(t *testing.T) (*Router, *statestore.Memory) {
	t.Helper()
	state := statestore.NewMemory()
	return New(Options{State: state, Logger: zerolog.Nop()}), state
}

func TestNavigatePersistsScreen(t *testing.T) {
	r, state := newTestRouter(t)
	assert.Equal(t, ScreenGuest, r.Current())

	r.Navigate(ScreenHealthArticles)
	assert.Equal(t, ScreenHealthArticles, r.Current())

	raw, ok, err := state.Get(statestore.KeyCurrentScreen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(ScreenHealthArticles), raw)

	// A fresh router over the same store resumes where the last one left off.
	again := New(Options{State: state, Logger: zerolog.Nop()})
	assert.Equal(t, ScreenHealthArticles, again.Current())
}

func TestNavigateUnknownScreenFallsBackToGuest(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenHospitalSearch)
	r.Navigate(Screen("billing"))
	assert.Equal(t, ScreenGuest, r.Current())
}

func TestRestoreIgnoresCorruptValue(t *testing.T) {
	state := statestore.NewMemory()
	require.NoError(t, state.Set(statestore.KeyCurrentScreen, "not-a-screen"))
	r := New(Options{State: state, Logger: zerolog.Nop()})
	assert.Equal(t, ScreenGuest, r.Current())
}

func TestAuthSuccessOnAuthScreenNavigatesToChatOnce(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenAuth)

	var changes []Screen
	r.OnChange(func(s Screen) { changes = append(changes, s) })

	r.HandleAuthChange(true, false)
	assert.Equal(t, ScreenChat, r.Current())

	// Repeated auth events must not renavigate: the first transition already
	// left the auth screen.
	r.HandleAuthChange(true, false)
	r.HandleAuthChange(true, false)
	assert.Equal(t, []Screen{ScreenChat}, changes)
}

func TestAuthChangeIgnoredWhileLoading(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenAuth)
	r.HandleAuthChange(true, true)
	assert.Equal(t, ScreenAuth, r.Current())
}

func TestSessionLossOnProtectedScreenReturnsToGuest(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenDoctorReservation)
	r.HandleAuthChange(false, false)
	assert.Equal(t, ScreenGuest, r.Current())
}

func TestSessionLossOnPublicScreenStaysPut(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenAuth)
	r.HandleAuthChange(false, false)
	assert.Equal(t, ScreenAuth, r.Current())
}

func TestResolveShieldsProtectedScreens(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Navigate(ScreenChat)

	assert.Equal(t, ScreenGuest, r.Resolve(false))
	assert.Equal(t, ScreenChat, r.Resolve(true))
	// Resolve never mutates the router itself.
	assert.Equal(t, ScreenChat, r.Current())
}

func TestProtectedClassification(t *testing.T) {
	assert.False(t, ScreenGuest.Protected())
	assert.False(t, ScreenAuth.Protected())
	for _, s := range []Screen{ScreenHospitalLocator, ScreenHospitalSearch, ScreenDoctorReservation, ScreenHealthArticles, ScreenChat} {
		assert.True(t, s.Protected(), string(s))
	}
	assert.False(t, Screen("nope").Protected())
}
