// Package router owns which screen the application is on. It is a small
// state machine: navigation is explicit, auth transitions are driven by the
// auth store's events, and the current screen survives restarts through the
// statestore.
package router

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/statestore"
)

// Screen identifies one of the application's top-level screens.
type Screen string

const (
	ScreenGuest             Screen = "guest"
	ScreenAuth              Screen = "auth"
	ScreenHospitalLocator   Screen = "hospital-locator"
	ScreenHospitalSearch    Screen = "hospital-search"
	ScreenDoctorReservation Screen = "doctor-reservation"
	ScreenHealthArticles    Screen = "health-articles"
	ScreenChat              Screen = "authenticated-chat"
)

var screens = map[Screen]bool{
	ScreenGuest:             true,
	ScreenAuth:              true,
	ScreenHospitalLocator:   true,
	ScreenHospitalSearch:    true,
	ScreenDoctorReservation: true,
	ScreenHealthArticles:    true,
	ScreenChat:              true,
}

// Valid reports whether s names a known screen.
func (s Screen) Valid() bool { return screens[s] }

// Protected reports whether s requires an authenticated user. Everything
// except the guest chat and the auth screen does.
func (s Screen) Protected() bool {
	return s.Valid() && s != ScreenGuest && s != ScreenAuth
}

// Options configures the router.
type Options struct {
	State  statestore.Store
	Logger zerolog.Logger
}

// Router tracks the current screen and persists it across restarts.
type Router struct {
	state  statestore.Store
	logger zerolog.Logger

	mu      sync.Mutex
	current Screen
	subs    map[int]func(Screen)
	nextSub int
}

// New restores the persisted screen, defaulting to the guest chat when
// nothing usable was stored.
func New(opts Options) *Router {
	r := &Router{
		state:   opts.State,
		logger:  opts.Logger,
		current: ScreenGuest,
		subs:    make(map[int]func(Screen)),
	}
	r.restore()
	return r
}

// Current returns the screen the router is on.
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate switches to the given screen and persists the choice. Unknown
// screens fall back to the guest chat rather than leaving the app stuck.
func (r *Router) Navigate(s Screen) {
	if !s.Valid() {
		r.logger.Warn().Str("screen", string(s)).Msg("router: unknown screen, falling back to guest")
		s = ScreenGuest
	}
	r.mu.Lock()
	if r.current == s {
		r.mu.Unlock()
		return
	}
	r.current = s
	r.persistLocked()
	subs := r.snapshotSubsLocked()
	r.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

// HandleAuthChange applies the auth-driven transitions. While the auth state
// is still loading nothing moves. A user landing on the auth screen who
// becomes authenticated is taken to the chat; this fires at most once per
// sign-in because the navigation itself leaves the auth screen. Losing the
// session on a protected screen returns to the guest chat.
func (r *Router) HandleAuthChange(authenticated, loading bool) {
	if loading {
		return
	}
	current := r.Current()
	switch {
	case authenticated && current == ScreenAuth:
		r.Navigate(ScreenChat)
	case !authenticated && current.Protected():
		r.Navigate(ScreenGuest)
	}
}

// Resolve is the rendering safety net: it returns the screen that should
// actually be shown given the auth state, without mutating the router. A
// protected screen reached while unauthenticated renders as the guest chat.
func (r *Router) Resolve(authenticated bool) Screen {
	current := r.Current()
	if current.Protected() && !authenticated {
		return ScreenGuest
	}
	return current
}

// OnChange subscribes to screen changes; the returned function unsubscribes.
func (r *Router) OnChange(fn func(Screen)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Router) restore() {
	raw, ok, err := r.state.Get(statestore.KeyCurrentScreen)
	if err != nil {
		r.logger.Warn().Err(err).Msg("router: read persisted screen failed")
		return
	}
	if !ok {
		return
	}
	s := Screen(raw)
	if !s.Valid() {
		r.logger.Warn().Str("screen", raw).Msg("router: persisted screen unknown, using guest")
		return
	}
	r.current = s
}

// persistLocked must be called with the mutex held.
func (r *Router) persistLocked() {
	if err := r.state.Set(statestore.KeyCurrentScreen, string(r.current)); err != nil {
		r.logger.Warn().Err(err).Msg("router: persist screen failed")
	}
}

// snapshotSubsLocked must be called with the mutex held.
func (r *Router) snapshotSubsLocked() []func(Screen) {
	out := make([]func(Screen), 0, len(r.subs))
	for _, fn := range r.subs {
		out = append(out, fn)
	}
	return out
}
