// Package auth holds the session state for the current user and the adapter
// to the external identity provider.
package auth

import (
	"context"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

// ProfileUpdate carries partial profile fields; nil pointers leave the
// corresponding field untouched.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
}

// Provider is the narrow capability set required from the identity provider.
// The real implementation adapts Firebase Auth; tests supply fakes.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*domain.SessionUser, error)
	SignUp(ctx context.Context, name, email, password string) (*domain.SessionUser, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, updates ProfileUpdate) (*domain.SessionUser, error)
	CurrentUser() *domain.SessionUser
	// IDToken returns a bearer token for the signed-in user, refreshing it
	// when expired. Empty string when no user is signed in.
	IDToken(ctx context.Context) (string, error)
	// OnChange registers a callback invoked whenever the provider's auth
	// state changes (including changes not initiated through this process).
	// The returned function unsubscribes.
	OnChange(fn func(user *domain.SessionUser)) (unsubscribe func())
}
