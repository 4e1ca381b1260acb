package domain

import "time"

// SubscriptionPlan enumerates the paid plans.
type SubscriptionPlan string

const (
	PlanStarter      SubscriptionPlan = "starter"
	PlanProfessional SubscriptionPlan = "professional"
	PlanPremium      SubscriptionPlan = "premium"
)

// Valid reports whether the plan is one of the known plan identifiers.
func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanPremium:
		return true
	}
	return false
}

// SessionUser is the authenticated identity and subscription state held for
// the current session. It is owned by the auth store; the JSON tags match the
// snapshot persisted for reload continuity. The snapshot is a cache only;
// the identity provider's live state wins on reconciliation.
type SessionUser struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	AvatarURL    string           `json:"photoURL,omitempty"`
	Subscribed   bool             `json:"subscribed"`
	Plan         SubscriptionPlan `json:"subscriptionPlan,omitempty"`
	SubscribedAt time.Time        `json:"subscriptionDate,omitempty"`
}

// Clone returns a copy so callers cannot mutate store-owned state.
func (u *SessionUser) Clone() *SessionUser {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}
