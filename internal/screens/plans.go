package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/payments"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

// Plan is one subscription tier as shown on the plans screen. Price is in
// naira; the payment API takes kobo.
type Plan struct {
	ID       domain.SubscriptionPlan
	Name     string
	Price    int64
	Features []string
}

// PlanCatalog lists the purchasable tiers in display order.
var PlanCatalog = []Plan{
	{
		ID:    domain.PlanStarter,
		Name:  "Starter",
		Price: 2500,
		Features: []string{
			"10 AI consultations per month",
			"Basic symptom checker",
			"Health articles access",
			"Email support",
			"Chat history for 30 days",
			"Hospital directory",
		},
	},
	{
		ID:    domain.PlanProfessional,
		Name:  "Professional",
		Price: 5000,
		Features: []string{
			"Unlimited AI consultations",
			"Advanced symptom checker",
			"Priority support",
			"Chat history forever",
			"Doctor reservations",
			"Nearby hospital locator",
		},
	},
	{
		ID:    domain.PlanPremium,
		Name:  "Premium",
		Price: 10000,
		Features: []string{
			"Everything in Professional",
			"Family accounts up to 5",
			"Dedicated care advisor",
			"Specialist referrals",
			"Annual health report",
			"24/7 phone support",
		},
	},
}

// Subscriber is the slice of the auth store the plans screen needs.
type Subscriber interface {
	User() *domain.SessionUser
	IsSubscribed() bool
	Subscribe(ctx context.Context, plan domain.SubscriptionPlan) error
}

// CheckoutRunner runs one payment flow end to end.
type CheckoutRunner interface {
	Run(ctx context.Context, req payments.InitRequest) error
}

// Plans is the subscription screen: the tier catalog plus the purchase flow.
type Plans struct {
	account  Subscriber
	checkout CheckoutRunner
	toasts   *toast.Notifier
	logger   zerolog.Logger
}

// NewPlans wires the subscription screen.
func NewPlans(account Subscriber, checkout CheckoutRunner, toasts *toast.Notifier, logger zerolog.Logger) *Plans {
	return &Plans{account: account, checkout: checkout, toasts: toasts, logger: logger}
}

// Catalog returns the purchasable tiers.
func (p *Plans) Catalog() []Plan {
	out := make([]Plan, len(PlanCatalog))
	copy(out, PlanCatalog)
	return out
}

// Find returns the catalog entry for a plan id.
func (p *Plans) Find(id domain.SubscriptionPlan) (Plan, bool) {
	for _, plan := range PlanCatalog {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Subscribe runs the paid upgrade: collect payment through the checkout,
// then flip the account's subscription. It refuses to run for signed-out or
// already subscribed users.
func (p *Plans) Subscribe(ctx context.Context, id domain.SubscriptionPlan) error {
	user := p.account.User()
	if user == nil {
		p.toasts.Error("Please log in to subscribe.")
		return domain.ErrNotAuthenticated
	}
	if p.account.IsSubscribed() {
		p.toasts.Info("You already have an active subscription.")
		return domain.ErrAlreadySubscribed
	}
	plan, ok := p.Find(id)
	if !ok {
		return fmt.Errorf("plans: unknown plan %q", id)
	}

	err := p.checkout.Run(ctx, payments.InitRequest{
		Plan:     plan.ID,
		Amount:   plan.Price * 100, // naira to kobo
		Email:    user.Email,
		Features: featureSlugs(plan.Features),
	})
	if err != nil {
		p.logger.Error().Err(err).Str("plan", string(id)).Msg("plans: checkout failed")
		if errors.Is(err, domain.ErrPopupClosed) {
			p.toasts.Info("Payment window closed. You have not been charged.")
		} else {
			p.toasts.Error("Payment failed. Please try again.")
		}
		return err
	}

	if err := p.account.Subscribe(ctx, plan.ID); err != nil {
		p.logger.Error().Err(err).Str("plan", string(id)).Msg("plans: activate subscription failed")
		p.toasts.Error("Payment received but activation failed. Contact support.")
		return err
	}
	p.toasts.Success(fmt.Sprintf("Welcome to the %s plan!", plan.Name))
	return nil
}

// featureSlugs normalizes feature labels into the identifiers the payment
// backend records against the transaction.
func featureSlugs(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		slug := strings.ToLower(f)
		slug = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r == ' ':
				return '_'
			}
			return -1
		}, slug)
		out = append(out, slug)
	}
	return out
}
