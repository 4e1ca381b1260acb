package payments

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

// DefaultCheckoutTimeout bounds how long a checkout waits for the user to
// finish (or abandon) the payment window.
const DefaultCheckoutTimeout = 5 * time.Minute

// PopupOptions describes the payment window to open.
type PopupOptions struct {
	Reference string
	Amount    int64
	Email     string
	PublicKey string
	AccessURL string
}

// PopupResult reports how the payment window ended.
type PopupResult struct {
	Reference string
	Completed bool
}

// Popup opens the hosted payment window and blocks until the user completes
// it, closes it, or ctx ends. Implementations must honor ctx cancellation:
// an abandoned window must never hang the checkout.
type Popup interface {
	Open(ctx context.Context, opts PopupOptions) (*PopupResult, error)
}

// CheckoutOptions configures the checkout service.
type CheckoutOptions struct {
	Client    *Client
	Popup     Popup
	PublicKey string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// CheckoutService runs the full subscription payment flow: initialize,
// collect through the popup, verify.
type CheckoutService struct {
	client    *Client
	popup     Popup
	publicKey string
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewCheckoutService wires the checkout flow together.
func NewCheckoutService(opts CheckoutOptions) (*CheckoutService, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("payments: client is required")
	}
	if opts.Popup == nil {
		return nil, fmt.Errorf("payments: popup is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	return &CheckoutService{
		client:    opts.Client,
		popup:     opts.Popup,
		publicKey: opts.PublicKey,
		timeout:   timeout,
		logger:    opts.Logger,
	}, nil
}

// Run executes one checkout. It returns nil only when the backend verified
// the transaction as successful. A closed popup surfaces
// domain.ErrPopupClosed; a popup that outlives the timeout is cancelled
// through its context.
func (s *CheckoutService) Run(ctx context.Context, req InitRequest) error {
	init, err := s.client.InitializePayment(ctx, req)
	if err != nil {
		return fmt.Errorf("payments: initialize: %w", err)
	}
	s.logger.Info().Str("reference", init.Reference).Msg("payments: transaction initialized")

	popupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.popup.Open(popupCtx, PopupOptions{
		Reference: init.Reference,
		Amount:    init.Amount,
		Email:     req.Email,
		PublicKey: s.publicKey,
		AccessURL: init.AccessURL,
	})
	if err != nil {
		return fmt.Errorf("payments: payment window: %w", err)
	}
	if !result.Completed {
		return domain.ErrPopupClosed
	}

	status, err := s.client.VerifyPayment(ctx, init.Reference)
	if err != nil {
		return fmt.Errorf("payments: verify: %w", err)
	}
	if status != "success" {
		return fmt.Errorf("payments: transaction %s ended with status %q", init.Reference, status)
	}
	return nil
}

// HostedPopup is the terminal stand-in for the hosted payment page: it
// prints the payment URL and waits for the user to confirm or dismiss it on
// stdin. Reading happens on its own goroutine so ctx cancellation always
// wins.
type HostedPopup struct {
	In  io.Reader
	Out io.Writer
}

func (p *HostedPopup) Open(ctx context.Context, opts PopupOptions) (*PopupResult, error) {
	fmt.Fprintf(p.Out, "Complete your payment of %d kobo at:\n  %s\n", opts.Amount, opts.AccessURL)
	fmt.Fprintf(p.Out, "Press ENTER once paid, or type 'cancel' to close the window: ")

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(p.In)
		if scanner.Scan() {
			lines <- scanner.Text()
			return
		}
		lines <- "cancel"
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line := <-lines:
		if strings.EqualFold(strings.TrimSpace(line), "cancel") {
			return &PopupResult{Reference: opts.Reference, Completed: false}, nil
		}
		return &PopupResult{Reference: opts.Reference, Completed: true}, nil
	}
}

var _ Popup = (*HostedPopup)(nil)
