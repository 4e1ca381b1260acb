// Package screens holds the per-screen state and behavior. Each screen
// depends on the narrow slice of the service layer it actually uses, so
// tests can substitute small fakes.
package screens

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

const guestGreeting = "Hello! I'm your AI health assistant. How can I help you today?"

const chatErrorToast = "Failed to get response. Please try again."

const chatFallbackReply = "I'm sorry, I couldn't process that right now. Please try again."

// GuestQuickActions are the canned prompts offered before the first message.
var GuestQuickActions = []string{
	"I have a medical question regarding symptoms I'm feeling.",
	"I'm feeling overwhelmed and need someone to talk to.",
}

// GuestSender is the slice of the chat service the guest screen needs.
type GuestSender interface {
	SendGuestMessage(ctx context.Context, message string) (string, error)
}

// GuestChat is the unauthenticated chat screen. The transcript always starts
// with the assistant's greeting.
type GuestChat struct {
	chat   GuestSender
	toasts *toast.Notifier
	logger zerolog.Logger

	mu       sync.Mutex
	messages []domain.ChatMessage
	sending  bool
	inFlight string
	lastTS   time.Time
}

// NewGuestChat seeds the transcript with the greeting.
func NewGuestChat(chat GuestSender, toasts *toast.Notifier, logger zerolog.Logger) *GuestChat {
	g := &GuestChat{chat: chat, toasts: toasts, logger: logger}
	g.appendMessage(domain.SenderAssistant, guestGreeting)
	return g
}

// Send appends the user's message, asks the assistant for a reply and
// appends it. When the backend fails the transcript still gets a fallback
// assistant message so the conversation never dangles, and an error toast is
// raised. Replies to superseded sends are dropped.
func (g *GuestChat) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	g.mu.Lock()
	g.appendMessageLocked(domain.SenderUser, text)
	id := uuid.NewString()
	g.inFlight = id
	g.sending = true
	g.mu.Unlock()

	reply, err := g.chat.SendGuestMessage(ctx, text)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight != id {
		// A newer send took over while this one was on the wire.
		return
	}
	g.inFlight = ""
	g.sending = false
	if err != nil {
		g.logger.Error().Err(err).Msg("guest chat: send failed")
		g.appendMessageLocked(domain.SenderAssistant, chatFallbackReply)
		g.toasts.Error(chatErrorToast)
		return
	}
	g.appendMessageLocked(domain.SenderAssistant, reply)
}

// Sending reports whether a reply is pending.
func (g *GuestChat) Sending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sending
}

// Messages returns a copy of the transcript.
func (g *GuestChat) Messages() []domain.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.ChatMessage, len(g.messages))
	copy(out, g.messages)
	return out
}

// Reset clears the transcript back to the greeting.
func (g *GuestChat) Reset() {
	g.mu.Lock()
	g.messages = nil
	g.inFlight = ""
	g.sending = false
	g.mu.Unlock()
	g.appendMessage(domain.SenderAssistant, guestGreeting)
}

func (g *GuestChat) appendMessage(sender domain.Sender, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.appendMessageLocked(sender, text)
}

// appendMessageLocked must be called with the mutex held. Timestamps are
// strictly increasing even when messages land within the clock's resolution.
func (g *GuestChat) appendMessageLocked(sender domain.Sender, text string) {
	ts := time.Now()
	if !ts.After(g.lastTS) {
		ts = g.lastTS.Add(time.Millisecond)
	}
	g.lastTS = ts
	g.messages = append(g.messages, domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
	})
}
