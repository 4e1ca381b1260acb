package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/auth"
	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

const memberFallbackReply = "I understand your concern. Based on your history and current symptoms, I recommend keeping track of how you feel and booking a consultation if it persists."

// NotificationPrefs are the member's notification toggles.
type NotificationPrefs struct {
	Email         bool `json:"email"`
	ChatReminders bool `json:"chatReminders"`
	HealthTips    bool `json:"healthTips"`
}

// ConversationChat is the slice of the chat service the member screen needs.
type ConversationChat interface {
	SendMessage(ctx context.Context, message, conversationID string) (reply, convID string, err error)
	Conversations(ctx context.Context) ([]domain.Conversation, error)
	Conversation(ctx context.Context, id string) ([]domain.ChatMessage, error)
	CreateConversation(ctx context.Context, title string) (*domain.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

// ProfileUpdater is the slice of the auth store the member screen needs.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, updates auth.ProfileUpdate) error
}

// MemberChat is the authenticated chat screen: the transcript for the active
// conversation, the conversation sidebar, the plan carousel and the
// notification preferences panel.
type MemberChat struct {
	chat    ConversationChat
	profile ProfileUpdater
	toasts  *toast.Notifier
	logger  zerolog.Logger

	mu            sync.Mutex
	conversations []domain.Conversation
	activeConv    string
	messages      []domain.ChatMessage
	sending       bool
	inFlight      string
	lastTS        time.Time
	planIndex     int
	prefs         NotificationPrefs
}

// NewMemberChat returns the screen with default notification preferences.
func NewMemberChat(chat ConversationChat, profile ProfileUpdater, toasts *toast.Notifier, logger zerolog.Logger) *MemberChat {
	return &MemberChat{
		chat:    chat,
		profile: profile,
		toasts:  toasts,
		logger:  logger,
		prefs:   NotificationPrefs{Email: true, ChatReminders: true, HealthTips: false},
	}
}

// Load refreshes the conversation sidebar and opens the most recent
// conversation, or leaves the transcript empty when there is none.
func (m *MemberChat) Load(ctx context.Context) error {
	convs, err := m.chat.Conversations(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("member chat: load conversations failed")
		return err
	}
	m.mu.Lock()
	m.conversations = convs
	m.mu.Unlock()
	if len(convs) > 0 {
		return m.Open(ctx, convs[0].ID)
	}
	return nil
}

// Open switches the transcript to the given conversation.
func (m *MemberChat) Open(ctx context.Context, conversationID string) error {
	msgs, err := m.chat.Conversation(ctx, conversationID)
	if err != nil {
		m.logger.Error().Err(err).Str("conversation", conversationID).Msg("member chat: open conversation failed")
		return err
	}
	m.mu.Lock()
	m.activeConv = conversationID
	m.messages = msgs
	m.inFlight = ""
	m.sending = false
	for _, msg := range msgs {
		if msg.Timestamp.After(m.lastTS) {
			m.lastTS = msg.Timestamp
		}
	}
	m.mu.Unlock()
	return nil
}

// NewConversation creates and opens an empty conversation.
func (m *MemberChat) NewConversation(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		title = "New conversation"
	}
	conv, err := m.chat.CreateConversation(ctx, title)
	if err != nil {
		m.toasts.Error("Failed to create conversation.")
		return err
	}
	m.mu.Lock()
	m.conversations = append([]domain.Conversation{*conv}, m.conversations...)
	m.activeConv = conv.ID
	m.messages = nil
	m.mu.Unlock()
	return nil
}

// Delete removes a conversation. Deleting the active one clears the
// transcript.
func (m *MemberChat) Delete(ctx context.Context, conversationID string) error {
	if err := m.chat.DeleteConversation(ctx, conversationID); err != nil {
		m.toasts.Error("Failed to delete conversation.")
		return err
	}
	m.mu.Lock()
	for i, c := range m.conversations {
		if c.ID == conversationID {
			m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
			break
		}
	}
	if m.activeConv == conversationID {
		m.activeConv = ""
		m.messages = nil
	}
	m.mu.Unlock()
	return nil
}

// Send appends the user's message and the assistant's reply to the active
// conversation. The first send without an active conversation lets the
// backend create one. Replies to superseded sends are dropped.
func (m *MemberChat) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.mu.Lock()
	conv := m.activeConv
	m.appendMessageLocked(domain.SenderUser, text)
	id := uuid.NewString()
	m.inFlight = id
	m.sending = true
	m.mu.Unlock()

	reply, convID, err := m.chat.SendMessage(ctx, text, conv)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight != id {
		return
	}
	m.inFlight = ""
	m.sending = false
	if err != nil {
		m.logger.Error().Err(err).Msg("member chat: send failed")
		m.appendMessageLocked(domain.SenderAssistant, memberFallbackReply)
		m.toasts.Error(chatErrorToast)
		return
	}
	if convID != "" {
		m.activeConv = convID
	}
	m.appendMessageLocked(domain.SenderAssistant, reply)
}

// Attach records a file attachment as a message in the transcript. The file
// itself stays local; only its name travels in the message text.
func (m *MemberChat) Attach(ctx context.Context, filename string) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return
	}
	m.Send(ctx, fmt.Sprintf("[Attached file: %s]", filename))
}

// UpdateAvatar points the profile's avatar at a new URL.
func (m *MemberChat) UpdateAvatar(ctx context.Context, avatarURL string) error {
	if err := m.profile.UpdateProfile(ctx, auth.ProfileUpdate{AvatarURL: &avatarURL}); err != nil {
		m.toasts.Error("Failed to update profile photo.")
		return err
	}
	m.toasts.Success("Profile photo updated.")
	return nil
}

// Prefs returns the current notification preferences.
func (m *MemberChat) Prefs() NotificationPrefs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// SetPrefs replaces the notification preferences.
func (m *MemberChat) SetPrefs(p NotificationPrefs) {
	m.mu.Lock()
	m.prefs = p
	m.mu.Unlock()
}

// CurrentPlan returns the plan the carousel is showing.
func (m *MemberChat) CurrentPlan() domain.SubscriptionPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return planOrder[m.planIndex]
}

// NextPlan and PrevPlan move the plan carousel, wrapping at the ends.
func (m *MemberChat) NextPlan() domain.SubscriptionPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planIndex = (m.planIndex + 1) % len(planOrder)
	return planOrder[m.planIndex]
}

func (m *MemberChat) PrevPlan() domain.SubscriptionPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planIndex = (m.planIndex - 1 + len(planOrder)) % len(planOrder)
	return planOrder[m.planIndex]
}

// ActiveConversation returns the id of the open conversation, empty when
// none is open.
func (m *MemberChat) ActiveConversation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeConv
}

// Conversations returns a copy of the sidebar entries.
func (m *MemberChat) Conversations() []domain.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out
}

// Messages returns a copy of the active transcript.
func (m *MemberChat) Messages() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Sending reports whether a reply is pending.
func (m *MemberChat) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

var planOrder = []domain.SubscriptionPlan{
	domain.PlanStarter,
	domain.PlanProfessional,
	domain.PlanPremium,
}

// appendMessageLocked must be called with the mutex held.
func (m *MemberChat) appendMessageLocked(sender domain.Sender, text string) {
	ts := time.Now()
	if !ts.After(m.lastTS) {
		ts = m.lastTS.Add(time.Millisecond)
	}
	m.lastTS = ts
	m.messages = append(m.messages, domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
	})
}
