package screens

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galo61408022-ux/Aidoctalk/internal/auth"
	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

type fakeConversationChat struct {
	conversations []domain.Conversation
	histories     map[string][]domain.ChatMessage
	reply         string
	newConvID     string
	sendErr       error
	deleted       []string
}

func (f *fakeConversationChat) SendMessage(ctx context.Context, message, conversationID string) (string, string, error) {
	if f.sendErr != nil {
		return "", "", f.sendErr
	}
	convID := conversationID
	if convID == "" {
		convID = f.newConvID
	}
	return f.reply, convID, nil
}

func (f *fakeConversationChat) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	return f.conversations, nil
}

func (f *fakeConversationChat) Conversation(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	msgs, ok := f.histories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return msgs, nil
}

func (f *fakeConversationChat) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	return &domain.Conversation{ID: "new-conv", Title: title}, nil
}

func (f *fakeConversationChat) DeleteConversation(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProfile struct {
	lastUpdate auth.ProfileUpdate
	err        error
}

func (f *fakeProfile) UpdateProfile(ctx context.Context, updates auth.ProfileUpdate) error {
	f.lastUpdate = updates
	return f.err
}

func newMemberChat(chat ConversationChat) (*MemberChat, *toast.Notifier) {
	toasts := toast.NewNotifier()
	return NewMemberChat(chat, &fakeProfile{}, toasts, zerolog.Nop()), toasts
}

func TestMemberChatLoadOpensMostRecentConversation(t *testing.T) {
	chat := &fakeConversationChat{
		conversations: []domain.Conversation{{ID: "c2", Title: "Sleep"}, {ID: "c1", Title: "Headache"}},
		histories: map[string][]domain.ChatMessage{
			"c2": {{ID: "m1", Sender: domain.SenderUser, Text: "hi"}},
		},
	}
	m, _ := newMemberChat(chat)
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, "c2", m.ActiveConversation())
	assert.Len(t, m.Messages(), 1)
	assert.Len(t, m.Conversations(), 2)
}

func TestMemberChatFirstSendAdoptsBackendConversation(t *testing.T) {
	chat := &fakeConversationChat{reply: "Noted.", newConvID: "c-fresh"}
	m, _ := newMemberChat(chat)

	m.Send(context.Background(), "I feel dizzy")
	assert.Equal(t, "c-fresh", m.ActiveConversation())

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Noted.", msgs[1].Text)
}

func TestMemberChatSendFailureFallsBack(t *testing.T) {
	chat := &fakeConversationChat{sendErr: errors.New("upstream down")}
	m, toasts := newMemberChat(chat)

	m.Send(context.Background(), "hello")
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, memberFallbackReply, msgs[1].Text)
	require.Len(t, toasts.Active(), 1)
}

func TestMemberChatDeleteActiveClearsTranscript(t *testing.T) {
	chat := &fakeConversationChat{
		conversations: []domain.Conversation{{ID: "c1"}},
		histories:     map[string][]domain.ChatMessage{"c1": {{ID: "m1"}}},
	}
	m, _ := newMemberChat(chat)
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.Delete(context.Background(), "c1"))
	assert.Empty(t, m.ActiveConversation())
	assert.Empty(t, m.Messages())
	assert.Empty(t, m.Conversations())
	assert.Equal(t, []string{"c1"}, chat.deleted)
}

func TestMemberChatNewConversationGoesFirst(t *testing.T) {
	chat := &fakeConversationChat{conversations: []domain.Conversation{{ID: "c1"}}}
	m, _ := newMemberChat(chat)
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.NewConversation(context.Background(), "Checkup"))
	convs := m.Conversations()
	require.NotEmpty(t, convs)
	assert.Equal(t, "new-conv", convs[0].ID)
	assert.Equal(t, "new-conv", m.ActiveConversation())
	assert.Empty(t, m.Messages())
}

func TestMemberChatAttachTravelsAsMessage(t *testing.T) {
	chat := &fakeConversationChat{reply: "Got the file.", newConvID: "c1"}
	m, _ := newMemberChat(chat)
	m.Attach(context.Background(), "scan.pdf")

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "[Attached file: scan.pdf]", msgs[0].Text)
}

func TestMemberChatPlanCarouselWraps(t *testing.T) {
	m, _ := newMemberChat(&fakeConversationChat{})
	assert.Equal(t, domain.PlanStarter, m.CurrentPlan())
	assert.Equal(t, domain.PlanProfessional, m.NextPlan())
	assert.Equal(t, domain.PlanPremium, m.NextPlan())
	assert.Equal(t, domain.PlanStarter, m.NextPlan(), "carousel wraps forward")
	assert.Equal(t, domain.PlanPremium, m.PrevPlan(), "carousel wraps backward")
}

func TestMemberChatPrefsDefaultAndUpdate(t *testing.T) {
	m, _ := newMemberChat(&fakeConversationChat{})
	prefs := m.Prefs()
	assert.True(t, prefs.Email)
	assert.True(t, prefs.ChatReminders)
	assert.False(t, prefs.HealthTips)

	prefs.HealthTips = true
	m.SetPrefs(prefs)
	assert.True(t, m.Prefs().HealthTips)
}

func TestMemberChatUpdateAvatar(t *testing.T) {
	profile := &fakeProfile{}
	toasts := toast.NewNotifier()
	m := NewMemberChat(&fakeConversationChat{}, profile, toasts, zerolog.Nop())

	require.NoError(t, m.UpdateAvatar(context.Background(), "https://cdn.example.com/me.png"))
	require.NotNil(t, profile.lastUpdate.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/me.png", *profile.lastUpdate.AvatarURL)
	assert.Nil(t, profile.lastUpdate.Name)

	active := toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, toast.Success, active[0].Severity)
}
