package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockPlayerStore struct{ mock.Mock }

func (m *mockPlayerStore) GetMany(ctx context.Context, ids []string) ([]domain.Player, error) {
	args := m.Called(ctx, ids)
	players, _ := args.Get(0).([]domain.Player)
	return players, args.Error(1)
}

type mockRules struct{ mock.Mock }

func (m *mockRules) TurnToMove(history []string) (domain.Side, error) {
	args := m.Called(history)
	return args.Get(0).(domain.Side), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type panicMailer struct{}

func (panicMailer) Send(context.Context, domain.EmailMessage) error { panic("connection reset") }

// --- helpers ---

func newTranslations(t *testing.T) *i18n.Provider {
	p, err := i18n.NewProvider("en")
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func twoOnWhite() domain.Game {
	return domain.Game{
		GameID:       "g1",
		WhitePlayers: []string{"alice", "bob"},
		BlackPlayers: []string{"carol"},
		History:      []domain.Move{{FEN: "startpos"}},
	}
}

// --- tests ---

func TestNotifyGame_SendsToSideToMoveOnly(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	mailer := &mockMailer{}
	rules.On("TurnToMove", []string{"startpos"}).Return(domain.SideWhite, nil)
	players.On("GetMany", mock.Anything, []string{"alice", "bob"}).Return([]domain.Player{
		{PlayerID: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		{PlayerID: "bob", DisplayName: "Bob", Email: "bob@example.com", Locale: strPtr("fr-CA")},
	}, nil)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: mailer, Translations: newTranslations(t), GameURLBase: "https://chess.test/g/"})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.SendDelivered, r.Status)
	}
	mailer.AssertNumberOfCalls(t, "Send", 2)

	first := mailer.Calls[0].Arguments.Get(1).(domain.EmailMessage)
	assert.Equal(t, "alice@example.com", first.To)
	assert.Contains(t, first.Subject, "g1")
	assert.Contains(t, first.Body, "Hi Alice")
	assert.Contains(t, first.Body, "24 hours")
	assert.Contains(t, first.Body, "https://chess.test/g/g1")

	second := mailer.Calls[1].Arguments.Get(1).(domain.EmailMessage)
	assert.Contains(t, second.Body, "Bonjour Bob")
}

func TestNotifyGame_OptedOutPlayerIsSkippedSilently(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	mailer := &mockMailer{}
	rules.On("TurnToMove", mock.Anything).Return(domain.SideWhite, nil)
	players.On("GetMany", mock.Anything, mock.Anything).Return([]domain.Player{
		{PlayerID: "alice", Email: "alice@example.com", Unsubscribed: true},
		{PlayerID: "bob", Email: "bob@example.com"},
	}, nil)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m domain.EmailMessage) bool { return m.To == "bob@example.com" })).Return(nil)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: mailer, Translations: newTranslations(t)})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 2)
	assert.Equal(t, domain.SendSkipped, results[0].Status)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, domain.SendDelivered, results[1].Status)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifyGame_SendFailureDoesNotStopBatch(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	mailer := &mockMailer{}
	rules.On("TurnToMove", mock.Anything).Return(domain.SideWhite, nil)
	players.On("GetMany", mock.Anything, mock.Anything).Return([]domain.Player{
		{PlayerID: "alice", Email: "alice@example.com"},
		{PlayerID: "bob", Email: "bob@example.com"},
	}, nil)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m domain.EmailMessage) bool { return m.To == "alice@example.com" })).
		Return(errors.New("550 mailbox unavailable"))
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m domain.EmailMessage) bool { return m.To == "bob@example.com" })).
		Return(nil)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: mailer, Translations: newTranslations(t)})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 2)
	assert.Equal(t, domain.SendFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "550")
	assert.Equal(t, domain.SendDelivered, results[1].Status)
}

func TestNotifyGame_PanickingChannelIsContained(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	rules.On("TurnToMove", mock.Anything).Return(domain.SideWhite, nil)
	players.On("GetMany", mock.Anything, mock.Anything).Return([]domain.Player{
		{PlayerID: "alice", Email: "alice@example.com"},
		{PlayerID: "bob", Email: "bob@example.com"},
	}, nil)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: panicMailer{}, Translations: newTranslations(t)})
	var results []domain.SendResult
	require.NotPanics(t, func() { results = svc.NotifyGame(context.Background(), twoOnWhite(), 24) })

	require.Len(t, results, 2)
	assert.Equal(t, domain.SendFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "connection reset")
}

func TestNotifyGame_MissingPlayerRecordFails(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	mailer := &mockMailer{}
	rules.On("TurnToMove", mock.Anything).Return(domain.SideBlack, nil)
	players.On("GetMany", mock.Anything, []string{"carol"}).Return([]domain.Player(nil), nil)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: mailer, Translations: newTranslations(t)})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 1)
	assert.Equal(t, "carol", results[0].PlayerID)
	assert.Equal(t, domain.SendFailed, results[0].Status)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifyGame_UnreadablePosition(t *testing.T) {
	rules := &mockRules{}
	players := &mockPlayerStore{}
	rules.On("TurnToMove", mock.Anything).Return(domain.Side(""), domain.ErrInvalidPosition)

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: &mockMailer{}, Translations: newTranslations(t)})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 1)
	assert.Equal(t, domain.SendFailed, results[0].Status)
	players.AssertNotCalled(t, "GetMany", mock.Anything, mock.Anything)
}

func TestNotifyGame_PlayerLookupFailureFailsEveryRecipient(t *testing.T) {
	players := &mockPlayerStore{}
	rules := &mockRules{}
	rules.On("TurnToMove", mock.Anything).Return(domain.SideWhite, nil)
	players.On("GetMany", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	svc := NewService(ServiceDeps{Players: players, Rules: rules, Mailer: &mockMailer{}, Translations: newTranslations(t)})
	results := svc.NotifyGame(context.Background(), twoOnWhite(), 24)

	require.Len(t, results, 2)
	assert.Equal(t, domain.SendFailed, results[0].Status)
	assert.Equal(t, "throttled", results[1].Error)
}
