package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/infrastructure/memory"
	"github.com/go-autoresign/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGameStore struct{ mock.Mock }

func (m *mockGameStore) FindNotificationCandidates(ctx context.Context, q domain.NotificationQuery) ([]domain.Game, error) {
	args := m.Called(ctx, q)
	games, _ := args.Get(0).([]domain.Game)
	return games, args.Error(1)
}

func (m *mockGameStore) FindResolutionCandidates(ctx context.Context, q domain.ResolutionQuery) ([]domain.Game, error) {
	args := m.Called(ctx, q)
	games, _ := args.Get(0).([]domain.Game)
	return games, args.Error(1)
}

func (m *mockGameStore) MarkNotified(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	args := m.Called(ctx, ids, at)
	claimed, _ := args.Get(0).([]string)
	return claimed, args.Error(1)
}

// --- helpers ---

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var defaultParams = Params{NotifyThresholdHours: 48, ResolveDelayHours: 24, MinHistoryLength: 4}

func newSvc(t *testing.T, games gameStore) Service {
	svc, err := NewService(ServiceDeps{Games: games, Clock: &clock.Fixed{T: now}, Params: defaultParams})
	require.NoError(t, err)
	return svc
}

func gameWithHistory(id string, moves int, lastMove time.Time) domain.Game {
	h := make([]domain.Move, moves)
	for i := range h {
		h[i] = domain.Move{FEN: "startpos", PlayedAt: lastMove}
	}
	return domain.Game{GameID: id, History: h, LastMoveAt: &lastMove}
}

// --- tests ---

func TestNewService_RejectsNegativeParams(t *testing.T) {
	_, err := NewService(ServiceDeps{Games: &mockGameStore{}, Params: Params{MinHistoryLength: -1}})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.ErrorContains(t, err, "minHistoryLength")
}

func TestClaim_BuildsQueryFromClock(t *testing.T) {
	store := &mockGameStore{}
	store.On("FindNotificationCandidates", mock.Anything, domain.NotificationQuery{
		LastMoveBefore: now.Add(-48 * time.Hour),
		MinHistory:     4,
	}).Return([]domain.Game(nil), nil)

	games, err := newSvc(t, store).ClaimNotificationCandidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
	store.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaim_StampsAllCandidatesInOneBatch(t *testing.T) {
	store := &mockGameStore{}
	g1 := gameWithHistory("g1", 5, now.Add(-50*time.Hour))
	g2 := gameWithHistory("g2", 6, now.Add(-60*time.Hour))
	store.On("FindNotificationCandidates", mock.Anything, mock.Anything).Return([]domain.Game{g1, g2}, nil)
	store.On("MarkNotified", mock.Anything, []string{"g1", "g2"}, now).Return([]string{"g1", "g2"}, nil).Once()

	games, err := newSvc(t, store).ClaimNotificationCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, now, *games[0].AutoResignNotificationAt)
	store.AssertExpectations(t)
}

func TestClaim_PartialClaimReturnsOnlyClaimed(t *testing.T) {
	store := &mockGameStore{}
	g1 := gameWithHistory("g1", 5, now.Add(-50*time.Hour))
	g2 := gameWithHistory("g2", 5, now.Add(-50*time.Hour))
	store.On("FindNotificationCandidates", mock.Anything, mock.Anything).Return([]domain.Game{g1, g2}, nil)
	store.On("MarkNotified", mock.Anything, mock.Anything, mock.Anything).Return([]string{"g2"}, errors.New("claim game g1: throttled"))

	games, err := newSvc(t, store).ClaimNotificationCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g2", games[0].GameID)
}

func TestClaim_QueryFailureAbortsPhase(t *testing.T) {
	store := &mockGameStore{}
	store.On("FindNotificationCandidates", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := newSvc(t, store).ClaimNotificationCandidates(context.Background())
	assert.ErrorContains(t, err, "find notification candidates: timeout")
}

func TestResolutionCandidates_BuildsQueryFromClock(t *testing.T) {
	store := &mockGameStore{}
	store.On("FindResolutionCandidates", mock.Anything, domain.ResolutionQuery{NotifiedBefore: now.Add(-24 * time.Hour)}).
		Return([]domain.Game{{GameID: "g1"}}, nil)

	games, err := newSvc(t, store).ResolutionCandidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestResolutionCandidates_QueryFailure(t *testing.T) {
	store := &mockGameStore{}
	store.On("FindResolutionCandidates", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	_, err := newSvc(t, store).ResolutionCandidates(context.Background())
	assert.ErrorContains(t, err, "find resolution candidates")
}

// A 5-move game idle for 50h with a 48h threshold is claimed once; running
// the same query again in the same tick no longer returns it.
func TestClaim_ScenarioNoSelfRenotify(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.PutGame(ctx, gameWithHistory("g1", 5, now.Add(-50*time.Hour)))
	store.PutGame(ctx, gameWithHistory("short", 3, now.Add(-50*time.Hour)))
	store.PutGame(ctx, gameWithHistory("recent", 9, now.Add(-2*time.Hour)))

	svc := newSvc(t, store)
	games, err := svc.ClaimNotificationCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].GameID)

	again, err := svc.ClaimNotificationCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestResolutionCandidates_ScenarioAfterDelay(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	notified := now.Add(-25 * time.Hour)
	g := gameWithHistory("g1", 0, now.Add(-80*time.Hour))
	g.AutoResignNotificationAt = &notified
	store.PutGame(ctx, g)

	fresh := gameWithHistory("g2", 5, now.Add(-80*time.Hour))
	recent := now.Add(-time.Hour)
	fresh.AutoResignNotificationAt = &recent
	store.PutGame(ctx, fresh)

	games, err := newSvc(t, store).ResolutionCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].GameID)
}
