package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/pkg/clock"
	"github.com/go-autoresign/internal/pkg/validate"
)

type gameStore interface {
	FindNotificationCandidates(ctx context.Context, q domain.NotificationQuery) ([]domain.Game, error)
	FindResolutionCandidates(ctx context.Context, q domain.ResolutionQuery) ([]domain.Game, error)
	MarkNotified(ctx context.Context, ids []string, at time.Time) ([]string, error)
}

// Params are the thresholds of the two timeout phases.
type Params struct {
	NotifyThresholdHours int
	ResolveDelayHours    int
	MinHistoryLength     int
}

func (p Params) validate() error {
	for name, v := range map[string]int{
		"notifyThresholdHours": p.NotifyThresholdHours,
		"resolveDelayHours":    p.ResolveDelayHours,
		"minHistoryLength":     p.MinHistoryLength,
	} {
		if err := validate.Var(name, v, "gte=0"); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
		}
	}
	return nil
}

type Service interface {
	ClaimNotificationCandidates(ctx context.Context) ([]domain.Game, error)
	ResolutionCandidates(ctx context.Context) ([]domain.Game, error)
}

type service struct {
	games  gameStore
	clock  clock.Clock
	params Params
	log    *slog.Logger
}

type ServiceDeps struct {
	Games  gameStore
	Clock  clock.Clock
	Params Params
	Logger *slog.Logger
}

func NewService(deps ServiceDeps) (Service, error) {
	if err := deps.Params.validate(); err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &service{games: deps.Games, clock: deps.Clock, params: deps.Params, log: deps.Logger}, nil
}

// ClaimNotificationCandidates selects stalled games and stamps their
// notification date before any reminder is sent, so a later tick cannot pick
// them again even if sending is slow or fails. Only claimed games are returned.
func (s *service) ClaimNotificationCandidates(ctx context.Context) ([]domain.Game, error) {
	now := s.clock.Now()
	q := domain.NotificationQuery{
		LastMoveBefore: now.Add(-hours(s.params.NotifyThresholdHours)),
		MinHistory:     s.params.MinHistoryLength,
	}
	candidates, err := s.games.FindNotificationCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find notification candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, g := range candidates {
		ids = append(ids, g.GameID)
	}
	claimed, err := s.games.MarkNotified(ctx, ids, now)
	if err != nil {
		s.log.Warn("some games could not be claimed", "requested", len(ids), "claimed", len(claimed), "err", err)
	}

	claimedSet := make(map[string]struct{}, len(claimed))
	for _, id := range claimed {
		claimedSet[id] = struct{}{}
	}
	out := make([]domain.Game, 0, len(claimed))
	for _, g := range candidates {
		if _, ok := claimedSet[g.GameID]; !ok {
			continue
		}
		stamp := now
		g.AutoResignNotificationAt = &stamp
		out = append(out, g)
	}
	return out, nil
}

func (s *service) ResolutionCandidates(ctx context.Context) ([]domain.Game, error) {
	q := domain.ResolutionQuery{
		NotifiedBefore: s.clock.Now().Add(-hours(s.params.ResolveDelayHours)),
	}
	games, err := s.games.FindResolutionCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find resolution candidates: %w", err)
	}
	return games, nil
}

func hours(n int) time.Duration { return time.Duration(n) * time.Hour }
