package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/pkg/clock"
)

type gameStore interface {
	Resolve(ctx context.Context, gameID string, result domain.Result, at time.Time) error
}

type playerStore interface {
	Get(ctx context.Context, playerID string) (*domain.Player, error)
	AddScore(ctx context.Context, playerID string, delta float64) error
	SetScore(ctx context.Context, playerID string, score float64) error
}

type rules interface {
	TurnToMove(history []string) (domain.Side, error)
}

type publisher interface {
	PublishResolution(ctx context.Context, res domain.ResolveResult) error
}

// Service settles games whose reminder went unanswered.
type Service interface {
	Resolve(ctx context.Context, game domain.Game) domain.ResolveResult
	ResolveAll(ctx context.Context, games []domain.Game) []domain.ResolveResult
}

type service struct {
	games     gameStore
	players   playerStore
	rules     rules
	clock     clock.Clock
	publisher publisher
	log       *slog.Logger
}

type ServiceDeps struct {
	Games   gameStore
	Players playerStore
	Rules   rules
	Clock   clock.Clock
	// Publisher receives an event per resolved game. Optional.
	Publisher publisher
	Logger    *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &service{
		games:     deps.Games,
		players:   deps.Players,
		rules:     deps.Rules,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		log:       deps.Logger,
	}
}

// ResolveAll resolves games one after the other. A failing game never stops the rest.
func (s *service) ResolveAll(ctx context.Context, games []domain.Game) []domain.ResolveResult {
	results := make([]domain.ResolveResult, 0, len(games))
	for _, g := range games {
		results = append(results, s.Resolve(ctx, g))
	}
	return results
}

// Resolve forfeits the game for the side to move, then applies the score
// changes. The result write happens first and at most once; score writes
// are best effort.
func (s *service) Resolve(ctx context.Context, game domain.Game) domain.ResolveResult {
	res := domain.ResolveResult{GameID: game.GameID}
	log := s.log.With("game_id", game.GameID)

	if game.IsTerminal() {
		res.Error = fmt.Errorf("game already has a result: %w", domain.ErrConflict).Error()
		log.Warn("skipping finished game")
		return res
	}

	forfeiting, err := s.rules.TurnToMove(game.Positions())
	if err != nil {
		res.Error = err.Error()
		log.Error("cannot determine forfeiting side", "err", err)
		return res
	}
	winner := forfeiting.Opponent()
	result := domain.WinFor(winner)

	if err := s.games.Resolve(ctx, game.GameID, result, s.clock.Now()); err != nil {
		res.Error = err.Error()
		log.Error("write result", "err", err)
		return res
	}
	res.Forfeited = forfeiting
	res.Result = result

	res.Changes = Redistribute(game, winner)
	for _, c := range res.Changes {
		if err := s.applyChange(ctx, c); err != nil {
			res.ScoreErrors = append(res.ScoreErrors, err.Error())
			log.Error("score update failed", "player_id", c.PlayerID, "delta", c.Delta, "err", err)
		}
	}
	log.Info("game auto-resigned", "forfeited", forfeiting, "result", result, "score_changes", len(res.Changes))

	if s.publisher != nil {
		if err := s.publisher.PublishResolution(ctx, res); err != nil {
			log.Warn("publish resolution event", "err", err)
		}
	}
	return res
}

// applyChange credits winners atomically. Losers are read, clamped at zero
// and written back.
func (s *service) applyChange(ctx context.Context, c domain.ScoreChange) error {
	if c.Delta >= 0 {
		return s.players.AddScore(ctx, c.PlayerID, c.Delta)
	}
	p, err := s.players.Get(ctx, c.PlayerID)
	if err != nil {
		return fmt.Errorf("read score of %s: %w", c.PlayerID, err)
	}
	return s.players.SetScore(ctx, c.PlayerID, math.Max(0, p.Score+c.Delta))
}
