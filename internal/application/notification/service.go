package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/pkg/i18n"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"
)

type playerStore interface {
	GetMany(ctx context.Context, playerIDs []string) ([]domain.Player, error)
}

type rules interface {
	TurnToMove(history []string) (domain.Side, error)
}

type mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

type translations interface {
	Resolve(locale *string) i18n.Templates
}

// Service sends stall reminders to the players whose turn it is.
type Service interface {
	NotifyGame(ctx context.Context, game domain.Game, delayHours int) []domain.SendResult
}

type service struct {
	players      playerStore
	rules        rules
	mailer       mailer
	translations translations
	limiter      *rate.Limiter
	gameURLBase  string
	log          *slog.Logger
}

type ServiceDeps struct {
	Players      playerStore
	Rules        rules
	Mailer       mailer
	Translations translations
	// Limiter throttles sends across games. Nil means unthrottled.
	Limiter     *rate.Limiter
	GameURLBase string
	Logger      *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &service{
		players:      deps.Players,
		rules:        deps.Rules,
		mailer:       deps.Mailer,
		translations: deps.Translations,
		limiter:      deps.Limiter,
		gameURLBase:  deps.GameURLBase,
		log:          deps.Logger,
	}
}

// NotifyGame emails every player on the side to move. Failures are recorded
// in the returned results and never stop the remaining sends.
func (s *service) NotifyGame(ctx context.Context, game domain.Game, delayHours int) []domain.SendResult {
	log := s.log.With("game_id", game.GameID)

	side, err := s.rules.TurnToMove(game.Positions())
	if err != nil {
		log.Error("cannot determine side to move", "err", err)
		return []domain.SendResult{{GameID: game.GameID, Status: domain.SendFailed, Error: err.Error()}}
	}
	pending := game.Roster(side)
	if len(pending) == 0 {
		log.Warn("no players on side to move", "side", side)
		return nil
	}

	players, err := s.players.GetMany(ctx, pending)
	if err != nil {
		log.Error("load players", "err", err)
		results := make([]domain.SendResult, 0, len(pending))
		for _, id := range pending {
			results = append(results, domain.SendResult{GameID: game.GameID, PlayerID: id, Status: domain.SendFailed, Error: err.Error()})
		}
		return results
	}
	byID := make(map[string]domain.Player, len(players))
	for _, p := range players {
		byID[p.PlayerID] = p
	}

	results := make([]domain.SendResult, 0, len(pending))
	for _, playerID := range pending {
		req := domain.NotificationRequest{GameID: game.GameID, PlayerID: playerID, DelayHours: delayHours}
		res := domain.SendResult{GameID: game.GameID, PlayerID: playerID}

		p, ok := byID[playerID]
		switch {
		case !ok:
			res.Status = domain.SendFailed
			res.Error = fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound).Error()
			log.Warn("reminder recipient missing", "player_id", playerID)
		case p.Unsubscribed:
			res.Status = domain.SendSkipped
		default:
			if err := s.send(ctx, req, p); err != nil {
				res.Status = domain.SendFailed
				res.Error = err.Error()
				log.Error("reminder not sent", "player_id", playerID, "err", err)
			} else {
				res.Status = domain.SendDelivered
			}
		}
		results = append(results, res)
	}
	return results
}

// send renders and delivers one reminder. A panic in the mail channel is
// turned into an error so the caller can move on to the next player.
func (s *service) send(ctx context.Context, req domain.NotificationRequest, p domain.Player) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("player %s has no email: %w", p.PlayerID, domain.ErrBadRequest)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	tpl := s.translations.Resolve(p.Locale)
	subject, body := tpl.Render(i18n.Vars{
		Name:  p.DisplayName,
		Hours: message.NewPrinter(tpl.Tag).Sprintf("%d", req.DelayHours),
		Game:  req.GameID,
		Link:  s.gameURLBase + req.GameID,
	})
	return s.mailer.Send(ctx, domain.EmailMessage{To: p.Email, Subject: subject, Body: body})
}
