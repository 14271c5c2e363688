// Package memory is an in-process implementation of the game and player
// stores. It applies the same selection predicates as the DynamoDB filters
// and is used for local runs (STORAGE_TYPE=memory) and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-autoresign/internal/domain"
)

// Store holds games and players in maps guarded by one mutex.
type Store struct {
	mu      sync.RWMutex
	games   map[string]domain.Game
	players map[string]domain.Player
}

func New() *Store {
	return &Store{
		games:   make(map[string]domain.Game),
		players: make(map[string]domain.Player),
	}
}

// Game operations

func (s *Store) PutGame(_ context.Context, g domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.GameID] = cloneGame(g)
}

func (s *Store) GetGame(_ context.Context, gameID string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return domain.Game{}, fmt.Errorf("game %s: %w", gameID, domain.ErrNotFound)
	}
	return cloneGame(g), nil
}

func (s *Store) FindNotificationCandidates(_ context.Context, q domain.NotificationQuery) ([]domain.Game, error) {
	return s.filter(q.Matches), nil
}

func (s *Store) FindResolutionCandidates(_ context.Context, q domain.ResolutionQuery) ([]domain.Game, error) {
	return s.filter(q.Matches), nil
}

func (s *Store) filter(match func(*domain.Game) bool) []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Game
	for _, g := range s.games {
		if match(&g) {
			out = append(out, cloneGame(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}

func (s *Store) MarkNotified(_ context.Context, ids []string, at time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claimed := make([]string, 0, len(ids))
	for _, gameID := range ids {
		g, ok := s.games[gameID]
		if !ok || g.IsTerminal() || g.AutoResignNotificationAt != nil {
			continue
		}
		stamp := at
		g.AutoResignNotificationAt = &stamp
		s.games[gameID] = g
		claimed = append(claimed, gameID)
	}
	return claimed, nil
}

func (s *Store) Resolve(_ context.Context, gameID string, result domain.Result, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, domain.ErrNotFound)
	}
	if g.IsTerminal() {
		return fmt.Errorf("game %s already resolved: %w", gameID, domain.ErrConflict)
	}
	reason := domain.ResolutionTimeout
	stamp := at
	g.Result = &result
	g.ResolvedAt = &stamp
	g.ResolutionReason = &reason
	g.AutoResignNotificationAt = nil
	s.games[gameID] = g
	return nil
}

// Player operations

func (s *Store) PutPlayer(_ context.Context, p domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.PlayerID] = p
}

func (s *Store) Get(_ context.Context, playerID string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) GetMany(_ context.Context, playerIDs []string) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if p, ok := s.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) AddScore(_ context.Context, playerID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	p.Score += delta
	s.players[playerID] = p
	return nil
}

func (s *Store) SetScore(_ context.Context, playerID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	p.Score = score
	s.players[playerID] = p
	return nil
}

func cloneGame(g domain.Game) domain.Game {
	g.WhitePlayers = append([]string(nil), g.WhitePlayers...)
	g.BlackPlayers = append([]string(nil), g.BlackPlayers...)
	g.History = append([]domain.Move(nil), g.History...)
	return g
}
