package domain

import "time"

// Side identifies one of the two rosters of a game.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// Result is the final outcome of a game. Only decisive results are produced here.
type Result string

const (
	ResultWhiteWins Result = "1-0"
	ResultBlackWins Result = "0-1"
)

// WinFor returns the result in which side wins.
func WinFor(side Side) Result {
	if side == SideWhite {
		return ResultWhiteWins
	}
	return ResultBlackWins
}

const ResolutionTimeout = "timeout"

// Move is one entry of a game history. PlayerID is nil for moves applied by the system.
type Move struct {
	FEN      string    `json:"fen" dynamodbav:"fen"`
	PlayedAt time.Time `json:"played_at" dynamodbav:"played_at,unixtime"`
	PlayerID *string   `json:"player_id" dynamodbav:"player_id,omitempty"`
}

// Game is the stored game record. Timestamps are persisted as Unix seconds
// so the store can range-filter on them.
type Game struct {
	GameID                   string     `json:"id" dynamodbav:"game_id"`
	WhitePlayers             []string   `json:"white_players" dynamodbav:"white_players"`
	BlackPlayers             []string   `json:"black_players" dynamodbav:"black_players"`
	History                  []Move     `json:"history" dynamodbav:"history"`
	Result                   *Result    `json:"result" dynamodbav:"result,omitempty"`
	LastMoveAt               *time.Time `json:"last_move_at" dynamodbav:"last_move_at,omitempty,unixtime"`
	AutoResignNotificationAt *time.Time `json:"auto_resign_notified_at" dynamodbav:"auto_resign_notified_at,omitempty,unixtime"`
	ResolvedAt               *time.Time `json:"resolved_at" dynamodbav:"resolved_at,omitempty,unixtime"`
	ResolutionReason         *string    `json:"resolution_reason" dynamodbav:"resolution_reason,omitempty"`
}

// Positions returns the FEN snapshots of the history, oldest first.
func (g *Game) Positions() []string {
	out := make([]string, 0, len(g.History))
	for _, m := range g.History {
		out = append(out, m.FEN)
	}
	return out
}

// Roster returns the de-duplicated players of side, in roster order.
func (g *Game) Roster(side Side) []string {
	src := g.WhitePlayers
	if side == SideBlack {
		src = g.BlackPlayers
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]string, 0, len(src))
	for _, id := range src {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IsTerminal reports whether the game already has a result.
func (g *Game) IsTerminal() bool {
	return g.Result != nil && *g.Result != ""
}

// NotificationQuery selects games eligible for a stall reminder.
type NotificationQuery struct {
	LastMoveBefore time.Time
	MinHistory     int
}

// Matches reports whether g is a notification candidate.
func (q NotificationQuery) Matches(g *Game) bool {
	if g.IsTerminal() || g.AutoResignNotificationAt != nil || g.LastMoveAt == nil {
		return false
	}
	return g.LastMoveAt.Before(q.LastMoveBefore) && len(g.History) >= q.MinHistory
}

// ResolutionQuery selects notified games whose grace period has run out.
type ResolutionQuery struct {
	NotifiedBefore time.Time
}

// Matches reports whether g is a resolution candidate.
func (q ResolutionQuery) Matches(g *Game) bool {
	if g.IsTerminal() || g.AutoResignNotificationAt == nil {
		return false
	}
	return g.AutoResignNotificationAt.Before(q.NotifiedBefore)
}
