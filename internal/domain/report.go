package domain

import "time"

// SendStatus is the outcome of one reminder send attempt.
type SendStatus string

const (
	SendDelivered SendStatus = "sent"
	SendSkipped   SendStatus = "skipped"
	SendFailed    SendStatus = "failed"
)

// SendResult records what happened to one player's reminder.
type SendResult struct {
	GameID   string     `json:"game_id"`
	PlayerID string     `json:"player_id"`
	Status   SendStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

// ScoreChange is the score adjustment of one player for one resolved game.
type ScoreChange struct {
	PlayerID string  `json:"player_id"`
	Moves    int     `json:"moves"`
	Delta    float64 `json:"delta"`
}

// ResolveResult records the settlement of one game.
type ResolveResult struct {
	GameID      string        `json:"game_id"`
	Forfeited   Side          `json:"forfeited,omitempty"`
	Result      Result        `json:"result,omitempty"`
	Changes     []ScoreChange `json:"changes,omitempty"`
	ScoreErrors []string      `json:"score_errors,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// OK reports whether the game reached the resolved state.
func (r ResolveResult) OK() bool { return r.Error == "" }

// TickReport collects the per-item outcomes of one poll tick.
type TickReport struct {
	TickID     string          `json:"tick_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Claimed    int             `json:"claimed"`
	Sends      []SendResult    `json:"sends,omitempty"`
	Resolved   []ResolveResult `json:"resolved,omitempty"`
	NotifyErr  string          `json:"notify_error,omitempty"`
	ResolveErr string          `json:"resolve_error,omitempty"`
}

// Count returns the number of sends with the given status.
func (r *TickReport) Count(status SendStatus) int {
	n := 0
	for _, s := range r.Sends {
		if s.Status == status {
			n++
		}
	}
	return n
}
