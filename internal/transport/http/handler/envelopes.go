package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-autoresign/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// TickSummary condenses a TickReport to counters.
type TickSummary struct {
	TickID     string    `json:"tick_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Claimed    int       `json:"claimed"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Resolved   int       `json:"resolved"`
	Unresolved int       `json:"unresolved"`
	NotifyErr  string    `json:"notify_error,omitempty"`
	ResolveErr string    `json:"resolve_error,omitempty"`
}

// StatusEnvelope wraps the worker status response.
type StatusEnvelope struct {
	Busy         bool         `json:"busy"`
	PollInterval string       `json:"poll_interval"`
	Languages    []string     `json:"languages"`
	LastTick     *TickSummary `json:"last_tick,omitempty"`
}

// ReportEnvelope wraps a full tick report.
type ReportEnvelope struct {
	Report *domain.TickReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func summarize(r domain.TickReport) *TickSummary {
	s := &TickSummary{
		TickID:     r.TickID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Claimed:    r.Claimed,
		Sent:       r.Count(domain.SendDelivered),
		Skipped:    r.Count(domain.SendSkipped),
		Failed:     r.Count(domain.SendFailed),
		NotifyErr:  r.NotifyErr,
		ResolveErr: r.ResolveErr,
	}
	for _, res := range r.Resolved {
		if res.OK() {
			s.Resolved++
		} else {
			s.Unresolved++
		}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
