package handler

import (
	"net/http"
	"sort"

	"github.com/go-autoresign/internal/domain"
)

type tickSource interface {
	LastReport() (domain.TickReport, bool)
	Busy() bool
}

// StatusHandler exposes the state of the poll loop.
type StatusHandler struct {
	ticks     tickSource
	interval  string
	languages []string
}

func NewStatusHandler(ticks tickSource, interval string, languages []string) *StatusHandler {
	langs := append([]string(nil), languages...)
	sort.Strings(langs)
	return &StatusHandler{ticks: ticks, interval: interval, languages: langs}
}

func (h *StatusHandler) Get(w http.ResponseWriter, _ *http.Request) {
	env := StatusEnvelope{Busy: h.ticks.Busy(), PollInterval: h.interval, Languages: h.languages}
	if r, ok := h.ticks.LastReport(); ok {
		env.LastTick = summarize(r)
	}
	writeJSON(w, http.StatusOK, env)
}

// LastTick returns the full per-item report of the most recent tick.
func (h *StatusHandler) LastTick(w http.ResponseWriter, _ *http.Request) {
	r, ok := h.ticks.LastReport()
	if !ok {
		writeJSON(w, http.StatusNotFound, ReportEnvelope{Error: "no tick has run yet"})
		return
	}
	writeJSON(w, http.StatusOK, ReportEnvelope{Report: &r})
}
