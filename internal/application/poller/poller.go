// Package poller drives the auto-resign cycle on a fixed interval.
package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/pkg/clock"
	"github.com/go-autoresign/internal/pkg/id"
)

type scanner interface {
	ClaimNotificationCandidates(ctx context.Context) ([]domain.Game, error)
	ResolutionCandidates(ctx context.Context) ([]domain.Game, error)
}

type notifier interface {
	NotifyGame(ctx context.Context, game domain.Game, delayHours int) []domain.SendResult
}

type resolver interface {
	ResolveAll(ctx context.Context, games []domain.Game) []domain.ResolveResult
}

// ReportSink archives finished tick reports.
type ReportSink interface {
	SaveReport(ctx context.Context, report domain.TickReport) error
}

type Deps struct {
	Scanner  scanner
	Notifier notifier
	Resolver resolver
	Clock    clock.Clock
	Interval time.Duration
	// DelayHours is quoted in reminders as the time left before forfeit.
	DelayHours int
	Sink       ReportSink
	Logger     *slog.Logger
}

// Poller runs one tick per interval. Ticks never overlap: a tick that fires
// while the previous one is still running is skipped.
type Poller struct {
	deps Deps
	log  *slog.Logger

	busy atomic.Bool
	wg   sync.WaitGroup

	mu   sync.RWMutex
	last *domain.TickReport
}

func New(deps Deps) (*Poller, error) {
	if deps.Interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{deps: deps, log: deps.Logger}, nil
}

// Run ticks until ctx is cancelled. The first tick runs immediately.
// On cancellation no new tick is started and Run returns once the running
// tick, if any, has finished.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.deps.Interval)
	defer ticker.Stop()

	p.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return nil
		case <-ticker.C:
			p.trigger(ctx)
		}
	}
}

func (p *Poller) trigger(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		p.log.Warn("previous tick still running, skipping")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)
		p.Tick(context.WithoutCancel(ctx))
	}()
}

// Tick runs the notification phase and then the resolution phase once.
// A store failure aborts only the phase it happened in.
func (p *Poller) Tick(ctx context.Context) domain.TickReport {
	started := p.deps.Clock.Now()
	report := domain.TickReport{TickID: id.At(started), StartedAt: started}
	log := p.log.With("tick_id", report.TickID)

	games, err := p.deps.Scanner.ClaimNotificationCandidates(ctx)
	if err != nil {
		report.NotifyErr = err.Error()
		log.Error("notification phase aborted", "err", err)
	} else {
		report.Claimed = len(games)
		for _, g := range games {
			report.Sends = append(report.Sends, p.deps.Notifier.NotifyGame(ctx, g, p.deps.DelayHours)...)
		}
	}

	due, err := p.deps.Scanner.ResolutionCandidates(ctx)
	if err != nil {
		report.ResolveErr = err.Error()
		log.Error("resolution phase aborted", "err", err)
	} else if len(due) > 0 {
		report.Resolved = p.deps.Resolver.ResolveAll(ctx, due)
	}

	report.FinishedAt = p.deps.Clock.Now()
	log.Info("tick finished",
		"claimed", report.Claimed,
		"sent", report.Count(domain.SendDelivered),
		"skipped", report.Count(domain.SendSkipped),
		"failed", report.Count(domain.SendFailed),
		"resolved", len(report.Resolved),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()

	if p.deps.Sink != nil {
		if err := p.deps.Sink.SaveReport(ctx, report); err != nil {
			log.Warn("archive tick report", "err", err)
		}
	}
	return report
}

// LastReport returns the most recent tick report, or false before the first tick.
func (p *Poller) LastReport() (domain.TickReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return domain.TickReport{}, false
	}
	return *p.last, true
}

// Busy reports whether a tick is in progress.
func (p *Poller) Busy() bool { return p.busy.Load() }
