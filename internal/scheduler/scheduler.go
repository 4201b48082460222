package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"convoke/internal/domain"
)

// Scheduler runs the status reconciliation sweep on a cron schedule. The
// sweep persists the time-derived status of every non-terminal event so the
// stored state eventually matches what read paths already report.
type Scheduler struct {
	events domain.EventService
	logger *slog.Logger
	cron   *cron.Cron
}

func New(events domain.EventService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		events: events,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the sweep under the given cron expression and starts the
// scheduler. It returns an error if the expression does not parse.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("status sweep scheduled", "cron", spec)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	ctx := context.Background()
	advanced, err := s.events.ReconcileStatuses(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "status sweep failed", "err", err)
		return
	}
	if advanced > 0 {
		s.logger.InfoContext(ctx, "status sweep advanced events", "count", advanced)
	}
}
