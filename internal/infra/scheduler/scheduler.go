// Package scheduler drives periodic catch-up generation with a cron trigger.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/recurrent-ledger/backend/internal/application/usecase/generation"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// Scheduler runs the generation engine on a cron schedule, materializing all
// occurrences due up to the current calendar date. Overlapping runs are safe:
// generation is idempotent and serialized per series.
type Scheduler struct {
	cron           *cron.Cron
	generate       *generation.GenerateUseCase
	spec           string
	maxCatchUpDays int
}

// New creates a scheduler that triggers generation according to the given
// cron spec (standard 5-field format).
func New(generate *generation.GenerateUseCase, spec string, maxCatchUpDays int) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		generate:       generate,
		spec:           spec,
		maxCatchUpDays: maxCatchUpDays,
	}
}

// Start registers the generation job and starts the cron loop. It also fires
// one immediate run so a freshly started service catches up without waiting
// for the first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.cron.Start()

	go s.run()

	slog.Info("Generation scheduler started", "cron", s.spec)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Generation scheduler stopped")
}

func (s *Scheduler) run() {
	today := valueobject.FromTime(time.Now().UTC())

	output, err := s.generate.Execute(context.Background(), generation.GenerateInput{
		TargetDate:     today,
		MaxCatchUpDays: s.maxCatchUpDays,
	})
	if err != nil {
		slog.Error("Scheduled generation run failed", "error", err)
		return
	}

	slog.Info("Scheduled generation run finished",
		"target_date", today.String(),
		"created", output.Created,
		"skipped", output.Skipped,
	)
}
