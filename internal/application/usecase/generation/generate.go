// Package generation contains the catch-up materialization engine for
// recurring series.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/application/lock"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/schedule"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

const (
	// DefaultMaxCatchUpDays caps how many occurrences a single series may
	// materialize in one run. A series neglected for longer than this
	// silently truncates its backfill instead of walking without bound;
	// the remainder is picked up by the next run.
	DefaultMaxCatchUpDays = 365

	// DefaultWorkers is the default number of series processed concurrently.
	DefaultWorkers = 4
)

// GenerateInput represents the input for catch-up generation.
type GenerateInput struct {
	TargetDate     valueobject.Date
	MaxCatchUpDays int // 0 means DefaultMaxCatchUpDays
}

// GenerateOutput aggregates created/skipped counts across all due series.
type GenerateOutput struct {
	Created int
	Skipped int
}

// GenerateUseCase materializes concrete ledger entries for every occurrence
// of every due series up to a target date. Runs are idempotent: occurrences
// already covered by an entry (override or generated) are skipped, and a
// failure on one date or one series never aborts the rest.
type GenerateUseCase struct {
	seriesRepo   adapter.SeriesRepository
	entryRepo    adapter.EntryRepository
	categoryRepo adapter.CategoryRepository
	policy       schedule.Policy
	locker       *lock.SeriesLocker
	workers      int
}

// NewGenerateUseCase creates a new GenerateUseCase instance.
func NewGenerateUseCase(
	seriesRepo adapter.SeriesRepository,
	entryRepo adapter.EntryRepository,
	categoryRepo adapter.CategoryRepository,
	policy schedule.Policy,
	locker *lock.SeriesLocker,
	workers int,
) *GenerateUseCase {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &GenerateUseCase{
		seriesRepo:   seriesRepo,
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		policy:       policy,
		locker:       locker,
		workers:      workers,
	}
}

// Execute performs catch-up generation for all due series. Series are
// processed concurrently up to the worker limit, each under its own series
// lock; within one series the walk is strictly sequential.
func (uc *GenerateUseCase) Execute(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	maxDays := input.MaxCatchUpDays
	if maxDays <= 0 {
		maxDays = DefaultMaxCatchUpDays
	}

	due, err := uc.seriesRepo.FindDue(ctx, input.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load due series: %w", err)
	}

	slog.Info("Starting catch-up generation",
		"target_date", input.TargetDate.String(),
		"due_series", len(due),
		"max_catch_up_days", maxDays,
	)

	var created, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for _, series := range due {
		series := series
		g.Go(func() error {
			uc.locker.Lock(series.ID)
			defer uc.locker.Unlock(series.ID)

			c, s := uc.processSeries(gctx, series, input.TargetDate, maxDays)
			created.Add(int64(c))
			skipped.Add(int64(s))
			return nil
		})
	}

	// Workers never return errors; per-series failures are contained.
	_ = g.Wait()

	output := &GenerateOutput{
		Created: int(created.Load()),
		Skipped: int(skipped.Load()),
	}

	slog.Info("Catch-up generation finished",
		"target_date", input.TargetDate.String(),
		"created", output.Created,
		"skipped", output.Skipped,
	)

	return output, nil
}

// processSeries performs the catch-up walk for one series and persists the
// advanced cursor. It returns per-series created/skipped counts and never
// fails: every per-date error is logged and counted as skipped.
func (uc *GenerateUseCase) processSeries(
	ctx context.Context,
	series *entity.RecurringSeries,
	target valueobject.Date,
	maxDays int,
) (created, skipped int) {
	if series.NextOccurrence == nil {
		return 0, 0
	}

	// The stored cursor can be desynchronized by edits; re-validate it
	// before walking.
	cursor := *series.NextOccurrence
	if !uc.policy.IsValidOccurrence(cursor, series) {
		valid, ok := uc.policy.FindNextValidOccurrence(cursor, series)
		if !ok {
			// Self-healing cursor: no valid occurrence reachable from here.
			// Nudge the cursor one raw step forward and skip this run.
			next := uc.policy.NextOccurrence(cursor, series.Frequency)
			series.NextOccurrence = &next
			if err := uc.seriesRepo.Update(ctx, series); err != nil {
				slog.Warn("Failed to persist healed cursor",
					"series_id", series.ID,
					"error", err,
				)
			}
			return 0, 1
		}
		cursor = valid
	}

	limit := target
	if series.EndDate != nil && series.EndDate.Before(limit) {
		limit = *series.EndDate
	}

	exhausted := false

	for steps := 0; steps < maxDays && !cursor.After(limit); steps++ {
		uc.materializeOccurrence(ctx, series, cursor, &created, &skipped)

		next, ok := uc.policy.FindNextValidOccurrence(
			uc.policy.NextOccurrence(cursor, series.Frequency),
			series,
		)
		if !ok {
			exhausted = true
			break
		}
		cursor = next
	}

	if exhausted {
		series.NextOccurrence = nil
	} else {
		next := cursor
		series.NextOccurrence = &next
	}

	if err := uc.seriesRepo.Update(ctx, series); err != nil {
		slog.Error("Failed to persist series cursor after walk",
			"series_id", series.ID,
			"error", err,
		)
	}

	return created, skipped
}

// materializeOccurrence creates the ledger entry for one occurrence date
// unless one already covers it. Existing overrides win, existing generated
// entries make the run idempotent, and creation failures (e.g. a category
// reference that vanished) are contained.
func (uc *GenerateUseCase) materializeOccurrence(
	ctx context.Context,
	series *entity.RecurringSeries,
	date valueobject.Date,
	created, skipped *int,
) {
	existing, err := uc.entryRepo.FindBySeriesAndDate(ctx, series.ID, date)
	if err != nil && !errors.Is(err, domainerror.ErrEntryNotFound) {
		slog.Warn("Dedup lookup failed during catch-up",
			"series_id", series.ID,
			"date", date.String(),
			"error", err,
		)
		*skipped++
		return
	}
	if existing != nil {
		*skipped++
		return
	}

	if exists, err := uc.categoryRepo.ExistsByID(ctx, series.CategoryID); err != nil || !exists {
		slog.Warn("Skipping occurrence with dangling category reference",
			"series_id", series.ID,
			"category_id", series.CategoryID,
			"date", date.String(),
			"error", err,
		)
		*skipped++
		return
	}

	entry := entity.EntryFromSeries(series, date, false)
	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		slog.Warn("Failed to create entry during catch-up",
			"series_id", series.ID,
			"date", date.String(),
			"error", err,
		)
		*skipped++
		return
	}

	*created++
}
