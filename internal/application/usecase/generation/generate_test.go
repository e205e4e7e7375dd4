package generation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/lock"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/schedule"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[uuid.UUID]*entity.RecurringSeries
}

func newFakeSeriesRepo(all ...*entity.RecurringSeries) *fakeSeriesRepo {
	repo := &fakeSeriesRepo{series: make(map[uuid.UUID]*entity.RecurringSeries)}
	for _, s := range all {
		repo.series[s.ID] = s
	}
	return repo
}

func (r *fakeSeriesRepo) Create(_ context.Context, s *entity.RecurringSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[s.ID] = s
	return nil
}

func (r *fakeSeriesRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.RecurringSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return nil, domainerror.ErrSeriesNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSeriesRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RecurringSeries
	for _, s := range r.series {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSeriesRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RecurringSeries
	for _, s := range r.series {
		if s.UserID == userID && s.IsActive {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSeriesRepo) FindDue(_ context.Context, target valueobject.Date) ([]*entity.RecurringSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RecurringSeries
	for _, s := range r.series {
		if !s.IsActive || s.NextOccurrence == nil {
			continue
		}
		if s.NextOccurrence.After(target) || s.StartDate.After(target) {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSeriesRepo) Update(_ context.Context, s *entity.RecurringSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[s.ID]; !ok {
		return domainerror.ErrSeriesNotFound
	}
	copied := *s
	r.series[s.ID] = &copied
	return nil
}

func (r *fakeSeriesRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.series, id)
	return nil
}

func (r *fakeSeriesRepo) get(id uuid.UUID) *entity.RecurringSeries {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.series[id]
}

type fakeEntryRepo struct {
	mu         sync.Mutex
	entries    []*entity.LedgerEntry
	failCreate bool
}

func (r *fakeEntryRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("storage unavailable")
	}
	copied := *e
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, domainerror.ErrEntryNotFound
}

func (r *fakeEntryRepo) FindBySeriesAndDate(_ context.Context, seriesID uuid.UUID, date valueobject.Date) (*entity.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *entity.LedgerEntry
	for _, e := range r.entries {
		if e.SeriesID == nil || *e.SeriesID != seriesID || !e.Date.Equal(date) {
			continue
		}
		if e.IsOverride {
			copied := *e
			return &copied, nil
		}
		if found == nil {
			found = e
		}
	}
	if found == nil {
		return nil, domainerror.ErrEntryNotFound
	}
	copied := *found
	return &copied, nil
}

func (r *fakeEntryRepo) FindByUserAndRange(_ context.Context, userID uuid.UUID, start, end valueobject.Date) ([]*entity.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LedgerEntry
	for _, e := range r.entries {
		if e.UserID != userID || e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeEntryRepo) Update(_ context.Context, entry *entity.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == entry.ID {
			copied := *entry
			r.entries[i] = &copied
			return nil
		}
	}
	return domainerror.ErrEntryNotFound
}

func (r *fakeEntryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return domainerror.ErrEntryNotFound
}

func (r *fakeEntryRepo) DeleteBySeriesAndDate(_ context.Context, seriesID uuid.UUID, date valueobject.Date) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := false
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.SeriesID != nil && *e.SeriesID == seriesID && e.Date.Equal(date) {
			deleted = true
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}

func (r *fakeEntryRepo) ClearSeriesRef(_ context.Context, seriesID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.entries {
		if e.SeriesID != nil && *e.SeriesID == seriesID {
			e.SeriesID = nil
			count++
		}
	}
	return count, nil
}

func (r *fakeEntryRepo) datesFor(seriesID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.SeriesID != nil && *e.SeriesID == seriesID {
			out = append(out, e.Date.String())
		}
	}
	return out
}

type fakeCategoryRepo struct {
	existing map[uuid.UUID]bool
}

func newFakeCategoryRepo(ids ...uuid.UUID) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{existing: make(map[uuid.UUID]bool)}
	for _, id := range ids {
		repo.existing[id] = true
	}
	return repo
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	if !r.existing[id] {
		return nil, domainerror.ErrCategoryRefNotFound
	}
	return &entity.Category{ID: id}, nil
}

func (r *fakeCategoryRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return r.existing[id], nil
}

func newTestSeries(frequency entity.Frequency, start string, end string) *entity.RecurringSeries {
	var endDate *valueobject.Date
	if end != "" {
		d := valueobject.MustParseDate(end)
		endDate = &d
	}
	return entity.NewRecurringSeries(
		uuid.New(),
		uuid.New(),
		decimal.NewFromInt(50),
		entity.EntryKindExpense,
		"subscription",
		frequency,
		valueobject.MustParseDate(start),
		endDate,
	)
}

func newGenerator(seriesRepo *fakeSeriesRepo, entryRepo *fakeEntryRepo, categoryRepo *fakeCategoryRepo) *GenerateUseCase {
	return NewGenerateUseCase(
		seriesRepo,
		entryRepo,
		categoryRepo,
		schedule.NewPolicy(),
		lock.NewSeriesLocker(),
		2,
	)
}

func TestGenerateDailyCatchUp(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-05"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 5 || out.Skipped != 0 {
		t.Errorf("output = %+v, want 5 created, 0 skipped", out)
	}

	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence == nil || stored.NextOccurrence.String() != "2024-03-06" {
		t.Errorf("cursor = %v, want 2024-03-06", stored.NextOccurrence)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	target := valueobject.MustParseDate("2024-03-05")
	if _, err := uc.Execute(context.Background(), GenerateInput{TargetDate: target}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// The cursor already advanced past the target, so the series is no
	// longer due and nothing happens.
	out, err := uc.Execute(context.Background(), GenerateInput{TargetDate: target})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.Created != 0 {
		t.Errorf("second run created %d entries, want 0", out.Created)
	}

	// Even with the cursor rewound, existing entries are detected and
	// skipped rather than duplicated.
	stored := seriesRepo.get(s.ID)
	rewound := valueobject.MustParseDate("2024-03-01")
	stored.NextOccurrence = &rewound
	if err := seriesRepo.Update(context.Background(), stored); err != nil {
		t.Fatalf("rewind failed: %v", err)
	}

	out, err = uc.Execute(context.Background(), GenerateInput{TargetDate: target})
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if out.Created != 0 || out.Skipped != 5 {
		t.Errorf("rewound run = %+v, want 0 created, 5 skipped", out)
	}
	if got := len(entryRepo.datesFor(s.ID)); got != 5 {
		t.Errorf("total entries = %d, want 5", got)
	}
}

func TestGenerateNeverOverwritesOverride(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	override := entity.EntryFromSeries(s, valueobject.MustParseDate("2024-03-03"), true)
	override.Amount = decimal.NewFromInt(999)
	if err := entryRepo.Create(context.Background(), override); err != nil {
		t.Fatalf("seeding override failed: %v", err)
	}

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-05"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 4 || out.Skipped != 1 {
		t.Errorf("output = %+v, want 4 created, 1 skipped", out)
	}

	kept, err := entryRepo.FindBySeriesAndDate(context.Background(), s.ID, valueobject.MustParseDate("2024-03-03"))
	if err != nil {
		t.Fatalf("override lookup failed: %v", err)
	}
	if !kept.IsOverride || !kept.Amount.Equal(decimal.NewFromInt(999)) {
		t.Errorf("override was replaced: %+v", kept)
	}
}

func TestGenerateMonthlyClampedWalk(t *testing.T) {
	s := newTestSeries(entity.FrequencyMonthly, "2024-01-31", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-04-30"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 4 {
		t.Errorf("created = %d, want 4", out.Created)
	}

	want := map[string]bool{
		"2024-01-31": true,
		"2024-02-29": true,
		"2024-03-31": true,
		"2024-04-30": true,
	}
	for _, date := range entryRepo.datesFor(s.ID) {
		if !want[date] {
			t.Errorf("unexpected entry date %s", date)
		}
		delete(want, date)
	}
	for date := range want {
		t.Errorf("missing entry for %s", date)
	}

	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence == nil || stored.NextOccurrence.String() != "2024-05-31" {
		t.Errorf("cursor = %v, want 2024-05-31", stored.NextOccurrence)
	}
}

func TestGenerateHonorsCatchUpCap(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-01-01", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate:     valueobject.MustParseDate("2024-06-01"),
		MaxCatchUpDays: 10,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 10 {
		t.Errorf("created = %d, want 10", out.Created)
	}

	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence == nil || stored.NextOccurrence.String() != "2024-01-11" {
		t.Errorf("cursor = %v, want 2024-01-11", stored.NextOccurrence)
	}

	// The next run picks up the remainder.
	out, err = uc.Execute(context.Background(), GenerateInput{
		TargetDate:     valueobject.MustParseDate("2024-06-01"),
		MaxCatchUpDays: 10,
	})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.Created != 10 {
		t.Errorf("second run created = %d, want 10", out.Created)
	}
	if got := seriesRepo.get(s.ID).NextOccurrence.String(); got != "2024-01-21" {
		t.Errorf("cursor after second run = %s, want 2024-01-21", got)
	}
}

func TestGenerateExhaustsFiniteWindow(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "2024-03-03")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-10"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 3 {
		t.Errorf("created = %d, want 3", out.Created)
	}

	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence != nil {
		t.Errorf("cursor = %v, want nil for exhausted window", stored.NextOccurrence)
	}

	// An exhausted series is never due again.
	out, err = uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-04-01"),
	})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.Created != 0 || out.Skipped != 0 {
		t.Errorf("exhausted series produced %+v", out)
	}
}

func TestGenerateContainsPerSeriesFailures(t *testing.T) {
	missingCategory := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	healthy := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	seriesRepo := newFakeSeriesRepo(missingCategory, healthy)
	entryRepo := &fakeEntryRepo{}

	// Only the healthy series' category exists.
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(healthy.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-03"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 3 {
		t.Errorf("created = %d, want 3 from the healthy series", out.Created)
	}
	if out.Skipped != 3 {
		t.Errorf("skipped = %d, want 3 from the dangling series", out.Skipped)
	}
	if got := len(entryRepo.datesFor(healthy.ID)); got != 3 {
		t.Errorf("healthy series entries = %d, want 3", got)
	}
	if got := len(entryRepo.datesFor(missingCategory.ID)); got != 0 {
		t.Errorf("dangling series entries = %d, want 0", got)
	}
}

func TestGenerateHealsDeadCursor(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "2024-03-05")
	// Simulate a cursor desynchronized past the window end by an edit.
	dead := valueobject.MustParseDate("2024-03-08")
	s.NextOccurrence = &dead

	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-10"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 0 || out.Skipped != 1 {
		t.Errorf("output = %+v, want 0 created, 1 skipped", out)
	}

	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence == nil || !stored.NextOccurrence.After(dead) {
		t.Errorf("cursor = %v, want nudged past %s", stored.NextOccurrence, dead)
	}
}

func TestGenerateContainsEntryCreationFailures(t *testing.T) {
	s := newTestSeries(entity.FrequencyDaily, "2024-03-01", "")
	seriesRepo := newFakeSeriesRepo(s)
	entryRepo := &fakeEntryRepo{failCreate: true}
	uc := newGenerator(seriesRepo, entryRepo, newFakeCategoryRepo(s.CategoryID))

	out, err := uc.Execute(context.Background(), GenerateInput{
		TargetDate: valueobject.MustParseDate("2024-03-03"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.Created != 0 || out.Skipped != 3 {
		t.Errorf("output = %+v, want 0 created, 3 skipped", out)
	}

	// The cursor still advances so one bad date cannot wedge the series.
	stored := seriesRepo.get(s.ID)
	if stored.NextOccurrence == nil || stored.NextOccurrence.String() != "2024-03-04" {
		t.Errorf("cursor = %v, want 2024-03-04", stored.NextOccurrence)
	}
}
