package series

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
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
	copied := *s
	r.series[s.ID] = &copied
	return nil
}

func (r *fakeSeriesRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.RecurringSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeSeriesNotFound,
			"series not found",
			domainerror.ErrSeriesNotFound,
		)
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

func (r *fakeSeriesRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.series)
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*entity.LedgerEntry
}

func (r *fakeEntryRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeEntryRepo) all() []*entity.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.LedgerEntry, len(r.entries))
	for i, e := range r.entries {
		copied := *e
		out[i] = &copied
	}
	return out
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category
}

func newFakeCategoryRepo(all ...*entity.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[uuid.UUID]*entity.Category)}
	for _, c := range all {
		repo.categories[c.ID] = c
	}
	return repo
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domainerror.ErrCategoryRefNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCategoryRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.categories[id]
	return ok, nil
}

// fixture bundles the entities and fakes most edit/delete tests need.
type fixture struct {
	userID     uuid.UUID
	category   *entity.Category
	series     *entity.RecurringSeries
	seriesRepo *fakeSeriesRepo
	entryRepo  *fakeEntryRepo
	catRepo    *fakeCategoryRepo
}

func newFixture(frequency entity.Frequency, start, end string) *fixture {
	userID := uuid.New()
	category := entity.NewCategory(userID, "Rent", entity.CategoryTypeExpense)

	var endDate *valueobject.Date
	if end != "" {
		d := valueobject.MustParseDate(end)
		endDate = &d
	}
	s := entity.NewRecurringSeries(
		userID,
		category.ID,
		decimal.NewFromInt(1200),
		entity.EntryKindExpense,
		"monthly rent",
		frequency,
		valueobject.MustParseDate(start),
		endDate,
	)

	return &fixture{
		userID:     userID,
		category:   category,
		series:     s,
		seriesRepo: newFakeSeriesRepo(s),
		entryRepo:  &fakeEntryRepo{},
		catRepo:    newFakeCategoryRepo(category),
	}
}
