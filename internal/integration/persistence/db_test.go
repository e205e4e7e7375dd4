package persistence

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
	"github.com/recurrent-ledger/backend/internal/integration/persistence/model"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.CategoryModel{},
		&model.RecurringSeriesModel{},
		&model.LedgerEntryModel{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// seedOwner inserts a user with one category and returns their IDs.
func seedOwner(t *testing.T, db *gorm.DB) (userID, categoryID uuid.UUID) {
	t.Helper()

	user := entity.NewUser("owner-"+uuid.NewString()[:8]+"@example.com", "Owner")
	if err := db.Create(model.UserFromEntity(user)).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	category := entity.NewCategory(user.ID, "Housing", entity.CategoryTypeExpense)
	if err := db.Create(model.CategoryFromEntity(category)).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	return user.ID, category.ID
}

func seedSeries(
	t *testing.T,
	db *gorm.DB,
	userID, categoryID uuid.UUID,
	frequency entity.Frequency,
	start, end string,
) *entity.RecurringSeries {
	t.Helper()

	var endDate *valueobject.Date
	if end != "" {
		d := valueobject.MustParseDate(end)
		endDate = &d
	}
	s := entity.NewRecurringSeries(
		userID,
		categoryID,
		decimal.NewFromInt(1200),
		entity.EntryKindExpense,
		"rent",
		frequency,
		valueobject.MustParseDate(start),
		endDate,
	)
	if err := NewSeriesRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("failed to seed series: %v", err)
	}
	return s
}
