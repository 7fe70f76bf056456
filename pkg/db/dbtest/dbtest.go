// Package dbtest opens isolated in-memory sqlite databases for repository and
// service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// Open returns a migrated sqlite database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bookstore_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection serializes writers the way a row lock would
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Client wraps Open in a db.Client for services that run transactions.
func Client(t testing.TB) *db.Client {
	t.Helper()
	return db.Wrap(Open(t))
}

// SeedUser inserts a customer with a generous balance; mutate adjusts fields first.
func SeedUser(t testing.TB, conn *gorm.DB, mutate func(*models.User)) models.User {
	t.Helper()
	user := models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Country:      enums.CountryBangladesh,
		Rank:         enums.RankCustomer,
		Balance:      decimal.NewFromInt(1000),
		Version:      1,
	}
	if mutate != nil {
		mutate(&user)
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedBook inserts a book priced at 100 with stock 10; mutate adjusts fields first.
func SeedBook(t testing.TB, conn *gorm.DB, mutate func(*models.Book)) models.Book {
	t.Helper()
	book := models.Book{
		Title:    "Book " + uuid.NewString()[:8],
		Author:   "Author",
		Price:    decimal.NewFromInt(100),
		Stock:    10,
		Category: "fiction",
	}
	if mutate != nil {
		mutate(&book)
	}
	if err := conn.Create(&book).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return book
}
