package books

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// Repository persists catalog books.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single book.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByIDs loads every existing book among ids. Missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *Repository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete removes a book and reports how many rows were deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{})
	return res.RowsAffected, res.Error
}

// UpdateRating stores a recomputed rating without touching other columns.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of books matching q plus the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})

	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}
	if len(q.Categories) > 0 {
		query = query.Where("category IN ?", q.Categories)
	}
	if q.Filter != nil {
		query = applyFilter(query, *q.Filter)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Sort != nil {
		query = query.Order(q.Sort.clause())
	}
	query = query.Order("created_at ASC").Order("id ASC")

	var rows []models.Book
	err := query.
		Offset(q.Page.Skip()).
		Limit(q.Page.Size).
		Find(&rows).
		Error
	return rows, total, err
}

func applyFilter(query *gorm.DB, f Filter) *gorm.DB {
	op := ">="
	if f.Order == enums.FilterLow {
		op = "<="
	}

	switch f.Field {
	case enums.BookFilterDiscountPercentage:
		return query.Where(
			"id IN (SELECT dcb.book_id FROM discount_campaign_books dcb JOIN discount_campaigns dc ON dc.id = dcb.campaign_id WHERE dc.percentage "+op+" ?)",
			f.Value.InexactFloat64(),
		)
	case enums.BookFilterPrice, enums.BookFilterStock, enums.BookFilterRating:
		return query.Where(string(f.Field)+" "+op+" ?", f.Value.InexactFloat64())
	}
	return query
}
