package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

const maxTitleLength = 30

var (
	minPrice = decimal.NewFromInt(10)
	maxPrice = decimal.NewFromInt(10000)
)

type bookRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, q ListQuery) ([]models.Book, int64, error)
}

// Service exposes catalog browsing and admin book management.
type Service interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*BookView, error)
	Create(ctx context.Context, input CreateBookInput) (*BookView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo bookRepository
	logg *logger.Logger
}

// NewService builds a catalog service.
func NewService(repo bookRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	views := make([]BookView, 0, len(rows))
	for _, b := range rows {
		views = append(views, NewBookView(b))
	}
	return &ListResult{
		Books: views,
		Total: total,
		Page:  q.Page.Number,
		Limit: q.Page.Size,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookView, error) {
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewBookView(*book)
	return &view, nil
}

func (s *service) Create(ctx context.Context, input CreateBookInput) (*BookView, error) {
	book := &models.Book{
		Title:         strings.TrimSpace(input.Title),
		Author:        strings.TrimSpace(input.Author),
		Description:   input.Description,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		Category:      strings.TrimSpace(input.Category),
		ISBN:          normalizeISBN(input.ISBN),
		PublishedAt:   input.PublishedAt,
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, mapWriteError(err, "create book")
	}

	s.logg.Info(s.logg.WithField(ctx, "book_id", book.ID.String()), "book created")
	view := NewBookView(*book)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookView, error) {
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Price != nil {
		book.Price = *input.Price
	}
	if input.DiscountPrice != nil {
		book.DiscountPrice = input.DiscountPrice
	}
	if input.Stock != nil {
		book.Stock = *input.Stock
	}
	if input.Category != nil {
		book.Category = strings.TrimSpace(*input.Category)
	}
	if input.ISBN != nil {
		book.ISBN = normalizeISBN(input.ISBN)
	}
	if input.PublishedAt != nil {
		book.PublishedAt = input.PublishedAt
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, mapWriteError(err, "update book")
	}

	s.logg.Info(s.logg.WithField(ctx, "book_id", book.ID.String()), "book updated")
	view := NewBookView(*book)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "book_id", id.String()), "book deleted")
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}

func validateBook(b *models.Book) error {
	var problems validation.Problems
	if b.Title == "" {
		problems.Add("title", "is required")
	} else if len([]rune(b.Title)) > maxTitleLength {
		problems.Addf("title", "must be at most %d characters", maxTitleLength)
	}
	if b.Author == "" {
		problems.Add("author", "is required")
	}
	if b.Category == "" {
		problems.Add("category", "is required")
	}
	if b.Price.LessThan(minPrice) || b.Price.GreaterThan(maxPrice) {
		problems.Addf("price", "must be between %s and %s", minPrice, maxPrice)
	}
	if b.DiscountPrice != nil {
		if b.DiscountPrice.IsNegative() {
			problems.Add("discountPrice", "cannot be negative")
		} else if b.DiscountPrice.GreaterThan(b.Price) {
			problems.Add("discountPrice", "cannot exceed price")
		}
	}
	if b.Stock < 0 {
		problems.Add("stock", "cannot be negative")
	}
	return problems.Err()
}

func normalizeISBN(isbn *string) *string {
	if isbn == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*isbn)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a book with this title or isbn already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
