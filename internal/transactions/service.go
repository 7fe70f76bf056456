package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/pagination"
)

type lister interface {
	List(ctx context.Context, userID *uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Transaction, error)
}

// Service reads transaction history.
type Service interface {
	// ListAll is the admin view across every customer.
	ListAll(ctx context.Context, params pagination.Params) (*Page, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
}

type service struct {
	repo lister
	logg *logger.Logger
}

func NewService(repo lister, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*Page, error) {
	return s.list(ctx, nil, params)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	return s.list(ctx, &userID, params)
}

func (s *service) list(ctx context.Context, userID *uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, userID, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	page := &Page{Transactions: make([]View, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for i := range rows {
		page.Transactions = append(page.Transactions, *NewView(&rows[i]))
	}
	return page, nil
}
