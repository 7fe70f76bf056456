package books

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo
}

func validInput() CreateBookInput {
	return CreateBookInput{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Price:    decimal.NewFromInt(120),
		Stock:    4,
		Category: "scifi",
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil, logger.New(logger.Options{Output: io.Discard}))
	require.Error(t, err)
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Rating.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "120", got.Price.String())
}

func TestServiceCreateDuplicateTitleConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := map[string]func(*CreateBookInput){
		"price too low":    func(in *CreateBookInput) { in.Price = decimal.NewFromInt(5) },
		"price too high":   func(in *CreateBookInput) { in.Price = decimal.NewFromInt(10001) },
		"long title":       func(in *CreateBookInput) { in.Title = "This title is far longer than thirty" },
		"override > price": func(in *CreateBookInput) { p := decimal.NewFromInt(200); in.DiscountPrice = &p },
		"negative stock":   func(in *CreateBookInput) { in.Stock = -1 },
		"missing author":   func(in *CreateBookInput) { in.Author = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	stock := 9
	override := decimal.NewFromInt(100)
	updated, err := svc.Update(ctx, created.ID, UpdateBookInput{Stock: &stock, DiscountPrice: &override})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "Dune", updated.Title)
	require.NotNil(t, updated.DiscountPrice)
	assert.Equal(t, "100", updated.DiscountPrice.String())

	_, err = svc.Update(ctx, uuid.New(), UpdateBookInput{Stock: &stock})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))
}

func TestServiceListReportsPage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	q, err := ParseListQuery(RawListQuery{Offset: "1", Limit: "2"})
	require.NoError(t, err)
	res, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 2, res.Limit)
	require.Len(t, res.Books, 1)
}
