package discounts

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/books"
	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
)

var admin = outbox.ActorRef{UserID: uuid.New(), Rank: string(enums.RankAdmin)}

type fixture struct {
	conn *gorm.DB
	svc  Service
	repo *Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{Output: io.Discard})
	repo := NewRepository(conn)
	svc, err := NewService(
		db.Wrap(conn),
		repo,
		books.NewRepository(conn),
		outbox.NewService(outbox.NewRepository(conn), logg),
		DefaultRules(),
		logg,
	)
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return fixedNow }
	return fixture{conn: conn, svc: svc, repo: repo}
}

func (f fixture) books(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, dbtest.SeedBook(t, f.conn, nil).ID)
	}
	return ids
}

func (f fixture) create(t *testing.T, bookIDs []uuid.UUID) *CampaignView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), admin, CreateInput{
		BookIDs:    bookIDs,
		Countries:  []string{"BD"},
		Percentage: 20,
		StartDate:  fixedNow,
		EndDate:    fixedNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return view
}

func countEvents(t *testing.T, conn *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func TestCreatePersistsCampaignInOrder(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 3)

	view := f.create(t, ids)
	assert.Equal(t, ids, view.BookIDs)
	assert.Equal(t, []enums.Country{enums.CountryBangladesh}, view.Countries)

	got, err := f.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, ids, got.BookIDs)
	assert.EqualValues(t, 1, countEvents(t, f.conn, enums.EventDiscountChanged))
}

func TestCreateRejectsUnknownBook(t *testing.T) {
	f := newFixture(t)
	ids := append(f.books(t, 1), uuid.New())

	_, err := f.svc.Create(context.Background(), admin, CreateInput{
		BookIDs: ids, Countries: []string{"US"}, Percentage: 10,
		StartDate: fixedNow, EndDate: fixedNow.Add(time.Hour),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCreateRejectsBookInAnotherCampaign(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 2)
	f.create(t, ids[:1])

	_, err := f.svc.Create(context.Background(), admin, CreateInput{
		BookIDs: ids, Countries: []string{"US"}, Percentage: 10,
		StartDate: fixedNow.Add(10 * 24 * time.Hour), EndDate: fixedNow.Add(11 * 24 * time.Hour),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	var count int64
	require.NoError(t, f.conn.Model(&models.DiscountCampaign{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateAppendsBooksAndDedupesCountries(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 3)
	view := f.create(t, ids[:1])

	pct := 35
	updated, err := f.svc.Update(context.Background(), admin, view.ID, UpdateInput{
		BookIDs:    ids[1:],
		Countries:  []string{"bd", "IND"},
		Percentage: &pct,
	})
	require.NoError(t, err)
	assert.Equal(t, ids, updated.BookIDs)
	assert.ElementsMatch(t, []enums.Country{enums.CountryBangladesh, enums.CountryIndia}, updated.Countries)
	assert.Equal(t, 35, updated.Percentage)
	assert.True(t, updated.StartDate.Equal(fixedNow))
}

func TestUpdateRejectsBookAlreadyInCampaign(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 2)
	first := f.create(t, ids[:1])
	f.create(t, ids[1:])

	_, err := f.svc.Update(context.Background(), admin, first.ID, UpdateInput{BookIDs: ids[1:]})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = f.svc.Update(context.Background(), admin, first.ID, UpdateInput{BookIDs: ids[:1]})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "re-adding own book, got %v", err)
}

func TestUpdateMergedWindowAndMissingCampaign(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.books(t, 1))

	end := fixedNow.Add(6 * 24 * time.Hour)
	_, err := f.svc.Update(context.Background(), admin, view.ID, UpdateInput{EndDate: &end})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	pct := 10
	_, err = f.svc.Update(context.Background(), admin, uuid.New(), UpdateInput{Percentage: &pct})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestDeleteShrinksButKeepsEmptyCampaign(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 2)
	view := f.create(t, ids)
	ctx := context.Background()

	_, err := f.svc.Delete(ctx, admin, view.ID, []uuid.UUID{uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	shrunk, err := f.svc.Delete(ctx, admin, view.ID, ids[:1])
	require.NoError(t, err)
	assert.Equal(t, ids[1:], shrunk.BookIDs)

	shrunk, err = f.svc.Delete(ctx, admin, view.ID, ids[1:])
	require.NoError(t, err)
	assert.Empty(t, shrunk.BookIDs)

	_, err = f.svc.Get(ctx, view.ID)
	require.NoError(t, err)
}

func TestDeleteWithoutBooksRemovesCampaign(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 1)
	view := f.create(t, ids)
	ctx := context.Background()

	deleted, err := f.svc.Delete(ctx, admin, view.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	_, err = f.svc.Get(ctx, view.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.EqualValues(t, 1, countEvents(t, f.conn, enums.EventDiscountDeleted))

	// the freed book can join a new campaign
	f.create(t, ids)
}

func TestFindActiveForBooks(t *testing.T) {
	f := newFixture(t)
	ids := f.books(t, 3)
	active := f.create(t, ids[:1])
	_, err := f.svc.Create(context.Background(), admin, CreateInput{
		BookIDs: ids[1:2], Countries: []string{"US"}, Percentage: 10,
		StartDate: fixedNow, EndDate: fixedNow.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), admin, CreateInput{
		BookIDs: ids[2:], Countries: []string{"BD"}, Percentage: 10,
		StartDate: fixedNow.Add(24 * time.Hour), EndDate: fixedNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	rows, err := f.repo.FindActiveForBooks(context.Background(), ids, enums.CountryBangladesh, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)
	assert.True(t, rows[0].HasBook(ids[0]))

	rows, err = f.repo.FindActiveForBooks(context.Background(), ids, enums.CountryIndia, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListReturnsAll(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.books(t, 1))
	f.create(t, f.books(t, 1))

	views, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
