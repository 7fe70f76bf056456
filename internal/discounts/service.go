package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Book, error)
}

// Service manages the discount campaign lifecycle.
type Service interface {
	List(ctx context.Context) ([]CampaignView, error)
	Get(ctx context.Context, id uuid.UUID) (*CampaignView, error)
	Create(ctx context.Context, actor outbox.ActorRef, input CreateInput) (*CampaignView, error)
	Update(ctx context.Context, actor outbox.ActorRef, id uuid.UUID, input UpdateInput) (*CampaignView, error)
	// Delete removes bookIDs from the campaign when any are given, leaving the
	// campaign in place even if it ends up empty. Without ids it deletes the
	// campaign. The returned view is nil after a full delete.
	Delete(ctx context.Context, actor outbox.ActorRef, id uuid.UUID, bookIDs []uuid.UUID) (*CampaignView, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	books  bookFinder
	outbox outbox.Emitter
	rules  Rules
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the discount service.
func NewService(tx txRunner, repo *Repository, books bookFinder, emitter outbox.Emitter, rules Rules, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(rules.AllowedCountries) == 0 {
		rules = DefaultRules()
	}
	return &service{
		tx:     tx,
		repo:   repo,
		books:  books,
		outbox: emitter,
		rules:  rules,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context) ([]CampaignView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	views := make([]CampaignView, 0, len(rows))
	for _, c := range rows {
		views = append(views, NewCampaignView(c))
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CampaignView, error) {
	campaign, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	view := NewCampaignView(*campaign)
	return &view, nil
}

func (s *service) Create(ctx context.Context, actor outbox.ActorRef, input CreateInput) (*CampaignView, error) {
	rep := validateCreate(input, s.now(), s.rules)
	if err := rep.invalid.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureBooksExist(ctx, input.BookIDs); err != nil {
		return nil, err
	}

	campaign := &models.DiscountCampaign{
		Percentage: input.Percentage,
		StartDate:  input.StartDate.UTC(),
		EndDate:    input.EndDate.UTC(),
	}
	for i, id := range input.BookIDs {
		campaign.Books = append(campaign.Books, models.DiscountCampaignBook{BookID: id, Position: i})
	}
	for _, c := range rep.countries {
		campaign.Countries = append(campaign.Countries, models.DiscountCampaignCountry{Country: c})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureUnassigned(ctx, repo, input.BookIDs); err != nil {
			return err
		}
		if err := rep.conflicts.ErrWithCode(pkgerrors.CodeConflict); err != nil {
			return err
		}
		if err := repo.Create(ctx, campaign); err != nil {
			return mapLinkError(err, "create discount")
		}
		return s.emitChanged(ctx, tx, actor, *campaign)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "discount_id", campaign.ID.String()), "discount created")
	view := NewCampaignView(*campaign)
	return &view, nil
}

func (s *service) Update(ctx context.Context, actor outbox.ActorRef, id uuid.UUID, input UpdateInput) (*CampaignView, error) {
	if len(input.BookIDs) > 0 {
		var rep report
		rep.checkBookIDs(input.BookIDs, false)
		if err := rep.invalid.Err(); err != nil {
			return nil, err
		}
		if err := s.ensureBooksExist(ctx, input.BookIDs); err != nil {
			return nil, err
		}
	}

	var updated *models.DiscountCampaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		rep := validateUpdate(input, campaign.StartDate.UTC(), campaign.EndDate.UTC(), s.now(), s.rules)
		if err := rep.invalid.Err(); err != nil {
			return err
		}
		if err := ensureUnassigned(ctx, repo, input.BookIDs); err != nil {
			return err
		}
		if err := rep.conflicts.ErrWithCode(pkgerrors.CodeConflict); err != nil {
			return err
		}

		if input.Percentage != nil || input.StartDate != nil || input.EndDate != nil {
			if input.Percentage != nil {
				campaign.Percentage = *input.Percentage
			}
			if input.StartDate != nil {
				campaign.StartDate = input.StartDate.UTC()
			}
			if input.EndDate != nil {
				campaign.EndDate = input.EndDate.UTC()
			}
			if err := repo.UpdateTerms(ctx, campaign); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount")
			}
		}

		links := make([]models.DiscountCampaignBook, 0, len(input.BookIDs))
		next := nextPosition(*campaign)
		for i, bookID := range input.BookIDs {
			links = append(links, models.DiscountCampaignBook{CampaignID: campaign.ID, BookID: bookID, Position: next + i})
		}
		if err := repo.AddBooks(ctx, links); err != nil {
			return mapLinkError(err, "add discount books")
		}

		existing := make(map[enums.Country]struct{}, len(campaign.Countries))
		for _, c := range campaign.Countries {
			existing[c.Country] = struct{}{}
		}
		var countryLinks []models.DiscountCampaignCountry
		for _, c := range rep.countries {
			if _, ok := existing[c]; !ok {
				countryLinks = append(countryLinks, models.DiscountCampaignCountry{CampaignID: campaign.ID, Country: c})
			}
		}
		if err := repo.AddCountries(ctx, countryLinks); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add discount countries")
		}

		updated, err = s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		return s.emitChanged(ctx, tx, actor, *updated)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "discount_id", id.String()), "discount updated")
	view := NewCampaignView(*updated)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, actor outbox.ActorRef, id uuid.UUID, bookIDs []uuid.UUID) (*CampaignView, error) {
	if len(bookIDs) > 0 {
		var rep report
		rep.checkBookIDs(bookIDs, true)
		if err := rep.invalid.Err(); err != nil {
			return nil, err
		}
	}

	var remaining *models.DiscountCampaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		if len(bookIDs) == 0 {
			if _, err := repo.Delete(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount")
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventDiscountDeleted,
				AggregateType: enums.AggregateDiscountCampaign,
				AggregateID:   id,
				Actor:         &actor,
				Data: payloads.DiscountDeletedEvent{
					CampaignID: id,
					BookIDs:    campaign.BookIDs(),
				},
			})
		}

		for _, bookID := range bookIDs {
			if !campaign.HasBook(bookID) {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "book %s is not part of this discount", bookID)
			}
		}
		if _, err := repo.RemoveBooks(ctx, id, bookIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove discount books")
		}
		remaining, err = s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		return s.emitChanged(ctx, tx, actor, *remaining)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"discount_id": id.String(), "removed_books": len(bookIDs)})
	if remaining == nil {
		s.logg.Info(logCtx, "discount deleted")
		return nil, nil
	}
	s.logg.Info(logCtx, "discount books removed")
	view := NewCampaignView(*remaining)
	return &view, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.DiscountCampaign, error) {
	campaign, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	return campaign, nil
}

func (s *service) ensureBooksExist(ctx context.Context, ids []uuid.UUID) error {
	found, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load books")
	}
	if len(found) != len(ids) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "some books do not exist")
	}
	return nil
}

func (s *service) emitChanged(ctx context.Context, tx *gorm.DB, actor outbox.ActorRef, c models.DiscountCampaign) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDiscountChanged,
		AggregateType: enums.AggregateDiscountCampaign,
		AggregateID:   c.ID,
		Actor:         &actor,
		Data: payloads.DiscountChangedEvent{
			CampaignID: c.ID,
			Percentage: c.Percentage,
			StartDate:  c.StartDate.UTC(),
			EndDate:    c.EndDate.UTC(),
			BookIDs:    c.BookIDs(),
			Countries:  c.CountryCodes(),
		},
	})
}

// ensureUnassigned rejects books already referenced by any campaign.
func ensureUnassigned(ctx context.Context, repo *Repository, bookIDs []uuid.UUID) error {
	if len(bookIDs) == 0 {
		return nil
	}
	taken, err := repo.CampaignsForBooks(ctx, bookIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check discount books")
	}
	if len(taken) == 0 {
		return nil
	}
	details := make(map[string]string, len(taken))
	for bookID, campaignID := range taken {
		details[bookID.String()] = campaignID.String()
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "a book can belong to only one discount").WithDetails(details)
}

func nextPosition(c models.DiscountCampaign) int {
	next := 0
	for _, b := range c.Books {
		if b.Position >= next {
			next = b.Position + 1
		}
	}
	return next
}

// mapLinkError turns a lost race on the one-campaign-per-book index into a conflict.
func mapLinkError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a book can belong to only one discount")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
