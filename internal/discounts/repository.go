package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// Repository persists discount campaigns and their book/country links.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Countries", func(db *gorm.DB) *gorm.DB {
			return db.Order("country ASC")
		})
}

// FindByID loads a campaign with its books and countries.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCampaign, error) {
	var campaign models.DiscountCampaign
	if err := r.preloaded(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// List returns every campaign, newest first.
func (r *Repository) List(ctx context.Context) ([]models.DiscountCampaign, error) {
	var rows []models.DiscountCampaign
	err := r.preloaded(ctx).
		Order("created_at DESC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// FindActiveForBooks returns the campaigns that reference any of bookIDs, are
// running at now and include country.
func (r *Repository) FindActiveForBooks(ctx context.Context, bookIDs []uuid.UUID, country enums.Country, now time.Time) ([]models.DiscountCampaign, error) {
	if len(bookIDs) == 0 || country == "" {
		return nil, nil
	}
	var rows []models.DiscountCampaign
	err := r.preloaded(ctx).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("id IN (?)", r.db.Model(&models.DiscountCampaignBook{}).Select("campaign_id").Where("book_id IN ?", bookIDs)).
		Where("id IN (?)", r.db.Model(&models.DiscountCampaignCountry{}).Select("campaign_id").Where("country = ?", country)).
		Find(&rows).Error
	return rows, err
}

// CampaignsForBooks maps each already-referenced book id to its campaign.
func (r *Repository) CampaignsForBooks(ctx context.Context, bookIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID)
	if len(bookIDs) == 0 {
		return out, nil
	}
	var links []models.DiscountCampaignBook
	if err := r.db.WithContext(ctx).Where("book_id IN ?", bookIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.BookID] = l.CampaignID
	}
	return out, nil
}

// Create inserts the campaign and then its links. Links are written with
// plain inserts so a book already claimed by another campaign fails loudly.
func (r *Repository) Create(ctx context.Context, campaign *models.DiscountCampaign) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(campaign).Error; err != nil {
		return err
	}
	for i := range campaign.Books {
		campaign.Books[i].CampaignID = campaign.ID
	}
	for i := range campaign.Countries {
		campaign.Countries[i].CampaignID = campaign.ID
	}
	if err := r.AddBooks(ctx, campaign.Books); err != nil {
		return err
	}
	return r.AddCountries(ctx, campaign.Countries)
}

// UpdateTerms stores percentage and window.
func (r *Repository) UpdateTerms(ctx context.Context, campaign *models.DiscountCampaign) error {
	return r.db.WithContext(ctx).
		Model(campaign).
		Updates(map[string]any{
			"percentage": campaign.Percentage,
			"start_date": campaign.StartDate,
			"end_date":   campaign.EndDate,
		}).Error
}

func (r *Repository) AddBooks(ctx context.Context, links []models.DiscountCampaignBook) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *Repository) AddCountries(ctx context.Context, links []models.DiscountCampaignCountry) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// RemoveBooks unlinks bookIDs from the campaign and reports how many went.
func (r *Repository) RemoveBooks(ctx context.Context, campaignID uuid.UUID, bookIDs []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("campaign_id = ? AND book_id IN ?", campaignID, bookIDs).
		Delete(&models.DiscountCampaignBook{})
	return res.RowsAffected, res.Error
}

// Delete removes the campaign and its links.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("campaign_id = ?", id).Delete(&models.DiscountCampaignBook{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("campaign_id = ?", id).Delete(&models.DiscountCampaignCountry{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("id = ?", id).Delete(&models.DiscountCampaign{})
	return res.RowsAffected, res.Error
}
