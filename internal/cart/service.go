package cart

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
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Buyer is the authenticated cart owner.
type Buyer struct {
	UserID  uuid.UUID
	Country enums.Country
}

// Service manages a user's cart. Stock is read at operation time and never reserved.
type Service interface {
	Get(ctx context.Context, buyer Buyer) (*CartView, error)
	AddItem(ctx context.Context, buyer Buyer, input ItemInput) (*CartView, error)
	// UpdateItem only lowers a line: a smaller quantity decrements it, the
	// same quantity removes it, a larger one is rejected.
	UpdateItem(ctx context.Context, buyer Buyer, input ItemInput) (*CartView, error)
}

type service struct {
	tx     txRunner
	repo   CartRepository
	books  BookFinder
	pricer *Pricer
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the cart service.
func NewService(tx txRunner, repo CartRepository, books BookFinder, campaigns CampaignFinder, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if campaigns == nil {
		return nil, fmt.Errorf("campaign finder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:     tx,
		repo:   repo,
		books:  books,
		pricer: NewPricer(books, campaigns),
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, buyer Buyer) (*CartView, error) {
	cart, err := s.repo.FindByUser(ctx, buyer.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cart exists for this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.view(ctx, buyer, cart)
}

func (s *service) AddItem(ctx context.Context, buyer Buyer, input ItemInput) (*CartView, error) {
	if err := checkItem(input); err != nil {
		return nil, err
	}

	book, err := s.books.FindByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	var cart *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		cart, err = repo.FindByUser(ctx, buyer.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			cart = &models.Cart{UserID: buyer.UserID}
			if err := repo.Create(ctx, cart); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was created concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		item := cart.Item(input.BookID)
		wanted := input.Quantity
		if item != nil {
			wanted += item.Quantity
		}
		if wanted > book.Stock {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientResource, "only %d copies in stock", book.Stock).
				WithDetails(map[string]any{"bookId": book.ID, "stock": book.Stock, "requested": wanted})
		}

		if item == nil {
			cart.Items = append(cart.Items, models.CartItem{CartID: cart.ID, BookID: input.BookID})
			item = &cart.Items[len(cart.Items)-1]
		}
		item.Quantity = wanted
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":  cart.ID.String(),
		"book_id":  input.BookID.String(),
		"quantity": input.Quantity,
	}), "cart item added")
	return s.view(ctx, buyer, cart)
}

func (s *service) UpdateItem(ctx context.Context, buyer Buyer, input ItemInput) (*CartView, error) {
	if err := checkItem(input); err != nil {
		return nil, err
	}

	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		cart, err = repo.FindByUser(ctx, buyer.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no cart exists for this user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		item := cart.Item(input.BookID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "this book is not in the cart")
		}

		switch {
		case input.Quantity > item.Quantity:
			var problems validation.Problems
			problems.Addf("quantity", "cannot exceed the %d already in the cart", item.Quantity)
			return problems.Err()
		case input.Quantity == item.Quantity:
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
			}
			cart.Items = removeItem(cart.Items, item.ID)
		default:
			item.Quantity -= input.Quantity
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":  cart.ID.String(),
		"book_id":  input.BookID.String(),
		"quantity": input.Quantity,
	}), "cart item reduced")
	return s.view(ctx, buyer, cart)
}

func (s *service) view(ctx context.Context, buyer Buyer, cart *models.Cart) (*CartView, error) {
	priced, err := s.pricer.Price(ctx, Lines(cart.Items), buyer.Country, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
	}
	return newCartView(cart, priced), nil
}

func checkItem(input ItemInput) error {
	var problems validation.Problems
	if input.BookID == uuid.Nil {
		problems.Add("bookId", "is required")
	}
	if input.Quantity < 1 {
		problems.Add("quantity", "must be at least 1")
	}
	return problems.Err()
}

func removeItem(items []models.CartItem, id uuid.UUID) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
