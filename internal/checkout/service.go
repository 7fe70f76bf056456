package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/cart"
	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/internal/transactions"
	"github.com/pallab-BJIT/mid-term-project/internal/users"
	pkgcheckout "github.com/pallab-BJIT/mid-term-project/pkg/checkout"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/metrics"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox/payloads"
)

// Commit sub-steps reported in Inconsistent error details.
const (
	stepPrice       = "price"
	stepVerifyStock = "verify_stock"
	stepDecrement   = "decrement_stock"
	stepRecord      = "create_transaction"
	stepClearCart   = "clear_cart"
	stepDebit       = "debit_balance"
	stepEmit        = "emit_event"
	stepCommit      = "commit"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a cart into a transaction.
type Service interface {
	// Execute resolves, prices, authorizes and verifies without writing, then
	// commits every write in one database transaction.
	Execute(ctx context.Context, buyer Buyer, input Input) (*transactions.View, error)
}

// Deps lists the collaborators of the checkout service.
type Deps struct {
	Tx           txRunner
	Users        *users.Repository
	Carts        cart.CartRepository
	Books        cart.BookFinder
	Campaigns    cart.CampaignFinder
	Stock        *Repository
	Transactions *transactions.Repository
	Outbox       outbox.Emitter
	Metrics      *metrics.CheckoutMetrics
	Logger       *logger.Logger
}

type service struct {
	tx      txRunner
	users   *users.Repository
	carts   cart.CartRepository
	books   cart.BookFinder
	pricer  *cart.Pricer
	stock   *Repository
	txns    *transactions.Repository
	outbox  outbox.Emitter
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(d Deps) (Service, error) {
	switch {
	case d.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case d.Users == nil:
		return nil, fmt.Errorf("user repository required")
	case d.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case d.Books == nil:
		return nil, fmt.Errorf("book finder required")
	case d.Campaigns == nil:
		return nil, fmt.Errorf("campaign finder required")
	case d.Stock == nil:
		return nil, fmt.Errorf("stock repository required")
	case d.Transactions == nil:
		return nil, fmt.Errorf("transaction repository required")
	case d.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case d.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:      d.Tx,
		users:   d.Users,
		carts:   d.Carts,
		books:   d.Books,
		pricer:  cart.NewPricer(d.Books, d.Campaigns),
		stock:   d.Stock,
		txns:    d.Transactions,
		outbox:  d.Outbox,
		metrics: d.Metrics,
		logg:    d.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Execute(ctx context.Context, buyer Buyer, input Input) (*transactions.View, error) {
	started := time.Now()
	view, err := s.execute(ctx, buyer, input)
	s.metrics.Observe(outcome(err), time.Since(started))
	if err != nil && pkgerrors.IsCode(err, pkgerrors.CodeInconsistent) {
		s.logg.Error(s.logg.WithField(ctx, "cart_id", input.CartID.String()), "checkout left inconsistent", err)
	}
	return view, err
}

func (s *service) execute(ctx context.Context, buyer Buyer, input Input) (*transactions.View, error) {
	method, err := input.paymentMethod()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	if input.CartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}

	user, record, err := s.resolve(ctx, buyer.UserID, input.CartID)
	if err != nil {
		return nil, err
	}
	lines := cart.Lines(record.Items)

	priced, err := s.pricer.Price(ctx, lines, user.Country, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
	}
	if len(priced.Missing) > 0 {
		return nil, pkgerrors.Inconsistent(stepPrice, fmt.Errorf("cart references %d missing book(s)", len(priced.Missing)))
	}
	total := priced.Quote.Total

	if user.Balance.LessThan(total) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientResource, "insufficient balance").WithDetails(map[string]any{
			"balance": user.Balance.String(),
			"total":   total.Round(2).String(),
		})
	}

	if err := s.verifyStock(ctx, lines); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:        user.ID,
		PaymentMethod: method,
		Total:         total,
		Items:         make([]models.TransactionItem, 0, len(priced.Quote.Lines)),
	}
	decrements := make([]StockDecrement, 0, len(priced.Quote.Lines))
	eventLines := make([]payloads.TransactionLine, 0, len(priced.Quote.Lines))
	for _, l := range priced.Quote.Lines {
		txn.Items = append(txn.Items, models.TransactionItem{
			BookID:    l.BookID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Amount,
		})
		decrements = append(decrements, StockDecrement{BookID: l.BookID, Quantity: l.Quantity})
		eventLines = append(eventLines, payloads.TransactionLine{
			BookID:    l.BookID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Amount,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.stock.WithTx(tx).DecrementStock(ctx, decrements); err != nil {
			var exhausted *StockExhaustedError
			if errors.As(err, &exhausted) {
				return pkgerrors.New(pkgerrors.CodeInsufficientResource, "stock ran out during checkout").
					WithDetails(map[string]any{"bookId": exhausted.BookID})
			}
			return pkgerrors.Inconsistent(stepDecrement, err)
		}
		if err := s.txns.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Inconsistent(stepRecord, err)
		}
		if _, err := s.carts.WithTx(tx).ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Inconsistent(stepClearCart, err)
		}

		rows, err := s.users.WithTx(tx).UpdateBalance(ctx, user.ID, user.Balance.Sub(total), user.Version)
		if err != nil {
			return pkgerrors.Inconsistent(stepDebit, err)
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "account changed during checkout, retry the request")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventTransactionCreated,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID, Rank: user.Rank.String()},
			Data: payloads.TransactionCreatedEvent{
				TransactionID: txn.ID,
				UserID:        user.ID,
				PaymentMethod: method,
				Total:         total,
				Lines:         eventLines,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Inconsistent(stepEmit, err)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Inconsistent(stepCommit, err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID.String(),
		"user_id":        user.ID.String(),
		"cart_id":        record.ID.String(),
		"total":          total.Round(2).String(),
		"lines":          len(txn.Items),
	}), "checkout completed")

	return transactions.NewView(txn), nil
}

// resolve loads the buyer and their non-empty cart. A cart owned by someone
// else is reported exactly like a missing one.
func (s *service) resolve(ctx context.Context, userID, cartID uuid.UUID) (*models.User, *models.Cart, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	record, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if record.UserID != user.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if len(record.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return user, record, nil
}

func (s *service) verifyStock(ctx context.Context, lines []pricing.Line) error {
	rows, err := s.books.FindByIDs(ctx, cart.DistinctBookIDs(lines))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload books")
	}
	byID := make(map[uuid.UUID]models.Book, len(rows))
	for _, b := range rows {
		byID[b.ID] = b
	}

	checks := make([]pkgcheckout.StockCheckInput, 0, len(lines))
	for _, l := range lines {
		book, ok := byID[l.BookID]
		if !ok {
			return pkgerrors.Inconsistent(stepVerifyStock, fmt.Errorf("book %s no longer exists", l.BookID))
		}
		checks = append(checks, pkgcheckout.StockCheckInput{
			BookID:    book.ID,
			Title:     book.Title,
			Available: book.Stock,
			Requested: l.Quantity,
		})
	}
	return pkgcheckout.VerifyStock(checks)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCompleted
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		return metrics.OutcomeConflict
	case pkgerrors.IsCode(err, pkgerrors.CodeInconsistent):
		return metrics.OutcomeInconsistent
	default:
		return metrics.OutcomeRejected
	}
}
