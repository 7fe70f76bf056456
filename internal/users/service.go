package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
)

// balanceAttempts bounds how often AddBalance re-reads after losing a version race.
const balanceAttempts = 3

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, expectedVersion int) (int64, error)
}

// Service exposes the account operations available to the signed-in user.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	AddBalance(ctx context.Context, userID uuid.UUID, input AddBalanceInput) (*UserDTO, error)
}

type service struct {
	repo userStore
	logg *logger.Logger
}

func NewService(repo userStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) AddBalance(ctx context.Context, userID uuid.UUID, input AddBalanceInput) (*UserDTO, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount.String()))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal number").
			WithDetails(map[string]string{"amount": input.Amount.String()})
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than 0")
	}

	for attempt := 1; attempt <= balanceAttempts; attempt++ {
		user, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := user.Balance.Add(amount)
		rows, err := s.repo.UpdateBalance(ctx, user.ID, next, user.Version)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
		}
		if rows == 0 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"user_id": userID.String(),
				"attempt": attempt,
			}), "balance version conflict")
			continue
		}

		user.Balance = next
		user.Version++
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id": userID.String(),
			"amount":  pricing.Present(amount).String(),
		}), "balance added")
		return FromModel(user), nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "balance changed concurrently, retry the request")
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
