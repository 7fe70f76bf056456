package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/users"
	"github.com/pallab-BJIT/mid-term-project/pkg/config"
	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/security"
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

// RegisterService handles self-service sign-up.
type RegisterService interface {
	Register(ctx context.Context, req SignupRequest) (*users.UserDTO, error)
}

type registerUsers interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Users          registerUsers
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type registerService struct {
	users       registerUsers
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &registerService{
		users:       params.Users,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req SignupRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var problems validation.Problems
	if email == "" {
		problems.Add("email", "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		problems.Add("name", "name is required")
	}
	if req.Password != req.ConfirmPassword {
		problems.Add("confirmPassword", "password and confirm password should be same")
	} else if err := security.CheckStrength(req.Password); err != nil {
		problems.Add("password", err.Error())
	}
	country := enums.NormalizeCountry(req.Address.Country)
	if country == "" {
		problems.Add("address.country", "country is required")
	}
	rank := enums.RankCustomer
	if strings.TrimSpace(req.Rank) != "" {
		parsed, err := enums.ParseRank(strings.ToLower(strings.TrimSpace(req.Rank)))
		if err != nil {
			problems.Add("rank", "rank must be admin or customer")
		}
		rank = parsed
	}
	if !problems.Empty() {
		return nil, problems.Err()
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Phone:        req.Phone,
		Street:       req.Address.Street,
		City:         req.Address.City,
		Country:      country,
		Rank:         rank,
	})
	if err != nil {
		// lost the race against a concurrent sign-up for the same email
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"rank":    user.Rank.String(),
	}), "user registered")
	return users.FromModel(user), nil
}
