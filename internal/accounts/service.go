package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/robml/dbaccounting/internal/accounttypes"
	"github.com/robml/dbaccounting/pkg/db"
	"github.com/robml/dbaccounting/pkg/db/models"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
)

const maxNameLength = 64

// Service exposes account operations.
type Service interface {
	List(ctx context.Context) ([]models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	types accounttypes.Service
}

// CreateAccountInput captures the fields required to open an account.
type CreateAccountInput struct {
	Name          string           `json:"name"`
	AccountTypeID uuid.UUID        `json:"account_type_id"`
	Balance       *decimal.Decimal `json:"balance"`
}

// UpdateAccountInput captures the mutable account fields. A balance update here
// is an administrative restatement; postings go through the ledger service.
type UpdateAccountInput struct {
	Name          *string          `json:"name"`
	AccountTypeID *uuid.UUID       `json:"account_type_id"`
	Balance       *decimal.Decimal `json:"balance"`
}

// NewService wires an account service with its repository and the account type service.
func NewService(repo Repository, types accounttypes.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if types == nil {
		return nil, fmt.Errorf("account type service required")
	}
	return &service{repo: repo, types: types}, nil
}

func (s *service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return accounts, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name exceeds 64 characters")
	}
	if input.AccountTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account type id is required")
	}
	if _, err := s.types.GetByID(ctx, input.AccountTypeID); err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:          name,
		AccountTypeID: input.AccountTypeID,
	}
	if input.Balance != nil {
		account.Balance = *input.Balance
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("account %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return account, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*models.Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		if len(name) > maxNameLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name exceeds 64 characters")
		}
		account.Name = name
	}
	if input.AccountTypeID != nil {
		if _, err := s.types.GetByID(ctx, *input.AccountTypeID); err != nil {
			return nil, err
		}
		account.AccountTypeID = *input.AccountTypeID
		account.Type = nil
	}
	if input.Balance != nil {
		account.Balance = *input.Balance
	}

	if err := s.repo.Update(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("account %q already exists", account.Name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
	}
	return account, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return nil
}
