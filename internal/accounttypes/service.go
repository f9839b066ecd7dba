package accounttypes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/robml/dbaccounting/pkg/db"
	"github.com/robml/dbaccounting/pkg/db/models"
	"github.com/robml/dbaccounting/pkg/enums"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
)

const maxNameLength = 64

// Service exposes account type operations.
type Service interface {
	List(ctx context.Context) ([]models.AccountType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error)
	Create(ctx context.Context, input CreateAccountTypeInput) (*models.AccountType, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAccountTypeInput) (*models.AccountType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreateAccountTypeInput captures the fields required to create an account type.
type CreateAccountTypeInput struct {
	Name        string            `json:"name"`
	BalanceType enums.BalanceType `json:"balance_type"`
	ParentID    *uuid.UUID        `json:"parent_id"`
}

// UpdateAccountTypeInput captures the mutable account type fields. Nil pointers
// leave a field untouched; ClearParent detaches the type from its parent.
type UpdateAccountTypeInput struct {
	Name        *string            `json:"name"`
	BalanceType *enums.BalanceType `json:"balance_type"`
	ParentID    *uuid.UUID         `json:"parent_id"`
	ClearParent bool               `json:"clear_parent"`
}

// NewService wires an account type service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account type repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.AccountType, error) {
	accountTypes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list account types")
	}
	return accountTypes, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error) {
	accountType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account type")
	}
	return accountType, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountTypeInput) (*models.AccountType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name exceeds 64 characters")
	}
	if !input.BalanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", input.BalanceType))
	}
	if input.ParentID != nil {
		if _, err := s.GetByID(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	accountType := &models.AccountType{
		Name:        name,
		BalanceType: input.BalanceType,
		ParentID:    input.ParentID,
	}
	if err := s.repo.Create(ctx, accountType); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("account type %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account type")
	}
	return accountType, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAccountTypeInput) (*models.AccountType, error) {
	accountType, err := s.GetByID(ctx, id)
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
		accountType.Name = name
	}
	if input.BalanceType != nil {
		if !input.BalanceType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", *input.BalanceType))
		}
		accountType.BalanceType = *input.BalanceType
	}
	switch {
	case input.ClearParent:
		accountType.ParentID = nil
	case input.ParentID != nil:
		if err := s.ensureNoCycle(ctx, id, *input.ParentID); err != nil {
			return nil, err
		}
		accountType.ParentID = input.ParentID
	}

	if err := s.repo.Update(ctx, accountType); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("account type %q already exists", accountType.Name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account type")
	}
	return accountType, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account type")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account type not found")
	}
	return nil
}

// ensureNoCycle walks the parent chain upward from the proposed parent. Hitting
// the node being updated would close a loop in the hierarchy.
func (s *service) ensureNoCycle(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account type cannot be its own parent")
	}

	visited := map[uuid.UUID]bool{id: true}
	current := parentID
	for {
		if visited[current] {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "account type hierarchy cycle detected")
		}
		visited[current] = true

		node, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "parent account type not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent account type")
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
}
