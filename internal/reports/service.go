package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/pkg/db/models"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
)

type accountTypeSource interface {
	List(ctx context.Context) ([]models.AccountType, error)
	Count(ctx context.Context) (int64, error)
}

type accountSource interface {
	List(ctx context.Context) ([]models.Account, error)
	Count(ctx context.Context) (int64, error)
}

type transactionSource interface {
	Count(ctx context.Context) (int64, error)
}

type rollupSource interface {
	Ledger(ctx context.Context, accountTypeID uuid.UUID) (*ledger.Node, error)
}

// Service produces the read-only reporting views.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	BalanceSheet(ctx context.Context) (*BalanceSheet, error)
}

type service struct {
	types        accountTypeSource
	accounts     accountSource
	transactions transactionSource
	rollups      rollupSource
}

// Summary counts the records in the ledger.
type Summary struct {
	AccountTypes int64 `json:"account_types"`
	Accounts     int64 `json:"accounts"`
	Transactions int64 `json:"transactions"`
}

// BalanceSheet lists the current ledger state: all types, all accounts, and a
// roll-up per root account type.
type BalanceSheet struct {
	Date         time.Time            `json:"date"`
	AccountTypes []models.AccountType `json:"account_types"`
	Accounts     []models.Account     `json:"accounts"`
	Rollups      []*ledger.Node       `json:"rollups"`
}

// NewService wires a reports service with its read-only sources.
func NewService(types accountTypeSource, accounts accountSource, transactions transactionSource, rollups rollupSource) (Service, error) {
	if types == nil {
		return nil, fmt.Errorf("account type source required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account source required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transaction source required")
	}
	if rollups == nil {
		return nil, fmt.Errorf("rollup source required")
	}
	return &service{types: types, accounts: accounts, transactions: transactions, rollups: rollups}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	typeCount, err := s.types.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count account types")
	}
	accountCount, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accounts")
	}
	txnCount, err := s.transactions.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transactions")
	}
	return &Summary{
		AccountTypes: typeCount,
		Accounts:     accountCount,
		Transactions: txnCount,
	}, nil
}

func (s *service) BalanceSheet(ctx context.Context) (*BalanceSheet, error) {
	accountTypes, err := s.types.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list account types")
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}

	sheet := &BalanceSheet{
		Date:         time.Now().UTC(),
		AccountTypes: accountTypes,
		Accounts:     accounts,
		Rollups:      []*ledger.Node{},
	}
	for _, accountType := range accountTypes {
		if accountType.ParentID != nil {
			continue
		}
		node, err := s.rollups.Ledger(ctx, accountType.ID)
		if err != nil {
			return nil, err
		}
		sheet.Rollups = append(sheet.Rollups, node)
	}
	return sheet, nil
}
