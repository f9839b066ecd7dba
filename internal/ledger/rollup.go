package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/robml/dbaccounting/pkg/db/models"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
)

// Node is the recursive roll-up of one account type: its direct accounts, its
// child subtrees, and the grand total of the whole subtree.
type Node struct {
	AccountType   models.AccountType `json:"account_type"`
	Accounts      []models.Account   `json:"accounts"`
	AccountsTotal decimal.Decimal    `json:"accounts_total"`
	Children      []*Node            `json:"children"`
	Total         decimal.Decimal    `json:"total"`
}

func (s *service) Ledger(ctx context.Context, accountTypeID uuid.UUID) (*Node, error) {
	visited := map[uuid.UUID]bool{}
	return s.buildNode(ctx, accountTypeID, visited)
}

func (s *service) buildNode(ctx context.Context, accountTypeID uuid.UUID, visited map[uuid.UUID]bool) (*Node, error) {
	if visited[accountTypeID] {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "account type hierarchy cycle detected")
	}
	visited[accountTypeID] = true

	accountType, err := s.types.FindByID(ctx, accountTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account type")
	}

	directAccounts, err := s.accounts.ListByAccountType(ctx, accountTypeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts for type")
	}

	node := &Node{
		AccountType: *accountType,
		Accounts:    directAccounts,
		Children:    []*Node{},
	}
	for _, account := range directAccounts {
		node.AccountsTotal = node.AccountsTotal.Add(account.Balance)
	}
	node.Total = node.AccountsTotal

	children, err := s.types.ListChildren(ctx, accountTypeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list child account types")
	}
	for _, child := range children {
		childNode, err := s.buildNode(ctx, child.ID, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
		node.Total = node.Total.Add(childNode.Total)
	}
	return node, nil
}
