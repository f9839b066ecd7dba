package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/robml/dbaccounting/pkg/db/models"
	"github.com/robml/dbaccounting/pkg/enums"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
	"github.com/robml/dbaccounting/pkg/metrics"
)

const maxNoteLength = 256

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type accountTypeSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.AccountType, error)
}

type accountSource interface {
	ListByAccountType(ctx context.Context, accountTypeID uuid.UUID) ([]models.Account, error)
}

// Service is the posting engine: every balance write in the system goes through
// Post, Amend or Retract, each of which runs as one database transaction.
type Service interface {
	List(ctx context.Context) ([]models.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Post(ctx context.Context, input PostInput) (*models.Transaction, error)
	Amend(ctx context.Context, id uuid.UUID, input PostInput) (*models.Transaction, error)
	Retract(ctx context.Context, id uuid.UUID) error
	Ledger(ctx context.Context, accountTypeID uuid.UUID) (*Node, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	types    accountTypeSource
	accounts accountSource
	metrics  *metrics.LedgerMetrics
}

// PostInput is the posting tuple shared by Post and Amend.
type PostInput struct {
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          *string         `json:"note"`
}

// NewService wires the posting engine with its repository and collaborators.
// The metrics handle may be nil.
func NewService(repo Repository, tx txRunner, types accountTypeSource, accounts accountSource, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if types == nil {
		return nil, fmt.Errorf("account type source required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account source required")
	}
	return &service{repo: repo, tx: tx, types: types, accounts: accounts, metrics: ledgerMetrics}, nil
}

func (s *service) List(ctx context.Context) ([]models.Transaction, error) {
	txns, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return txns, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) Post(ctx context.Context, input PostInput) (*models.Transaction, error) {
	start := time.Now()
	txn, err := s.post(ctx, input)
	s.record("post", start, err)
	return txn, err
}

func (s *service) post(ctx context.Context, input PostInput) (*models.Transaction, error) {
	if err := checkTuple(input); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		from, to, err := loadPostingAccounts(ctx, repo, input)
		if err != nil {
			return err
		}
		if err := validatePosting(input.Amount, from, to); err != nil {
			return err
		}

		if err := repo.AdjustBalance(ctx, from.ID, input.Amount.Neg()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit from account")
		}
		if err := repo.AdjustBalance(ctx, to.ID, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit to account")
		}

		txn := &models.Transaction{
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Amount:        input.Amount,
			Note:          input.Note,
		}
		if err := repo.Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Amend(ctx context.Context, id uuid.UUID, input PostInput) (*models.Transaction, error) {
	start := time.Now()
	txn, err := s.amend(ctx, id, input)
	s.record("amend", start, err)
	return txn, err
}

// amend supersedes an active transaction with a corrected one. The balance
// effect must equal undoing the original posting and posting the new tuple,
// so deltas are accumulated per account row before being applied: the same
// account may appear on both sides when from/to switch or swap.
func (s *service) amend(ctx context.Context, id uuid.UUID, input PostInput) (*models.Transaction, error) {
	if err := checkTuple(input); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orig, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if orig.Edited {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already amended")
		}

		from, to, err := loadPostingAccounts(ctx, repo, input)
		if err != nil {
			return err
		}
		// the submitted tuple is validated as-is, not the net amendment effect
		if err := validatePosting(input.Amount, from, to); err != nil {
			return err
		}

		deltas := map[uuid.UUID]decimal.Decimal{}
		add := func(accountID uuid.UUID, delta decimal.Decimal) {
			deltas[accountID] = deltas[accountID].Add(delta)
		}

		if input.FromAccountID != orig.FromAccountID {
			// reversal uses the original amount even though the new
			// from account is the one being charged
			add(orig.FromAccountID, orig.Amount)
			add(input.FromAccountID, orig.Amount.Neg())
		}
		if input.ToAccountID != orig.ToAccountID {
			add(orig.ToAccountID, orig.Amount.Neg())
			add(input.ToAccountID, orig.Amount)
		}
		if !input.Amount.Equal(orig.Amount) {
			diff := input.Amount.Sub(orig.Amount)
			add(input.FromAccountID, diff.Neg())
			add(input.ToAccountID, diff)
		}

		for accountID, delta := range deltas {
			if delta.IsZero() {
				continue
			}
			if err := repo.AdjustBalance(ctx, accountID, delta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply amendment delta")
			}
		}

		if err := repo.SetEdited(ctx, orig.ID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction edited")
		}

		txn := &models.Transaction{
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Amount:        input.Amount,
			Note:          input.Note,
			UpdatingID:    &orig.ID,
		}
		if err := repo.Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create amending transaction")
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Retract(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := s.retract(ctx, id)
	s.record("retract", start, err)
	return err
}

// retract deletes a transaction and reverses its balance effect. Retracting an
// amending transaction also reactivates the transaction it superseded, which
// restores the ledger to its pre-amendment state.
func (s *service) retract(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		txn, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		deltas := map[uuid.UUID]decimal.Decimal{}
		add := func(accountID uuid.UUID, delta decimal.Decimal) {
			deltas[accountID] = deltas[accountID].Add(delta)
		}

		add(txn.FromAccountID, txn.Amount)
		add(txn.ToAccountID, txn.Amount.Neg())

		if txn.UpdatingID != nil {
			prev, err := repo.FindByID(ctx, *txn.UpdatingID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load superseded transaction")
			}
			if err := repo.SetEdited(ctx, prev.ID, false); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate superseded transaction")
			}
			add(prev.FromAccountID, prev.Amount.Neg())
			add(prev.ToAccountID, prev.Amount)
		}

		for accountID, delta := range deltas {
			if delta.IsZero() {
				continue
			}
			if err := repo.AdjustBalance(ctx, accountID, delta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply retraction delta")
			}
		}

		if _, err := repo.Delete(ctx, txn.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transaction")
		}
		return nil
	})
}

func (s *service) record(operation string, start time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return
	}
	s.metrics.IncSuccess(operation)
}

func checkTuple(input PostInput) error {
	if input.FromAccountID == uuid.Nil || input.ToAccountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to account ids are required")
	}
	if input.FromAccountID == input.ToAccountID {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to accounts must differ")
	}
	if input.Note != nil && utf8.RuneCountInString(*input.Note) > maxNoteLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "note exceeds 256 characters")
	}
	return nil
}

func loadPostingAccounts(ctx context.Context, repo Repository, input PostInput) (*models.Account, *models.Account, error) {
	from, err := repo.FindAccount(ctx, input.FromAccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "from account not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load from account")
	}
	to, err := repo.FindAccount(ctx, input.ToAccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "to account not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load to account")
	}
	return from, to, nil
}

// validatePosting checks the submitted tuple against the balance-sign rules: a
// negative amount is rejected, a debit-normal from account may not be driven
// negative, and a credit-normal to account may not be pushed positive.
func validatePosting(amount decimal.Decimal, from, to *models.Account) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be >= 0")
	}
	if from.Type != nil && from.Type.BalanceType == enums.BalanceTypeDebit && from.Balance.LessThan(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "insufficient funds")
	}
	if to.Type != nil && to.Type.BalanceType == enums.BalanceTypeCredit && to.Balance.Add(amount).GreaterThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "excess funds")
	}
	return nil
}
