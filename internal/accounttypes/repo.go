package accounttypes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/robml/dbaccounting/pkg/db/models"
)

// Repository manages persistence for account types.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, accountType *models.AccountType) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error)
	List(ctx context.Context) ([]models.AccountType, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.AccountType, error)
	Update(ctx context.Context, accountType *models.AccountType) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an account type repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, accountType *models.AccountType) error {
	if accountType.ID == uuid.Nil {
		accountType.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(accountType).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error) {
	var accountType models.AccountType
	if err := r.db.WithContext(ctx).First(&accountType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &accountType, nil
}

func (r *repository) List(ctx context.Context) ([]models.AccountType, error) {
	var accountTypes []models.AccountType
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&accountTypes).Error; err != nil {
		return nil, err
	}
	return accountTypes, nil
}

func (r *repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.AccountType, error) {
	var accountTypes []models.AccountType
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&accountTypes).Error; err != nil {
		return nil, err
	}
	return accountTypes, nil
}

func (r *repository) Update(ctx context.Context, accountType *models.AccountType) error {
	return r.db.WithContext(ctx).Save(accountType).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.AccountType{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountType{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
