package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a posted transfer from one account to another. Corrections never
// rewrite history: an amended transaction keeps its row with Edited set, and the
// replacement points back at it through UpdatingID.
type Transaction struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FromAccountID uuid.UUID       `gorm:"column:from_account_id;type:uuid;not null;index" json:"from_account_id"`
	FromAccount   *Account        `gorm:"foreignKey:FromAccountID;constraint:OnDelete:CASCADE" json:"from_account,omitempty"`
	ToAccountID   uuid.UUID       `gorm:"column:to_account_id;type:uuid;not null;index" json:"to_account_id"`
	ToAccount     *Account        `gorm:"foreignKey:ToAccountID;constraint:OnDelete:CASCADE" json:"to_account,omitempty"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	Note          *string         `gorm:"column:note;size:256" json:"note,omitempty"`
	UpdatingID    *uuid.UUID      `gorm:"column:updating_id;type:uuid" json:"updating_id,omitempty"`
	Updating      *Transaction    `gorm:"foreignKey:UpdatingID;constraint:OnDelete:SET NULL" json:"-"`
	Edited        bool            `gorm:"column:edited;not null;default:false" json:"edited"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
