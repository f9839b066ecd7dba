package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account carries a running balance maintained by the posting engine. The balance
// column is only ever written inside a posting operation's transaction.
type Account struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"column:name;size:64;not null;unique" json:"name"`
	AccountTypeID uuid.UUID       `gorm:"column:account_type_id;type:uuid;not null;index" json:"account_type_id"`
	Type          *AccountType    `gorm:"foreignKey:AccountTypeID;constraint:OnDelete:CASCADE" json:"type,omitempty"`
	Balance       decimal.Decimal `gorm:"column:balance;type:numeric(20,2);not null;default:0" json:"balance"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}
