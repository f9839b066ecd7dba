package models

import (
	"github.com/google/uuid"

	"github.com/robml/dbaccounting/pkg/enums"
)

// AccountType classifies accounts as credit- or debit-normal. Types nest through
// the Parent reference; deleting a type cascades to its subtree and its accounts.
type AccountType struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string            `gorm:"column:name;size:64;not null;unique" json:"name"`
	BalanceType enums.BalanceType `gorm:"column:balance_type;size:6;not null" json:"balance_type"`
	ParentID    *uuid.UUID        `gorm:"column:parent_id;type:uuid" json:"parent_id,omitempty"`
	Parent      *AccountType      `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AccountType) TableName() string {
	return "account_types"
}
