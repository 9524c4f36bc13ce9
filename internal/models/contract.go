package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle status of a lease contract.
type ContractStatus string

const (
	ContractActive  ContractStatus = "ACTIVE"
	ContractExpired ContractStatus = "EXPIRED"
)

// IsValid reports whether the status is a known contract status.
func (s ContractStatus) IsValid() bool {
	return s == ContractActive || s == ContractExpired
}

func (s ContractStatus) String() string { return string(s) }

// Contract is a lease agreement for a room. Invoices reference the contract
// they were issued under; expiry never detaches existing invoices.
type Contract struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID      uuid.UUID       `gorm:"type:uuid;index" json:"room_id"`
	TenantName  string          `json:"tenant_name"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `gorm:"index" json:"end_date"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2)" json:"monthly_rent"`
	Status      ContractStatus  `gorm:"index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
