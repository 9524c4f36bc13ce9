package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Room is a rentable unit. Its current terms are copied into an invoice
// snapshot at creation time.
type Room struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RoomNumber   string          `gorm:"uniqueIndex" json:"room_number"`
	MonthlyRent  decimal.Decimal `gorm:"type:numeric(12,2)" json:"monthly_rent"`
	UtilityUnits int             `json:"utility_units"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
