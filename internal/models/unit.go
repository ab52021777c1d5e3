package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Unit represents a sellable lot within the development
type Unit struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Block     string          `gorm:"not null;uniqueIndex:idx_units_block_lot" json:"block"`
	Lot       string          `gorm:"not null;uniqueIndex:idx_units_block_lot" json:"lot"`
	AreaM2    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"area_m2"`
	ListPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"list_price"`
	Status    string          `gorm:"default:available;index" json:"status"`
	Notes     *string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Associations
	Cases []SaleCase `gorm:"foreignKey:UnitID" json:"cases,omitempty"`
}

// TableName specifies the table name for Unit
func (Unit) TableName() string {
	return "units"
}

// Unit status constants
const (
	UnitStatusAvailable = "available"
	UnitStatusReserved  = "reserved"
	UnitStatusSold      = "sold"
	UnitStatusBlocked   = "blocked"
)

// Label returns the human-readable "block-lot" identifier
func (u *Unit) Label() string {
	return fmt.Sprintf("%s-%s", u.Block, u.Lot)
}

// IsAvailable returns true if the unit can take a new case
func (u *Unit) IsAvailable() bool {
	return u.Status == UnitStatusAvailable
}

// UnitResponse is the JSON response format for units
type UnitResponse struct {
	ID        uint            `json:"id"`
	Block     string          `json:"block"`
	Lot       string          `json:"lot"`
	Label     string          `json:"label"`
	AreaM2    decimal.Decimal `json:"area_m2"`
	ListPrice decimal.Decimal `json:"list_price"`
	Status    string          `json:"status"`
	Notes     *string         `json:"notes"`
}

// ToResponse converts Unit to UnitResponse
func (u *Unit) ToResponse() UnitResponse {
	return UnitResponse{
		ID:        u.ID,
		Block:     u.Block,
		Lot:       u.Lot,
		Label:     u.Label(),
		AreaM2:    u.AreaM2,
		ListPrice: u.ListPrice,
		Status:    u.Status,
		Notes:     u.Notes,
	}
}
