package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleCase represents a sale record (expediente) for a unit
type SaleCase struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CaseNumber          string          `gorm:"uniqueIndex" json:"case_number"`
	UnitID              uint            `gorm:"not null;index" json:"unit_id"`
	ClientID            uint            `gorm:"not null;index" json:"client_id"`
	ListPrice           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"list_price"`
	SalePrice           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sale_price"`
	PlanName            string          `gorm:"default:standard" json:"plan_name"`
	DownPaymentPct      decimal.Decimal `gorm:"type:decimal(5,2)" json:"down_payment_pct"`
	DownPaymentAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"down_payment_amount"`
	MonthlyCount        int             `gorm:"default:0" json:"monthly_count"`
	MonthlyAmount       decimal.Decimal `gorm:"type:decimal(15,2)" json:"monthly_amount"`
	FinalPaymentPct     decimal.Decimal `gorm:"type:decimal(5,2)" json:"final_payment_pct"`
	FinalPaymentAmount  decimal.Decimal `gorm:"type:decimal(15,2)" json:"final_payment_amount"`
	BrokerName          *string         `json:"broker_name"`
	BrokerCommissionPct decimal.Decimal `gorm:"type:decimal(5,2)" json:"broker_commission_pct"`
	Status              string          `gorm:"default:pending;index" json:"status"`
	DocumentPaths       *string         `gorm:"type:text" json:"document_paths"` // JSON string of document references
	Notes               *string         `gorm:"type:text" json:"notes"`
	ActivatedAt         *time.Time      `gorm:"index" json:"activated_at"`
	ExecutedAt          *time.Time      `json:"executed_at"`
	CancelledAt         *time.Time      `json:"cancelled_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	// Associations
	Unit         Unit          `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Client       Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Installments []Installment `gorm:"foreignKey:CaseID" json:"installments,omitempty"`
	Payments     []Payment     `gorm:"foreignKey:CaseID" json:"payments,omitempty"`
}

// TableName specifies the table name for SaleCase
func (SaleCase) TableName() string {
	return "sale_cases"
}

// Case status constants
const (
	CaseStatusPending           = "pending"
	CaseStatusActive            = "active"
	CaseStatusContractGenerated = "contract_generated"
	CaseStatusExecuted          = "executed"
	CaseStatusCancelled         = "cancelled"
	CaseStatusOnHold            = "on_hold"
)

// MayActivate returns true if the case can transition to active
func (c *SaleCase) MayActivate() bool {
	return c.Status == CaseStatusPending || c.Status == CaseStatusOnHold
}

// MayGenerateContract returns true if a contract can be generated
func (c *SaleCase) MayGenerateContract() bool {
	return c.Status == CaseStatusActive
}

// MayExecute returns true if the case can be executed (signed)
func (c *SaleCase) MayExecute() bool {
	return c.Status == CaseStatusContractGenerated
}

// MayCancel returns true if the case can be cancelled
func (c *SaleCase) MayCancel() bool {
	return c.Status == CaseStatusPending ||
		c.Status == CaseStatusActive ||
		c.Status == CaseStatusContractGenerated ||
		c.Status == CaseStatusOnHold
}

// MayHold returns true if the case can be placed on hold
func (c *SaleCase) MayHold() bool {
	return c.Status == CaseStatusPending || c.Status == CaseStatusActive
}

// IsOpen returns true while the case still collects payments
func (c *SaleCase) IsOpen() bool {
	return c.Status == CaseStatusActive || c.Status == CaseStatusContractGenerated
}

// CaseSummary holds case-level financial totals. It is recomputed on read
// from installments and payments, never persisted.
type CaseSummary struct {
	TotalScheduled decimal.Decimal `json:"total_scheduled"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRefunded  decimal.Decimal `json:"total_refunded"`
	Balance        decimal.Decimal `json:"balance"`
	PercentPaid    decimal.Decimal `json:"percent_paid"`
	NextDueDate    *time.Time      `json:"next_due_date"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
}

// CaseResponse is the JSON response format for sale cases
type CaseResponse struct {
	ID                  uint                  `json:"id"`
	CaseNumber          string                `json:"case_number"`
	UnitID              uint                  `json:"unit_id"`
	UnitLabel           string                `json:"unit_label"`
	ClientID            uint                  `json:"client_id"`
	ClientName          string                `json:"client_name"`
	ListPrice           decimal.Decimal       `json:"list_price"`
	SalePrice           decimal.Decimal       `json:"sale_price"`
	PlanName            string                `json:"plan_name"`
	DownPaymentPct      decimal.Decimal       `json:"down_payment_pct"`
	DownPaymentAmount   decimal.Decimal       `json:"down_payment_amount"`
	MonthlyCount        int                   `json:"monthly_count"`
	MonthlyAmount       decimal.Decimal       `json:"monthly_amount"`
	FinalPaymentPct     decimal.Decimal       `json:"final_payment_pct"`
	FinalPaymentAmount  decimal.Decimal       `json:"final_payment_amount"`
	BrokerName          *string               `json:"broker_name"`
	BrokerCommissionPct decimal.Decimal       `json:"broker_commission_pct"`
	Status              string                `json:"status"`
	Notes               *string               `json:"notes"`
	ActivatedAt         *time.Time            `json:"activated_at"`
	ExecutedAt          *time.Time            `json:"executed_at"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	Schedule            []InstallmentResponse `json:"schedule,omitempty"`
	Payments            []PaymentResponse     `json:"payments,omitempty"`
	Summary             *CaseSummary          `json:"summary,omitempty"`
}

// ToResponse converts SaleCase to CaseResponse
func (c *SaleCase) ToResponse() CaseResponse {
	resp := CaseResponse{
		ID:                  c.ID,
		CaseNumber:          c.CaseNumber,
		UnitID:              c.UnitID,
		ClientID:            c.ClientID,
		ListPrice:           c.ListPrice,
		SalePrice:           c.SalePrice,
		PlanName:            c.PlanName,
		DownPaymentPct:      c.DownPaymentPct,
		DownPaymentAmount:   c.DownPaymentAmount,
		MonthlyCount:        c.MonthlyCount,
		MonthlyAmount:       c.MonthlyAmount,
		FinalPaymentPct:     c.FinalPaymentPct,
		FinalPaymentAmount:  c.FinalPaymentAmount,
		BrokerName:          c.BrokerName,
		BrokerCommissionPct: c.BrokerCommissionPct,
		Status:              c.Status,
		Notes:               c.Notes,
		ActivatedAt:         c.ActivatedAt,
		ExecutedAt:          c.ExecutedAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}

	if c.Unit.ID != 0 {
		resp.UnitLabel = c.Unit.Label()
	}
	if c.Client.ID != 0 {
		resp.ClientName = c.Client.FullName
	}

	for _, inst := range c.Installments {
		resp.Schedule = append(resp.Schedule, inst.ToResponse())
	}
	for _, p := range c.Payments {
		resp.Payments = append(resp.Payments, p.ToResponse())
	}

	return resp
}
