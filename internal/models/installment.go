package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled expected payment within a case's schedule
type Installment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CaseID      uint            `gorm:"not null;uniqueIndex:idx_installments_case_seq" json:"case_id"`
	Seq         int             `gorm:"not null;uniqueIndex:idx_installments_case_seq" json:"seq"`
	Category    string          `gorm:"not null;index" json:"category"`
	Label       string          `gorm:"not null" json:"label"`
	AmountDue   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_due"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status      string          `gorm:"default:pending;not null;index" json:"status"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`
	PaidDate    *time.Time      `gorm:"type:date" json:"paid_date"`
	LockVersion int             `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	Case SaleCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// Installment status constants
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPartial = "partial"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
	InstallmentStatusWaived  = "waived"
)

// Payment category constants, shared by installments and payments.
// Modeled as a closed set so category handling stays exhaustive.
const (
	CategoryReservation = "reservation"
	CategoryDownPayment = "down_payment"
	CategoryMonthly     = "monthly"
	CategoryFinal       = "final"
	CategoryBalloon     = "balloon"
	CategoryAdjustment  = "adjustment"
	CategoryRefund      = "refund"
)

// ValidCategory reports whether s is a known payment category
func ValidCategory(s string) bool {
	switch s {
	case CategoryReservation, CategoryDownPayment, CategoryMonthly,
		CategoryFinal, CategoryBalloon, CategoryAdjustment, CategoryRefund:
		return true
	}
	return false
}

// IsOutstanding returns true while the installment can still receive
// allocations (pending, partial, or flagged overdue but not settled)
func (i *Installment) IsOutstanding() bool {
	return i.Status == InstallmentStatusPending ||
		i.Status == InstallmentStatusPartial ||
		i.Status == InstallmentStatusOverdue
}

// MayWaive returns true if the installment can be waived. Paid installments
// stay paid.
func (i *Installment) MayWaive() bool {
	return i.Status != InstallmentStatusPaid && i.Status != InstallmentStatusWaived
}

// Outstanding returns the unpaid remainder (never negative)
func (i *Installment) Outstanding() decimal.Decimal {
	rem := i.AmountDue.Sub(i.PaidAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// IsOverdueAt reports whether the installment is past due and unsettled as
// of the given day. This is the read-time judgment; the persisted overdue
// status is written only by the periodic refresh job.
func (i *Installment) IsOverdueAt(today time.Time) bool {
	if !i.IsOutstanding() {
		return false
	}
	due := time.Date(i.DueDate.Year(), i.DueDate.Month(), i.DueDate.Day(), 0, 0, 0, 0, i.DueDate.Location())
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return due.Before(day)
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID         uint            `json:"id"`
	CaseID     uint            `json:"case_id"`
	Seq        int             `json:"seq"`
	Category   string          `json:"category"`
	Label      string          `json:"label"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	DueDate    time.Time       `json:"due_date"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PaidDate   *time.Time      `json:"paid_date"`
	IsOverpaid bool            `json:"is_overpaid"` // true when paid_amount > amount_due
}

// ToResponse converts Installment to InstallmentResponse
func (i *Installment) ToResponse() InstallmentResponse {
	return InstallmentResponse{
		ID:         i.ID,
		CaseID:     i.CaseID,
		Seq:        i.Seq,
		Category:   i.Category,
		Label:      i.Label,
		AmountDue:  i.AmountDue,
		DueDate:    i.DueDate,
		Status:     i.Status,
		PaidAmount: i.PaidAmount,
		PaidDate:   i.PaidDate,
		IsOverpaid: i.PaidAmount.GreaterThan(i.AmountDue),
	}
}
