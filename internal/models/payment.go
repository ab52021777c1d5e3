package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an actual transaction recorded against a case, optionally
// linked to one installment of its schedule
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CaseID        uint            `gorm:"not null;index" json:"case_id"`
	InstallmentID *uint           `gorm:"index" json:"installment_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAt        time.Time       `gorm:"type:date;not null;index" json:"paid_at"`
	Category      string          `gorm:"not null;index" json:"category"`
	Channel       *string         `json:"channel"` // transfer, cash, check, card
	Reference     *string         `json:"reference"`
	ProofPaths    *string         `gorm:"type:text" json:"proof_paths"` // JSON string of proof references
	Verified      bool            `gorm:"default:false;index" json:"verified"`
	AuditID       string          `gorm:"not null" json:"audit_id"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Case        SaleCase     `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Installment *Installment `gorm:"foreignKey:InstallmentID" json:"installment,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsRefund returns true for refund-category payments, which reduce totals
func (p *Payment) IsRefund() bool {
	return p.Category == CategoryRefund
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID            uint            `json:"id"`
	CaseID        uint            `json:"case_id"`
	CaseNumber    string          `json:"case_number,omitempty"`
	InstallmentID *uint           `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
	Category      string          `json:"category"`
	Channel       *string         `json:"channel"`
	Reference     *string         `json:"reference"`
	Verified      bool            `json:"verified"`
	AuditID       string          `json:"audit_id"`
	Notes         *string         `json:"notes"`
	HasProof      bool            `json:"has_proof"`
	ClientName    string          `json:"client_name,omitempty"`
	UnitLabel     string          `json:"unit_label,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID,
		CaseID:        p.CaseID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount,
		PaidAt:        p.PaidAt,
		Category:      p.Category,
		Channel:       p.Channel,
		Reference:     p.Reference,
		Verified:      p.Verified,
		AuditID:       p.AuditID,
		Notes:         p.Notes,
		HasProof:      p.ProofPaths != nil && *p.ProofPaths != "",
		CreatedAt:     p.CreatedAt,
	}

	if p.Case.ID != 0 {
		resp.CaseNumber = p.Case.CaseNumber
		if p.Case.Client.ID != 0 {
			resp.ClientName = p.Case.Client.FullName
		}
		if p.Case.Unit.ID != 0 {
			resp.UnitLabel = p.Case.Unit.Label()
		}
	}

	return resp
}
