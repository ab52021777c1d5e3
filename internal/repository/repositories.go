package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Unit         UnitRepository
	Client       ClientRepository
	Case         CaseRepository
	Installment  InstallmentRepository
	Payment      PaymentRepository
	Notification NotificationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Unit:         NewUnitRepository(db),
		Client:       NewClientRepository(db),
		Case:         NewCaseRepository(db),
		Installment:  NewInstallmentRepository(db),
		Payment:      NewPaymentRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
