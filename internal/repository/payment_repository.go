package repository

import (
	"context"

	"github.com/solterra/ventas-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByCase(ctx context.Context, caseID uint) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	CreateWithAllocation(ctx context.Context, payment *models.Payment, installment *models.Installment, expectedVersion int) error
	Update(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Case").
		Preload("Case.Client").
		Preload("Case.Unit").
		Preload("Installment").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByCase(ctx context.Context, caseID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CreateWithAllocation inserts the payment and applies its allocation to the
// target installment in one transaction. The installment write is guarded by
// lock_version; a stale version rolls the whole thing back with
// ErrStaleVersion so the caller can reload and retry.
func (r *paymentRepository) CreateWithAllocation(ctx context.Context, payment *models.Payment, installment *models.Installment, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Installment{}).
			Where("id = ? AND lock_version = ?", installment.ID, expectedVersion).
			Updates(map[string]interface{}{
				"paid_amount":  installment.PaidAmount,
				"paid_date":    installment.PaidDate,
				"status":       installment.Status,
				"lock_version": expectedVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleVersion
		}

		installment.LockVersion = expectedVersion + 1
		return nil
	})
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{}).
		Joins("LEFT JOIN sale_cases ON sale_cases.id = payments.case_id").
		Joins("LEFT JOIN clients ON clients.id = sale_cases.client_id")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("sale_cases.case_number ILIKE ? OR clients.full_name ILIKE ? OR payments.reference ILIKE ?",
			search, search, search)
	}

	if query.Filters["case_id"] != "" {
		db = db.Where("payments.case_id = ?", query.Filters["case_id"])
	}
	if query.Filters["category"] != "" {
		db = db.Where("payments.category = ?", query.Filters["category"])
	}
	if query.Filters["verified"] != "" {
		db = db.Where("payments.verified = ?", query.Filters["verified"] == "true")
	}
	if query.Filters["from"] != "" {
		db = db.Where("payments.paid_at >= ?", query.Filters["from"])
	}
	if query.Filters["to"] != "" {
		db = db.Where("payments.paid_at <= ?", query.Filters["to"])
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "payments." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("payments.paid_at DESC, payments.id DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Case").Preload("Case.Client").Preload("Case.Unit").Find(&payments).Error
	return payments, total, err
}
