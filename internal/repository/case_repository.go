package repository

import (
	"context"
	"fmt"

	"github.com/solterra/ventas-api/internal/models"
	"gorm.io/gorm"
)

// CaseRepository defines the interface for sale case data access
type CaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.SaleCase, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.SaleCase, error)
	Create(ctx context.Context, saleCase *models.SaleCase) error
	Update(ctx context.Context, saleCase *models.SaleCase) error
	List(ctx context.Context, query *ListQuery) ([]models.SaleCase, int64, error)
	ActivateWithSchedule(ctx context.Context, saleCase *models.SaleCase, installments []models.Installment) error
}

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) FindByID(ctx context.Context, id uint) (*models.SaleCase, error) {
	var saleCase models.SaleCase
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Client").
		First(&saleCase, id).Error
	if err != nil {
		return nil, err
	}
	return &saleCase, nil
}

// FindByIDWithDetails loads the case with its full schedule (ordered by seq)
// and payment history.
func (r *caseRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.SaleCase, error) {
	var saleCase models.SaleCase
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Client").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installments.seq ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.paid_at ASC, payments.id ASC")
		}).
		First(&saleCase, id).Error
	if err != nil {
		return nil, err
	}
	return &saleCase, nil
}

// Create inserts the case and assigns its case number from the generated ID
// in the same transaction, so numbers are dense and never reused.
func (r *caseRepository) Create(ctx context.Context, saleCase *models.SaleCase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(saleCase).Error; err != nil {
			return err
		}
		saleCase.CaseNumber = fmt.Sprintf("EXP-%06d", saleCase.ID)
		return tx.Model(saleCase).Update("case_number", saleCase.CaseNumber).Error
	})
}

func (r *caseRepository) Update(ctx context.Context, saleCase *models.SaleCase) error {
	return r.db.WithContext(ctx).Save(saleCase).Error
}

func (r *caseRepository) List(ctx context.Context, query *ListQuery) ([]models.SaleCase, int64, error) {
	var cases []models.SaleCase
	var total int64

	db := r.db.WithContext(ctx).Model(&models.SaleCase{}).
		Joins("LEFT JOIN clients ON clients.id = sale_cases.client_id").
		Joins("LEFT JOIN units ON units.id = sale_cases.unit_id")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("sale_cases.case_number ILIKE ? OR clients.full_name ILIKE ? OR units.block ILIKE ? OR units.lot ILIKE ?",
			search, search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("sale_cases.status = ?", query.Filters["status"])
	}
	if query.Filters["client_id"] != "" {
		db = db.Where("sale_cases.client_id = ?", query.Filters["client_id"])
	}
	if query.Filters["unit_id"] != "" {
		db = db.Where("sale_cases.unit_id = ?", query.Filters["unit_id"])
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "sale_cases." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("sale_cases.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Unit").Preload("Client").Find(&cases).Error
	return cases, total, err
}

// ActivateWithSchedule persists the activated case together with its freshly
// generated schedule in one transaction. Activation without a schedule, or a
// schedule without activation, never hits the database.
func (r *caseRepository) ActivateWithSchedule(ctx context.Context, saleCase *models.SaleCase, installments []models.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(saleCase).Error; err != nil {
			return err
		}
		if len(installments) == 0 {
			return nil
		}
		for i := range installments {
			installments[i].CaseID = saleCase.ID
		}
		return tx.Create(&installments).Error
	})
}
