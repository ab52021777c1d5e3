package repository

import (
	"context"
	"errors"
	"time"

	"github.com/solterra/ventas-api/internal/models"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned when an optimistic-locked update loses the
// race: the row's lock_version changed between read and write.
var ErrStaleVersion = errors.New("registro modificado por otra operación")

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error)
	FindNextUnpaid(ctx context.Context, caseID uint) (*models.Installment, error)
	Update(ctx context.Context, installment *models.Installment) error
	UpdateWithVersion(ctx context.Context, installment *models.Installment, expectedVersion int) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]models.Installment, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Installment, error)
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("seq ASC").
		Find(&installments).Error
	return installments, err
}

// FindNextUnpaid returns the lowest-seq installment of the case that can
// still receive money, or nil when the schedule is settled.
func (r *installmentRepository) FindNextUnpaid(ctx context.Context, caseID uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).
		Where("case_id = ? AND status IN ?", caseID, []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusPartial,
			models.InstallmentStatusOverdue,
		}).
		Order("seq ASC").
		First(&installment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

// UpdateWithVersion writes the installment's allocation fields only if the
// row still carries expectedVersion, bumping lock_version in the same
// statement. Returns ErrStaleVersion when another writer got there first.
func (r *installmentRepository) UpdateWithVersion(ctx context.Context, installment *models.Installment, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
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
}

// MarkOverdue flags every outstanding installment whose due date has passed.
// Returns how many rows changed.
func (r *installmentRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("due_date < ? AND status IN ?", day, []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusPartial,
		}).
		Update("status", models.InstallmentStatusOverdue)
	return result.RowsAffected, result.Error
}

// FindOverdue returns outstanding installments past due as of the given day,
// with their case, client and unit loaded for reporting.
func (r *installmentRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]models.Installment, error) {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Preload("Case").
		Preload("Case.Client").
		Preload("Case.Unit").
		Where("due_date < ? AND status IN ?", day, []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusPartial,
			models.InstallmentStatusOverdue,
		}).
		Order("due_date ASC, case_id ASC, seq ASC").
		Find(&installments).Error
	return installments, err
}

// FindDueBetween returns outstanding installments due inside [from, to],
// used by the payment reminder job.
func (r *installmentRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Preload("Case").
		Preload("Case.Client").
		Preload("Case.Unit").
		Where("due_date >= ? AND due_date <= ? AND status IN ?", from, to, []string{
			models.InstallmentStatusPending,
			models.InstallmentStatusPartial,
		}).
		Order("due_date ASC, case_id ASC, seq ASC").
		Find(&installments).Error
	return installments, err
}
