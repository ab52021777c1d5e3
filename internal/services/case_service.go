package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/solterra/ventas-api/internal/statemachine"
	"gorm.io/gorm"
)

// CreateCaseInput carries the fields of a new sale case
type CreateCaseInput struct {
	UnitID              uint
	ClientID            uint
	SalePrice           decimal.Decimal
	PlanName            string
	DownPaymentPct      decimal.Decimal
	DownPaymentAmount   decimal.Decimal
	MonthlyCount        int
	MonthlyAmount       decimal.Decimal
	FinalPaymentPct     decimal.Decimal
	FinalPaymentAmount  decimal.Decimal
	BrokerName          *string
	BrokerCommissionPct decimal.Decimal
	Notes               *string
}

type CaseService struct {
	repo            repository.CaseRepository
	unitRepo        repository.UnitRepository
	clientRepo      repository.ClientRepository
	installmentRepo repository.InstallmentRepository
	paymentRepo     repository.PaymentRepository
	scheduleSvc     *ScheduleService
	notificationSvc *NotificationService
	worker          *jobs.Worker
	clock           clock.Clock
}

func NewCaseService(
	repo repository.CaseRepository,
	unitRepo repository.UnitRepository,
	clientRepo repository.ClientRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	scheduleSvc *ScheduleService,
	notificationSvc *NotificationService,
	worker *jobs.Worker,
	clk clock.Clock,
) *CaseService {
	return &CaseService{
		repo:            repo,
		unitRepo:        unitRepo,
		clientRepo:      clientRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		scheduleSvc:     scheduleSvc,
		notificationSvc: notificationSvc,
		worker:          worker,
		clock:           clk,
	}
}

func (s *CaseService) FindByID(ctx context.Context, id uint) (*models.SaleCase, error) {
	saleCase, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: expediente %d", ErrNotFound, id)
	}
	return saleCase, err
}

// FindByIDWithDetails loads the case with schedule, payments and the
// recomputed summary attached.
func (s *CaseService) FindByIDWithDetails(ctx context.Context, id uint) (*models.SaleCase, *models.CaseSummary, error) {
	saleCase, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: expediente %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	summary := Summarize(saleCase.Installments, saleCase.Payments, s.clock.Now())
	return saleCase, &summary, nil
}

func (s *CaseService) List(ctx context.Context, query *repository.ListQuery) ([]models.SaleCase, int64, error) {
	return s.repo.List(ctx, query)
}

// Summary recomputes the case totals from fresh installment and payment
// reads. Nothing is persisted; the summary is always derived.
func (s *CaseService) Summary(ctx context.Context, caseID uint) (*models.CaseSummary, error) {
	if _, err := s.FindByID(ctx, caseID); err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(installments, payments, s.clock.Now())
	return &summary, nil
}

// Create opens a new sale case on an available unit and reserves the unit.
// The human-readable case number is allocated from the generated ID.
func (s *CaseService) Create(ctx context.Context, input CreateCaseInput) (*models.SaleCase, error) {
	if !input.SalePrice.IsPositive() {
		return nil, fmt.Errorf("%w: el precio de venta debe ser mayor a cero", ErrValidation)
	}

	unit, err := s.unitRepo.FindByID(ctx, input.UnitID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unidad %d", ErrNotFound, input.UnitID)
	}
	if err != nil {
		return nil, err
	}
	if !unit.IsAvailable() {
		return nil, fmt.Errorf("%w: unidad %s (%s)", ErrUnitUnavailable, unit.Label(), unit.Status)
	}

	client, err := s.clientRepo.FindByID(ctx, input.ClientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cliente %d", ErrNotFound, input.ClientID)
	}
	if err != nil {
		return nil, err
	}

	planName := input.PlanName
	if planName == "" {
		planName = "standard"
	}

	saleCase := &models.SaleCase{
		UnitID:              unit.ID,
		ClientID:            client.ID,
		ListPrice:           unit.ListPrice,
		SalePrice:           input.SalePrice,
		PlanName:            planName,
		DownPaymentPct:      input.DownPaymentPct,
		DownPaymentAmount:   input.DownPaymentAmount,
		MonthlyCount:        input.MonthlyCount,
		MonthlyAmount:       input.MonthlyAmount,
		FinalPaymentPct:     input.FinalPaymentPct,
		FinalPaymentAmount:  input.FinalPaymentAmount,
		BrokerName:          input.BrokerName,
		BrokerCommissionPct: input.BrokerCommissionPct,
		Status:              models.CaseStatusPending,
		Notes:               input.Notes,
	}

	if err := s.repo.Create(ctx, saleCase); err != nil {
		return nil, err
	}

	unit.Status = models.UnitStatusReserved
	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Notify(ctx, &saleCase.ID,
			"Expediente creado",
			fmt.Sprintf("Expediente %s creado para %s, unidad %s",
				saleCase.CaseNumber, client.FullName, unit.Label()),
			models.NotificationTypeCaseCreated)
	})

	return saleCase, nil
}

func (s *CaseService) Update(ctx context.Context, saleCase *models.SaleCase) error {
	if !saleCase.SalePrice.IsPositive() {
		return fmt.Errorf("%w: el precio de venta debe ser mayor a cero", ErrValidation)
	}
	return s.repo.Update(ctx, saleCase)
}

// Activate moves the case to active and generates its payment schedule. Case
// update and schedule insert share one transaction so a schedule never
// appears without an active case or vice versa.
func (s *CaseService) Activate(ctx context.Context, id uint, scheduleStart time.Time) (*models.SaleCase, error) {
	saleCase, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.installmentRepo.FindByCase(ctx, id)
	if err != nil {
		return nil, err
	}

	csm := statemachine.NewCaseFSM(saleCase)
	if err := csm.Activate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := s.clock.Now()
	saleCase.ActivatedAt = &now

	// Resuming from on_hold keeps the schedule that already exists
	var installments []models.Installment
	if len(existing) == 0 {
		if scheduleStart.IsZero() {
			scheduleStart = now
		}
		plan := s.scheduleSvc.PlanFromCase(saleCase, scheduleStart)
		installments, err = s.scheduleSvc.Generate(saleCase.SalePrice, plan)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.ActivateWithSchedule(ctx, saleCase, installments); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Notify(ctx, &saleCase.ID,
			"Expediente activado",
			fmt.Sprintf("Expediente %s activado con %d cuota(s) programadas",
				saleCase.CaseNumber, len(installments)),
			models.NotificationTypeCaseActivated)
	})

	return saleCase, nil
}

// GenerateContract marks the contract as produced for signing
func (s *CaseService) GenerateContract(ctx context.Context, id uint, documentPath *string) (*models.SaleCase, error) {
	saleCase, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	csm := statemachine.NewCaseFSM(saleCase)
	if err := csm.GenerateContract(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if documentPath != nil {
		saleCase.DocumentPaths = documentPath
	}

	if err := s.repo.Update(ctx, saleCase); err != nil {
		return nil, err
	}
	return saleCase, nil
}

// Execute finalizes the sale: the contract is signed and the unit is sold
func (s *CaseService) Execute(ctx context.Context, id uint) (*models.SaleCase, error) {
	saleCase, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	csm := statemachine.NewCaseFSM(saleCase)
	if err := csm.Execute(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := s.clock.Now()
	saleCase.ExecutedAt = &now

	if err := s.repo.Update(ctx, saleCase); err != nil {
		return nil, err
	}

	if err := s.setUnitStatus(ctx, saleCase.UnitID, models.UnitStatusSold); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Notify(ctx, &saleCase.ID,
			"Expediente ejecutado",
			fmt.Sprintf("Contrato del expediente %s firmado", saleCase.CaseNumber),
			models.NotificationTypeCaseExecuted)
	})

	return saleCase, nil
}

// Cancel closes the case and releases the unit back to inventory
func (s *CaseService) Cancel(ctx context.Context, id uint, reason *string) (*models.SaleCase, error) {
	saleCase, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	csm := statemachine.NewCaseFSM(saleCase)
	if err := csm.Cancel(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := s.clock.Now()
	saleCase.CancelledAt = &now
	if reason != nil {
		saleCase.Notes = reason
	}

	if err := s.repo.Update(ctx, saleCase); err != nil {
		return nil, err
	}

	if err := s.setUnitStatus(ctx, saleCase.UnitID, models.UnitStatusAvailable); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Notify(ctx, &saleCase.ID,
			"Expediente cancelado",
			fmt.Sprintf("Expediente %s cancelado, unidad liberada", saleCase.CaseNumber),
			models.NotificationTypeCaseCancelled)
	})

	return saleCase, nil
}

// Hold suspends the case without releasing the unit
func (s *CaseService) Hold(ctx context.Context, id uint) (*models.SaleCase, error) {
	saleCase, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	csm := statemachine.NewCaseFSM(saleCase)
	if err := csm.Hold(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, saleCase); err != nil {
		return nil, err
	}
	return saleCase, nil
}

// ListInstallments returns the case's schedule in sequence order
func (s *CaseService) ListInstallments(ctx context.Context, caseID uint) ([]models.Installment, error) {
	if _, err := s.FindByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.installmentRepo.FindByCase(ctx, caseID)
}

// WaiveInstallment is the explicit external action that sets the waived
// status. Paid installments stay paid. The write is version-guarded so a
// concurrent allocation is not silently overwritten.
func (s *CaseService) WaiveInstallment(ctx context.Context, caseID, installmentID uint) (*models.Installment, error) {
	installment, err := s.installmentRepo.FindByID(ctx, installmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cuota %d", ErrNotFound, installmentID)
	}
	if err != nil {
		return nil, err
	}
	if installment.CaseID != caseID {
		return nil, fmt.Errorf("%w: la cuota %d no pertenece al expediente %d", ErrValidation, installmentID, caseID)
	}
	if !installment.MayWaive() {
		return nil, fmt.Errorf("%w: la cuota %d no puede condonarse en estado %s",
			ErrInvalidState, installment.Seq, installment.Status)
	}

	expectedVersion := installment.LockVersion
	installment.Status = models.InstallmentStatusWaived

	if err := s.installmentRepo.UpdateWithVersion(ctx, installment, expectedVersion); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, fmt.Errorf("%w: cuota %d", ErrConcurrencyConflict, installmentID)
		}
		return nil, err
	}
	return installment, nil
}

func (s *CaseService) setUnitStatus(ctx context.Context, unitID uint, status string) error {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return err
	}
	unit.Status = status
	return s.unitRepo.Update(ctx, unit)
}
