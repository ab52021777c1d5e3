package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCaseRepo struct {
	repository.CaseRepository
	cases        map[uint]*models.SaleCase
	activated    *models.SaleCase
	installments []models.Installment
}

func (f *fakeCaseRepo) FindByID(ctx context.Context, id uint) (*models.SaleCase, error) {
	if c, ok := f.cases[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCaseRepo) Create(ctx context.Context, saleCase *models.SaleCase) error {
	saleCase.ID = uint(len(f.cases) + 1)
	saleCase.CaseNumber = fmt.Sprintf("EXP-%06d", saleCase.ID)
	f.cases[saleCase.ID] = saleCase
	return nil
}

func (f *fakeCaseRepo) Update(ctx context.Context, saleCase *models.SaleCase) error {
	f.cases[saleCase.ID] = saleCase
	return nil
}

func (f *fakeCaseRepo) ActivateWithSchedule(ctx context.Context, saleCase *models.SaleCase, installments []models.Installment) error {
	f.cases[saleCase.ID] = saleCase
	f.activated = saleCase
	f.installments = installments
	return nil
}

type fakeUnitRepo struct {
	repository.UnitRepository
	units map[uint]*models.Unit
}

func (f *fakeUnitRepo) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	if u, ok := f.units[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUnitRepo) Update(ctx context.Context, unit *models.Unit) error {
	f.units[unit.ID] = unit
	return nil
}

type fakeClientRepo struct {
	repository.ClientRepository
	clients map[uint]*models.Client
}

func (f *fakeClientRepo) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	if c, ok := f.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeInstallmentRepo struct {
	repository.InstallmentRepository
	byCase  map[uint][]models.Installment
	updated *models.Installment
}

func (f *fakeInstallmentRepo) FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error) {
	return f.byCase[caseID], nil
}

func (f *fakeInstallmentRepo) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	for _, insts := range f.byCase {
		for i := range insts {
			if insts[i].ID == id {
				cp := insts[i]
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInstallmentRepo) UpdateWithVersion(ctx context.Context, installment *models.Installment, expectedVersion int) error {
	f.updated = installment
	installment.LockVersion = expectedVersion + 1
	return nil
}

func newCaseServiceForTest(t *testing.T, caseRepo *fakeCaseRepo, unitRepo *fakeUnitRepo, clientRepo *fakeClientRepo, instRepo *fakeInstallmentRepo) *CaseService {
	t.Helper()

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	return NewCaseService(
		caseRepo,
		unitRepo,
		clientRepo,
		instRepo,
		&mockPaymentRepository{store: &installmentStore{}},
		NewScheduleService(),
		NewNotificationService(&mockNotificationRepository{}),
		worker,
		clock.At(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)),
	)
}

func TestCaseService_CreateReservesUnit(t *testing.T) {
	unitRepo := &fakeUnitRepo{units: map[uint]*models.Unit{
		1: {ID: 1, Block: "A", Lot: "12", ListPrice: d("1100000.00"), Status: models.UnitStatusAvailable},
	}}
	clientRepo := &fakeClientRepo{clients: map[uint]*models.Client{
		5: {ID: 5, FullName: "María Torres", Identity: "TOMA800101"},
	}}
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{}}
	svc := newCaseServiceForTest(t, caseRepo, unitRepo, clientRepo, &fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	saleCase, err := svc.Create(context.Background(), CreateCaseInput{
		UnitID:          1,
		ClientID:        5,
		SalePrice:       d("1000000.00"),
		DownPaymentPct:  d("30"),
		MonthlyCount:    36,
		FinalPaymentPct: d("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusPending, saleCase.Status)
	assert.NotEmpty(t, saleCase.CaseNumber)
	assert.True(t, saleCase.ListPrice.Equal(d("1100000.00")), "list price copied from unit")
	assert.Equal(t, models.UnitStatusReserved, unitRepo.units[1].Status)
}

func TestCaseService_CreateRejectsUnavailableUnit(t *testing.T) {
	unitRepo := &fakeUnitRepo{units: map[uint]*models.Unit{
		1: {ID: 1, Block: "A", Lot: "12", ListPrice: d("1100000.00"), Status: models.UnitStatusSold},
	}}
	clientRepo := &fakeClientRepo{clients: map[uint]*models.Client{5: {ID: 5}}}
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{}}
	svc := newCaseServiceForTest(t, caseRepo, unitRepo, clientRepo, &fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	_, err := svc.Create(context.Background(), CreateCaseInput{
		UnitID: 1, ClientID: 5, SalePrice: d("1000000.00"),
	})
	assert.ErrorIs(t, err, ErrUnitUnavailable)
	assert.Empty(t, caseRepo.cases)
}

func TestCaseService_CreateValidation(t *testing.T) {
	svc := newCaseServiceForTest(t,
		&fakeCaseRepo{cases: map[uint]*models.SaleCase{}},
		&fakeUnitRepo{units: map[uint]*models.Unit{}},
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		&fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	_, err := svc.Create(context.Background(), CreateCaseInput{
		UnitID: 1, ClientID: 5, SalePrice: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CreateCaseInput{
		UnitID: 99, ClientID: 5, SalePrice: d("1000.00"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaseService_ActivateGeneratesSchedule(t *testing.T) {
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {
			ID:              1,
			CaseNumber:      "EXP-000001",
			UnitID:          1,
			ClientID:        5,
			SalePrice:       d("1000000.00"),
			DownPaymentPct:  d("30"),
			MonthlyCount:    36,
			FinalPaymentPct: d("10"),
			Status:          models.CaseStatusPending,
		},
	}}
	instRepo := &fakeInstallmentRepo{byCase: map[uint][]models.Installment{}}
	svc := newCaseServiceForTest(t, caseRepo,
		&fakeUnitRepo{units: map[uint]*models.Unit{1: {ID: 1, Status: models.UnitStatusReserved}}},
		&fakeClientRepo{clients: map[uint]*models.Client{5: {ID: 5}}},
		instRepo)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	saleCase, err := svc.Activate(context.Background(), 1, start)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusActive, saleCase.Status)
	require.NotNil(t, saleCase.ActivatedAt)
	require.NotNil(t, caseRepo.activated, "case and schedule persisted together")
	require.Len(t, caseRepo.installments, 38)
	assert.Equal(t, models.CategoryDownPayment, caseRepo.installments[0].Category)
	assert.Equal(t, models.CategoryFinal, caseRepo.installments[37].Category)
}

func TestCaseService_ActivateFromHoldKeepsSchedule(t *testing.T) {
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {ID: 1, SalePrice: d("500000.00"), MonthlyCount: 12, Status: models.CaseStatusOnHold},
	}}
	instRepo := &fakeInstallmentRepo{byCase: map[uint][]models.Installment{
		1: {{ID: 10, CaseID: 1, Seq: 0, AmountDue: d("41666.67"), Status: models.InstallmentStatusPartial}},
	}}
	svc := newCaseServiceForTest(t, caseRepo,
		&fakeUnitRepo{units: map[uint]*models.Unit{}},
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		instRepo)

	saleCase, err := svc.Activate(context.Background(), 1, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusActive, saleCase.Status)
	assert.Empty(t, caseRepo.installments, "no second schedule generated")
}

func TestCaseService_ExecuteSellsUnit(t *testing.T) {
	unitRepo := &fakeUnitRepo{units: map[uint]*models.Unit{
		1: {ID: 1, Status: models.UnitStatusReserved},
	}}
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {ID: 1, UnitID: 1, SalePrice: d("1.00"), Status: models.CaseStatusContractGenerated},
	}}
	svc := newCaseServiceForTest(t, caseRepo, unitRepo,
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		&fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	saleCase, err := svc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusExecuted, saleCase.Status)
	require.NotNil(t, saleCase.ExecutedAt)
	assert.Equal(t, models.UnitStatusSold, unitRepo.units[1].Status)
}

func TestCaseService_CancelReleasesUnit(t *testing.T) {
	unitRepo := &fakeUnitRepo{units: map[uint]*models.Unit{
		1: {ID: 1, Status: models.UnitStatusReserved},
	}}
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {ID: 1, UnitID: 1, SalePrice: d("1.00"), Status: models.CaseStatusActive},
	}}
	svc := newCaseServiceForTest(t, caseRepo, unitRepo,
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		&fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	reason := "cliente desistió"
	saleCase, err := svc.Cancel(context.Background(), 1, &reason)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusCancelled, saleCase.Status)
	assert.Equal(t, models.UnitStatusAvailable, unitRepo.units[1].Status)
}

func TestCaseService_ExecuteRequiresContract(t *testing.T) {
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {ID: 1, SalePrice: d("1.00"), Status: models.CaseStatusActive},
	}}
	svc := newCaseServiceForTest(t, caseRepo,
		&fakeUnitRepo{units: map[uint]*models.Unit{}},
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		&fakeInstallmentRepo{byCase: map[uint][]models.Installment{}})

	_, err := svc.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCaseService_WaiveInstallment(t *testing.T) {
	instRepo := &fakeInstallmentRepo{byCase: map[uint][]models.Installment{
		1: {
			{ID: 10, CaseID: 1, Seq: 3, AmountDue: d("5000.00"), Status: models.InstallmentStatusPending},
			{ID: 11, CaseID: 1, Seq: 4, AmountDue: d("5000.00"), PaidAmount: d("5000.00"), Status: models.InstallmentStatusPaid},
		},
	}}
	caseRepo := &fakeCaseRepo{cases: map[uint]*models.SaleCase{
		1: {ID: 1, SalePrice: d("1.00"), Status: models.CaseStatusActive},
	}}
	svc := newCaseServiceForTest(t, caseRepo,
		&fakeUnitRepo{units: map[uint]*models.Unit{}},
		&fakeClientRepo{clients: map[uint]*models.Client{}},
		instRepo)

	inst, err := svc.WaiveInstallment(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusWaived, inst.Status)

	// Paid installments stay paid
	_, err = svc.WaiveInstallment(context.Background(), 1, 11)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Foreign case rejected
	_, err = svc.WaiveInstallment(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
