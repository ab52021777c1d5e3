package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/money"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/solterra/ventas-api/pkg/logger"
	"gorm.io/gorm"
)

// allocationRetries bounds how often a conflicted allocation is retried with
// freshly loaded installment state before giving up.
const allocationRetries = 3

// PaymentInput carries the fields of an incoming payment submission
type PaymentInput struct {
	Amount        decimal.Decimal
	PaidAt        time.Time
	Category      string
	InstallmentID *uint
	Channel       *string
	Reference     *string
	ProofPaths    *string
	Notes         *string
}

type PaymentService struct {
	repo            repository.PaymentRepository
	caseRepo        repository.CaseRepository
	installmentRepo repository.InstallmentRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	worker          *jobs.Worker
	clock           clock.Clock
}

func NewPaymentService(
	repo repository.PaymentRepository,
	caseRepo repository.CaseRepository,
	installmentRepo repository.InstallmentRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	worker *jobs.Worker,
	clk clock.Clock,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		caseRepo:        caseRepo,
		installmentRepo: installmentRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		worker:          worker,
		clock:           clk,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: pago %d", ErrNotFound, id)
	}
	return payment, err
}

func (s *PaymentService) FindByCase(ctx context.Context, caseID uint) ([]models.Payment, error) {
	return s.repo.FindByCase(ctx, caseID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// RecordPayment validates and persists a payment against a case. When the
// input links an installment, the allocation happens synchronously inside the
// same transaction as the insert; a concurrent writer on the same installment
// triggers a bounded retry with fresh state.
//
// Without a link the payment is stored verbatim. Auto-detecting the next
// unpaid installment is the caller's choice via NextUnpaidInstallment; it is
// never done implicitly here.
func (s *PaymentService) RecordPayment(ctx context.Context, caseID uint, input PaymentInput) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto del pago debe ser mayor a cero", ErrValidation)
	}
	if !models.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: categoría de pago desconocida: %s", ErrValidation, input.Category)
	}
	if input.PaidAt.IsZero() {
		return nil, fmt.Errorf("%w: fecha de pago requerida", ErrValidation)
	}
	// Refunds reduce case totals in aggregation; applying one to an
	// installment would raise paid_amount instead
	if input.InstallmentID != nil && input.Category == models.CategoryRefund {
		return nil, fmt.Errorf("%w: un reembolso no puede ligarse a una cuota", ErrValidation)
	}

	saleCase, err := s.caseRepo.FindByID(ctx, caseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: expediente %d", ErrNotFound, caseID)
	}
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		CaseID:        saleCase.ID,
		InstallmentID: input.InstallmentID,
		Amount:        money.Round(input.Amount),
		PaidAt:        money.DateOnly(input.PaidAt),
		Category:      input.Category,
		Channel:       input.Channel,
		Reference:     input.Reference,
		ProofPaths:    input.ProofPaths,
		Notes:         input.Notes,
		AuditID:       uuid.NewString(),
	}

	if input.InstallmentID != nil {
		if err := s.recordWithAllocation(ctx, saleCase, payment, *input.InstallmentID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Create(ctx, payment); err != nil {
			return nil, err
		}
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.Notify(ctx, &saleCase.ID,
			"Pago registrado",
			fmt.Sprintf("Pago de %s registrado para el expediente %s",
				money.FormatMXN(payment.Amount), saleCase.CaseNumber),
			models.NotificationTypePaymentRecorded)
	})

	// The reload brings Case, Client and Unit for the receipt template
	paymentID := payment.ID
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		receipt, err := s.repo.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendPaymentReceived(ctx, receipt)
	})

	return payment, nil
}

// recordWithAllocation applies the payment to the linked installment and
// persists both in one transaction. A stale lock_version means another
// payment won the row between our read and write; reload and redo the
// allocation on the fresh state, at most allocationRetries times.
func (s *PaymentService) recordWithAllocation(ctx context.Context, saleCase *models.SaleCase, payment *models.Payment, installmentID uint) error {
	for attempt := 0; attempt < allocationRetries; attempt++ {
		installment, err := s.installmentRepo.FindByID(ctx, installmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: cuota %d", ErrNotFound, installmentID)
		}
		if err != nil {
			return err
		}
		if installment.CaseID != saleCase.ID {
			return fmt.Errorf("%w: la cuota %d no pertenece al expediente %s",
				ErrValidation, installmentID, saleCase.CaseNumber)
		}

		expectedVersion := installment.LockVersion
		if err := ApplyPaymentToInstallment(installment, payment.Amount, payment.PaidAt); err != nil {
			return err
		}

		err = s.repo.CreateWithAllocation(ctx, payment, installment, expectedVersion)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return err
		}

		logger.Warn("allocation conflict, retrying with fresh installment",
			"installment_id", installmentID, "attempt", attempt+1)
		payment.ID = 0
	}

	return fmt.Errorf("%w: cuota %d", ErrConcurrencyConflict, installmentID)
}

// NextUnpaidInstallment returns the first installment in sequence order that
// can still receive money, or nil when the schedule is settled. Convenience
// for callers that record payments without an explicit link.
func (s *PaymentService) NextUnpaidInstallment(ctx context.Context, caseID uint) (*models.Installment, error) {
	if _, err := s.caseRepo.FindByID(ctx, caseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: expediente %d", ErrNotFound, caseID)
		}
		return nil, err
	}
	return s.installmentRepo.FindNextUnpaid(ctx, caseID)
}

// Verify marks a payment's proof as reviewed by the back office
func (s *PaymentService) Verify(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Verified {
		return payment, nil
	}

	payment.Verified = true
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// RefreshOverdueStatuses persists the overdue label on every outstanding
// installment past its due date. This job is the only writer of that status;
// payment recording and aggregation never set it.
func (s *PaymentService) RefreshOverdueStatuses(ctx context.Context) error {
	updated, err := s.installmentRepo.MarkOverdue(ctx, s.clock.Now())
	if err != nil {
		return fmt.Errorf("mark overdue installments: %w", err)
	}

	if updated > 0 {
		logger.Info("overdue status refresh", "installments_flagged", updated)
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.Notify(ctx, nil,
				"Cuotas vencidas",
				fmt.Sprintf("%d cuota(s) pasaron a estado vencido", updated),
				models.NotificationTypeInstallmentOverdue)
		})
	}

	return nil
}

// SendDailyPaymentReminderEmails emails each client with overdue installments
// a single digest. Intended to run once per day.
func (s *PaymentService) SendDailyPaymentReminderEmails(ctx context.Context) error {
	installments, err := s.installmentRepo.FindOverdue(ctx, s.clock.Now())
	if err != nil {
		return fmt.Errorf("find overdue installments: %w", err)
	}

	byClient := make(map[uint][]models.Installment)
	for i := range installments {
		inst := &installments[i]
		if inst.Case.Client.ID == 0 || inst.Case.Client.Email == nil {
			continue
		}
		byClient[inst.Case.ClientID] = append(byClient[inst.Case.ClientID], *inst)
	}

	sent := 0
	for clientID, clientInstallments := range byClient {
		client := &clientInstallments[0].Case.Client
		if err := s.emailSvc.SendOverdueDigest(ctx, client, clientInstallments); err != nil {
			logger.Warn(fmt.Sprintf("[Daily reminder] Failed to email client %d: %v", clientID, err))
			continue
		}
		sent++
	}

	logger.Info(fmt.Sprintf("[Daily reminder] Sent %d overdue digest email(s)", sent))
	return nil
}

// NotifyUpcomingInstallments raises one in-app notification per case with an
// installment due within the next seven days. Intended to run once per day.
func (s *PaymentService) NotifyUpcomingInstallments(ctx context.Context) error {
	today := money.DateOnly(s.clock.Now())
	installments, err := s.installmentRepo.FindDueBetween(ctx, today, today.AddDate(0, 0, 7))
	if err != nil {
		return fmt.Errorf("find upcoming installments: %w", err)
	}

	notified := 0
	seen := make(map[uint]bool)
	for i := range installments {
		inst := &installments[i]
		if seen[inst.CaseID] {
			continue
		}
		seen[inst.CaseID] = true

		caseID := inst.CaseID
		err := s.notificationSvc.Notify(ctx, &caseID,
			"Cuota próxima a vencer",
			fmt.Sprintf("%s por %s vence el %s",
				inst.Label, money.FormatMXN(inst.Outstanding()), inst.DueDate.Format("02/01/2006")),
			models.NotificationTypeSystem)
		if err != nil {
			logger.Warn(fmt.Sprintf("[Upcoming reminder] Failed to notify case %d: %v", caseID, err))
			continue
		}
		notified++
	}

	if notified > 0 {
		logger.Info(fmt.Sprintf("[Upcoming reminder] Raised %d notification(s)", notified))
	}
	return nil
}
