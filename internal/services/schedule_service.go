package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/money"
)

// ReservationSpec describes the optional reservation entry of a plan
type ReservationSpec struct {
	Amount decimal.Decimal
	Date   time.Time
}

// DownPaymentSpec describes the optional down payment entry of a plan
type DownPaymentSpec struct {
	Amount decimal.Decimal
	Date   time.Time
}

// MonthlySpec describes the monthly installments of a plan. Amount is per
// installment; when zero it is derived from the sale price minus the other
// entries, divided by Count.
type MonthlySpec struct {
	Amount    decimal.Decimal
	Count     int
	StartDate time.Time
}

// FinalSpec describes the optional final (delivery) entry of a plan
type FinalSpec struct {
	Amount decimal.Decimal
	Date   time.Time
}

// PlanSpec is the full plan template a schedule is generated from. Every
// sub-spec is optional.
type PlanSpec struct {
	Reservation *ReservationSpec
	DownPayment *DownPaymentSpec
	Monthly     *MonthlySpec
	Final       *FinalSpec
}

// ScheduleService generates payment schedules from plan templates
type ScheduleService struct{}

// NewScheduleService creates a new schedule service
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// Generate produces the ordered installment sequence for a sale. It is pure:
// nothing is persisted and no clock is read; the caller owns both. Amounts
// are rounded to centavos at the point of computation. The residual left by
// dividing the monthly total across the count is NOT redistributed; the
// schedule may differ from the sale price by up to one centavo per
// installment.
func (s *ScheduleService) Generate(salePrice decimal.Decimal, plan PlanSpec) ([]models.Installment, error) {
	if !salePrice.IsPositive() {
		return nil, fmt.Errorf("%w: el precio de venta debe ser mayor a cero", ErrValidation)
	}
	if plan.Monthly != nil && plan.Monthly.Count < 0 {
		return nil, fmt.Errorf("%w: el número de mensualidades no puede ser negativo", ErrValidation)
	}

	var installments []models.Installment
	seq := 0

	if plan.Reservation != nil && plan.Reservation.Amount.IsPositive() {
		if plan.Reservation.Date.IsZero() {
			return nil, fmt.Errorf("%w: fecha de reserva requerida", ErrValidation)
		}
		installments = append(installments, models.Installment{
			Seq:       seq,
			Category:  models.CategoryReservation,
			Label:     "Reserva",
			AmountDue: money.Round(plan.Reservation.Amount),
			DueDate:   money.DateOnly(plan.Reservation.Date),
			Status:    models.InstallmentStatusPending,
		})
		seq++
	}

	if plan.DownPayment != nil && plan.DownPayment.Amount.IsPositive() {
		if plan.DownPayment.Date.IsZero() {
			return nil, fmt.Errorf("%w: fecha de enganche requerida", ErrValidation)
		}
		installments = append(installments, models.Installment{
			Seq:       seq,
			Category:  models.CategoryDownPayment,
			Label:     "Enganche",
			AmountDue: money.Round(plan.DownPayment.Amount),
			DueDate:   money.DateOnly(plan.DownPayment.Date),
			Status:    models.InstallmentStatusPending,
		})
		seq++
	}

	if plan.Monthly != nil && plan.Monthly.Count > 0 {
		if plan.Monthly.StartDate.IsZero() {
			return nil, fmt.Errorf("%w: fecha de inicio de mensualidades requerida", ErrValidation)
		}

		amount := money.Round(plan.Monthly.Amount)
		if amount.IsZero() {
			// Derive the per-month amount from what the other entries leave
			remaining := salePrice
			if plan.Reservation != nil {
				remaining = remaining.Sub(plan.Reservation.Amount)
			}
			if plan.DownPayment != nil {
				remaining = remaining.Sub(plan.DownPayment.Amount)
			}
			if plan.Final != nil {
				remaining = remaining.Sub(plan.Final.Amount)
			}
			if !remaining.IsPositive() {
				return nil, fmt.Errorf("%w: el plan no deja saldo para mensualidades", ErrValidation)
			}
			amount = money.Round(remaining.Div(decimal.NewFromInt(int64(plan.Monthly.Count))))
		}

		for i := 0; i < plan.Monthly.Count; i++ {
			installments = append(installments, models.Installment{
				Seq:       seq,
				Category:  models.CategoryMonthly,
				Label:     fmt.Sprintf("Mensualidad %d de %d", i+1, plan.Monthly.Count),
				AmountDue: amount,
				DueDate:   money.AddMonths(money.DateOnly(plan.Monthly.StartDate), i),
				Status:    models.InstallmentStatusPending,
			})
			seq++
		}
	}

	if plan.Final != nil && plan.Final.Amount.IsPositive() {
		if plan.Final.Date.IsZero() {
			return nil, fmt.Errorf("%w: fecha de entrega requerida", ErrValidation)
		}
		installments = append(installments, models.Installment{
			Seq:       seq,
			Category:  models.CategoryFinal,
			Label:     "Entrega",
			AmountDue: money.Round(plan.Final.Amount),
			DueDate:   money.DateOnly(plan.Final.Date),
			Status:    models.InstallmentStatusPending,
		})
	}

	return installments, nil
}

// PlanFromCase builds the plan template a case describes. Percentages take
// the sale price as base; the monthly amount is left for Generate to derive
// when the case does not carry one.
func (s *ScheduleService) PlanFromCase(saleCase *models.SaleCase, start time.Time) PlanSpec {
	plan := PlanSpec{}

	if saleCase.DownPaymentAmount.IsPositive() || saleCase.DownPaymentPct.IsPositive() {
		amount := saleCase.DownPaymentAmount
		if amount.IsZero() {
			amount = money.Percent(saleCase.SalePrice, saleCase.DownPaymentPct)
		}
		plan.DownPayment = &DownPaymentSpec{Amount: amount, Date: start}
	}

	if saleCase.FinalPaymentAmount.IsPositive() || saleCase.FinalPaymentPct.IsPositive() {
		amount := saleCase.FinalPaymentAmount
		if amount.IsZero() {
			amount = money.Percent(saleCase.SalePrice, saleCase.FinalPaymentPct)
		}
		plan.Final = &FinalSpec{
			Amount: amount,
			Date:   money.AddMonths(start, saleCase.MonthlyCount+1),
		}
	}

	if saleCase.MonthlyCount > 0 {
		plan.Monthly = &MonthlySpec{
			Amount:    saleCase.MonthlyAmount,
			Count:     saleCase.MonthlyCount,
			StartDate: money.AddMonths(start, 1),
		}
	}

	return plan
}
