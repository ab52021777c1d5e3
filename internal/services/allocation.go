package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/money"
)

// ApplyPaymentToInstallment applies a payment amount to the installment's
// running paid total and derives the new status. The installment is mutated
// in place; persisting it is the caller's job.
//
// Overpayment is preserved: paid_amount may exceed amount_due and the excess
// is not rolled to the next installment. Waived installments never receive
// allocations, and overdue is never written here (the periodic refresh job
// owns that label).
func ApplyPaymentToInstallment(installment *models.Installment, paymentAmount decimal.Decimal, paymentDate time.Time) error {
	if !paymentAmount.IsPositive() {
		return fmt.Errorf("%w: el monto del pago debe ser mayor a cero", ErrValidation)
	}
	if installment.Status == models.InstallmentStatusWaived {
		return fmt.Errorf("%w: la cuota %d está condonada", ErrInvalidState, installment.Seq)
	}

	newPaid := money.Round(installment.PaidAmount.Add(paymentAmount))

	installment.PaidAmount = newPaid
	paidDate := money.DateOnly(paymentDate)
	installment.PaidDate = &paidDate

	if newPaid.GreaterThanOrEqual(installment.AmountDue) {
		installment.Status = models.InstallmentStatusPaid
	} else {
		installment.Status = models.InstallmentStatusPartial
	}

	return nil
}
