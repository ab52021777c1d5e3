package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayment_ExactAmountSettles(t *testing.T) {
	inst := &models.Installment{
		Seq:        3,
		AmountDue:  d("16666.67"),
		PaidAmount: decimal.Zero,
		Status:     models.InstallmentStatusPending,
	}
	paidAt := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	err := ApplyPaymentToInstallment(inst, d("16666.67"), paidAt)
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("16666.67")))
	assert.True(t, inst.Outstanding().IsZero())
	require.NotNil(t, inst.PaidDate)
	assert.Equal(t, paidAt, *inst.PaidDate)
}

func TestApplyPayment_PartialThenPaid(t *testing.T) {
	inst := &models.Installment{
		AmountDue:  d("15000.00"),
		PaidAmount: decimal.Zero,
		Status:     models.InstallmentStatusPending,
	}
	paidAt := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ApplyPaymentToInstallment(inst, d("10000.00"), paidAt))
	assert.Equal(t, models.InstallmentStatusPartial, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("10000.00")))

	require.NoError(t, ApplyPaymentToInstallment(inst, d("10000.00"), paidAt.AddDate(0, 0, 1)))
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("20000.00")), "both payments applied")
}

func TestApplyPayment_OverpaymentPreserved(t *testing.T) {
	inst := &models.Installment{
		AmountDue:  d("5000.00"),
		PaidAmount: decimal.Zero,
		Status:     models.InstallmentStatusPending,
	}

	err := ApplyPaymentToInstallment(inst, d("7500.00"), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("7500.00")), "excess is not capped")
	assert.True(t, inst.ToResponse().IsOverpaid)
}

func TestApplyPayment_WaivedRejected(t *testing.T) {
	inst := &models.Installment{
		AmountDue: d("5000.00"),
		Status:    models.InstallmentStatusWaived,
	}

	err := ApplyPaymentToInstallment(inst, d("1000.00"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, models.InstallmentStatusWaived, inst.Status)
	assert.True(t, inst.PaidAmount.IsZero())
}

func TestApplyPayment_NonPositiveRejected(t *testing.T) {
	inst := &models.Installment{
		AmountDue: d("5000.00"),
		Status:    models.InstallmentStatusPending,
	}

	assert.ErrorIs(t, ApplyPaymentToInstallment(inst, decimal.Zero, time.Now()), ErrValidation)
	assert.ErrorIs(t, ApplyPaymentToInstallment(inst, d("-100.00"), time.Now()), ErrValidation)
	assert.Equal(t, models.InstallmentStatusPending, inst.Status)
}

func TestApplyPayment_PaidAmountMonotonic(t *testing.T) {
	inst := &models.Installment{
		AmountDue:  d("10000.00"),
		PaidAmount: decimal.Zero,
		Status:     models.InstallmentStatusPending,
	}
	paidAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	prev := inst.PaidAmount
	for _, amount := range []string{"2500.00", "0.01", "7499.99", "100.00"} {
		require.NoError(t, ApplyPaymentToInstallment(inst, d(amount), paidAt))
		assert.True(t, inst.PaidAmount.GreaterThanOrEqual(prev))
		prev = inst.PaidAmount
	}
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
}

func TestApplyPayment_NeverRegressesFromPaid(t *testing.T) {
	inst := &models.Installment{
		AmountDue:  d("1000.00"),
		PaidAmount: d("1000.00"),
		Status:     models.InstallmentStatusPaid,
	}

	require.NoError(t, ApplyPaymentToInstallment(inst, d("50.00"), time.Now()))
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("1050.00")))
}

func TestApplyPayment_OverdueAllocatesLikePending(t *testing.T) {
	inst := &models.Installment{
		AmountDue:  d("5000.00"),
		PaidAmount: decimal.Zero,
		Status:     models.InstallmentStatusOverdue,
	}

	require.NoError(t, ApplyPaymentToInstallment(inst, d("2000.00"), time.Now()))
	assert.Equal(t, models.InstallmentStatusPartial, inst.Status)

	require.NoError(t, ApplyPaymentToInstallment(inst, d("3000.00"), time.Now()))
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
}
