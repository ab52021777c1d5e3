package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_OverdueAmount(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	installments := []models.Installment{
		{
			Seq:       0,
			AmountDue: d("5000.00"),
			DueDate:   yesterday,
			Status:    models.InstallmentStatusPending,
		},
	}

	summary := Summarize(installments, nil, today)

	assert.True(t, summary.OverdueAmount.Equal(d("5000.00")))
	assert.Nil(t, summary.NextDueDate, "a past-due installment is not the next due")
	assert.True(t, summary.Balance.Equal(d("5000.00")))
}

func TestSummarize_RefundArithmetic(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		{AmountDue: d("100000.00"), DueDate: today.AddDate(0, 1, 0), Status: models.InstallmentStatusPending},
	}
	payments := []models.Payment{
		{Amount: d("30000.00"), Category: models.CategoryDownPayment},
		{Amount: d("20000.00"), Category: models.CategoryMonthly},
		{Amount: d("2000.00"), Category: models.CategoryRefund},
	}

	summary := Summarize(installments, payments, today)

	assert.True(t, summary.TotalPaid.Equal(d("50000.00")))
	assert.True(t, summary.TotalRefunded.Equal(d("2000.00")))
	// balance = scheduled - paid + refunded
	assert.True(t, summary.Balance.Equal(d("52000.00")))
}

func TestSummarize_PercentPaid(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		{AmountDue: d("300000.00"), DueDate: today, Status: models.InstallmentStatusPaid, PaidAmount: d("300000.00")},
		{AmountDue: d("700000.00"), DueDate: today.AddDate(0, 1, 0), Status: models.InstallmentStatusPending},
	}
	payments := []models.Payment{
		{Amount: d("300000.00"), Category: models.CategoryDownPayment},
	}

	summary := Summarize(installments, payments, today)

	assert.True(t, summary.TotalScheduled.Equal(d("1000000.00")))
	assert.True(t, summary.PercentPaid.Equal(d("30.00")), "got %s", summary.PercentPaid)
}

func TestSummarize_PercentPaidZeroSchedule(t *testing.T) {
	summary := Summarize(nil, []models.Payment{
		{Amount: d("1000.00"), Category: models.CategoryReservation},
	}, time.Now())

	assert.True(t, summary.TotalScheduled.IsZero())
	assert.True(t, summary.PercentPaid.IsZero())
	assert.True(t, summary.Balance.Equal(d("-1000.00")))
}

func TestSummarize_NextDueDate(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		// settled, ignored
		{AmountDue: d("1000.00"), DueDate: today.AddDate(0, 0, 1), Status: models.InstallmentStatusPaid, PaidAmount: d("1000.00")},
		// future partial, the earliest eligible
		{AmountDue: d("1000.00"), DueDate: today.AddDate(0, 0, 5), Status: models.InstallmentStatusPartial, PaidAmount: d("400.00")},
		{AmountDue: d("1000.00"), DueDate: today.AddDate(0, 1, 0), Status: models.InstallmentStatusPending},
		// waived, ignored
		{AmountDue: d("1000.00"), DueDate: today.AddDate(0, 0, 2), Status: models.InstallmentStatusWaived},
	}

	summary := Summarize(installments, nil, today)

	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, today.AddDate(0, 0, 5), *summary.NextDueDate)
}

func TestSummarize_DueTodayIsNextDueNotOverdue(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		{AmountDue: d("2500.00"), DueDate: today, Status: models.InstallmentStatusPending},
	}

	summary := Summarize(installments, nil, today)

	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, today, *summary.NextDueDate)
	assert.True(t, summary.OverdueAmount.IsZero())
}

func TestSummarize_OverdueCountsPersistedLabel(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		{AmountDue: d("5000.00"), PaidAmount: d("1500.00"), DueDate: today.AddDate(0, 0, -10), Status: models.InstallmentStatusOverdue},
		{AmountDue: d("5000.00"), PaidAmount: d("2000.00"), DueDate: today.AddDate(0, 0, -3), Status: models.InstallmentStatusPartial},
	}

	summary := Summarize(installments, nil, today)

	// remaining 3,500 + 3,000
	assert.True(t, summary.OverdueAmount.Equal(d("6500.00")))
}

func TestSummarize_Idempotent(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	installments := []models.Installment{
		{AmountDue: d("16666.67"), DueDate: today.AddDate(0, 0, -1), Status: models.InstallmentStatusPartial, PaidAmount: d("5000.00")},
		{AmountDue: d("16666.67"), DueDate: today.AddDate(0, 1, 0), Status: models.InstallmentStatusPending},
	}
	payments := []models.Payment{
		{Amount: d("5000.00"), Category: models.CategoryMonthly},
		{Amount: d("500.00"), Category: models.CategoryRefund},
	}

	first := Summarize(installments, payments, today)
	second := Summarize(installments, payments, today)

	assert.Equal(t, first, second)
	// inputs untouched
	assert.Equal(t, models.InstallmentStatusPartial, installments[0].Status)
	assert.True(t, installments[0].PaidAmount.Equal(d("5000.00")))
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, nil, time.Now())

	assert.True(t, summary.TotalScheduled.Equal(decimal.Zero))
	assert.True(t, summary.TotalPaid.IsZero())
	assert.True(t, summary.Balance.IsZero())
	assert.Nil(t, summary.NextDueDate)
}
