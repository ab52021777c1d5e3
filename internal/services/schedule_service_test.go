package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGenerate_StandardPlan(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// 1,000,000 with 30% down, 36 monthlies, 10% final
	salePrice := d("1000000.00")
	plan := PlanSpec{
		DownPayment: &DownPaymentSpec{Amount: d("300000.00"), Date: start},
		Monthly:     &MonthlySpec{Count: 36, StartDate: start.AddDate(0, 1, 0)},
		Final:       &FinalSpec{Amount: d("100000.00"), Date: start.AddDate(0, 37, 0)},
	}

	installments, err := svc.Generate(salePrice, plan)
	require.NoError(t, err)
	require.Len(t, installments, 38)

	assert.Equal(t, models.CategoryDownPayment, installments[0].Category)
	assert.True(t, installments[0].AmountDue.Equal(d("300000.00")))

	// 600,000 / 36 rounds to 16,666.67
	for i := 1; i <= 36; i++ {
		assert.Equal(t, models.CategoryMonthly, installments[i].Category)
		assert.True(t, installments[i].AmountDue.Equal(d("16666.67")),
			"monthly %d got %s", i, installments[i].AmountDue)
	}

	assert.Equal(t, models.CategoryFinal, installments[37].Category)
	assert.True(t, installments[37].AmountDue.Equal(d("100000.00")))

	// Residual is not redistributed: the schedule may differ from the sale
	// price by at most one centavo per installment
	var total decimal.Decimal
	for _, inst := range installments {
		total = total.Add(inst.AmountDue)
	}
	tolerance := decimal.NewFromInt(int64(len(installments))).Mul(d("0.01"))
	assert.True(t, total.Sub(salePrice).Abs().LessThanOrEqual(tolerance),
		"total %s vs sale price %s", total, salePrice)
	assert.True(t, total.Equal(d("1000000.12")))
}

func TestGenerate_SequenceContiguous(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	plan := PlanSpec{
		Reservation: &ReservationSpec{Amount: d("10000.00"), Date: start},
		DownPayment: &DownPaymentSpec{Amount: d("90000.00"), Date: start.AddDate(0, 0, 14)},
		Monthly:     &MonthlySpec{Count: 12, StartDate: start.AddDate(0, 1, 0)},
		Final:       &FinalSpec{Amount: d("50000.00"), Date: start.AddDate(0, 13, 0)},
	}

	installments, err := svc.Generate(d("500000.00"), plan)
	require.NoError(t, err)
	require.Len(t, installments, 15)

	wantCategories := []string{models.CategoryReservation, models.CategoryDownPayment}
	for i := 0; i < 12; i++ {
		wantCategories = append(wantCategories, models.CategoryMonthly)
	}
	wantCategories = append(wantCategories, models.CategoryFinal)

	for i, inst := range installments {
		assert.Equal(t, i, inst.Seq)
		assert.Equal(t, wantCategories[i], inst.Category)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
	}
}

func TestGenerate_MonthlyDatesAdvanceByMonth(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	plan := PlanSpec{
		Monthly: &MonthlySpec{Amount: d("5000.00"), Count: 3, StartDate: start},
	}

	installments, err := svc.Generate(d("15000.00"), plan)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	// February has no 31st; the due day clamps to month end
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), installments[1].DueDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), installments[2].DueDate)
}

func TestGenerate_Validation(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Generate(decimal.Zero, PlanSpec{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(d("-100.00"), PlanSpec{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(d("100000.00"), PlanSpec{
		Monthly: &MonthlySpec{Count: -1, StartDate: start},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(d("100000.00"), PlanSpec{
		Monthly: &MonthlySpec{Count: 12},
	})
	assert.ErrorIs(t, err, ErrValidation, "missing start date")

	_, err = svc.Generate(d("100000.00"), PlanSpec{
		Reservation: &ReservationSpec{Amount: d("5000.00")},
	})
	assert.ErrorIs(t, err, ErrValidation, "missing reservation date")
}

func TestGenerate_EmptyPlanYieldsEmptySchedule(t *testing.T) {
	svc := NewScheduleService()
	installments, err := svc.Generate(d("100000.00"), PlanSpec{})
	assert.NoError(t, err)
	assert.Empty(t, installments)
}

func TestPlanFromCase_DerivesPercentages(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	saleCase := &models.SaleCase{
		SalePrice:       d("1000000.00"),
		DownPaymentPct:  d("30"),
		MonthlyCount:    36,
		FinalPaymentPct: d("10"),
	}

	plan := svc.PlanFromCase(saleCase, start)
	require.NotNil(t, plan.DownPayment)
	require.NotNil(t, plan.Monthly)
	require.NotNil(t, plan.Final)

	assert.True(t, plan.DownPayment.Amount.Equal(d("300000.00")))
	assert.True(t, plan.Final.Amount.Equal(d("100000.00")))
	assert.Equal(t, 36, plan.Monthly.Count)
	assert.True(t, plan.Monthly.Amount.IsZero(), "amount left for Generate to derive")
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), plan.Monthly.StartDate)
}
