package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/money"
)

var oneHundred = decimal.NewFromInt(100)

// Summarize computes the case-level totals from the full installment and
// payment sets. It is pure and idempotent: nothing is mutated and the same
// inputs always produce the same summary. "today" must come from the caller's
// clock so overdue and next-due judgments are testable.
func Summarize(installments []models.Installment, payments []models.Payment, today time.Time) models.CaseSummary {
	summary := models.CaseSummary{
		TotalScheduled: decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRefunded:  decimal.Zero,
		Balance:        decimal.Zero,
		PercentPaid:    decimal.Zero,
		OverdueAmount:  decimal.Zero,
	}

	day := money.DateOnly(today)

	for _, inst := range installments {
		summary.TotalScheduled = summary.TotalScheduled.Add(inst.AmountDue)

		outstanding := inst.Status == models.InstallmentStatusPending ||
			inst.Status == models.InstallmentStatusPartial

		if outstanding && money.SameOrAfter(inst.DueDate, day) {
			due := inst.DueDate
			if summary.NextDueDate == nil || due.Before(*summary.NextDueDate) {
				summary.NextDueDate = &due
			}
		}

		pastDue := outstanding || inst.Status == models.InstallmentStatusOverdue
		if pastDue && money.Before(inst.DueDate, day) {
			summary.OverdueAmount = summary.OverdueAmount.Add(inst.AmountDue.Sub(inst.PaidAmount))
		}
	}

	for _, p := range payments {
		if p.IsRefund() {
			summary.TotalRefunded = summary.TotalRefunded.Add(p.Amount)
		} else {
			summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
		}
	}

	summary.Balance = summary.TotalScheduled.Sub(summary.TotalPaid).Add(summary.TotalRefunded)

	if summary.TotalScheduled.IsPositive() {
		summary.PercentPaid = money.Round(summary.TotalPaid.Div(summary.TotalScheduled).Mul(oneHundred))
	}

	return summary
}
