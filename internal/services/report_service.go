package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/money"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

type ReportService struct {
	caseRepo        repository.CaseRepository
	installmentRepo repository.InstallmentRepository
	paymentRepo     repository.PaymentRepository
	clock           clock.Clock
}

func NewReportService(
	caseRepo repository.CaseRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	clk clock.Clock,
) *ReportService {
	return &ReportService{
		caseRepo:        caseRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		clock:           clk,
	}
}

// GenerateOverdueCSV produces the collections worklist: every outstanding
// installment past its due date, one row per installment.
func (s *ReportService) GenerateOverdueCSV(ctx context.Context) ([]byte, string, error) {
	today := s.clock.Now()
	installments, err := s.installmentRepo.FindOverdue(ctx, today)
	if err != nil {
		return nil, "", err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Expediente", "Cliente", "Unidad", "Cuota", "Vencimiento", "Monto", "Pagado", "Saldo", "Días Vencida"}
	if err := w.Write(header); err != nil {
		return nil, "", err
	}

	day := money.DateOnly(today)
	for i := range installments {
		inst := &installments[i]

		clientName := "N/A"
		unitLabel := "N/A"
		if inst.Case.Client.ID != 0 {
			clientName = inst.Case.Client.FullName
		}
		if inst.Case.Unit.ID != 0 {
			unitLabel = inst.Case.Unit.Label()
		}

		daysOverdue := int(day.Sub(money.DateOnly(inst.DueDate)).Hours() / 24)

		record := []string{
			inst.Case.CaseNumber,
			clientName,
			unitLabel,
			inst.Label,
			inst.DueDate.Format("02/01/2006"),
			inst.AmountDue.StringFixed(2),
			inst.PaidAmount.StringFixed(2),
			inst.Outstanding().StringFixed(2),
			fmt.Sprintf("%d", daysOverdue),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cartera_vencida_%s.csv", today.Format("2006-01-02"))
	return b.Bytes(), filename, nil
}

// GenerateCollectionXLSX produces the monthly collection report: every
// payment recorded in the given month with a grand total.
func (s *ReportService) GenerateCollectionXLSX(ctx context.Context, month, year int) ([]byte, string, error) {
	if month < 1 || month > 12 {
		return nil, "", fmt.Errorf("%w: mes inválido %d", ErrValidation, month)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	query := repository.NewListQuery()
	query.PerPage = 0
	query.SortBy = "paid_at"
	query.SortDir = "asc"
	query.Filters["from"] = from.Format("2006-01-02")
	query.Filters["to"] = to.Format("2006-01-02")

	payments, _, err := s.paymentRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cobranza"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Reporte de Cobranza %02d/%d", month, year))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	columns := []string{"Fecha", "Expediente", "Cliente", "Unidad", "Categoría", "Canal", "Referencia", "Monto", "Verificado"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, col)
	}

	total := decimal.Zero
	refunded := decimal.Zero
	row := 4
	for i := range payments {
		p := &payments[i]

		clientName := ""
		unitLabel := ""
		if p.Case.Client.ID != 0 {
			clientName = p.Case.Client.FullName
		}
		if p.Case.Unit.ID != 0 {
			unitLabel = p.Case.Unit.Label()
		}

		channel := ""
		if p.Channel != nil {
			channel = *p.Channel
		}
		reference := ""
		if p.Reference != nil {
			reference = *p.Reference
		}
		verified := "No"
		if p.Verified {
			verified = "Sí"
		}

		amount, _ := p.Amount.Float64()
		values := []interface{}{
			p.PaidAt.Format("02/01/2006"),
			p.Case.CaseNumber,
			clientName,
			unitLabel,
			p.Category,
			channel,
			reference,
			amount,
			verified,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if p.IsRefund() {
			refunded = refunded.Add(p.Amount)
		} else {
			total = total.Add(p.Amount)
		}
		row++
	}

	row++
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total Cobrado")
	totalF, _ := total.Float64()
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), totalF)
	row++
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total Reembolsado")
	refundedF, _ := refunded.Float64()
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), refundedF)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cobranza_%d-%02d.xlsx", year, month)
	return buf.Bytes(), filename, nil
}

// GenerateCaseStatementPDF produces the account statement a client receives:
// case header, full schedule with per-installment status, payment history and
// the computed totals.
func (s *ReportService) GenerateCaseStatementPDF(ctx context.Context, caseID uint) ([]byte, string, error) {
	saleCase, err := s.caseRepo.FindByIDWithDetails(ctx, caseID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: expediente %d", ErrNotFound, caseID)
	}

	summary := Summarize(saleCase.Installments, saleCase.Payments, s.clock.Now())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Estado de Cuenta - %s", saleCase.CaseNumber))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Cliente:")
	pdf.Cell(80, 8, saleCase.Client.FullName)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Unidad:")
	pdf.Cell(80, 8, saleCase.Unit.Label())
	pdf.Ln(6)
	pdf.Cell(60, 8, "Precio de Venta:")
	pdf.Cell(80, 8, money.FormatMXN(saleCase.SalePrice))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Estado:")
	pdf.Cell(80, 8, saleCase.Status)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Plan de Pagos")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.Cell(10, 7, "#")
	pdf.Cell(45, 7, "Cuota")
	pdf.Cell(28, 7, "Vencimiento")
	pdf.Cell(35, 7, "Monto")
	pdf.Cell(35, 7, "Pagado")
	pdf.Cell(25, 7, "Estado")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for i := range saleCase.Installments {
		inst := &saleCase.Installments[i]
		pdf.Cell(10, 6, fmt.Sprintf("%d", inst.Seq))
		pdf.Cell(45, 6, inst.Label)
		pdf.Cell(28, 6, inst.DueDate.Format("02/01/2006"))
		pdf.Cell(35, 6, inst.AmountDue.StringFixed(2))
		pdf.Cell(35, 6, inst.PaidAmount.StringFixed(2))
		pdf.Cell(25, 6, inst.Status)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	rows := []struct {
		label string
		value string
	}{
		{"Total Programado:", money.FormatMXN(summary.TotalScheduled)},
		{"Total Pagado:", money.FormatMXN(summary.TotalPaid)},
		{"Total Reembolsado:", money.FormatMXN(summary.TotalRefunded)},
		{"Saldo:", money.FormatMXN(summary.Balance)},
		{"Porcentaje Pagado:", fmt.Sprintf("%s%%", summary.PercentPaid.StringFixed(2))},
		{"Monto Vencido:", money.FormatMXN(summary.OverdueAmount)},
	}
	if summary.NextDueDate != nil {
		rows = append(rows, struct {
			label string
			value string
		}{"Proximo Vencimiento:", summary.NextDueDate.Format("02/01/2006")})
	}
	for _, r := range rows {
		pdf.Cell(60, 7, r.label)
		pdf.Cell(60, 7, r.value)
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("estado_cuenta_%s.pdf", saleCase.CaseNumber)
	return buf.Bytes(), filename, nil
}
