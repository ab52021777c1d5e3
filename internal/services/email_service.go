package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/solterra/ventas-api/internal/config"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/money"
	"github.com/solterra/ventas-api/pkg/logger"
)

var overdueDigestTmpl = template.Must(template.New("overdue_digest").Parse(`
<h2>Recordatorio de pagos vencidos</h2>
<p>Estimado/a {{.Name}},</p>
<p>Tiene {{len .Installments}} cuota(s) vencida(s) pendientes de pago:</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Expediente</th><th>Unidad</th><th>Cuota</th><th>Vencimiento</th><th>Saldo</th></tr>
  {{range .Installments}}
  <tr>
    <td>{{.CaseNumber}}</td>
    <td>{{.UnitLabel}}</td>
    <td>{{.Label}}</td>
    <td>{{.DueDate}}</td>
    <td>{{.Outstanding}}</td>
  </tr>
  {{end}}
</table>
<p>Por favor acérquese a la oficina de ventas o realice su pago por transferencia.</p>
<p><a href="{{.AppURL}}">Ver mi expediente</a></p>
`))

var paymentReceivedTmpl = template.Must(template.New("payment_received").Parse(`
<h2>Pago recibido</h2>
<p>Estimado/a {{.Name}},</p>
<p>Hemos registrado su pago de <strong>{{.Amount}}</strong> para el expediente
<strong>{{.CaseNumber}}</strong> (unidad {{.UnitLabel}}) con fecha {{.PaidAt}}.</p>
<p>Referencia de auditoría: {{.AuditID}}</p>
<p><a href="{{.AppURL}}">Ver mi expediente</a></p>
`))

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// checkEmailPreconditions reports whether an email can be attempted. A
// disabled mail switch is not an error; missing configuration or an empty
// address is.
func (s *EmailService) checkEmailPreconditions(email, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Info(fmt.Sprintf("[Email] Notifications disabled, skipping %s", operation))
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, fmt.Errorf("RESEND_API_KEY is not set, cannot %s", operation)
	}
	if email == "" {
		return false, fmt.Errorf("email address is empty")
	}
	return true, nil
}

type overdueRow struct {
	CaseNumber  string
	UnitLabel   string
	Label       string
	DueDate     string
	Outstanding string
}

// SendOverdueDigest emails one client a digest of all their overdue
// installments. Installments must come with Case, Client and Unit preloaded.
func (s *EmailService) SendOverdueDigest(ctx context.Context, client *models.Client, installments []models.Installment) error {
	email := ""
	if client.Email != nil {
		email = *client.Email
	}
	ok, err := s.checkEmailPreconditions(email, "send overdue digest")
	if !ok {
		return err
	}

	rows := make([]overdueRow, 0, len(installments))
	for i := range installments {
		inst := &installments[i]
		rows = append(rows, overdueRow{
			CaseNumber:  inst.Case.CaseNumber,
			UnitLabel:   inst.Case.Unit.Label(),
			Label:       inst.Label,
			DueDate:     inst.DueDate.Format("02/01/2006"),
			Outstanding: money.FormatMXN(inst.Outstanding()),
		})
	}

	data := struct {
		Name         string
		Installments []overdueRow
		AppURL       string
	}{
		Name:         client.FullName,
		Installments: rows,
		AppURL:       s.config.AppURL,
	}

	body, err := render(overdueDigestTmpl, data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Pagos Vencidos (%d cuotas)", len(installments))
	return s.send(email, subject, body)
}

// SendPaymentReceived emails the client a receipt for a recorded payment.
// The payment must come with Case, Client and Unit preloaded.
func (s *EmailService) SendPaymentReceived(ctx context.Context, payment *models.Payment) error {
	client := &payment.Case.Client
	email := ""
	if client.Email != nil {
		email = *client.Email
	}
	ok, err := s.checkEmailPreconditions(email, "send payment receipt")
	if !ok {
		return err
	}

	data := struct {
		Name       string
		Amount     string
		CaseNumber string
		UnitLabel  string
		PaidAt     string
		AuditID    string
		AppURL     string
	}{
		Name:       client.FullName,
		Amount:     money.FormatMXN(payment.Amount),
		CaseNumber: payment.Case.CaseNumber,
		UnitLabel:  payment.Case.Unit.Label(),
		PaidAt:     payment.PaidAt.Format("02/01/2006"),
		AuditID:    payment.AuditID,
		AppURL:     s.config.AppURL,
	}

	body, err := render(paymentReceivedTmpl, data)
	if err != nil {
		return err
	}

	return s.send(email, "Pago Recibido", body)
}

func (s *EmailService) send(to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
