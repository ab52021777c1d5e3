package services

import (
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/config"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Unit         *UnitService
	Client       *ClientService
	Case         *CaseService
	Schedule     *ScheduleService
	Payment      *PaymentService
	Notification *NotificationService
	Report       *ReportService
	Email        *EmailService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, clk clock.Clock) *Services {
	notificationSvc := NewNotificationService(repos.Notification)
	emailSvc := NewEmailService(cfg)
	scheduleSvc := NewScheduleService()

	return &Services{
		Unit:         NewUnitService(repos.Unit),
		Client:       NewClientService(repos.Client),
		Case:         NewCaseService(repos.Case, repos.Unit, repos.Client, repos.Installment, repos.Payment, scheduleSvc, notificationSvc, worker, clk),
		Schedule:     scheduleSvc,
		Payment:      NewPaymentService(repos.Payment, repos.Case, repos.Installment, notificationSvc, emailSvc, worker, clk),
		Notification: notificationSvc,
		Report:       NewReportService(repos.Case, repos.Installment, repos.Payment, clk),
		Email:        emailSvc,
	}
}
