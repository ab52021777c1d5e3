package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"gorm.io/gorm"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: notificación %d", ErrNotFound, id)
	}
	return notification, err
}

func (s *NotificationService) List(ctx context.Context, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uint) error {
	notification, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	notification.MarkAsRead()
	return s.repo.Update(ctx, notification)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}

func (s *NotificationService) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}

// Notify records an in-app notice for the sales office, optionally tied to a
// case
func (s *NotificationService) Notify(ctx context.Context, caseID *uint, title, message, notifType string) error {
	notification := &models.Notification{
		CaseID:           caseID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	return s.repo.Create(ctx, notification)
}
