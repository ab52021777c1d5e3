package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"gorm.io/gorm"
)

type ClientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cliente %d", ErrNotFound, id)
	}
	return client, err
}

func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ClientService) Create(ctx context.Context, client *models.Client) error {
	if client.FullName == "" || client.Identity == "" {
		return fmt.Errorf("%w: nombre e identificación son requeridos", ErrValidation)
	}

	if existing, err := s.repo.FindByIdentity(ctx, client.Identity); err == nil && existing != nil {
		return fmt.Errorf("%w: identificación %s ya registrada", ErrDuplicate, client.Identity)
	}

	return s.repo.Create(ctx, client)
}

// Update edits the client's contact data. Identity edits are allowed; the
// record itself stays linked to its cases.
func (s *ClientService) Update(ctx context.Context, client *models.Client) error {
	if client.FullName == "" || client.Identity == "" {
		return fmt.Errorf("%w: nombre e identificación son requeridos", ErrValidation)
	}
	return s.repo.Update(ctx, client)
}

// Delete removes a client only while no sale case references them
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountCases(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cliente %d tiene %d expediente(s)", ErrClientInUse, id, count)
	}

	return s.repo.Delete(ctx, id)
}
