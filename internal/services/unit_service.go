package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"gorm.io/gorm"
)

type UnitService struct {
	repo repository.UnitRepository
}

func NewUnitService(repo repository.UnitRepository) *UnitService {
	return &UnitService{repo: repo}
}

func (s *UnitService) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	unit, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unidad %d", ErrNotFound, id)
	}
	return unit, err
}

func (s *UnitService) List(ctx context.Context, query *repository.ListQuery) ([]models.Unit, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *UnitService) Create(ctx context.Context, unit *models.Unit) error {
	if unit.Block == "" || unit.Lot == "" {
		return fmt.Errorf("%w: manzana y lote son requeridos", ErrValidation)
	}
	if !unit.ListPrice.IsPositive() {
		return fmt.Errorf("%w: el precio de lista debe ser mayor a cero", ErrValidation)
	}

	if existing, err := s.repo.FindByBlockLot(ctx, unit.Block, unit.Lot); err == nil && existing != nil {
		return fmt.Errorf("%w: unidad %s", ErrDuplicate, existing.Label())
	}

	if unit.Status == "" {
		unit.Status = models.UnitStatusAvailable
	}
	return s.repo.Create(ctx, unit)
}

func (s *UnitService) Update(ctx context.Context, unit *models.Unit) error {
	if !unit.ListPrice.IsPositive() {
		return fmt.Errorf("%w: el precio de lista debe ser mayor a cero", ErrValidation)
	}
	return s.repo.Update(ctx, unit)
}
