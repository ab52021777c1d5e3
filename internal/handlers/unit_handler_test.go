package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/solterra/ventas-api/internal/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockUnitRepo struct {
	repository.UnitRepository
	mockList           func(ctx context.Context, query *repository.ListQuery) ([]models.Unit, int64, error)
	mockFindByID       func(ctx context.Context, id uint) (*models.Unit, error)
	mockFindByBlockLot func(ctx context.Context, block, lot string) (*models.Unit, error)
	mockCreate         func(ctx context.Context, unit *models.Unit) error
}

func (m *mockUnitRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Unit, int64, error) {
	return m.mockList(ctx, query)
}

func (m *mockUnitRepo) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUnitRepo) FindByBlockLot(ctx context.Context, block, lot string) (*models.Unit, error) {
	return m.mockFindByBlockLot(ctx, block, lot)
}

func (m *mockUnitRepo) Create(ctx context.Context, unit *models.Unit) error {
	return m.mockCreate(ctx, unit)
}

func TestUnitHandler_Index_ForwardsFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUnitRepo{}
	handler := NewUnitHandler(services.NewUnitService(mockRepo))

	var captured *repository.ListQuery
	mockRepo.mockList = func(ctx context.Context, query *repository.ListQuery) ([]models.Unit, int64, error) {
		captured = query
		return []models.Unit{}, 0, nil
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/units?status=available&block=B&page=2&per_page=5", nil)
	handler.Index(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "available", captured.Filters["status"])
	assert.Equal(t, "B", captured.Filters["block"])
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 5, captured.PerPage)
}

func TestUnitHandler_Show_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUnitRepo{}
	handler := NewUnitHandler(services.NewUnitService(mockRepo))

	mockRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Unit, error) {
		return nil, gorm.ErrRecordNotFound
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/units/99", nil)
	c.Params = gin.Params{{Key: "unit_id", Value: "99"}}
	handler.Show(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitHandler_Create_DuplicateBlockLot(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUnitRepo{}
	handler := NewUnitHandler(services.NewUnitService(mockRepo))

	existing := &models.Unit{ID: 1, Block: "A", Lot: "12"}
	mockRepo.mockFindByBlockLot = func(ctx context.Context, block, lot string) (*models.Unit, error) {
		return existing, nil
	}

	payload := map[string]interface{}{
		"block":      "A",
		"lot":        "12",
		"area_m2":    "250",
		"list_price": "500000",
	}
	jsonBytes, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/units", bytes.NewBuffer(jsonBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnitHandler_Create_NestedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUnitRepo{}
	handler := NewUnitHandler(services.NewUnitService(mockRepo))

	mockRepo.mockFindByBlockLot = func(ctx context.Context, block, lot string) (*models.Unit, error) {
		return nil, gorm.ErrRecordNotFound
	}

	var created *models.Unit
	mockRepo.mockCreate = func(ctx context.Context, unit *models.Unit) error {
		unit.ID = 7
		created = unit
		return nil
	}

	payload := map[string]interface{}{
		"unit": map[string]interface{}{
			"block":      "C",
			"lot":        "04",
			"area_m2":    "180.5",
			"list_price": "750000",
		},
	}
	jsonBytes, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/units", bytes.NewBuffer(jsonBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotNil(t, created)
	assert.Equal(t, "C", created.Block)
	assert.Equal(t, models.UnitStatusAvailable, created.Status)
	assert.True(t, created.ListPrice.Equal(decimal.RequireFromString("750000")))
}
