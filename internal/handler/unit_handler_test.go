package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/internal/service"
)

type unitRepoStub struct {
	units      []models.Unit
	created    *models.Unit
	deleted    string
	listCalled bool
}

func (s *unitRepoStub) ListOrdered(ctx context.Context) ([]models.Unit, error) {
	s.listCalled = true
	return s.units, nil
}

func (s *unitRepoStub) FindByID(ctx context.Context, id string) (*models.Unit, error) {
	for i := range s.units {
		if s.units[i].ID == id {
			return &s.units[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *unitRepoStub) FindByName(ctx context.Context, name string) (*models.Unit, error) {
	for i := range s.units {
		if s.units[i].Name == name {
			return &s.units[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *unitRepoStub) Create(ctx context.Context, unit *models.Unit) error {
	unit.ID = "u-new"
	s.created = unit
	s.units = append(s.units, *unit)
	return nil
}

func (s *unitRepoStub) Update(ctx context.Context, unit *models.Unit) error { return nil }

func (s *unitRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = id
	return nil
}

func (s *unitRepoStub) Coverage(ctx context.Context, today models.Date) ([]models.UnitCoverage, error) {
	return []models.UnitCoverage{{UnitID: "u1", UnitName: "Haematology", ActiveCount: 2}}, nil
}

type rotationCounterStub struct {
	counts map[string]int
}

func (s *rotationCounterStub) CountByUnit(ctx context.Context, unitID string) (int, error) {
	return s.counts[unitID], nil
}

func newUnitHandlerFixture(repo *unitRepoStub, counter *rotationCounterStub) *UnitHandler {
	if counter == nil {
		counter = &rotationCounterStub{}
	}
	return NewUnitHandler(service.NewUnitService(repo, counter, nil, nil))
}

func TestUnitHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &unitRepoStub{units: []models.Unit{{ID: "u1", Name: "Haematology", DurationDays: 14, Workload: models.WorkloadHigh}}}
	handler := newUnitHandlerFixture(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/units", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.listCalled)
	assert.Contains(t, w.Body.String(), "Haematology")
}

func TestUnitHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUnitHandlerFixture(&unitRepoStub{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/units/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &unitRepoStub{}
	handler := newUnitHandlerFixture(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"name":"Microbiology","duration_days":10,"workload":"MEDIUM"}`
	req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Microbiology", repo.created.Name)
}

func TestUnitHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUnitHandlerFixture(&unitRepoStub{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBufferString(`{"name":"X"`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnitHandlerDeleteRefusedWhileReferenced(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &unitRepoStub{units: []models.Unit{{ID: "u1", Name: "Haematology"}}}
	counter := &rotationCounterStub{counts: map[string]int{"u1": 3}}
	handler := newUnitHandlerFixture(repo, counter)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/units/u1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "u1"}}

	handler.Delete(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, repo.deleted)
}
