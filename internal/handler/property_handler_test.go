package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
)

type propertyRepoMock struct {
	properties map[string]*models.PropertyDetail
}

func (m *propertyRepoMock) List(ctx context.Context, filter models.PropertyFilter) ([]models.PropertyDetail, int, error) {
	out := make([]models.PropertyDetail, 0, len(m.properties))
	for _, p := range m.properties {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *propertyRepoMock) GetByID(ctx context.Context, id string) (*models.PropertyDetail, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *propertyRepoMock) Create(ctx context.Context, property *models.Property) error { return nil }

func (m *propertyRepoMock) Update(ctx context.Context, property *models.Property) error { return nil }

func (m *propertyRepoMock) Unlist(ctx context.Context, id string) error { return nil }

func newPropertyHandler(repo *propertyRepoMock) *PropertyHandler {
	svc := service.NewPropertyService(repo, nil, time.Minute, nil, nil)
	return NewPropertyHandler(svc)
}

func TestPropertyHandlerPublicGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPropertyHandler(&propertyRepoMock{properties: map[string]*models.PropertyDetail{
		"prop-1": {Property: models.Property{ID: "prop-1", Name: "Green View PG", City: "Indore", Listed: true}},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/listings/prop-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "prop-1"}}

	handler.PublicGet(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.PropertyDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "prop-1", envelope.Data.ID)
	assert.Equal(t, "Green View PG", envelope.Data.Name)
}

func TestPropertyHandlerPublicGetHidesUnlisted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPropertyHandler(&propertyRepoMock{properties: map[string]*models.PropertyDetail{
		"prop-1": {Property: models.Property{ID: "prop-1", Name: "Green View PG", Listed: false}},
	}})

	for _, id := range []string{"prop-1", "prop-missing"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest(http.MethodGet, "/public/listings/"+id, nil)
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: id}}

		handler.PublicGet(c)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}
}
