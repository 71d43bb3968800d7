package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/middleware"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/registry"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

type registryClientMock struct {
	docs      map[string]*models.Document
	listErr   error
	reviewed  int
	lastDocID string
}

func (m *registryClientMock) ListDocuments(ctx context.Context, managerID string) ([]models.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *registryClientMock) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *registryClientMock) CreateDocument(ctx context.Context, req registry.CreateDocumentRequest) (*models.Document, error) {
	return &models.Document{ID: "doc-new", Title: req.Title, SendToAll: req.SendToAll, Tenants: req.Tenants}, nil
}

func (m *registryClientMock) SubmitDocumentReview(ctx context.Context, documentID string, req registry.ReviewRequest) (*models.Review, error) {
	m.reviewed++
	m.lastDocID = documentID
	return &models.Review{Status: models.ReviewDecision(req.Action), ReviewedBy: "manager-1"}, nil
}

func (m *registryClientMock) SubmitTenantReview(ctx context.Context, documentID, tenantID string, req registry.ReviewRequest) (*models.Review, error) {
	m.reviewed++
	m.lastDocID = documentID
	return &models.Review{Status: models.ReviewDecision(req.Action), ReviewedBy: "manager-1"}, nil
}

type overlayStoreMock struct {
	entries map[string]models.OverlayEntry
}

func (m *overlayStoreMock) Get(ctx context.Context, managerID, documentID string) (*models.OverlayEntry, error) {
	entry, ok := m.entries[documentID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *overlayStoreMock) Put(ctx context.Context, managerID, documentID string, entry models.OverlayEntry) error {
	if m.entries == nil {
		m.entries = map[string]models.OverlayEntry{}
	}
	m.entries[documentID] = entry
	return nil
}

func (m *overlayStoreMock) All(ctx context.Context, managerID string) (map[string]models.OverlayEntry, error) {
	return m.entries, nil
}

func (m *overlayStoreMock) Delete(ctx context.Context, managerID, documentID string) error {
	delete(m.entries, documentID)
	return nil
}

func newDocumentHandler(reg *registryClientMock, ov *overlayStoreMock) *DocumentHandler {
	svc := service.NewDocumentService(reg, ov, nil, nil)
	return NewDocumentHandler(svc)
}

func managerContext(w *httptest.ResponseRecorder) (*gin.Context, *models.JWTClaims) {
	c, _ := gin.CreateTestContext(w)
	claims := &models.JWTClaims{UserID: "manager-1", Role: models.RoleLandlord}
	c.Set(middleware.ContextUserKey, claims)
	return c, claims
}

func TestDocumentHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := &registryClientMock{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", Title: "Lease addendum", SendToAll: true},
	}}
	handler := newDocumentHandler(reg, &overlayStoreMock{})

	w := httptest.NewRecorder()
	c, _ := managerContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "doc-1", envelope.Data[0].ID)
	assert.Equal(t, string(models.DocumentStatusPending), envelope.Data[0].Status)
}

func TestDocumentHandlerListUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentHandler(&registryClientMock{}, &overlayStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentHandlerReview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := &registryClientMock{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", Title: "Lease addendum", SendToAll: true},
	}}
	ov := &overlayStoreMock{}
	handler := newDocumentHandler(reg, ov)

	w := httptest.NewRecorder()
	c, _ := managerContext(w)
	body := bytes.NewBufferString(`{"action":"accepted","review_notes":"looks good"}`)
	req, _ := http.NewRequest(http.MethodPost, "/documents/doc-1/review", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Review(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reg.reviewed)
	assert.Equal(t, "doc-1", reg.lastDocID)

	entry, ok := ov.entries["doc-1"]
	require.True(t, ok)
	require.NotNil(t, entry.Review)
	assert.Equal(t, models.ReviewAccepted, entry.Review.Status)
}

func TestDocumentHandlerReviewInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentHandler(&registryClientMock{}, &overlayStoreMock{})

	w := httptest.NewRecorder()
	c, _ := managerContext(w)
	body := bytes.NewBufferString(`{"action":`)
	req, _ := http.NewRequest(http.MethodPost, "/documents/doc-1/review", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Review(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerReviewAlreadyFinal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := &registryClientMock{docs: map[string]*models.Document{
		"doc-1": {
			ID:        "doc-1",
			SendToAll: true,
			Review:    &models.Review{Status: models.ReviewAccepted, ReviewedBy: "manager-1"},
		},
	}}
	handler := newDocumentHandler(reg, &overlayStoreMock{})

	w := httptest.NewRecorder()
	c, _ := managerContext(w)
	body := bytes.NewBufferString(`{"action":"rejected"}`)
	req, _ := http.NewRequest(http.MethodPost, "/documents/doc-1/review", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	handler.Review(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, reg.reviewed)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "REVIEW_FINAL", envelope.Error.Code)
}
