package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second}, nil)
	return client, server
}

func TestClientListDocuments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "m1", r.URL.Query().Get("managerId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"d1","title":"Lease","sendToAll":true,"createdAt":"2026-01-01T00:00:00Z"}]}`))
	})

	docs, err := client.ListDocuments(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)
	assert.True(t, docs[0].SendToAll)
}

func TestClientListDocumentsMissingData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents":[]}`))
	})

	_, err := client.ListDocuments(context.Background(), "m1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDecode.Code, appErr.Code)
}

func TestClientListDocumentsWrongShape(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"not":"a list"}}`))
	})

	_, err := client.ListDocuments(context.Background(), "m1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDecode.Code, appErr.Code)
}

func TestClientSubmitDocumentReviewEcho(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/d1/review", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"review":{"status":"accepted","reviewedAt":"2026-01-02T00:00:00Z","reviewedBy":"Manager"}}}`))
	})

	review, err := client.SubmitDocumentReview(context.Background(), "d1", ReviewRequest{Action: "accept"})
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, models.ReviewAccepted, review.Status)
	assert.Equal(t, "Manager", review.ReviewedBy)
}

func TestClientSubmitDocumentReviewNoEcho(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	review, err := client.SubmitDocumentReview(context.Background(), "d1", ReviewRequest{Action: "accept"})
	require.NoError(t, err)
	assert.Nil(t, review)
}

func TestClientSubmitTenantReviewPath(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	_, err := client.SubmitTenantReview(context.Background(), "d2", "t1", ReviewRequest{Action: "reject", ReviewNotes: "blurry scan"})
	require.NoError(t, err)
	assert.Equal(t, "/documents/d2/tenants/t1/review", gotPath)
}

func TestClientServerMessageSurfaced(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"document already reviewed"}`))
	})

	_, err := client.SubmitDocumentReview(context.Background(), "d1", ReviewRequest{Action: "accept"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "document already reviewed", appErr.Message)
}

func TestClientRetriesGetOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second, MaxRetries: 2}, nil)
	docs, err := client.ListDocuments(context.Background(), "m1")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 2, calls)
}

type metricsRecorderStub struct {
	observed []string
	errors   []string
}

func (m *metricsRecorderStub) ObserveRegistryCall(operation string, duration time.Duration) {
	m.observed = append(m.observed, operation)
}

func (m *metricsRecorderStub) RecordRegistryError(code string) {
	m.errors = append(m.errors, code)
}

func TestClientRecordsMetricsOnSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	rec := &metricsRecorderStub{}
	client.SetMetrics(rec)

	_, err := client.ListDocuments(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, rec.observed, 1)
	assert.Equal(t, "list_documents", rec.observed[0])
	assert.Empty(t, rec.errors)
}

func TestClientRecordsMetricsOnFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	rec := &metricsRecorderStub{}
	client.SetMetrics(rec)

	_, err := client.ListDocuments(context.Background(), "m1")
	require.Error(t, err)
	assert.Empty(t, rec.observed)
	require.NotEmpty(t, rec.errors)
	assert.Equal(t, appErrors.ErrRegistry.Code, rec.errors[0])
}
