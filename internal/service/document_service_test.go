package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/registry"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/jobs"
)

func resyncJob(managerID, documentID, tenantID string) jobs.Job {
	return jobs.Job{
		ID:      "job-1",
		Type:    "review-resync",
		Payload: ResyncPayload{ManagerID: managerID, DocumentID: documentID, TenantID: tenantID},
	}
}

type registryStub struct {
	listDocs          []models.Document
	docs              map[string]*models.Document
	listErr           error
	getErr            error
	reviewEcho        *models.Review
	reviewErr         error
	docReviewCalls    int
	tenantReviewCalls int
	lastTenantID      string
	lastReview        registry.ReviewRequest
	created           *models.Document
}

func (s *registryStub) ListDocuments(ctx context.Context, managerID string) ([]models.Document, error) {
	return s.listDocs, s.listErr
}

func (s *registryStub) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	clone := *doc
	return &clone, nil
}

func (s *registryStub) CreateDocument(ctx context.Context, req registry.CreateDocumentRequest) (*models.Document, error) {
	return s.created, nil
}

func (s *registryStub) SubmitDocumentReview(ctx context.Context, documentID string, req registry.ReviewRequest) (*models.Review, error) {
	s.docReviewCalls++
	s.lastReview = req
	if s.reviewErr != nil {
		return nil, s.reviewErr
	}
	return s.reviewEcho, nil
}

func (s *registryStub) SubmitTenantReview(ctx context.Context, documentID, tenantID string, req registry.ReviewRequest) (*models.Review, error) {
	s.tenantReviewCalls++
	s.lastTenantID = tenantID
	s.lastReview = req
	if s.reviewErr != nil {
		return nil, s.reviewErr
	}
	return s.reviewEcho, nil
}

type overlayStub struct {
	entries map[string]models.OverlayEntry
	puts    int
	deletes []string
	getErr  error
	putErr  error
}

func newOverlayStub() *overlayStub {
	return &overlayStub{entries: map[string]models.OverlayEntry{}}
}

func (s *overlayStub) Get(ctx context.Context, managerID, documentID string) (*models.OverlayEntry, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if entry, ok := s.entries[documentID]; ok {
		clone := entry
		return &clone, nil
	}
	return nil, nil
}

func (s *overlayStub) Put(ctx context.Context, managerID, documentID string, entry models.OverlayEntry) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.entries[documentID] = entry
	return nil
}

func (s *overlayStub) All(ctx context.Context, managerID string) (map[string]models.OverlayEntry, error) {
	out := make(map[string]models.OverlayEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *overlayStub) Delete(ctx context.Context, managerID, documentID string) error {
	s.deletes = append(s.deletes, documentID)
	delete(s.entries, documentID)
	return nil
}

func submission(tenantID string, review *models.Review) models.Submission {
	return models.Submission{
		UploadedBy: models.Uploader{TenantID: tenantID, Name: "Tenant " + tenantID},
		FilePath:   "/uploads/" + tenantID + ".pdf",
		UploadedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Review:     review,
	}
}

func acceptedReview(by string) *models.Review {
	return &models.Review{Status: models.ReviewAccepted, ReviewedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC), ReviewedBy: by}
}

func rejectedReview(by string) *models.Review {
	return &models.Review{Status: models.ReviewRejected, ReviewedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC), ReviewedBy: by}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		doc  models.Document
		want models.DocumentStatus
	}{
		{
			name: "explicit review wins",
			doc:  models.Document{SendToAll: true, Status: "submitted", Review: rejectedReview("m1")},
			want: models.DocumentStatusRejected,
		},
		{
			name: "broadcast falls back to registry status",
			doc:  models.Document{SendToAll: true, Status: "submitted"},
			want: models.DocumentStatusSubmitted,
		},
		{
			name: "broadcast unknown status defaults to pending",
			doc:  models.Document{SendToAll: true, Status: "weird"},
			want: models.DocumentStatusPending,
		},
		{
			name: "no submissions pending",
			doc:  models.Document{},
			want: models.DocumentStatusPending,
		},
		{
			name: "submissions without reviews submitted",
			doc:  models.Document{FilledFiles: []models.Submission{submission("t1", nil), submission("t2", nil)}},
			want: models.DocumentStatusSubmitted,
		},
		{
			name: "all accepted",
			doc:  models.Document{FilledFiles: []models.Submission{submission("t1", acceptedReview("m1")), submission("t2", acceptedReview("m1"))}},
			want: models.DocumentStatusAccepted,
		},
		{
			name: "rejection outranks acceptance",
			doc:  models.Document{FilledFiles: []models.Submission{submission("t1", acceptedReview("m1")), submission("t2", rejectedReview("m1"))}},
			want: models.DocumentStatusRejected,
		},
		{
			name: "some reviewed partial",
			doc:  models.Document{FilledFiles: []models.Submission{submission("t1", acceptedReview("m1")), submission("t2", nil), submission("t3", nil)}},
			want: models.DocumentStatusPartial,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.doc))
		})
	}
}

func TestListAppliesOverlayOverRegistryReviews(t *testing.T) {
	reg := &registryStub{listDocs: []models.Document{
		{ID: "d1", SendToAll: false, FilledFiles: []models.Submission{submission("t1", nil), submission("t2", nil)}},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{
		SendToAll:   false,
		FilledFiles: []models.OverlayFilledFile{{TenantID: "t1", Review: acceptedReview("m1")}},
	}
	svc := NewDocumentService(reg, ov, nil, nil)

	docs, err := svc.List(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].FilledFiles[0].Review)
	assert.Equal(t, models.ReviewAccepted, docs[0].FilledFiles[0].Review.Status)
	assert.Nil(t, docs[0].FilledFiles[1].Review)
	assert.Equal(t, string(models.DocumentStatusPartial), docs[0].Status)

	// Merging again produces the same result.
	again, err := svc.List(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, docs, again)
}

func TestListDiscardsStaleModeMismatchEntry(t *testing.T) {
	reg := &registryStub{listDocs: []models.Document{
		{ID: "d1", SendToAll: true, Status: "submitted"},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{
		SendToAll:   false,
		FilledFiles: []models.OverlayFilledFile{{TenantID: "t1", Review: acceptedReview("m1")}},
	}
	svc := NewDocumentService(reg, ov, nil, nil)

	docs, err := svc.List(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].Review)
	assert.Equal(t, string(models.DocumentStatusSubmitted), docs[0].Status)
	assert.Equal(t, []string{"d1"}, ov.deletes)
}

func TestProvisionalOverlayYieldsToRegistryReview(t *testing.T) {
	stored := acceptedReview("m1")
	reg := &registryStub{listDocs: []models.Document{
		{ID: "d1", SendToAll: true, Review: stored},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{
		SendToAll: true,
		Review:    &models.Review{Status: models.ReviewAccepted, ReviewedBy: "m1", Provisional: true},
	}
	svc := NewDocumentService(reg, ov, nil, nil)

	docs, err := svc.List(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, docs[0].Review)
	assert.False(t, docs[0].Review.Provisional)
	assert.Equal(t, stored.ReviewedAt, docs[0].Review.ReviewedAt)
	assert.Equal(t, string(models.DocumentStatusAccepted), docs[0].Status)
}

func TestSubmitReviewBroadcastSynthesizesProvisional(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
	}}
	ov := newOverlayStub()
	svc := NewDocumentService(reg, ov, nil, nil)
	frozen := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	doc, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1",
		Action:     "accepted",
		ReviewerID: "m1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.docReviewCalls)
	assert.Equal(t, 0, reg.tenantReviewCalls)

	require.NotNil(t, doc.Review)
	assert.True(t, doc.Review.Provisional)
	assert.Equal(t, models.ReviewAccepted, doc.Review.Status)
	assert.Equal(t, frozen, doc.Review.ReviewedAt)
	assert.Equal(t, "m1", doc.Review.ReviewedBy)
	assert.Equal(t, string(models.DocumentStatusAccepted), doc.Status)

	entry := ov.entries["d1"]
	assert.True(t, entry.SendToAll)
	require.NotNil(t, entry.Review)
	assert.True(t, entry.Review.Provisional)
}

func TestSubmitReviewUsesRegistryEcho(t *testing.T) {
	echo := rejectedReview("m1")
	echo.ReviewNotes = "blurry scan"
	reg := &registryStub{
		docs: map[string]*models.Document{
			"d1": {ID: "d1", SendToAll: false, FilledFiles: []models.Submission{submission("t1", nil)}},
		},
		reviewEcho: echo,
	}
	ov := newOverlayStub()
	svc := NewDocumentService(reg, ov, nil, nil)

	doc, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID:  "d1",
		TenantID:    "t1",
		Action:      "rejected",
		ReviewNotes: "blurry scan",
		ReviewerID:  "m1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.tenantReviewCalls)
	assert.Equal(t, "t1", reg.lastTenantID)
	assert.Equal(t, "rejected", reg.lastReview.Action)

	require.NotNil(t, doc.FilledFiles[0].Review)
	assert.False(t, doc.FilledFiles[0].Review.Provisional)
	assert.Equal(t, echo.ReviewedAt, doc.FilledFiles[0].Review.ReviewedAt)
	assert.Equal(t, string(models.DocumentStatusRejected), doc.Status)

	entry := ov.entries["d1"]
	got := entry.TenantReview("t1")
	require.NotNil(t, got)
	assert.False(t, got.Provisional)
}

func TestSubmitReviewNoOverlayWriteOnRegistryFailure(t *testing.T) {
	reg := &registryStub{
		docs: map[string]*models.Document{
			"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
		},
		reviewErr: appErrors.Clone(appErrors.ErrRegistry, "registry unavailable"),
	}
	ov := newOverlayStub()
	svc := NewDocumentService(reg, ov, nil, nil)

	_, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1",
		Action:     "accepted",
		ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "REGISTRY_ERROR", appErrors.FromError(err).Code)
	assert.Equal(t, 0, ov.puts)
	assert.Empty(t, ov.entries)
}

func TestSubmitReviewRejectsSecondDecision(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{SendToAll: true, Review: acceptedReview("m1")}
	svc := NewDocumentService(reg, ov, nil, nil)

	_, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1",
		Action:     "rejected",
		ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "REVIEW_FINAL", appErrors.FromError(err).Code)
	assert.Equal(t, 0, reg.docReviewCalls)
}

func TestSubmitReviewModeValidation(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"broadcast": {ID: "broadcast", SendToAll: true, Status: "submitted"},
		"targeted":  {ID: "targeted", SendToAll: false, FilledFiles: []models.Submission{submission("t1", nil)}},
	}}
	svc := NewDocumentService(reg, newOverlayStub(), nil, nil)

	_, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "broadcast", TenantID: "t1", Action: "accepted", ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)

	_, err = svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "targeted", Action: "accepted", ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)

	_, err = svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "targeted", TenantID: "t9", Action: "accepted", ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)

	_, err = svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "targeted", TenantID: "t1", Action: "maybe", ReviewerID: "m1",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
	assert.Equal(t, 0, reg.docReviewCalls+reg.tenantReviewCalls)
}

func TestSubmitReviewAcceptsImperativeSpellings(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
		"d2": {ID: "d2", SendToAll: true, Status: "submitted"},
	}}
	svc := NewDocumentService(reg, newOverlayStub(), nil, nil)

	doc, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1", Action: "accept", ReviewerID: "m1",
	})
	require.NoError(t, err)
	require.NotNil(t, doc.Review)
	assert.Equal(t, models.ReviewAccepted, doc.Review.Status)
	assert.Equal(t, string(models.ReviewAccepted), reg.lastReview.Action)

	doc, err = svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d2", Action: "Reject", ReviewerID: "m1",
	})
	require.NoError(t, err)
	require.NotNil(t, doc.Review)
	assert.Equal(t, models.ReviewRejected, doc.Review.Status)
	assert.Equal(t, string(models.ReviewRejected), reg.lastReview.Action)
}

func TestSubmitReviewPerTenantMixedDecisions(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: false, FilledFiles: []models.Submission{
			submission("t1", nil),
			submission("t2", nil),
		}},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{
		SendToAll:   false,
		FilledFiles: []models.OverlayFilledFile{{TenantID: "t1", Review: acceptedReview("m1")}},
	}
	svc := NewDocumentService(reg, ov, nil, nil)

	doc, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1",
		TenantID:   "t2",
		Action:     "rejected",
		ReviewerID: "m1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.DocumentStatusRejected), doc.Status)

	entry := ov.entries["d1"]
	assert.Len(t, entry.FilledFiles, 2)
	require.NotNil(t, entry.TenantReview("t1"))
	assert.Equal(t, models.ReviewAccepted, entry.TenantReview("t1").Status)
	require.NotNil(t, entry.TenantReview("t2"))
	assert.Equal(t, models.ReviewRejected, entry.TenantReview("t2").Status)
}

func TestHandleResyncJobReplacesProvisionalReview(t *testing.T) {
	stored := acceptedReview("m1")
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: true, Review: stored},
	}}
	ov := newOverlayStub()
	ov.entries["d1"] = models.OverlayEntry{
		SendToAll: true,
		Review:    &models.Review{Status: models.ReviewAccepted, ReviewedBy: "m1", Provisional: true},
	}
	svc := NewDocumentService(reg, ov, nil, nil)

	err := svc.HandleResyncJob(context.Background(), resyncJob("m1", "d1", ""))
	require.NoError(t, err)

	entry := ov.entries["d1"]
	require.NotNil(t, entry.Review)
	assert.False(t, entry.Review.Provisional)
	assert.Equal(t, stored.ReviewedAt, entry.Review.ReviewedAt)
}

func TestHandleResyncJobRetriesUntilRegistryMaterializes(t *testing.T) {
	reg := &registryStub{docs: map[string]*models.Document{
		"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
	}}
	ov := newOverlayStub()
	svc := NewDocumentService(reg, ov, nil, nil)

	err := svc.HandleResyncJob(context.Background(), resyncJob("m1", "d1", ""))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}

func TestMetricsTrackProvisionalLifecycle(t *testing.T) {
	reg := &registryStub{
		docs: map[string]*models.Document{
			"d1": {ID: "d1", SendToAll: true, Status: "submitted"},
		},
	}
	ov := newOverlayStub()
	svc := NewDocumentService(reg, ov, nil, nil)
	metrics := NewMetricsService()
	svc.SetMetrics(metrics)

	_, err := svc.SubmitReview(context.Background(), "m1", SubmitReviewRequest{
		DocumentID: "d1",
		Action:     "accepted",
		ReviewerID: "m1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.provisionalGauge))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.overlayOps.WithLabelValues("put")))

	err = svc.HandleResyncJob(context.Background(), resyncJob("m1", "d1", ""))
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.resyncRetryTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.provisionalGauge))

	reg.docs["d1"].Review = acceptedReview("m1")
	err = svc.HandleResyncJob(context.Background(), resyncJob("m1", "d1", ""))
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.provisionalGauge))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.overlayOps.WithLabelValues("put")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.resyncRetryTotal))
}
