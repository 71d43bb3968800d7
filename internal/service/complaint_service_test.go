package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type complaintRepoStub struct {
	complaints map[string]*models.Complaint
	created    *models.Complaint
	updated    *models.Complaint
}

func (s *complaintRepoStub) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	out := make([]models.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *complaintRepoStub) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	c, ok := s.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (s *complaintRepoStub) Create(ctx context.Context, complaint *models.Complaint) error {
	s.created = complaint
	return nil
}

func (s *complaintRepoStub) UpdateStatus(ctx context.Context, complaint *models.Complaint) error {
	s.updated = complaint
	return nil
}

type storageStub struct {
	saved   []string
	deleted []string
}

func (s *storageStub) SaveStream(filename string, r io.Reader) (string, error) {
	s.saved = append(s.saved, filename)
	return filename, nil
}

func (s *storageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

type signerStub struct{}

func (s *signerStub) Generate(resourceID, relPath string) (string, time.Time, error) {
	return "https://files.local/" + relPath + "?sig=abc", time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), nil
}

func openComplaint(id string) *models.Complaint {
	return &models.Complaint{
		ID:         id,
		PropertyID: "prop-1",
		TenantID:   "tenant-1",
		Category:   models.ComplaintCategoryPlumbing,
		Subject:    "Leaking tap",
		Status:     models.ComplaintStatusOpen,
	}
}

func newComplaintService(repo *complaintRepoStub, store *storageStub, audit *auditStub) *ComplaintService {
	return NewComplaintService(repo, store, &signerStub{}, audit, nil, nil)
}

func TestComplaintCreateStartsOpen(t *testing.T) {
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{}}
	svc := newComplaintService(repo, &storageStub{}, &auditStub{})

	complaint, err := svc.Create(context.Background(), CreateComplaintRequest{
		PropertyID:  "prop-1",
		TenantID:    "tenant-1",
		Category:    "plumbing",
		Subject:     "Leaking tap",
		Description: "Bathroom tap drips all night",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintStatusOpen, complaint.Status)
	assert.Equal(t, models.ComplaintCategoryPlumbing, complaint.Category)
}

func TestComplaintCreateRejectsUnknownCategory(t *testing.T) {
	svc := newComplaintService(&complaintRepoStub{}, &storageStub{}, &auditStub{})

	_, err := svc.Create(context.Background(), CreateComplaintRequest{
		PropertyID:  "prop-1",
		TenantID:    "tenant-1",
		Category:    "landscaping",
		Subject:     "x",
		Description: "y",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestComplaintAttachPhoto(t *testing.T) {
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": openComplaint("c-1")}}
	store := &storageStub{}
	svc := newComplaintService(repo, store, &auditStub{})

	complaint, err := svc.AttachPhoto(context.Background(), "c-1", "tap.JPG", strings.NewReader("bytes"))
	require.NoError(t, err)
	require.NotNil(t, complaint.PhotoPath)
	assert.True(t, strings.HasPrefix(*complaint.PhotoPath, "complaints/c-1-"))
	assert.True(t, strings.HasSuffix(*complaint.PhotoPath, ".jpg"))
	require.Len(t, store.saved, 1)
}

func TestComplaintAttachPhotoRejectsFormat(t *testing.T) {
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": openComplaint("c-1")}}
	store := &storageStub{}
	svc := newComplaintService(repo, store, &auditStub{})

	_, err := svc.AttachPhoto(context.Background(), "c-1", "notes.pdf", strings.NewReader("bytes"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.saved)
}

func TestComplaintAttachPhotoRejectedWhenResolved(t *testing.T) {
	resolved := openComplaint("c-1")
	resolved.Status = models.ComplaintStatusResolved
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": resolved}}
	svc := newComplaintService(repo, &storageStub{}, &auditStub{})

	_, err := svc.AttachPhoto(context.Background(), "c-1", "tap.jpg", strings.NewReader("bytes"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestComplaintPhotoURLSignsStoredPath(t *testing.T) {
	complaint := openComplaint("c-1")
	path := "complaints/c-1-abc.jpg"
	complaint.PhotoPath = &path
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": complaint}}
	svc := newComplaintService(repo, &storageStub{}, &auditStub{})

	url, expiresAt, err := svc.PhotoURL(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Contains(t, url, path)
	assert.False(t, expiresAt.IsZero())
}

func TestComplaintResolveRequiresNote(t *testing.T) {
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": openComplaint("c-1")}}
	svc := newComplaintService(repo, &storageStub{}, &auditStub{})

	_, err := svc.UpdateStatus(context.Background(), "c-1", UpdateComplaintStatusRequest{
		Status:  "resolved",
		ActorID: "manager-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestComplaintResolveRecordsResolution(t *testing.T) {
	repo := &complaintRepoStub{complaints: map[string]*models.Complaint{"c-1": openComplaint("c-1")}}
	audit := &auditStub{}
	svc := newComplaintService(repo, &storageStub{}, audit)

	note := "Washer replaced"
	complaint, err := svc.UpdateStatus(context.Background(), "c-1", UpdateComplaintStatusRequest{
		Status:         "RESOLVED",
		ResolutionNote: &note,
		ActorID:        "manager-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintStatusResolved, complaint.Status)
	require.NotNil(t, complaint.ResolvedBy)
	assert.Equal(t, "manager-1", *complaint.ResolvedBy)
	assert.NotNil(t, complaint.ResolvedAt)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionComplaintState, audit.logs[0].Action)
}

func TestComplaintTransitionRules(t *testing.T) {
	cases := []struct {
		from models.ComplaintStatus
		to   models.ComplaintStatus
		ok   bool
	}{
		{models.ComplaintStatusOpen, models.ComplaintStatusInProgress, true},
		{models.ComplaintStatusOpen, models.ComplaintStatusResolved, true},
		{models.ComplaintStatusInProgress, models.ComplaintStatusResolved, true},
		{models.ComplaintStatusInProgress, models.ComplaintStatusOpen, false},
		{models.ComplaintStatusResolved, models.ComplaintStatusOpen, false},
		{models.ComplaintStatusResolved, models.ComplaintStatusInProgress, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, validComplaintTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
