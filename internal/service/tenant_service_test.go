package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type tenantRepoStub struct {
	tenants   map[string]*models.Tenant
	createErr error
	updateErr error
	created   *models.Tenant
	movedOut  []string
}

func (s *tenantRepoStub) List(ctx context.Context, filter models.TenantFilter) ([]models.Tenant, int, error) {
	out := make([]models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (s *tenantRepoStub) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s *tenantRepoStub) Create(ctx context.Context, tenant *models.Tenant) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = tenant
	return nil
}

func (s *tenantRepoStub) Update(ctx context.Context, tenant *models.Tenant) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.tenants[tenant.ID] = tenant
	return nil
}

func (s *tenantRepoStub) MoveOut(ctx context.Context, id string, movedOutAt time.Time) error {
	s.movedOut = append(s.movedOut, id)
	return nil
}

type occupancyStub struct {
	rooms       map[string]*models.Room
	adjustments map[string]int
	adjustErr   error
}

func (s *occupancyStub) GetByID(ctx context.Context, id string) (*models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *room
	return &copied, nil
}

func (s *occupancyStub) AdjustOccupied(ctx context.Context, id string, delta int) error {
	if s.adjustErr != nil {
		return s.adjustErr
	}
	if s.adjustments == nil {
		s.adjustments = map[string]int{}
	}
	s.adjustments[id] += delta
	return nil
}

func strPtr(s string) *string { return &s }

func createTenantRequest(roomID *string) CreateTenantRequest {
	return CreateTenantRequest{
		PropertyID: "prop-1",
		RoomID:     roomID,
		FullName:   "Asha Verma",
		Phone:      "9876543210",
		Rent:       12000,
		Deposit:    24000,
		MovedInAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTenantCreateClaimsBed(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2, Occupied: 1},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	tenant, err := svc.Create(context.Background(), createTenantRequest(strPtr("room-1")))
	require.NoError(t, err)
	assert.True(t, tenant.Active)
	assert.Equal(t, 1, rooms.adjustments["room-1"])
}

func TestTenantCreateRejectsFullRoom(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2, Occupied: 2},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	_, err := svc.Create(context.Background(), createTenantRequest(strPtr("room-1")))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoomFull.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestTenantCreateRejectsForeignRoom(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-other", Capacity: 2},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	_, err := svc.Create(context.Background(), createTenantRequest(strPtr("room-1")))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTenantCreateReleasesBedOnInsertFailure(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{}, createErr: errors.New("insert failed")}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	_, err := svc.Create(context.Background(), createTenantRequest(strPtr("room-1")))
	require.Error(t, err)
	assert.Equal(t, 0, rooms.adjustments["room-1"])
}

func TestTenantAssignRoomSwapsOccupancy(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{
		"tenant-1": {ID: "tenant-1", PropertyID: "prop-1", RoomID: strPtr("room-1"), Active: true},
	}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2, Occupied: 1},
		"room-2": {ID: "room-2", PropertyID: "prop-1", Capacity: 2, Occupied: 0},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	tenant, err := svc.AssignRoom(context.Background(), "tenant-1", "room-2")
	require.NoError(t, err)
	require.NotNil(t, tenant.RoomID)
	assert.Equal(t, "room-2", *tenant.RoomID)
	assert.Equal(t, 1, rooms.adjustments["room-2"])
	assert.Equal(t, -1, rooms.adjustments["room-1"])
}

func TestTenantAssignRoomIsIdempotent(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{
		"tenant-1": {ID: "tenant-1", PropertyID: "prop-1", RoomID: strPtr("room-1"), Active: true},
	}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2, Occupied: 1},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	_, err := svc.AssignRoom(context.Background(), "tenant-1", "room-1")
	require.NoError(t, err)
	assert.Empty(t, rooms.adjustments)
}

func TestTenantMoveOutFreesBed(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{
		"tenant-1": {ID: "tenant-1", PropertyID: "prop-1", RoomID: strPtr("room-1"), Active: true},
	}}
	rooms := &occupancyStub{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", PropertyID: "prop-1", Capacity: 2, Occupied: 1},
	}}
	svc := NewTenantService(repo, rooms, nil, nil)

	err := svc.MoveOut(context.Background(), "tenant-1", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant-1"}, repo.movedOut)
	assert.Equal(t, -1, rooms.adjustments["room-1"])
}

func TestTenantMoveOutTwiceConflicts(t *testing.T) {
	repo := &tenantRepoStub{tenants: map[string]*models.Tenant{
		"tenant-1": {ID: "tenant-1", PropertyID: "prop-1", Active: false},
	}}
	svc := NewTenantService(repo, &occupancyStub{}, nil, nil)

	err := svc.MoveOut(context.Background(), "tenant-1", time.Time{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
