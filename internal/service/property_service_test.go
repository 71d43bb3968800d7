package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type propertyRepoStub struct {
	properties map[string]*models.PropertyDetail
	listCalls  int
	lastFilter models.PropertyFilter
	created    *models.Property
	unlisted   []string
}

func (s *propertyRepoStub) List(ctx context.Context, filter models.PropertyFilter) ([]models.PropertyDetail, int, error) {
	s.listCalls++
	s.lastFilter = filter
	out := make([]models.PropertyDetail, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *propertyRepoStub) GetByID(ctx context.Context, id string) (*models.PropertyDetail, error) {
	p, ok := s.properties[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *propertyRepoStub) Create(ctx context.Context, property *models.Property) error {
	s.created = property
	return nil
}

func (s *propertyRepoStub) Update(ctx context.Context, property *models.Property) error {
	return nil
}

func (s *propertyRepoStub) Unlist(ctx context.Context, id string) error {
	s.unlisted = append(s.unlisted, id)
	return nil
}

// cacheStub round-trips values through JSON the way the Redis-backed
// repository does.
type cacheStub struct {
	values  map[string][]byte
	sets    int
	deletes []string
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[key] = raw
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deletes = append(s.deletes, pattern)
	s.values = map[string][]byte{}
	return nil
}

func listedProperty(id, landlordID string) *models.PropertyDetail {
	return &models.PropertyDetail{
		Property: models.Property{
			ID:         id,
			LandlordID: landlordID,
			Name:       "Green View PG",
			Type:       models.PropertyTypePG,
			City:       "Indore",
			Listed:     true,
		},
		TotalRooms: 12,
		VacantBeds: 3,
	}
}

func TestPublicListingsCachesPages(t *testing.T) {
	repo := &propertyRepoStub{properties: map[string]*models.PropertyDetail{
		"prop-1": listedProperty("prop-1", "landlord-1"),
	}}
	cache := &cacheStub{}
	svc := NewPropertyService(repo, cache, time.Minute, nil, nil)

	first, _, err := svc.PublicListings(context.Background(), PropertyListRequest{City: "Indore"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, cache.sets)
	assert.True(t, repo.lastFilter.ListedOnly)

	second, _, err := svc.PublicListings(context.Background(), PropertyListRequest{City: "Indore"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second read must come from cache")
}

func TestPublicListingsDistinctFiltersDistinctKeys(t *testing.T) {
	repo := &propertyRepoStub{properties: map[string]*models.PropertyDetail{
		"prop-1": listedProperty("prop-1", "landlord-1"),
	}}
	cache := &cacheStub{}
	svc := NewPropertyService(repo, cache, time.Minute, nil, nil)

	_, _, err := svc.PublicListings(context.Background(), PropertyListRequest{City: "Indore"})
	require.NoError(t, err)
	_, _, err = svc.PublicListings(context.Background(), PropertyListRequest{City: "Bhopal"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, 2, cache.sets)
}

func TestPropertyWritesInvalidateListings(t *testing.T) {
	repo := &propertyRepoStub{properties: map[string]*models.PropertyDetail{
		"prop-1": listedProperty("prop-1", "landlord-1"),
	}}
	cache := &cacheStub{}
	svc := NewPropertyService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), "landlord-1", CreatePropertyRequest{
		Name:    "Sunrise Flats",
		Type:    "flat",
		Address: "12 MG Road",
		City:    "Indore",
		State:   "MP",
		Pincode: "452001",
		MaxRent: 15000,
		Listed:  true,
	})
	require.NoError(t, err)

	err = svc.Unlist(context.Background(), "landlord-1", "prop-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"listings:*", "listings:*"}, cache.deletes)
	assert.Equal(t, []string{"prop-1"}, repo.unlisted)
}

func TestPropertyGetScopedToLandlord(t *testing.T) {
	repo := &propertyRepoStub{properties: map[string]*models.PropertyDetail{
		"prop-1": listedProperty("prop-1", "landlord-1"),
	}}
	svc := NewPropertyService(repo, &cacheStub{}, time.Minute, nil, nil)

	_, err := svc.Get(context.Background(), "landlord-2", "prop-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPropertyCreateValidatesType(t *testing.T) {
	svc := NewPropertyService(&propertyRepoStub{}, &cacheStub{}, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), "landlord-1", CreatePropertyRequest{
		Name:    "Sunrise Flats",
		Type:    "castle",
		Address: "12 MG Road",
		City:    "Indore",
		State:   "MP",
		Pincode: "452001",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
