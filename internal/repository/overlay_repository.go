package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
)

// OverlayRepository persists review overlay entries in Redis: one hash per
// manager, one field per document id. Entries are written one at a time and
// never expired, mirroring the accumulate-forever contract of the overlay.
type OverlayRepository struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewOverlayRepository constructs the repository.
func NewOverlayRepository(client *redis.Client, keyPrefix string, logger *zap.Logger) *OverlayRepository {
	if keyPrefix == "" {
		keyPrefix = "gharzo:review-overlay"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverlayRepository{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (r *OverlayRepository) key(managerID string) string {
	return fmt.Sprintf("%s:%s", r.keyPrefix, managerID)
}

// Get returns the overlay entry for one document, or nil when absent.
func (r *OverlayRepository) Get(ctx context.Context, managerID, documentID string) (*models.OverlayEntry, error) {
	raw, err := r.client.HGet(ctx, r.key(managerID), documentID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("overlay get %s/%s: %w", managerID, documentID, err)
	}
	var entry models.OverlayEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupted entries are treated as absent so the document list
		// stays renderable; the next decision rewrites the field.
		r.logger.Warn("discarding malformed overlay entry",
			zap.String("manager_id", managerID),
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return nil, nil
	}
	return &entry, nil
}

// Put stores the overlay entry for one document.
func (r *OverlayRepository) Put(ctx context.Context, managerID, documentID string, entry models.OverlayEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("overlay marshal %s/%s: %w", managerID, documentID, err)
	}
	if err := r.client.HSet(ctx, r.key(managerID), documentID, payload).Err(); err != nil {
		return fmt.Errorf("overlay put %s/%s: %w", managerID, documentID, err)
	}
	return nil
}

// All returns every overlay entry recorded for the manager, keyed by
// document id. Malformed fields are skipped, not fatal.
func (r *OverlayRepository) All(ctx context.Context, managerID string) (map[string]models.OverlayEntry, error) {
	fields, err := r.client.HGetAll(ctx, r.key(managerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("overlay list %s: %w", managerID, err)
	}
	entries := make(map[string]models.OverlayEntry, len(fields))
	for documentID, raw := range fields {
		var entry models.OverlayEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			r.logger.Warn("skipping malformed overlay entry",
				zap.String("manager_id", managerID),
				zap.String("document_id", documentID),
				zap.Error(err),
			)
			continue
		}
		entries[documentID] = entry
	}
	return entries, nil
}

// Delete drops the overlay entry for one document (used when a stale entry
// no longer matches the document's mode).
func (r *OverlayRepository) Delete(ctx context.Context, managerID, documentID string) error {
	if err := r.client.HDel(ctx, r.key(managerID), documentID).Err(); err != nil {
		return fmt.Errorf("overlay delete %s/%s: %w", managerID, documentID, err)
	}
	return nil
}
