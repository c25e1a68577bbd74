package repository

import (
	"context"

	"github.com/llun/fitfeed/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MediaRepository handles media attachment data operations.
type MediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MediaRepository: repository instance bound to db.
func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Upsert creates or replaces a media attachment keyed by ID. Attachments
// created during archive imports use deterministic IDs, so redelivered
// messages re-writing the same attachment are idempotent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - media: media attachment record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *MediaRepository) Upsert(ctx context.Context, media *domain.MediaAttachment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(media).Error
}

// ListByActivity retrieves all attachments for one activity.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - activityID: activity ID.
// Returns:
//   - []domain.MediaAttachment: matching attachment records.
//   - error: non-nil if the query fails.
func (r *MediaRepository) ListByActivity(ctx context.Context, activityID string) ([]domain.MediaAttachment, error) {
	var media []domain.MediaAttachment
	if err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// TotalBytesForActor sums the stored bytes of all media attachments owned
// by the actor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actorID: owning actor ID.
// Returns:
//   - int64: total stored bytes.
//   - error: non-nil if the query fails.
func (r *MediaRepository) TotalBytesForActor(ctx context.Context, actorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.MediaAttachment{}).
		Where("actor_id = ?", actorID).
		Select("COALESCE(SUM(bytes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
