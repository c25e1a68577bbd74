package repository

import (
	"context"

	"github.com/llun/fitfeed/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository handles activity data operations.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ActivityRepository: repository instance bound to db.
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Upsert creates or replaces an activity keyed by ID. Archive imports use
// deterministic IDs, so a redelivered message writing the same activity
// is idempotent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - activity: activity record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *ActivityRepository) Upsert(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(activity).Error
}

// GetByID retrieves an activity by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: activity ID.
// Returns:
//   - *domain.Activity: activity record if found.
//   - error: non-nil if lookup fails.
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	var activity domain.Activity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByBatch retrieves all activities created by one import batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: import batch ID.
// Returns:
//   - []domain.Activity: matching activity records ordered by start time.
//   - error: non-nil if the query fails.
func (r *ActivityRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.Activity, error) {
	var activities []domain.Activity
	if err := r.db.WithContext(ctx).
		Where("import_batch_id = ?", batchID).
		Order("start_time ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Update persists the full activity record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - activity: activity record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *ActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}
