package repository

import (
	"context"

	"github.com/llun/fitfeed/internal/domain"
	"gorm.io/gorm"
)

// FileRepository handles fitness file metadata operations.
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new FileRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *FileRepository: repository instance bound to db.
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new fitness file record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - file: file record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *FileRepository) Create(ctx context.Context, file *domain.FitnessFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// GetByID retrieves a fitness file by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: file ID.
// Returns:
//   - *domain.FitnessFile: file record if found.
//   - error: non-nil if lookup fails.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.FitnessFile, error) {
	var file domain.FitnessFile
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByIDForActor retrieves a fitness file scoped to its owning actor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: file ID.
//   - actorID: owning actor ID.
// Returns:
//   - *domain.FitnessFile: file record if found and owned by the actor.
//   - error: non-nil if lookup fails.
func (r *FileRepository) GetByIDForActor(ctx context.Context, id, actorID string) (*domain.FitnessFile, error) {
	var file domain.FitnessFile
	if err := r.db.WithContext(ctx).First(&file, "id = ? AND actor_id = ?", id, actorID).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// Delete removes a fitness file record by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: file ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.FitnessFile{}, "id = ?", id).Error
}

// TotalBytesForActor sums the stored bytes of all fitness files owned by
// the actor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actorID: owning actor ID.
// Returns:
//   - int64: total stored bytes.
//   - error: non-nil if the query fails.
func (r *FileRepository) TotalBytesForActor(ctx context.Context, actorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.FitnessFile{}).
		Where("actor_id = ?", actorID).
		Select("COALESCE(SUM(bytes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
