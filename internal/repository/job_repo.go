package repository

import (
	"context"
	"errors"

	"github.com/llun/fitfeed/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles archive import job data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateActive inserts a new job, enforcing at most one importing job
// per actor. A partial unique index on (actor_id) for importing rows is
// the authoritative guard; the pre-check only exists to return the
// conflicting job as a snapshot without provoking the index.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record to persist.
// Returns:
//   - *domain.ArchiveImportJob: the conflicting job when one exists.
//   - error: domain.ErrActiveJobExists on conflict, otherwise the insert error.
func (r *JobRepository) CreateActive(ctx context.Context, job *domain.ArchiveImportJob) (*domain.ArchiveImportJob, error) {
	existing, err := r.GetActiveForActor(ctx, job.ActorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, domain.ErrActiveJobExists
	}

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		// A concurrent start can slip past the pre-check; the unique
		// index rejects the second insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, lookupErr := r.GetActiveForActor(ctx, job.ActorID)
			if lookupErr != nil {
				return nil, domain.ErrActiveJobExists
			}
			return winner, domain.ErrActiveJobExists
		}
		return nil, err
	}
	return nil, nil
}

// GetByID retrieves a job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.ArchiveImportJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ArchiveImportJob, error) {
	var job domain.ArchiveImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIDForActor retrieves a job scoped to its owning actor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - actorID: owning actor ID.
// Returns:
//   - *domain.ArchiveImportJob: job record if found and owned by the actor.
//   - error: non-nil if lookup fails.
func (r *JobRepository) GetByIDForActor(ctx context.Context, id, actorID string) (*domain.ArchiveImportJob, error) {
	var job domain.ArchiveImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ? AND actor_id = ?", id, actorID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetActiveForActor retrieves the actor's currently importing job if any.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actorID: owning actor ID.
// Returns:
//   - *domain.ArchiveImportJob: active job, or nil when the actor has none.
//   - error: non-nil if the query fails.
func (r *JobRepository) GetActiveForActor(ctx context.Context, actorID string) (*domain.ArchiveImportJob, error) {
	var job domain.ArchiveImportJob
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND status = ?", actorID, domain.JobStatusImporting).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update persists the full job record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) Update(ctx context.Context, job *domain.ArchiveImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// Delete removes a job by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.ArchiveImportJob{}, "id = ?", id).Error
}
