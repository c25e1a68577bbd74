package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/llun/fitfeed/internal/config"
	"github.com/llun/fitfeed/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return db
}

func newImportingJob(actorID string) *domain.ArchiveImportJob {
	return &domain.ArchiveImportJob{
		ID:            uuid.NewString(),
		ActorID:       actorID,
		ArchiveID:     uuid.NewString(),
		ArchiveFileID: uuid.NewString(),
		BatchID:       uuid.NewString(),
		Status:        domain.JobStatusImporting,
		Visibility:    domain.VisibilityPrivate,
	}
}

func TestCreateActiveRejectsSecondJob(t *testing.T) {
	repo := NewJobRepository(newTestDB(t))
	ctx := context.Background()

	first := newImportingJob("actor1")
	if existing, err := repo.CreateActive(ctx, first); err != nil || existing != nil {
		t.Fatalf("first CreateActive() = %v, %v, want nil, nil", existing, err)
	}

	existing, err := repo.CreateActive(ctx, newImportingJob("actor1"))
	if !errors.Is(err, domain.ErrActiveJobExists) {
		t.Fatalf("second CreateActive() error = %v, want ErrActiveJobExists", err)
	}
	if existing == nil || existing.ID != first.ID {
		t.Error("conflict must return the existing active job")
	}

	// Other actors are unaffected.
	if _, err := repo.CreateActive(ctx, newImportingJob("actor2")); err != nil {
		t.Errorf("CreateActive() for another actor error = %v", err)
	}
}

func TestActiveJobUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.WithContext(ctx).Create(newImportingJob("actor1")).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A second importing insert for the same actor is rejected by the
	// store itself, independent of any pre-check the caller performs.
	err := db.WithContext(ctx).Create(newImportingJob("actor1")).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("racing insert error = %v, want ErrDuplicatedKey", err)
	}

	// The index is partial: resolved jobs never collide.
	done := newImportingJob("actor1")
	done.Resolve(domain.JobStatusCompleted, time.Now())
	if err := db.WithContext(ctx).Create(done).Error; err != nil {
		t.Errorf("Create() of a completed job error = %v", err)
	}
}

func TestCreateActiveAllowedAfterResolution(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	first := newImportingJob("actor1")
	if _, err := repo.CreateActive(ctx, first); err != nil {
		t.Fatalf("CreateActive() error = %v", err)
	}
	first.Resolve(domain.JobStatusCancelled, time.Now())
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := repo.CreateActive(ctx, newImportingJob("actor1")); err != nil {
		t.Errorf("CreateActive() after resolution error = %v", err)
	}
}
