// Package service implements the import pipeline: single file imports,
// quota enforcement, and the archive import job orchestrator.
package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/fitness"
	"github.com/llun/fitfeed/internal/logger"
	"github.com/llun/fitfeed/internal/queue"
)

// DefaultMediaRetryLimit bounds how many times the media attachment
// phase of one activity is retried before the map is abandoned and the
// cursor advances.
const DefaultMediaRetryLimit = 3

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// JobStore persists archive import jobs.
type JobStore interface {
	CreateActive(ctx context.Context, job *domain.ArchiveImportJob) (*domain.ArchiveImportJob, error)
	GetByID(ctx context.Context, id string) (*domain.ArchiveImportJob, error)
	GetByIDForActor(ctx context.Context, id, actorID string) (*domain.ArchiveImportJob, error)
	GetActiveForActor(ctx context.Context, actorID string) (*domain.ArchiveImportJob, error)
	Update(ctx context.Context, job *domain.ArchiveImportJob) error
	Delete(ctx context.Context, id string) error
}

// FileStore persists fitness file metadata.
type FileStore interface {
	Create(ctx context.Context, file *domain.FitnessFile) error
	GetByID(ctx context.Context, id string) (*domain.FitnessFile, error)
	GetByIDForActor(ctx context.Context, id, actorID string) (*domain.FitnessFile, error)
	Delete(ctx context.Context, id string) error
}

// MediaStore persists media attachments.
type MediaStore interface {
	Upsert(ctx context.Context, media *domain.MediaAttachment) error
}

// ActivityStore persists imported activities.
type ActivityStore interface {
	Upsert(ctx context.Context, activity *domain.Activity) error
}

// BlobStore is the blob storage surface the importer needs.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// RouteRenderer produces a static route image, or nil when the route is
// not drawable.
type RouteRenderer interface {
	Render(ctx context.Context, coords []domain.Coordinate) ([]byte, error)
}

// ImportDeps bundles the collaborators of ImportService.
type ImportDeps struct {
	Jobs       JobStore
	Files      FileStore
	Media      MediaStore
	Activities ActivityStore
	Blobs      BlobStore
	Publisher  queue.Publisher
	Parser     *fitness.Parser
	Renderer   RouteRenderer
	Quota      *QuotaService
}

// ImportService drives single file imports and the archive import job
// state machine.
type ImportService struct {
	jobs       JobStore
	files      FileStore
	media      MediaStore
	activities ActivityStore
	blobs      BlobStore
	publisher  queue.Publisher
	parser     *fitness.Parser
	renderer   RouteRenderer
	quota      *QuotaService

	mediaRetryLimit int
	maxRoutePoints  int

	now   func() time.Time
	newID func() string
}

// NewImportService creates an ImportService.
func NewImportService(deps ImportDeps, mediaRetryLimit int) *ImportService {
	if mediaRetryLimit <= 0 {
		mediaRetryLimit = DefaultMediaRetryLimit
	}
	return &ImportService{
		jobs:            deps.Jobs,
		files:           deps.Files,
		media:           deps.Media,
		activities:      deps.Activities,
		blobs:           deps.Blobs,
		publisher:       deps.Publisher,
		parser:          deps.Parser,
		renderer:        deps.Renderer,
		quota:           deps.Quota,
		mediaRetryLimit: mediaRetryLimit,
		maxRoutePoints:  fitness.DefaultMaxRoutePoints,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// ImportFile imports a single fit/gpx/tcx upload: validates and parses
// it, stores the blob and its metadata, and persists the resulting
// activity with a rendered route preview.
func (s *ImportService) ImportFile(ctx context.Context, actorID, filename string, data []byte, visibility domain.Visibility, description string) (*domain.Activity, error) {
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldComponent: "import",
		logger.FieldActorID:   actorID,
	})

	fileType, ok := fitness.FileTypeFromName(filename)
	if !ok || fileType == domain.FileTypeZip {
		return nil, domain.ErrUnsupportedFileType
	}

	// Parse before any persistence so an invalid upload leaves no state.
	activityData, err := s.parser.Parse(ctx, fileType, data)
	if err != nil {
		return nil, err
	}

	status, err := s.quota.Check(ctx, actorID, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to check storage quota: %w", err)
	}
	if !status.Available {
		return nil, &domain.QuotaExceededError{Used: status.Used, Limit: status.Limit, Requested: int64(len(data))}
	}

	fileID := s.newID()
	batchID := s.newID()
	key := fmt.Sprintf("files/%s/%s.%s", actorID, fileID, fileType)
	if err := s.blobs.Upload(ctx, key, data, fileType.MimeType()); err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	file := &domain.FitnessFile{
		ID:            fileID,
		ActorID:       actorID,
		Path:          key,
		FileType:      fileType,
		MimeType:      fileType.MimeType(),
		Bytes:         int64(len(data)),
		ImportBatchID: batchID,
		Description:   description,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.discardBlob(ctx, key)
		return nil, fmt.Errorf("failed to record uploaded file: %w", err)
	}

	activity := s.buildActivity(s.newID(), actorID, batchID, fileID, visibility, activityData)
	if err := s.activities.Upsert(ctx, activity); err != nil {
		s.discardBlob(ctx, key)
		if delErr := s.files.Delete(ctx, fileID); delErr != nil {
			log.WithError(delErr).Warn("Failed to roll back file record")
		}
		return nil, fmt.Errorf("failed to persist activity: %w", err)
	}

	// A missing map degrades the activity, it does not fail the import.
	if activity.Route != nil {
		if err := s.attachRouteMedia(ctx, activity); err != nil {
			log.WithError(err).WithField("activity_id", activity.ID).Warn("Failed to attach route preview")
		}
	}

	log.WithFields(logger.Fields{
		logger.FieldFileID:  fileID,
		logger.FieldBatchID: batchID,
		"activity_id":       activity.ID,
	}).Info("Imported activity file")
	return activity, nil
}

// StartArchiveImport validates and stores an uploaded archive, creates
// the import job, and publishes the first queue message. A publish
// failure rolls back both the file and the job.
func (s *ImportService) StartArchiveImport(ctx context.Context, actorID string, data []byte, visibility domain.Visibility) (*domain.ArchiveImportJob, error) {
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldComponent: "import",
		logger.FieldActorID:   actorID,
	})

	if !bytes.HasPrefix(data, zipMagic) {
		return nil, &domain.InvalidFileError{FileType: domain.FileTypeZip, Reason: "not a zip archive"}
	}
	entries, err := listArchiveEntries(data)
	if err != nil {
		return nil, &domain.InvalidFileError{FileType: domain.FileTypeZip, Reason: "unreadable archive", Err: err}
	}
	total := len(entries)

	if existing, err := s.jobs.GetActiveForActor(ctx, actorID); err != nil {
		return nil, fmt.Errorf("failed to check active jobs: %w", err)
	} else if existing != nil {
		return nil, &domain.ConflictError{Reason: "an import job is already running for this actor", Job: existing}
	}

	status, err := s.quota.Check(ctx, actorID, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to check storage quota: %w", err)
	}
	if !status.Available {
		return nil, &domain.QuotaExceededError{Used: status.Used, Limit: status.Limit, Requested: int64(len(data))}
	}

	archiveID := s.newID()
	fileID := s.newID()
	batchID := s.newID()
	key := fmt.Sprintf("archives/%s/%s.zip", actorID, archiveID)
	if err := s.blobs.Upload(ctx, key, data, domain.FileTypeZip.MimeType()); err != nil {
		return nil, fmt.Errorf("failed to store archive: %w", err)
	}

	file := &domain.FitnessFile{
		ID:            fileID,
		ActorID:       actorID,
		Path:          key,
		FileType:      domain.FileTypeZip,
		MimeType:      domain.FileTypeZip.MimeType(),
		Bytes:         int64(len(data)),
		ImportBatchID: batchID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.discardBlob(ctx, key)
		return nil, fmt.Errorf("failed to record archive file: %w", err)
	}

	job := &domain.ArchiveImportJob{
		ID:                     s.newID(),
		ActorID:                actorID,
		ArchiveID:              archiveID,
		ArchiveFileID:          fileID,
		BatchID:                batchID,
		Status:                 domain.JobStatusImporting,
		NextActivityIndex:      0,
		PendingMediaActivities: domain.StringArray{},
		TotalActivitiesCount:   &total,
		Visibility:             visibility,
	}
	if existing, err := s.jobs.CreateActive(ctx, job); err != nil {
		s.rollbackStart(ctx, log, "", fileID, key)
		if errors.Is(err, domain.ErrActiveJobExists) {
			return nil, &domain.ConflictError{Reason: "an import job is already running for this actor", Job: existing}
		}
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	if err := s.publisher.Publish(ctx, *s.nextMessage(job)); err != nil {
		s.rollbackStart(ctx, log, job.ID, fileID, key)
		return nil, fmt.Errorf("failed to publish import message: %w", err)
	}

	log.WithFields(logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldBatchID: batchID,
		logger.FieldCount:   total,
	}).Info("Started archive import")
	return job, nil
}

// GetJob returns a job scoped to its owning actor.
func (s *ImportService) GetJob(ctx context.Context, actorID, jobID string) (*domain.ArchiveImportJob, error) {
	return s.jobs.GetByIDForActor(ctx, jobID, actorID)
}

// Retry moves a failed job back to importing and republishes a message
// at the current cursor. The archive file must still exist and belong to
// the actor.
func (s *ImportService) Retry(ctx context.Context, actorID, jobID string) (*domain.ArchiveImportJob, error) {
	job, err := s.jobs.GetByIDForActor(ctx, jobID, actorID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusFailed {
		return nil, &domain.ConflictError{Reason: "only failed jobs can be retried", Job: job}
	}
	if _, err := s.files.GetByIDForActor(ctx, job.ArchiveFileID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.ConflictError{Reason: "the archive file no longer exists, upload it again to start a new import", Job: job}
		}
		return nil, err
	}

	job.Status = domain.JobStatusImporting
	job.LastError = nil
	job.ResolvedAt = nil
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to resume job: %w", err)
	}

	if err := s.publisher.Publish(ctx, *s.nextMessage(job)); err != nil {
		// Park the job back in failed; FirstFailureMessage stays sticky.
		job.Status = domain.JobStatusFailed
		job.RecordFailure(fmt.Sprintf("failed to republish import message: %v", err))
		if updateErr := s.jobs.Update(ctx, job); updateErr != nil {
			logger.FromContext(ctx).WithError(updateErr).
				WithField(logger.FieldJobID, job.ID).
				Error("Failed to park job after publish failure")
		}
		return nil, fmt.Errorf("failed to republish import message: %w", err)
	}
	return job, nil
}

// Cancel terminally cancels a non-terminal job and deletes its archive
// blob and file record.
func (s *ImportService) Cancel(ctx context.Context, actorID, jobID string) (*domain.ArchiveImportJob, error) {
	job, err := s.jobs.GetByIDForActor(ctx, jobID, actorID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, &domain.ConflictError{Reason: "the job is already resolved", Job: job}
	}

	file, err := s.files.GetByIDForActor(ctx, job.ArchiveFileID, actorID)
	switch {
	case err == nil:
		s.discardBlob(ctx, file.Path)
		if delErr := s.files.Delete(ctx, file.ID); delErr != nil {
			return nil, fmt.Errorf("failed to delete archive file record: %w", delErr)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Already gone, nothing to clean up.
	default:
		return nil, err
	}

	job.Resolve(domain.JobStatusCancelled, s.now())
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to cancel job: %w", err)
	}
	return job, nil
}

// HandleMessage is the queue handler: it runs one import step and
// republishes the successor message when one is due.
func (s *ImportService) HandleMessage(ctx context.Context, msg queue.Message) error {
	next, err := s.Step(ctx, msg)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, *next); err != nil {
		// The step already committed the advanced cursor, so no queued
		// message points at it and a redelivery of msg is stale. Park the
		// job in failed; Retry republishes from the committed cursor.
		job, getErr := s.jobs.GetByID(ctx, next.JobID)
		if getErr != nil {
			return fmt.Errorf("failed to publish next import message: %v (job lookup failed: %w)", err, getErr)
		}
		return s.failJob(ctx, job, fmt.Sprintf("failed to publish next import message: %v", err))
	}
	return nil
}

// Step processes exactly one archive import message: it imports the
// activity at the job's cursor, advances the cursor, and returns the
// successor message, or nil when the job reached a terminal state or
// the message was stale.
func (s *ImportService) Step(ctx context.Context, msg queue.Message) (*queue.Message, error) {
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldComponent: "import",
		logger.FieldJobID:     msg.JobID,
		logger.FieldActorID:   msg.ActorID,
	})

	job, err := s.jobs.GetByID(ctx, msg.JobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("Dropping message for unknown job")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Single idempotence guard: a message whose embedded state no longer
	// matches the persisted job is a stale duplicate.
	if job.Status != domain.JobStatusImporting ||
		job.NextActivityIndex != msg.NextActivityIndex ||
		job.MediaAttachmentRetry != msg.MediaAttachmentRetry {
		log.WithFields(logger.Fields{
			logger.FieldStatus: job.Status,
			"job_cursor":       job.NextActivityIndex,
			"message_cursor":   msg.NextActivityIndex,
		}).Info("Dropping stale import message")
		return nil, nil
	}

	file, err := s.files.GetByID(ctx, job.ArchiveFileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.failJob(ctx, job, "archive file record is missing")
	}
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Download(ctx, file.Path)
	if err != nil {
		return nil, s.failJob(ctx, job, fmt.Sprintf("failed to read archive: %v", err))
	}
	entries, err := listArchiveEntries(data)
	if err != nil {
		return nil, s.failJob(ctx, job, fmt.Sprintf("failed to open archive: %v", err))
	}

	total := len(entries)
	if job.TotalActivitiesCount == nil {
		job.TotalActivitiesCount = &total
	}
	if job.NextActivityIndex >= total {
		return nil, s.completeJob(ctx, log, job)
	}

	entry := entries[job.NextActivityIndex]
	activityData, parseErr := s.parseEntry(ctx, entry)
	if parseErr != nil {
		// One bad activity must not block the rest of the archive.
		log.WithError(parseErr).WithField("entry", entry.Name).Warn("Skipping unparseable activity")
		job.FailedActivitiesCount++
		job.RecordFailure(fmt.Sprintf("%s: %v", entry.Name, parseErr))
		return s.advance(ctx, log, job, total)
	}

	activityID := deterministicID(job.ID, strconv.Itoa(job.NextActivityIndex))
	activity := s.buildActivity(activityID, job.ActorID, job.BatchID, job.ArchiveFileID, job.Visibility, activityData)
	if err := s.activities.Upsert(ctx, activity); err != nil {
		return nil, s.failJob(ctx, job, fmt.Sprintf("failed to persist activity: %v", err))
	}

	if activity.Route != nil {
		if mediaErr := s.attachRouteMedia(ctx, activity); mediaErr != nil {
			if job.MediaAttachmentRetry+1 < s.mediaRetryLimit {
				if !job.PendingMediaActivities.Contains(activity.ID) {
					job.PendingMediaActivities = append(job.PendingMediaActivities, activity.ID)
				}
				job.MediaAttachmentRetry++
				if err := s.jobs.Update(ctx, job); err != nil {
					return nil, err
				}
				log.WithError(mediaErr).WithFields(logger.Fields{
					"activity_id": activity.ID,
					"retry":       job.MediaAttachmentRetry,
				}).Warn("Retrying media attachment")
				return s.nextMessage(job), nil
			}
			// Retries exhausted: keep the activity without a map.
			log.WithError(mediaErr).WithField("activity_id", activity.ID).
				Warn("Abandoning media attachment after retries")
			job.RecordFailure(fmt.Sprintf("media attachment failed for activity %s: %v", activity.ID, mediaErr))
		}
	}
	job.PendingMediaActivities = job.PendingMediaActivities.Without(activity.ID)
	job.CompletedActivitiesCount++
	return s.advance(ctx, log, job, total)
}

// advance moves the cursor past the current activity, resets the media
// retry counter, and either completes the job or chains the next
// message.
func (s *ImportService) advance(ctx context.Context, log *logger.Logger, job *domain.ArchiveImportJob, total int) (*queue.Message, error) {
	job.NextActivityIndex++
	job.MediaAttachmentRetry = 0
	if job.NextActivityIndex >= total {
		return nil, s.completeJob(ctx, log, job)
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.nextMessage(job), nil
}

func (s *ImportService) completeJob(ctx context.Context, log *logger.Logger, job *domain.ArchiveImportJob) error {
	job.Resolve(domain.JobStatusCompleted, s.now())
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	log.WithFields(logger.Fields{
		"completed": job.CompletedActivitiesCount,
		"failed":    job.FailedActivitiesCount,
	}).Info("Archive import completed")
	return nil
}

// failJob parks the job in failed after an infrastructure error that
// per-activity handling cannot absorb. An explicit user retry resumes
// from the committed cursor.
func (s *ImportService) failJob(ctx context.Context, job *domain.ArchiveImportJob, msg string) error {
	job.Status = domain.JobStatusFailed
	job.RecordFailure(msg)
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	return errors.New(msg)
}

func (s *ImportService) parseEntry(ctx context.Context, entry *zip.File) (*domain.ActivityData, error) {
	fileType, _ := fitness.FileTypeFromName(entry.Name)
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(ctx, fileType, payload)
}

// buildActivity converts normalized data into the persisted activity
// shape. The stored route is downsampled; distance and duration were
// already computed on the full-resolution samples.
func (s *ImportService) buildActivity(id, actorID, batchID, sourceFileID string, visibility domain.Visibility, data *domain.ActivityData) *domain.Activity {
	var route domain.CoordinateList
	if data.HasRoute() {
		route = domain.CoordinateList(fitness.Downsample(data.Coordinates, s.maxRoutePoints))
	}
	return &domain.Activity{
		ID:                   id,
		ActorID:              actorID,
		ImportBatchID:        batchID,
		SourceFileID:         sourceFileID,
		ActivityType:         data.ActivityType,
		StartTime:            data.StartTime,
		TotalDistanceMeters:  data.TotalDistanceMeters,
		TotalDurationSeconds: data.TotalDurationSeconds,
		ElevationGainMeters:  data.ElevationGainMeters,
		Route:                route,
		Visibility:           visibility,
	}
}

// attachRouteMedia renders the route preview, stores it, and records the
// attachment. A route the renderer declines to draw is not an error.
func (s *ImportService) attachRouteMedia(ctx context.Context, activity *domain.Activity) error {
	img, err := s.renderer.Render(ctx, []domain.Coordinate(activity.Route))
	if err != nil {
		return err
	}
	if len(img) == 0 {
		return nil
	}

	key := fmt.Sprintf("maps/%s/%s.png", activity.ActorID, activity.ID)
	if err := s.blobs.Upload(ctx, key, img, "image/png"); err != nil {
		return err
	}

	media := &domain.MediaAttachment{
		ID:         deterministicID(activity.ID, "map"),
		ActorID:    activity.ActorID,
		ActivityID: activity.ID,
		Path:       key,
		MimeType:   "image/png",
		Bytes:      int64(len(img)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img)); err == nil {
		media.Width = cfg.Width
		media.Height = cfg.Height
	}
	if err := s.media.Upsert(ctx, media); err != nil {
		return err
	}

	activity.MapPath = key
	return s.activities.Upsert(ctx, activity)
}

// nextMessage snapshots the job into its successor queue message. The
// message ID encodes actor, archive, job, cursor, retry counter, and a
// freshness nonce so stale redeliveries are distinguishable.
func (s *ImportService) nextMessage(job *domain.ArchiveImportJob) *queue.Message {
	return &queue.Message{
		MessageID: fmt.Sprintf("%s:%s:%s:%d:%d:%s",
			job.ActorID, job.ArchiveID, job.ID,
			job.NextActivityIndex, job.MediaAttachmentRetry, s.newID()),
		JobID:                    job.ID,
		ActorID:                  job.ActorID,
		ArchiveID:                job.ArchiveID,
		ArchiveFileID:            job.ArchiveFileID,
		BatchID:                  job.BatchID,
		Visibility:               job.Visibility,
		NextActivityIndex:        job.NextActivityIndex,
		PendingMediaActivities:   []string(job.PendingMediaActivities),
		MediaAttachmentRetry:     job.MediaAttachmentRetry,
		TotalActivitiesCount:     job.TotalActivitiesCount,
		CompletedActivitiesCount: job.CompletedActivitiesCount,
		FailedActivitiesCount:    job.FailedActivitiesCount,
		FirstFailureMessage:      job.FirstFailureMessage,
	}
}

// rollbackStart undoes a partially started archive import so no
// orphaned job, file record, or blob remains.
func (s *ImportService) rollbackStart(ctx context.Context, log *logger.Logger, jobID, fileID, blobKey string) {
	if jobID != "" {
		if err := s.jobs.Delete(ctx, jobID); err != nil {
			log.WithError(err).WithField(logger.FieldJobID, jobID).Error("Failed to roll back job record")
		}
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		log.WithError(err).WithField(logger.FieldFileID, fileID).Error("Failed to roll back file record")
	}
	s.discardBlob(ctx, blobKey)
}

func (s *ImportService) discardBlob(ctx context.Context, key string) {
	if _, err := s.blobs.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("key", key).Warn("Failed to delete blob")
	}
}

// listArchiveEntries returns the archive's activity files in archive
// order, skipping directories, archive junk, and unsupported types. The
// order defines the cursor positions for the whole job.
func listArchiveEntries(data []byte) ([]*zip.File, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var entries []*zip.File
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if strings.HasPrefix(name, "__MACOSX/") {
			continue
		}
		base := name
		if idx := strings.LastIndex(name, "/"); idx != -1 {
			base = name[idx+1:]
		}
		if strings.HasPrefix(base, ".") {
			continue
		}
		fileType, ok := fitness.FileTypeFromName(name)
		if !ok || fileType == domain.FileTypeZip {
			continue
		}
		entries = append(entries, f)
	}
	return entries, nil
}

// deterministicID derives a stable UUID from its parts, so re-processing
// the same cursor position writes the same record.
func deterministicID(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
