package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the status of an archive import job.
// Values include JobStatusImporting, JobStatusCompleted, JobStatusFailed,
// and JobStatusCancelled.
type JobStatus string

const (
	JobStatusImporting JobStatus = "importing"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether s admits no further transitions. Failed jobs
// are not terminal: an explicit retry moves them back to importing.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// StringArray is a custom type for storing string arrays as JSON in the
// database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Contains reports whether a holds s.
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// Without returns a copy of a with every occurrence of s removed.
func (a StringArray) Without(s string) StringArray {
	out := make(StringArray, 0, len(a))
	for _, v := range a {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// ArchiveImportJob is one durable import attempt for an uploaded
// archive. NextActivityIndex is the sole resumption point: a crashed
// handler leaves the last committed cursor behind and redelivery
// resumes from there.
type ArchiveImportJob struct {
	ID            string `gorm:"type:text;primaryKey" json:"id"`
	ActorID       string `gorm:"type:text;not null;index" json:"actor_id"`
	ArchiveID     string `gorm:"type:text;not null" json:"archive_id"`
	ArchiveFileID string `gorm:"type:text;not null" json:"archive_file_id"`
	BatchID       string `gorm:"type:text;not null" json:"batch_id"`

	Status JobStatus `gorm:"default:importing;index" json:"status"`

	NextActivityIndex      int         `gorm:"default:0" json:"next_activity_index"`
	PendingMediaActivities StringArray `gorm:"type:text" json:"pending_media_activities"`
	MediaAttachmentRetry   int         `gorm:"default:0" json:"media_attachment_retry"`

	TotalActivitiesCount     *int `json:"total_activities_count,omitempty"`
	CompletedActivitiesCount int  `gorm:"default:0" json:"completed_activities_count"`
	FailedActivitiesCount    int  `gorm:"default:0" json:"failed_activities_count"`

	// FirstFailureMessage is sticky: set on the first failure and never
	// overwritten. LastError tracks only the most recent failure.
	FirstFailureMessage *string `json:"first_failure_message,omitempty"`
	LastError           *string `json:"last_error,omitempty"`

	Visibility Visibility `gorm:"default:private" json:"visibility"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// TableName returns the database table name for ArchiveImportJob.
func (ArchiveImportJob) TableName() string {
	return "archive_import_jobs"
}

// Active reports whether the job blocks a new import for its actor.
func (j *ArchiveImportJob) Active() bool {
	return j.Status == JobStatusImporting
}

// RecordFailure sets LastError and the sticky FirstFailureMessage.
func (j *ArchiveImportJob) RecordFailure(msg string) {
	j.LastError = &msg
	if j.FirstFailureMessage == nil {
		j.FirstFailureMessage = &msg
	}
}

// Resolve moves the job into status and stamps ResolvedAt.
func (j *ArchiveImportJob) Resolve(status JobStatus, now time.Time) {
	j.Status = status
	j.ResolvedAt = &now
}
