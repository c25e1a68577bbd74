package domain

import "time"

// FileType identifies the declared format of an uploaded fitness file.
type FileType string

const (
	FileTypeFit FileType = "fit"
	FileTypeGpx FileType = "gpx"
	FileTypeTcx FileType = "tcx"
	FileTypeZip FileType = "zip"
)

// Valid reports whether t is one of the supported file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFit, FileTypeGpx, FileTypeTcx, FileTypeZip:
		return true
	}
	return false
}

// MimeType returns the content type used when storing the file.
func (t FileType) MimeType() string {
	switch t {
	case FileTypeFit:
		return "application/vnd.ant.fit"
	case FileTypeGpx:
		return "application/gpx+xml"
	case FileTypeTcx:
		return "application/vnd.garmin.tcx+xml"
	case FileTypeZip:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// FitnessFile is the metadata record for an uploaded blob. Rows are
// created on successful blob write and deleted on explicit user action,
// failed-job rollback, or cancellation; they are never mutated.
type FitnessFile struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	ActorID       string    `gorm:"type:text;not null;index" json:"actor_id"`
	Path          string    `gorm:"type:text;not null" json:"path"`
	FileType      FileType  `gorm:"type:text;not null" json:"file_type"`
	MimeType      string    `json:"mime_type"`
	Bytes         int64     `json:"bytes"`
	ImportBatchID string    `gorm:"type:text;index" json:"import_batch_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for FitnessFile.
func (FitnessFile) TableName() string {
	return "fitness_files"
}

// MediaAttachment is a stored media object derived from an activity,
// currently the rendered route preview image. Its bytes count against
// the same storage quota as fitness files.
type MediaAttachment struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	ActorID    string    `gorm:"type:text;not null;index" json:"actor_id"`
	ActivityID string    `gorm:"type:text;index" json:"activity_id"`
	Path       string    `gorm:"type:text;not null" json:"path"`
	MimeType   string    `json:"mime_type"`
	Bytes      int64     `json:"bytes"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for MediaAttachment.
func (MediaAttachment) TableName() string {
	return "media_attachments"
}
