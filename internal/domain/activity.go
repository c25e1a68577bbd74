package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Visibility controls who can see an imported activity.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Coordinate is a single GPS sample in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ActivityData is the normalized output shared by all supported file
// formats. Distance and duration are always populated, falling back to
// values computed from the samples; the optional fields stay nil when
// the source carried no usable data.
type ActivityData struct {
	Coordinates          []Coordinate
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	ElevationGainMeters  *float64
	ActivityType         *string
	StartTime            *time.Time
}

// HasRoute reports whether the activity has enough samples to draw.
func (a *ActivityData) HasRoute() bool {
	return len(a.Coordinates) >= 2
}

// CoordinateList is a custom type for storing coordinate sequences as
// JSON in the database.
type CoordinateList []Coordinate

// Value implements the driver.Valuer interface for database serialization.
func (c CoordinateList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (c *CoordinateList) Scan(value interface{}) error {
	if value == nil {
		*c = CoordinateList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan CoordinateList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, c)
}

// Activity is an imported fitness activity persisted by the importer.
type Activity struct {
	ID                   string         `gorm:"type:text;primaryKey" json:"id"`
	ActorID              string         `gorm:"type:text;not null;index" json:"actor_id"`
	ImportBatchID        string         `gorm:"type:text;index" json:"import_batch_id,omitempty"`
	SourceFileID         string         `gorm:"type:text;index" json:"source_file_id,omitempty"`
	ActivityType         *string        `json:"activity_type,omitempty"`
	StartTime            *time.Time     `json:"start_time,omitempty"`
	TotalDistanceMeters  float64        `json:"total_distance_meters"`
	TotalDurationSeconds float64        `json:"total_duration_seconds"`
	ElevationGainMeters  *float64       `json:"elevation_gain_meters,omitempty"`
	Route                CoordinateList `gorm:"type:text" json:"route"`
	MapPath              string         `json:"map_path,omitempty"`
	Visibility           Visibility     `gorm:"default:private" json:"visibility"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Activity.
func (Activity) TableName() string {
	return "activities"
}
