package service

import (
	"context"

	"github.com/llun/fitfeed/internal/logger"
)

// StorageUsage reads the stored byte total for one account from a single
// storage kind.
type StorageUsage interface {
	TotalBytesForActor(ctx context.Context, actorID string) (int64, error)
}

// QuotaStatus is the result of a quota check.
type QuotaStatus struct {
	Available bool  `json:"available"`
	Used      int64 `json:"used"`
	Limit     int64 `json:"limit"`
}

// QuotaService decides whether an account may store additional bytes.
// Fitness files and media attachments share one limit. The check is a
// pure decision; callers abort the write and raise the quota condition.
type QuotaService struct {
	files StorageUsage
	media StorageUsage
	limit int64
}

// NewQuotaService creates a QuotaService over the two usage sources.
func NewQuotaService(files, media StorageUsage, limitBytes int64) *QuotaService {
	return &QuotaService{files: files, media: media, limit: limitBytes}
}

// Check sums current usage across both storage kinds and compares
// used+additionalBytes against the limit.
func (s *QuotaService) Check(ctx context.Context, actorID string, additionalBytes int64) (*QuotaStatus, error) {
	fileBytes, err := s.files.TotalBytesForActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	mediaBytes, err := s.media.TotalBytesForActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	used := fileBytes + mediaBytes
	status := &QuotaStatus{
		Available: used+additionalBytes <= s.limit,
		Used:      used,
		Limit:     s.limit,
	}
	if !status.Available {
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldActorID: actorID,
			logger.FieldBytes:   additionalBytes,
			"used":              used,
			"limit":             s.limit,
		}).Warn("Storage quota exceeded")
	}
	return status, nil
}
