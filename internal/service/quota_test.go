package service

import (
	"context"
	"errors"
	"testing"
)

type stubUsage struct {
	bytes int64
	err   error
}

func (s stubUsage) TotalBytesForActor(ctx context.Context, actorID string) (int64, error) {
	return s.bytes, s.err
}

func TestQuotaCheck(t *testing.T) {
	tests := []struct {
		name          string
		fileBytes     int64
		mediaBytes    int64
		limit         int64
		additional    int64
		wantAvailable bool
	}{
		{name: "well under limit", fileBytes: 100, mediaBytes: 50, limit: 1000, additional: 100, wantAvailable: true},
		{name: "exactly at limit", fileBytes: 400, mediaBytes: 100, limit: 1000, additional: 500, wantAvailable: true},
		{name: "one byte over", fileBytes: 400, mediaBytes: 100, limit: 1000, additional: 501, wantAvailable: false},
		{name: "both kinds count", fileBytes: 600, mediaBytes: 600, limit: 1000, additional: 0, wantAvailable: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuotaService(stubUsage{bytes: tt.fileBytes}, stubUsage{bytes: tt.mediaBytes}, tt.limit)
			status, err := q.Check(context.Background(), "actor1", tt.additional)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if status.Available != tt.wantAvailable {
				t.Errorf("Available = %v, want %v", status.Available, tt.wantAvailable)
			}
			if status.Used != tt.fileBytes+tt.mediaBytes {
				t.Errorf("Used = %d, want %d", status.Used, tt.fileBytes+tt.mediaBytes)
			}
			if status.Limit != tt.limit {
				t.Errorf("Limit = %d, want %d", status.Limit, tt.limit)
			}
		})
	}
}

func TestQuotaCheckUsageError(t *testing.T) {
	wantErr := errors.New("db down")
	q := NewQuotaService(stubUsage{err: wantErr}, stubUsage{}, 100)
	if _, err := q.Check(context.Background(), "actor1", 10); !errors.Is(err, wantErr) {
		t.Fatalf("Check() error = %v, want %v", err, wantErr)
	}
}
