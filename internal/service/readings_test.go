package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReadingLogService_List(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 5, 1, 12, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	to := time.Date(2025, 5, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    ReadingFilter
		wantErr   error
		wantLimit int
		wantCall  bool
	}{
		{name: "defaults pass through", filter: ReadingFilter{}, wantLimit: 0, wantCall: true},
		{name: "limit clamped", filter: ReadingFilter{Limit: 5000}, wantLimit: maxReadingLimit, wantCall: true},
		{name: "bounds normalized", filter: ReadingFilter{From: from, To: to, Limit: 10}, wantLimit: 10, wantCall: true},
		{name: "negative limit rejected", filter: ReadingFilter{Limit: -1}, wantErr: errInvalidLimit},
		{name: "inverted range rejected", filter: ReadingFilter{From: to, To: to.Add(-time.Hour)}, wantErr: errInvalidTimeRange},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := &memReadingRepo{gotLimit: -99}
			svc := NewReadingLogService(repo)

			_, err := svc.List(context.Background(), tc.filter)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if !tc.wantCall {
				if repo.gotLimit != -99 {
					t.Fatalf("repo must not be called")
				}
				return
			}
			if repo.gotLimit != tc.wantLimit {
				t.Fatalf("limit = %d, want %d", repo.gotLimit, tc.wantLimit)
			}
			if !tc.filter.From.IsZero() {
				if repo.gotFrom.Location() != time.UTC || !repo.gotFrom.Equal(from) {
					t.Fatalf("from not normalized: %v", repo.gotFrom)
				}
			}
		})
	}
}

func TestReadingLogService_List_RepoError(t *testing.T) {
	svc := NewReadingLogService(&memReadingRepo{listErr: errBoom})
	if _, err := svc.List(context.Background(), ReadingFilter{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
