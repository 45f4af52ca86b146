package service

import (
	"context"
	"errors"

	"lightsensord/internal/models"
	"lightsensord/internal/repository"
)

const maxReadingLimit = 1000

var errInvalidLimit = errors.New("invalid limit: must be >= 0")

type ReadingLogService struct {
	readingRepo repository.ReadingRepo
}

func NewReadingLogService(readingRepo repository.ReadingRepo) *ReadingLogService {
	return &ReadingLogService{readingRepo: readingRepo}
}

// List returns stored readings oldest first. Limits above maxReadingLimit are
// clamped.
func (s *ReadingLogService) List(ctx context.Context, f ReadingFilter) ([]models.Reading, error) {
	if f.Limit < 0 {
		return nil, errInvalidLimit
	}
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	limit := min(f.Limit, maxReadingLimit)
	return s.readingRepo.List(ctx, from, to, limit)
}
