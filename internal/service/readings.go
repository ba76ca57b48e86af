package service

import (
	"context"

	"homeguard/internal/models"
	"homeguard/internal/repository"
)

const (
	defaultRecentLimit = 100
	maxRecentLimit     = 1000
)

type ReadingService struct {
	repo repository.ReadingRepo
}

func NewReadingService(repo repository.ReadingRepo) *ReadingService {
	return &ReadingService{repo: repo}
}

// Recent returns up to limit archived readings, newest first. Limits
// outside (0, maxRecentLimit] are clamped.
func (s *ReadingService) Recent(ctx context.Context, limit int) ([]models.Reading, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
