package service

import (
	"context"
	"time"

	"homeguard/internal/logger"
	"homeguard/internal/repository"
)

const defaultJobTTL = 24 * time.Hour

// JanitorService evicts terminal job records past their retention window.
// In-flight jobs are never evicted.
type JanitorService struct {
	repo repository.JobRepo
	ttl  time.Duration
	log  *logger.Logger
}

func NewJanitorService(repo repository.JobRepo, ttl time.Duration, log *logger.Logger) *JanitorService {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &JanitorService{repo: repo, ttl: ttl, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (s *JanitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.repo.SweepTerminal(now.Add(-s.ttl)); n > 0 && s.log != nil {
				s.log.Infow("evicted finished jobs", "count", n)
			}
		}
	}
}
