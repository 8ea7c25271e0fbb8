package service

import (
	"context"
	"sync"
	"time"

	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/orchestration"

	"github.com/robfig/cron/v3"
)

const sweeperModule = "SUMMARY_SWEEPER"

// SummarySweeper periodically refreshes the summaries of conversations that received
// messages since the previous sweep.
type SummarySweeper struct {
	cron          *cron.Cron
	spec          string
	uowFactory    unitofwork.RepositoryFactory
	conversations IConversationService
	clock         orchestration.Clock
	logger        logger.ILogger

	mu      sync.Mutex
	lastRun time.Time
}

func NewSummarySweeper(
	spec string,
	uowFactory unitofwork.RepositoryFactory,
	conversations IConversationService,
	clock orchestration.Clock,
	log logger.ILogger,
) *SummarySweeper {
	return &SummarySweeper{
		cron:          cron.New(),
		spec:          spec,
		uowFactory:    uowFactory,
		conversations: conversations,
		clock:         clock,
		logger:        log,
		lastRun:       clock.Now(),
	}
}

func (s *SummarySweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error(sweeperModule, "Sweep failed", map[string]interface{}{"error": err.Error()})
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info(sweeperModule, "Summary sweeper started", map[string]interface{}{"spec": s.spec})
	return nil
}

// Stop waits for a running sweep to finish.
func (s *SummarySweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep refreshes every conversation active since the previous sweep and returns how many
// were visited. Sweeps never overlap.
func (s *SummarySweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	ids, err := s.uowFactory.NewUnitOfWork(ctx).MessageRepository().ConversationIdsActiveSince(ctx, s.lastRun)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.conversations.RefreshSummary(ctx, id); err != nil {
			s.logger.Warn(sweeperModule, "Summary refresh failed", map[string]interface{}{
				"conversation_id": id,
				"error":           err.Error(),
			})
		}
	}

	s.lastRun = now
	return len(ids), nil
}
