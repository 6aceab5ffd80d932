package services

import (
	"context"
	"fmt"

	"ecopredict/utils"
	"github.com/robfig/cron/v3"
)

// Refresher - источник данных, который можно перечитать
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshSchedulerService периодически обновляет кэш набора данных
type RefreshSchedulerService struct {
	cron   *cron.Cron
	target Refresher
	ctx    context.Context
}

// NewRefreshSchedulerService создает новый экземпляр RefreshSchedulerService.
// Расписание задается в формате cron с секундами, например "0 0 * * * *".
func NewRefreshSchedulerService(ctx context.Context, target Refresher, schedule string) (*RefreshSchedulerService, error) {
	s := &RefreshSchedulerService{
		cron:   cron.New(cron.WithSeconds()),
		target: target,
		ctx:    ctx,
	}

	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, fmt.Errorf("register dataset refresh %q: %w", schedule, err)
	}
	return s, nil
}

// Start запускает планировщик
func (s *RefreshSchedulerService) Start() {
	s.cron.Start()
	utils.LogInfo("dataset refresh scheduler started")
}

// Stop останавливает планировщик и ждет завершения текущего обновления
func (s *RefreshSchedulerService) Stop() {
	<-s.cron.Stop().Done()
	utils.LogInfo("dataset refresh scheduler stopped")
}

func (s *RefreshSchedulerService) refresh() {
	if err := s.target.Refresh(s.ctx); err != nil {
		utils.LogError("scheduled dataset refresh failed: %v", err)
	}
}
