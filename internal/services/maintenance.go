package services

import (
	"context"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/robfig/cron/v3"
)

// MaintenanceScheduler runs periodic housekeeping: expired band invite codes
// are purged hourly so stale codes cannot pile up.
type MaintenanceScheduler struct {
	bands domain.BandRepository
	cron  *cron.Cron
	log   logger.Logger
}

func NewMaintenanceScheduler(bands domain.BandRepository, log logger.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		bands: bands,
		cron:  cron.New(),
		log:   log,
	}
}

func (m *MaintenanceScheduler) Start() error {
	if _, err := m.cron.AddFunc("@hourly", m.purgeExpiredInvites); err != nil {
		return err
	}
	m.cron.Start()
	m.log.Info("Maintenance scheduler started")
	return nil
}

func (m *MaintenanceScheduler) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("Maintenance scheduler stopped")
}

func (m *MaintenanceScheduler) purgeExpiredInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := m.bands.PurgeExpiredInviteCodes(ctx, time.Now())
	if err != nil {
		m.log.Error("Failed to purge expired invite codes", "error", err)
		return
	}
	if purged > 0 {
		m.log.Info("Purged expired invite codes", "count", purged)
	}
}
