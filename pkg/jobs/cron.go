package jobs

import (
	"context"
	"log"
	"time"

	"github.com/jordanlanch/ironoak/pkg/backup"
	"github.com/jordanlanch/ironoak/pkg/leadlifecycle"
	"github.com/jordanlanch/ironoak/pkg/slack"
	"github.com/robfig/cron/v3"
)

// BackupRunner snapshots the partitions
type BackupRunner interface {
	CreateBackup(ctx context.Context) (*backup.BackupResult, error)
}

// StatsSource summarizes lead activity since a point in time
type StatsSource interface {
	Stats(ctx context.Context, since time.Time) (leadlifecycle.Stats, error)
}

// Notifier posts job outcomes to the operator channel
type Notifier interface {
	NotifyDailyStats(ctx context.Context, stats slack.DailyStats) error
	NotifyBackupFailed(ctx context.Context, reason string) error
}

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	backups  BackupRunner
	stats    StatsSource
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

// NewCronManager creates a new cron manager. Schedules are evaluated in loc.
// A nil backups runner disables the nightly snapshot.
func NewCronManager(backups BackupRunner, stats StatsSource, notifier Notifier, loc *time.Location, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &CronManager{
		cron:     cron.New(cron.WithLocation(loc)),
		backups:  backups,
		stats:    stats,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	if cm.backups != nil {
		// Daily at 3 AM: snapshot partitions to S3
		if _, err := cm.cron.AddFunc("0 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			cm.RunBackup(ctx)
		}); err != nil {
			return err
		}
	}

	// Daily at 8 AM: post the lead digest
	if _, err := cm.cron.AddFunc("0 8 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		cm.RunDailyStats(ctx)
	}); err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	if cm.backups != nil {
		cm.logger.Println("  - Daily at 3 AM: Backup partitions")
	}
	cm.logger.Println("  - Daily at 8 AM: Lead digest")

	return nil
}

// RunBackup runs one snapshot and reports failures to the operator
func (cm *CronManager) RunBackup(ctx context.Context) {
	cm.logger.Println("🕐 Running nightly backup job...")

	result, err := cm.backups.CreateBackup(ctx)
	if err != nil {
		cm.logger.Printf("❌ Backup failed: %v", err)
		if nerr := cm.notifier.NotifyBackupFailed(ctx, err.Error()); nerr != nil {
			cm.logger.Printf("⚠️ Failed to report backup failure: %v", nerr)
		}
		return
	}

	cm.logger.Printf("✅ Backup completed: %s (%d partitions, %s)", result.Key, len(result.Partitions), result.Duration)
}

// RunDailyStats posts the counts for the last 24 hours
func (cm *CronManager) RunDailyStats(ctx context.Context) {
	cm.logger.Println("🕐 Collecting lead statistics...")

	st, err := cm.stats.Stats(ctx, cm.now().Add(-24*time.Hour))
	if err != nil {
		cm.logger.Printf("❌ Failed to get lead stats: %v", err)
		return
	}

	cm.logger.Printf("📊 Leads: total=%d new=%d paid=%d booked=%d", st.Total, st.New, st.Paid, st.Booked)

	if err := cm.notifier.NotifyDailyStats(ctx, slack.DailyStats{
		Total:     st.Total,
		New:       st.New,
		Paid:      st.Paid,
		SMSSent:   st.SMSSent,
		SMSFailed: st.SMSFailed,
		OptedOut:  st.OptedOut,
		Booked:    st.Booked,
	}); err != nil {
		cm.logger.Printf("⚠️ Failed to post daily digest: %v", err)
	}
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	<-cm.cron.Stop().Done()
}

// Entries reports how many jobs are scheduled
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}
