package scheduler

import (
	"context"
	"errors"
	"time"

	"field_study_ops/internal/app"
	domainTelegram "field_study_ops/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler runs the reminder batch on a cron timer and reports each
// run to the manager chat when a notifier is configured.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	reminders  app.ReminderRunner
	notifier   domainTelegram.Client // may be nil
	managerID  int64
	logger     *logrus.Entry
	cronSpec   string
	runTimeout time.Duration
}

func NewReminderScheduler(
	reminders app.ReminderRunner,
	notifier domainTelegram.Client,
	managerID int64,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 7 * * *" (07:00 daily)
	loc *time.Location,
) *ReminderScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		reminders:  reminders,
		notifier:   notifier,
		managerID:  managerID,
		logger:     logger,
		cronSpec:   cronSpec,
		runTimeout: 30 * time.Minute,
	}
}

func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for reminder batch.")
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		s.ExecuteRun(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Reminder scheduler started.")
	return nil
}

// ExecuteRun performs one batch and reports the outcome.
func (s *ReminderScheduler) ExecuteRun(ctx context.Context) {
	summary, err := app.RunReminderBatch(ctx, s.reminders)
	switch {
	case errors.Is(err, app.ErrRunInProgress):
		s.logger.Warn("Previous reminder run still in progress, skipping this tick.")
		return
	case err != nil:
		s.logger.WithError(err).Error("Error during reminder batch")
		s.notify("Reminder run failed: " + err.Error() + "\n" + app.FormatRunSummary(summary))
		return
	}
	s.notify(app.FormatRunSummary(summary))
}

func (s *ReminderScheduler) notify(text string) {
	if s.notifier == nil || s.managerID == 0 {
		return
	}
	if err := s.notifier.SendText(s.managerID, text); err != nil {
		s.logger.WithError(err).WithField("manager_id", s.managerID).Error("Failed to send run report")
	}
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
