package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"field_study_ops/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const statusDatesShown = 10

// RegisterAdminHandlers registers the admin commands that drive the reminder batch.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/run_reminders", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/run_reminders",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		_ = c.Send("Running reminder batch...")
		summary, err := adminService.TriggerReminderRun(ctx, c.Sender().ID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("Error: you are not allowed to run this command.")
			case errors.Is(err, app.ErrRunInProgress):
				logWithError.Warn("Run already in progress")
				return c.Send("A reminder run is already in progress.")
			default:
				logWithError.Error("Reminder run failed")
				return c.Send(fmt.Sprintf("Reminder run failed: %s\n%s", err.Error(), app.FormatRunSummary(summary)))
			}
		}

		handlerLogger.WithFields(logrus.Fields{
			"created":   summary.Created,
			"skipped":   summary.Skipped,
			"remaining": summary.Remaining,
		}).Info("Reminder run finished")
		return c.Send(app.FormatRunSummary(summary))
	})

	b.Handle("/reminder_status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reminder_status",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		shown := statusDatesShown
		if args := c.Args(); len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return c.Send("Usage: /reminder_status [number of dates]")
			}
			shown = n
		}

		records, err := adminService.ReminderStatus(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to load reminder status")
			return c.Send(fmt.Sprintf("Could not load reminder status: %s", err.Error()))
		}
		handlerLogger.WithField("recorded", len(records)).Info("Reminder status sent")
		return c.Send(app.FormatStatus(records, shown))
	})
}
