package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"field_study_ops/internal/app"
	domainTelegram "field_study_ops/internal/domain/telegram"
	"field_study_ops/internal/infra/calendar"
	"field_study_ops/internal/infra/config"
	idb "field_study_ops/internal/infra/database"
	"field_study_ops/internal/infra/logger"
	"field_study_ops/internal/infra/scheduler"
	"field_study_ops/internal/infra/sheet"
	"field_study_ops/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var rootCmd = &cobra.Command{
	Use:           "reminders",
	Short:         "Create calendar reminders for payment due-dates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder batch once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, closeFn, err := buildReminderService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		summary, err := app.RunReminderBatch(cmd.Context(), svc)
		if err != nil {
			if summary != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), app.FormatRunSummary(summary))
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.FormatRunSummary(summary))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded reminder events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, closeFn, err := buildReminderService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		records, err := svc.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.FormatStatus(records, statusLimit))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reminder batch on a timer, with the Telegram control channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var statusLimit int

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "last", "n", 20, "number of latest dates to list")
	rootCmd.AddCommand(runCmd, statusCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)
	logger.Log.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Debug("Configuration loaded")
	return cfg, nil
}

// buildReminderService wires the sheet, calendar and record store. Any missing
// input is fatal before a single event is created.
func buildReminderService(ctx context.Context, cfg *config.AppConfig) (*app.ReminderService, func(), error) {
	payments, err := sheet.OpenCSVSheet(cfg.PaymentsSheetPath)
	if err != nil {
		return nil, nil, err
	}
	cal, err := calendar.NewICSDirectory(cfg.CalendarDir, cfg.ReminderEmail)
	if err != nil {
		return nil, nil, err
	}

	db, dialect, err := idb.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	props := idb.NewSQLPropertyStore(db, dialect)
	if err := props.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Log.WithField("dialect", dialect).Info("Reminder record store ready")

	records := idb.NewPropertyRecordStore(props, cfg.RecordsPropertyKey, logger.Component("records"))

	opts := app.DefaultReminderOptions()
	opts.Location = cfg.TimeZone
	opts.EventStart = cfg.EventStart
	opts.EventDuration = cfg.EventDuration
	opts.PopupMinutes = cfg.PopupMinutes
	opts.EmailMinutes = cfg.EmailMinutes
	opts.MaxPerRun = cfg.MaxPerRun
	opts.InterCallDelay = cfg.InterCallDelay
	opts.MaxRetries = cfg.MaxRetries

	svc := app.NewReminderService(payments, cal, records, opts, logger.Component("reminders"))
	return svc, func() { db.Close() }, nil
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	svc, closeFn, err := buildReminderService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var bot *telebot.Bot
	var notifier domainTelegram.Client
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := logger.Log.WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			return fmt.Errorf("could not create Telegram bot: %w", err)
		}
		notifier = telegram.NewTelebotAdapter(bot)

		adminService := app.NewAdminService(svc, cfg.AdminTelegramID)
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, botLogger)
		logger.Log.Info("Telegram command handlers registered.")
	} else {
		logger.Log.Info("TELEGRAM_TOKEN not set, running without the control channel.")
	}

	sched := scheduler.NewReminderScheduler(svc, notifier, cfg.ManagerTelegramID, logger.Component("scheduler"), cfg.CronSpecReminders, cfg.TimeZone)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("could not add reminder cron job: %w", err)
	}

	if bot != nil {
		go bot.Start()
	}

	logger.Log.Info("Application setup complete. Waiting for timer or commands...")
	<-ctx.Done()

	logger.Log.Info("Shutting down application...")
	if bot != nil {
		bot.Stop()
	}
	sched.Stop()
	logger.Log.Info("Application shut down gracefully.")
	return nil
}
