package app

import (
	"context"
	"fmt"

	"field_study_ops/internal/domain/reminder"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// ReminderRunner is the part of ReminderService the admin surface drives.
type ReminderRunner interface {
	EnsureSchema(ctx context.Context) (bool, error)
	Run(ctx context.Context) (*reminder.RunSummary, error)
	Status(ctx context.Context) (reminder.Records, error)
}

type AdminService struct {
	reminders       ReminderRunner
	adminTelegramID int64
}

func NewAdminService(r ReminderRunner, adminID int64) *AdminService {
	return &AdminService{
		reminders:       r,
		adminTelegramID: adminID,
	}
}

// TriggerReminderRun ensures the sheet schema and runs one reminder batch on
// behalf of the admin.
func (s *AdminService) TriggerReminderRun(ctx context.Context, performingAdminID int64) (*reminder.RunSummary, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return RunReminderBatch(ctx, s.reminders)
}

// ReminderStatus returns the recorded reminder events.
func (s *AdminService) ReminderStatus(ctx context.Context, performingAdminID int64) (reminder.Records, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	records, err := s.reminders.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder status: %w", err)
	}
	return records, nil
}

// RunReminderBatch is the two-phase entry point: schema first, then the batch.
func RunReminderBatch(ctx context.Context, r ReminderRunner) (*reminder.RunSummary, error) {
	if _, err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return r.Run(ctx)
}
