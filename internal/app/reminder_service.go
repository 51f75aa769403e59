// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"field_study_ops/internal/domain/calendar"
	"field_study_ops/internal/domain/payment"
	"field_study_ops/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Reminder batch errors.
var ErrMissingColumn = errors.New("required column missing")
var ErrRunInProgress = errors.New("reminder run already in progress")

// ReminderOptions configures the reminder batch. Zero values fall back to the
// defaults in DefaultReminderOptions.
type ReminderOptions struct {
	Columns        payment.Columns
	Location       *time.Location
	EventStart     time.Duration // offset from midnight
	EventDuration  time.Duration
	PopupMinutes   int
	EmailMinutes   int
	MaxPerRun      int
	InterCallDelay time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

// DefaultReminderOptions returns the production defaults.
func DefaultReminderOptions() ReminderOptions {
	return ReminderOptions{
		Columns:        payment.DefaultColumns(),
		Location:       time.UTC,
		EventStart:     9 * time.Hour,
		EventDuration:  30 * time.Minute,
		PopupMinutes:   10,
		EmailMinutes:   24 * 60,
		MaxPerRun:      40,
		InterCallDelay: time.Second,
		MaxRetries:     5,
		BackoffBase:    time.Second,
		BackoffMax:     60 * time.Second,
	}
}

func (o ReminderOptions) withDefaults() ReminderOptions {
	d := DefaultReminderOptions()
	if o.Columns.DueDate == "" {
		o.Columns = d.Columns
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	if o.EventDuration <= 0 {
		o.EventDuration = d.EventDuration
	}
	if o.MaxPerRun <= 0 {
		o.MaxPerRun = d.MaxPerRun
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = d.BackoffBase
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = d.BackoffMax
	}
	return o
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepWithContext sleeps for d but returns early when ctx is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

// ReminderService creates one calendar event per payment due-date.
type ReminderService struct {
	sheet    payment.Sheet
	calendar calendar.Client
	records  reminder.RecordStore
	opts     ReminderOptions
	logger   *logrus.Entry
	limiter  *rate.Limiter
	sleep    SleepFunc

	mu      sync.Mutex
	running bool
}

func NewReminderService(
	sheet payment.Sheet,
	cal calendar.Client,
	records reminder.RecordStore,
	opts ReminderOptions,
	logger *logrus.Entry,
) *ReminderService {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.InterCallDelay > 0 {
		limit = rate.Every(opts.InterCallDelay)
	}
	return &ReminderService{
		sheet:    sheet,
		calendar: cal,
		records:  records,
		opts:     opts,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, 1),
		sleep:    SleepWithContext,
	}
}

// WithSleep replaces the backoff sleeper. Used by tests.
func (s *ReminderService) WithSleep(fn SleepFunc) *ReminderService {
	s.sleep = fn
	return s
}

// EnsureSchema checks the due-date column and appends the event-id column if it
// is missing. It must complete before Run; it reports whether the sheet changed.
func (s *ReminderService) EnsureSchema(ctx context.Context) (bool, error) {
	if err := s.sheet.Reload(ctx); err != nil {
		return false, fmt.Errorf("failed to reload sheet %s: %w", s.sheet.Name(), err)
	}
	headers, err := s.sheet.Headers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read headers of sheet %s: %w", s.sheet.Name(), err)
	}
	if !containsHeader(headers, s.opts.Columns.DueDate) {
		return false, fmt.Errorf("sheet %s has no %q column: %w", s.sheet.Name(), s.opts.Columns.DueDate, ErrMissingColumn)
	}
	if containsHeader(headers, s.opts.Columns.EventID) {
		return false, nil
	}

	if err := s.sheet.AppendColumn(ctx, s.opts.Columns.EventID); err != nil {
		return false, fmt.Errorf("failed to append %q column: %w", s.opts.Columns.EventID, err)
	}
	if err := s.sheet.Save(ctx); err != nil {
		return false, fmt.Errorf("failed to save sheet %s after adding column: %w", s.sheet.Name(), err)
	}
	s.logger.WithField("column", s.opts.Columns.EventID).Info("Added reminder event id column to sheet")
	return true, nil
}

// Run executes one reminder batch. Events created before an error stay
// recorded; the error is returned with the partial summary.
func (s *ReminderService) Run(ctx context.Context) (*reminder.RunSummary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.sheet.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload sheet %s: %w", s.sheet.Name(), err)
	}
	headers, err := s.sheet.Headers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers of sheet %s: %w", s.sheet.Name(), err)
	}
	for _, col := range []string{s.opts.Columns.DueDate, s.opts.Columns.EventID} {
		if !containsHeader(headers, col) {
			return nil, fmt.Errorf("sheet %s has no %q column: %w", s.sheet.Name(), col, ErrMissingColumn)
		}
	}

	groups, skippedRows, err := s.groupByDueDate(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.records.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder records: %w", err)
	}
	if records == nil {
		records = reminder.Records{}
	}

	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	summary := &reminder.RunSummary{RowsSkipped: skippedRows}
	var pending []string
	for _, d := range dates {
		if records.Has(d) {
			summary.Skipped++
			continue
		}
		pending = append(pending, d)
	}
	if len(pending) > s.opts.MaxPerRun {
		summary.Remaining = len(pending) - s.opts.MaxPerRun
		pending = pending[:s.opts.MaxPerRun]
	}

	var runErr error
	for i, d := range pending {
		id, err := s.createReminder(ctx, d, groups[d])
		if err != nil {
			runErr = fmt.Errorf("failed to create reminder for %s: %w", d, err)
			summary.Remaining += len(pending) - i
			break
		}
		records[d] = id
		summary.Created++
		summary.CreatedDates = append(summary.CreatedDates, d)

		for _, row := range groups[d] {
			if err := s.sheet.SetCell(ctx, row.SheetRow, s.opts.Columns.EventID, id); err != nil {
				runErr = fmt.Errorf("failed to write event id for row %d: %w", row.SheetRow, err)
				break
			}
		}
		if runErr != nil {
			summary.Remaining += len(pending) - i - 1
			break
		}
	}

	if summary.Created > 0 {
		if err := s.persist(ctx, records); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	log := s.logger.WithFields(logrus.Fields{
		"created":   summary.Created,
		"skipped":   summary.Skipped,
		"remaining": summary.Remaining,
	})
	if runErr != nil {
		log.WithError(runErr).Error("Reminder run aborted")
		return summary, runErr
	}
	log.Info("Reminder run finished")
	return summary, nil
}

// persist writes the records first; they are the source of truth for
// idempotence, the sheet column is a convenience copy.
func (s *ReminderService) persist(ctx context.Context, records reminder.Records) error {
	if err := s.records.Save(ctx, records); err != nil {
		return fmt.Errorf("failed to save reminder records: %w", err)
	}
	if err := s.sheet.Save(ctx); err != nil {
		return fmt.Errorf("failed to save sheet %s: %w", s.sheet.Name(), err)
	}
	return nil
}

func (s *ReminderService) groupByDueDate(ctx context.Context) (map[string][]payment.Row, int, error) {
	records, err := s.sheet.Records(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows of sheet %s: %w", s.sheet.Name(), err)
	}

	cols := s.opts.Columns
	groups := make(map[string][]payment.Row)
	skipped := 0
	for i, rec := range records {
		row := payment.Row{
			SheetRow:        i + 2,
			DueDate:         rec[cols.DueDate],
			ConfederateName: rec[cols.ConfederateName],
			ConfederateID:   rec[cols.ConfederateID],
			Order:           rec[cols.Order],
			Channel:         rec[cols.Channel],
			Amount:          rec[cols.Amount],
			DeliveryMethod:  rec[cols.DeliveryMethod],
			TransactionDate: rec[cols.TransactionDate],
		}
		due, ok := ParseDueDate(row.DueDate, s.opts.Location)
		if !ok {
			skipped++
			continue
		}
		key := reminder.DateKey(due)
		groups[key] = append(groups[key], row)
	}
	return groups, skipped, nil
}

// BuildEvent assembles the calendar event for a due-date.
func (s *ReminderService) BuildEvent(date string, rows []payment.Row) (calendar.Event, error) {
	day, err := time.ParseInLocation(reminder.DateLayout, date, s.opts.Location)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("invalid reminder date %q: %w", date, err)
	}
	// Wall-clock time of day, so DST transitions do not shift the event.
	start := time.Date(day.Year(), day.Month(), day.Day(),
		int(s.opts.EventStart/time.Hour), int(s.opts.EventStart%time.Hour/time.Minute), 0, 0, s.opts.Location)
	return calendar.Event{
		Title:              ReminderTitle(date, len(rows)),
		Description:        ReminderChecklist(date, rows, s.opts.Location),
		Start:              start,
		End:                start.Add(s.opts.EventDuration),
		PopupMinutesBefore: s.opts.PopupMinutes,
		EmailMinutesBefore: s.opts.EmailMinutes,
	}, nil
}

func (s *ReminderService) createReminder(ctx context.Context, date string, rows []payment.Row) (string, error) {
	ev, err := s.BuildEvent(date, rows)
	if err != nil {
		return "", err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting between calendar calls: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{"date": date, "payments": len(rows)})
	for attempt := 0; ; attempt++ {
		id, err := s.calendar.CreateEvent(ctx, ev)
		if err == nil {
			log.WithField("event_id", id).Info("Reminder event created")
			return id, nil
		}
		if !calendar.IsRateLimited(err) {
			return "", err
		}
		if attempt >= s.opts.MaxRetries {
			return "", fmt.Errorf("still rate limited after %d retries: %w", attempt, err)
		}

		delay := s.backoffDelay(attempt, err)
		log.WithError(err).WithFields(logrus.Fields{"attempt": attempt + 1, "delay": delay}).Warn("Calendar rate limited, backing off")
		if err := s.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// backoffDelay is base * 2^attempt capped at BackoffMax. A longer Retry-After
// from the backend wins, still capped.
func (s *ReminderService) backoffDelay(attempt int, err error) time.Duration {
	d := s.opts.BackoffBase
	for i := 0; i < attempt && d < s.opts.BackoffMax; i++ {
		d *= 2
	}
	var rl *calendar.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > d {
		d = rl.RetryAfter
	}
	if d > s.opts.BackoffMax {
		d = s.opts.BackoffMax
	}
	return d
}

// Status returns the recorded reminders.
func (s *ReminderService) Status(ctx context.Context) (reminder.Records, error) {
	records, err := s.records.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder records: %w", err)
	}
	return records, nil
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
