// internal/infra/calendar/ics_directory.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainCalendar "field_study_ops/internal/domain/calendar"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

var ErrCalendarNotFound = errors.New("calendar directory not found")

// ICSDirectory is a vdir-style calendar: one .ics file per event in a
// directory that a sync client (vdirsyncer, DAVx5, Thunderbird) publishes.
type ICSDirectory struct {
	dir         string
	email       string // attendee for EMAIL alarms, optional
	productID   string
	now         func() time.Time
	newEventUID func() string
}

// NewICSDirectory checks that dir exists and is a directory.
func NewICSDirectory(dir, reminderEmail string) (*ICSDirectory, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrCalendarNotFound)
		}
		return nil, fmt.Errorf("failed to stat calendar directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, ErrCalendarNotFound)
	}
	return &ICSDirectory{
		dir:         dir,
		email:       reminderEmail,
		productID:   "-//field_study_ops//payment reminders//EN",
		now:         time.Now,
		newEventUID: uuid.NewString,
	}, nil
}

// CreateEvent writes the event and returns its UID.
func (c *ICSDirectory) CreateEvent(ctx context.Context, ev domainCalendar.Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	uid := c.newEventUID()
	path := filepath.Join(c.dir, uid+".ics")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create event file %s: %w", path, err)
	}
	if _, err := f.WriteString(c.render(uid, ev)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write event file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close event file %s: %w", path, err)
	}
	return uid, nil
}

func (c *ICSDirectory) render(uid string, ev domainCalendar.Event) string {
	cal := ics.NewCalendar()
	cal.SetProductId(c.productID)

	event := cal.AddEvent(uid)
	event.SetDtStampTime(c.now())
	event.SetStartAt(ev.Start)
	event.SetEndAt(ev.End)
	event.SetSummary(ev.Title)
	event.SetDescription(normalizeNewlines(ev.Description))

	if ev.PopupMinutesBefore > 0 {
		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.PopupMinutesBefore))
		alarm.SetDescription(ev.Title)
	}
	if ev.EmailMinutesBefore > 0 {
		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionEmail)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.EmailMinutesBefore))
		alarm.SetSummary(ev.Title)
		alarm.SetDescription(normalizeNewlines(ev.Description))
		if c.email != "" {
			alarm.AddAttendee(c.email)
		}
	}

	return cal.Serialize(ics.WithNewLineWindows)
}

// normalizeNewlines leaves bare LF, which the TEXT escaper turns into \n.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
