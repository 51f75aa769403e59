package calendar

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	domainCalendar "field_study_ops/internal/domain/calendar"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, email string) *ICSDirectory {
	t.Helper()
	c, err := NewICSDirectory(t.TempDir(), email)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC) }
	c.newEventUID = func() string { return "uid-1" }
	return c
}

func TestNewICSDirectory_Missing(t *testing.T) {
	_, err := NewICSDirectory(filepath.Join(t.TempDir(), "absent"), "")
	assert.ErrorIs(t, err, ErrCalendarNotFound)

	file := filepath.Join(t.TempDir(), "file.ics")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewICSDirectory(file, "")
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestICSDirectory_CreateEvent(t *testing.T) {
	c := newTestDirectory(t, "ops@example.org")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	id, err := c.CreateEvent(context.Background(), domainCalendar.Event{
		Title:              "Send payments due 2026-03-02 (2 payment(s))",
		Description:        "Payments to send by 2026-03-02:\n\n☐ Ana; #1, Bank",
		Start:              start,
		End:                start.Add(30 * time.Minute),
		PopupMinutesBefore: 10,
		EmailMinutesBefore: 1440,
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id)

	raw, err := os.ReadFile(filepath.Join(c.dir, "uid-1.ics"))
	require.NoError(t, err)
	content := string(raw)

	assert.True(t, strings.HasSuffix(content, "END:VCALENDAR\r\n"))
	assert.Contains(t, content, "UID:uid-1\r\n")
	assert.Contains(t, content, "DTSTAMP:20260220T120000Z\r\n")
	assert.Contains(t, content, "DTSTART:20260302T080000Z\r\n")
	assert.Contains(t, content, "DTEND:20260302T083000Z\r\n")
	assert.Contains(t, content, `DESCRIPTION:Payments to send by 2026-03-02:\n\n☐ Ana\; #1\, Bank`)
	assert.Contains(t, content, "ACTION:DISPLAY\r\nTRIGGER:-PT10M\r\n")
	assert.Contains(t, content, "ACTION:EMAIL\r\nTRIGGER:-PT1440M\r\n")
	assert.Contains(t, content, "ATTENDEE:mailto:ops@example.org\r\n")
	assert.Equal(t, 2, strings.Count(content, "BEGIN:VALARM"))
}

func TestICSDirectory_NoAlarmsWhenZero(t *testing.T) {
	c := newTestDirectory(t, "")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := c.CreateEvent(context.Background(), domainCalendar.Event{Title: "t", Start: start, End: start})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(c.dir, "uid-1.ics"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "VALARM")
}

func TestICSDirectory_DuplicateUID(t *testing.T) {
	c := newTestDirectory(t, "")
	ev := domainCalendar.Event{Title: "t", Start: time.Now(), End: time.Now()}
	_, err := c.CreateEvent(context.Background(), ev)
	require.NoError(t, err)
	_, err = c.CreateEvent(context.Background(), ev)
	assert.Error(t, err)
}

func TestICSDirectory_CancelledContext(t *testing.T) {
	c := newTestDirectory(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CreateEvent(ctx, domainCalendar.Event{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestICSDirectory_LongDescriptionRoundTrips(t *testing.T) {
	c := newTestDirectory(t, "")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	description := "Payments to send by 2026-03-02:\r\n" + strings.Repeat("\n☐ Ana (K01) | #3 | Bank, 100; In-person", 6)

	_, err := c.CreateEvent(context.Background(), domainCalendar.Event{
		Title:       "Send payments due 2026-03-02 (6 payment(s))",
		Description: description,
		Start:       start,
		End:         start.Add(30 * time.Minute),
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(c.dir, "uid-1.ics"))
	require.NoError(t, err)
	for i, line := range strings.Split(strings.TrimSuffix(string(raw), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, "line %d", i)
		assert.True(t, utf8.ValidString(line), "line %d splits a rune", i)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(raw))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "uid-1", events[0].Id())
	desc := events[0].GetProperty(ics.ComponentPropertyDescription)
	require.NotNil(t, desc)
	assert.Equal(t, strings.ReplaceAll(description, "\r\n", "\n"), desc.Value)

	gotStart, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(gotStart))
}
