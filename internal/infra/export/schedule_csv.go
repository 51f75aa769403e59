// internal/infra/export/schedule_csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"field_study_ops/internal/domain/schedule"
)

// Output file names.
const (
	MasterFile               = "schedule_master.csv"
	SummaryByConfederateFile = "summary_by_confederate.csv"
	SummaryStudyFile         = "summary_study.csv"
)

// ScheduleHeader is the column order of every schedule table.
var ScheduleHeader = []string{
	"confederate_id",
	"country",
	"transaction_order",
	"block",
	"phase",
	"assigned_week",
	"date",
	"channel",
	"amount",
	"delivery_method",
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ConfederateFile returns the per-confederate file name.
func ConfederateFile(confederateID string) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(confederateID, "-"), "-")
	if slug == "" {
		slug = "unnamed"
	}
	return "schedule_" + slug + ".csv"
}

// ScheduleRecord renders a row in ScheduleHeader order.
func ScheduleRecord(r schedule.Row) []string {
	return []string{
		r.ConfederateID,
		r.Country,
		strconv.Itoa(r.TransactionOrder),
		strconv.Itoa(r.Block),
		strconv.Itoa(r.Phase),
		strconv.Itoa(r.AssignedWeek),
		r.Date.Format("2006-01-02"),
		string(r.Channel),
		strconv.Itoa(int(r.Amount)),
		string(r.DeliveryMethod),
	}
}

// WriteStudy writes one file per confederate, the master table and both
// summaries into dir, creating it if needed. It returns the written paths.
func WriteStudy(dir string, study *schedule.Study) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	for _, sc := range study.Schedules {
		path := filepath.Join(dir, ConfederateFile(sc.Confederate.ID))
		if err := writeRows(path, sc.Rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	master := filepath.Join(dir, MasterFile)
	if err := writeRows(master, study.Master()); err != nil {
		return written, err
	}
	written = append(written, master)

	byConfederate := filepath.Join(dir, SummaryByConfederateFile)
	if err := writeCSV(byConfederate, SummaryByConfederate(study)); err != nil {
		return written, err
	}
	written = append(written, byConfederate)

	overall := filepath.Join(dir, SummaryStudyFile)
	if err := writeCSV(overall, SummaryStudy(study)); err != nil {
		return written, err
	}
	written = append(written, overall)

	return written, nil
}

// SummaryByConfederate builds the per-confederate balance table.
func SummaryByConfederate(study *schedule.Study) [][]string {
	header := []string{"confederate_id", "country"}
	for _, ch := range schedule.Channels {
		header = append(header, string(ch))
	}
	for _, a := range schedule.Amounts {
		header = append(header, "amount_"+strconv.Itoa(int(a)))
	}
	header = append(header, string(schedule.DeliveryInPerson), string(schedule.DeliveryOnline), "total")

	out := [][]string{header}
	for _, sc := range study.Schedules {
		out = append(out, countsRecord([]string{sc.Confederate.ID, sc.Confederate.Country}, study.PerConfederate[sc.Confederate.ID]))
	}
	return out
}

// SummaryStudy builds the study-wide balance table as dimension/value/count rows.
func SummaryStudy(study *schedule.Study) [][]string {
	c := study.Overall
	out := [][]string{{"dimension", "value", "count"}}
	for _, ch := range schedule.Channels {
		out = append(out, []string{"channel", string(ch), strconv.Itoa(c.ByChannel[ch])})
	}
	for _, a := range schedule.Amounts {
		out = append(out, []string{"amount", strconv.Itoa(int(a)), strconv.Itoa(c.ByAmount[a])})
	}
	for _, d := range []schedule.DeliveryMethod{schedule.DeliveryInPerson, schedule.DeliveryOnline} {
		out = append(out, []string{"delivery_method", string(d), strconv.Itoa(c.ByDelivery[d])})
	}
	out = append(out, []string{"total", "", strconv.Itoa(c.Total)})
	return out
}

func countsRecord(prefix []string, c schedule.Counts) []string {
	rec := append([]string{}, prefix...)
	for _, ch := range schedule.Channels {
		rec = append(rec, strconv.Itoa(c.ByChannel[ch]))
	}
	for _, a := range schedule.Amounts {
		rec = append(rec, strconv.Itoa(c.ByAmount[a]))
	}
	rec = append(rec,
		strconv.Itoa(c.ByDelivery[schedule.DeliveryInPerson]),
		strconv.Itoa(c.ByDelivery[schedule.DeliveryOnline]),
		strconv.Itoa(c.Total),
	)
	return rec
}

func writeRows(path string, rows []schedule.Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, ScheduleHeader)
	for _, r := range rows {
		records = append(records, ScheduleRecord(r))
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
