package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"field_study_ops/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStudy() *schedule.Study {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mk := func(c schedule.Confederate, order int, ch schedule.Channel, amt schedule.Amount, dm schedule.DeliveryMethod) schedule.Row {
		return schedule.Row{
			ConfederateID:    c.ID,
			Country:          c.Country,
			TransactionOrder: order,
			Block:            1,
			Phase:            1,
			AssignedWeek:     1,
			Date:             day.AddDate(0, 0, order-1),
			Channel:          ch,
			Amount:           amt,
			DeliveryMethod:   dm,
		}
	}
	a := schedule.Confederate{ID: "K/01", Country: "Kenya"}
	b := schedule.Confederate{ID: "N02", Country: "Nigeria"}
	study := &schedule.Study{
		Seed: 1,
		Schedules: []schedule.Schedule{
			{Confederate: a, Rows: []schedule.Row{
				mk(a, 1, schedule.ChannelBank, schedule.AmountLow, schedule.DeliveryInPerson),
				mk(a, 2, schedule.ChannelCrypto, schedule.AmountHigh, schedule.DeliveryOnline),
			}},
			{Confederate: b, Rows: []schedule.Row{
				mk(b, 1, schedule.ChannelMTS, schedule.AmountHigh, schedule.DeliveryOnline),
			}},
		},
		PerConfederate: map[string]schedule.Counts{},
		Overall:        schedule.NewCounts(),
	}
	for _, sc := range study.Schedules {
		c := schedule.NewCounts()
		for _, r := range sc.Rows {
			c.Add(r)
			study.Overall.Add(r)
		}
		study.PerConfederate[sc.Confederate.ID] = c
	}
	return study
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestConfederateFile(t *testing.T) {
	tests := map[string]string{
		"C01":        "schedule_C01.csv",
		"K/01":       "schedule_K-01.csv",
		"  Ana Mar ": "schedule_Ana-Mar.csv",
		"///":        "schedule_unnamed.csv",
	}
	for id, want := range tests {
		assert.Equal(t, want, ConfederateFile(id), id)
	}
}

func TestWriteStudy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteStudy(dir, sampleStudy())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "schedule_K-01.csv"),
		filepath.Join(dir, "schedule_N02.csv"),
		filepath.Join(dir, MasterFile),
		filepath.Join(dir, SummaryByConfederateFile),
		filepath.Join(dir, SummaryStudyFile),
	}, paths)

	master := readCSV(t, filepath.Join(dir, MasterFile))
	require.Len(t, master, 4)
	assert.Equal(t, ScheduleHeader, master[0])
	assert.Equal(t, []string{"K/01", "Kenya", "1", "1", "1", "1", "2026-03-02", "Bank", "100", "In-person"}, master[1])
	assert.Equal(t, "N02", master[3][0])

	perConfederate := readCSV(t, filepath.Join(dir, SummaryByConfederateFile))
	assert.Equal(t, []string{
		"confederate_id", "country", "Bank", "MTS", "Fintech", "Crypto",
		"amount_100", "amount_250", "In-person", "Online", "total",
	}, perConfederate[0])
	assert.Equal(t, []string{"K/01", "Kenya", "1", "0", "0", "1", "1", "1", "1", "1", "2"}, perConfederate[1])

	overall := readCSV(t, filepath.Join(dir, SummaryStudyFile))
	assert.Contains(t, overall, []string{"channel", "MTS", "1"})
	assert.Contains(t, overall, []string{"amount", "250", "2"})
	assert.Contains(t, overall, []string{"delivery_method", "Online", "2"})
	assert.Equal(t, []string{"total", "", "3"}, overall[len(overall)-1])
}

func TestWriteStudy_Deterministic(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	_, err := WriteStudy(first, sampleStudy())
	require.NoError(t, err)
	_, err = WriteStudy(second, sampleStudy())
	require.NoError(t, err)

	for _, name := range []string{MasterFile, SummaryByConfederateFile, SummaryStudyFile} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}
