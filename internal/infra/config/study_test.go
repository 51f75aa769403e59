package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"field_study_ops/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studyYAML = `
seed: 20260302
study_start: "2026-03-02"
confederates:
  - id: C01
    country: Kenya
  - id: C02
    country: Nigeria
`

func TestParseStudy(t *testing.T) {
	d, err := ParseStudy([]byte(studyYAML))
	require.NoError(t, err)
	assert.Equal(t, int64(20260302), d.Seed)
	assert.Equal(t, []schedule.Confederate{{ID: "C01", Country: "Kenya"}, {ID: "C02", Country: "Nigeria"}}, d.Confederates)

	start, err := d.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
}

func TestParseStudy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{name: "no confederates", raw: "seed: 1\n", wantMsg: "study file lists no confederates"},
		{name: "bad start", raw: "study_start: March\nconfederates: [{id: C01}]\n", wantMsg: "invalid study_start"},
		{name: "not yaml", raw: "confederates: [", wantMsg: "failed to parse study file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStudy([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestLoadStudy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(studyYAML), 0o644))

	d, err := LoadStudy(path)
	require.NoError(t, err)
	assert.Len(t, d.Confederates, 2)

	_, err = LoadStudy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read study file")
}
