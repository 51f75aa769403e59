package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"field_study_ops/internal/domain/schedule"

	"gopkg.in/yaml.v3"
)

// StudyDesign is the study.yaml document driving the schedule generator.
type StudyDesign struct {
	Seed         int64                  `yaml:"seed"`
	StudyStart   string                 `yaml:"study_start"` // ISO date of the first Monday
	Confederates []schedule.Confederate `yaml:"confederates"`
}

// Start parses StudyStart as a UTC calendar date.
func (d *StudyDesign) Start() (time.Time, error) {
	t, err := time.Parse("2006-01-02", d.StudyStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid study_start %q: %w", d.StudyStart, err)
	}
	return t, nil
}

// LoadStudy reads and checks a study design file.
func LoadStudy(path string) (*StudyDesign, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study file %s: %w", path, err)
	}
	return ParseStudy(raw)
}

// ParseStudy decodes a study design document.
func ParseStudy(raw []byte) (*StudyDesign, error) {
	var d StudyDesign
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse study file: %w", err)
	}
	if len(d.Confederates) == 0 {
		return nil, errors.New("study file lists no confederates")
	}
	if d.StudyStart != "" {
		if _, err := d.Start(); err != nil {
			return nil, err
		}
	}
	return &d, nil
}
