// internal/infra/database/reminder_record_repository.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"field_study_ops/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// DefaultRecordsKey is the property holding the date-to-event mapping.
const DefaultRecordsKey = "DAILY_REMINDER_EVENTS"

// PropertyRecordStore stores reminder records as one JSON-encoded property.
type PropertyRecordStore struct {
	props  reminder.PropertyStore
	key    string
	logger *logrus.Entry
}

func NewPropertyRecordStore(props reminder.PropertyStore, key string, logger *logrus.Entry) *PropertyRecordStore {
	if key == "" {
		key = DefaultRecordsKey
	}
	return &PropertyRecordStore{props: props, key: key, logger: logger}
}

// Load returns the stored records. A missing or corrupt property yields an
// empty mapping.
func (s *PropertyRecordStore) Load(ctx context.Context) (reminder.Records, error) {
	raw, ok, err := s.props.GetProperty(ctx, s.key)
	if err != nil {
		return nil, err
	}
	records := reminder.Records{}
	if !ok || raw == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.WithError(err).WithField("property", s.key).Warn("Reminder records are not valid JSON, starting from an empty mapping")
		return reminder.Records{}, nil
	}
	if records == nil {
		records = reminder.Records{}
	}
	return records, nil
}

func (s *PropertyRecordStore) Save(ctx context.Context, records reminder.Records) error {
	if records == nil {
		records = reminder.Records{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("error encoding reminder records: %w", err)
	}
	return s.props.SetProperty(ctx, s.key, string(raw))
}
