package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"zenstream/internal/model"
)

const SettingsKey = "pixel_pomo_settings_v2"

type SettingsRepository struct {
	records *RecordRepository
}

func NewSettingsRepository(records *RecordRepository) *SettingsRepository {
	return &SettingsRepository{records: records}
}

// Load returns the stored settings. Missing records yield the defaults with
// no error; unparsable ones yield the defaults together with ErrCorruptRecord.
func (r *SettingsRepository) Load(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	raw, _, err := r.records.Get(ctx, SettingsKey)
	if errors.Is(err, ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	var stored model.Settings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return settings, fmt.Errorf("%w: parse settings: %v", ErrCorruptRecord, err)
	}

	applyStoredSettings(&settings, stored)
	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings model.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return r.records.Put(ctx, SettingsKey, string(payload), 0)
}

// applyStoredSettings copies only usable values so one bad field does not
// discard the rest of the record.
func applyStoredSettings(settings *model.Settings, stored model.Settings) {
	if stored.FocusDuration > 0 {
		settings.FocusDuration = stored.FocusDuration
	}
	if stored.BreakDuration > 0 {
		settings.BreakDuration = stored.BreakDuration
	}
	if stored.TotalSessions > 0 {
		settings.TotalSessions = stored.TotalSessions
	}
	if stored.FocusBgColor != "" {
		settings.FocusBgColor = stored.FocusBgColor
	}
	if stored.BreakBgColor != "" {
		settings.BreakBgColor = stored.BreakBgColor
	}
	if model.IsFontOption(stored.FontFamily) {
		settings.FontFamily = stored.FontFamily
	}
}
