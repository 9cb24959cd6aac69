package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the file-configurable tunables. The file is optional; a
// missing file yields the defaults.
type Settings struct {
	RetentionDays    int `yaml:"retention_days"`
	CacheMaxAgeHours int `yaml:"cache_max_age_hours"`
}

func DefaultSettings() *Settings {
	return &Settings{
		RetentionDays:    7,
		CacheMaxAgeHours: 24,
	}
}

func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings file %s: %w", path, err)
	}
	if settings.RetentionDays <= 0 {
		settings.RetentionDays = DefaultSettings().RetentionDays
	}
	if settings.CacheMaxAgeHours <= 0 {
		settings.CacheMaxAgeHours = DefaultSettings().CacheMaxAgeHours
	}
	return settings, nil
}

func (s *Settings) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

func (s *Settings) CacheMaxAge() time.Duration {
	return time.Duration(s.CacheMaxAgeHours) * time.Hour
}
