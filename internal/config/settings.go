// Package config provides Pixen's generation settings and app-level
// configuration. App config is loaded from the user-level file and then the
// project-level file, later sources overriding earlier ones.
package config

import "encoding/json"

// Generation setting defaults. Sessions loaded from disk with missing or
// partial settings are hydrated with these before use.
const (
	DefaultTemperature = 1.0
	StyleNone          = "None"
	DefaultAspectRatio = "1:1"
)

// GenSettings are the generation parameters attached to a session. A retry
// may override them for a single call without mutating the session's copy.
type GenSettings struct {
	Temperature float64 `json:"temperature"`
	Style       string  `json:"style"`
	AspectRatio string  `json:"aspectRatio"`
	IsFullBody  bool    `json:"isFullBody"`
}

// DefaultGenSettings returns the settings applied to new sessions.
func DefaultGenSettings() GenSettings {
	return GenSettings{
		Temperature: DefaultTemperature,
		Style:       StyleNone,
		AspectRatio: DefaultAspectRatio,
		IsFullBody:  false,
	}
}

// UnmarshalJSON overlays stored fields onto the defaults, so a partial
// settings object is merged field-by-field rather than wholesale-replaced.
// An explicitly stored zero survives; an absent field stays default.
func (s *GenSettings) UnmarshalJSON(data []byte) error {
	type plain GenSettings
	tmp := plain(DefaultGenSettings())
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*s = GenSettings(tmp)
	return nil
}

// Hydrated fills defaults for settings that were never stored at all
// (a wholly absent settings object unmarshals to the zero value).
func (s GenSettings) Hydrated() GenSettings {
	if s == (GenSettings{}) {
		return DefaultGenSettings()
	}
	if s.Style == "" {
		s.Style = StyleNone
	}
	if s.AspectRatio == "" {
		s.AspectRatio = DefaultAspectRatio
	}
	return s
}
