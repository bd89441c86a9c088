package driven

import "github.com/keepsake-labs/recall-cli/internal/core/domain"

// SettingsStore persists application settings.
type SettingsStore interface {
	// Load returns the current settings, with defaults applied for
	// anything unset.
	Load() (domain.AppSettings, error)

	// Save persists the given settings.
	Save(settings domain.AppSettings) error
}
