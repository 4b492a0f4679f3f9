package vault

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// DevSettings holds non-security, developer-convenience overrides that are
// only ever consulted in development mode: the protected production config
// (vault.go's KEY=value file) is the sole source of truth for anything
// security-critical, so these never gate allow/warn/block behavior.
type DevSettings struct {
	// Verbose raises the session logger from logrus's default info level to
	// debug level.
	Verbose bool `json:"verbose"`
}

// devConfigPathEnvVar overrides the default dev-settings file location.
const devConfigPathEnvVar = "VIGILSH_DEV_CONFIG"

func defaultDevConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "vigilsh", "dev.jsonc")
}

// DevSettings loads and caches the development-only settings file, if any.
// In production mode it always returns the zero value without touching the
// filesystem. A missing or malformed file is never fatal — these are
// convenience overrides, not policy.
func (v *Vault) DevSettings() DevSettings {
	if v.mode == Production {
		return DevSettings{}
	}

	v.devOnce.Do(func() {
		path := v.env[devConfigPathEnvVar]
		if path == "" {
			path = defaultDevConfigPath()
		}

		if path == "" {
			return
		}

		loaded, err := loadDevSettings(path)
		if err != nil {
			return
		}

		v.devSettings = loaded
	})

	return v.devSettings
}

// loadDevSettings reads a JSONC (JSON-with-comments) settings file via
// hujson, the same comment-tolerant format the teacher uses for its own
// layered project/user config files.
func loadDevSettings(path string) (DevSettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DevSettings{}, err
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return DevSettings{}, err
	}

	var settings DevSettings
	if err := json.Unmarshal(standardized, &settings); err != nil {
		return DevSettings{}, err
	}

	return settings, nil
}
