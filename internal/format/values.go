package format

import (
	"encoding/json"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

const (
	NotSet       = "not set"
	EmptyString  = "empty string"
	Enabled      = "✓ enabled"
	Disabled     = "✗ disabled"
	NotAvailable = "not available"
)

// SettingValue renders an ordinary setting value. Booleans become
// enabled/disabled glyphs and objects are shown as compact JSON.
func SettingValue(v models.SettingValue) string {
	decoded, err := v.Decode()
	if err != nil {
		return string(v)
	}

	switch value := decoded.(type) {
	case nil:
		return NotSet
	case bool:
		if value {
			return Enabled
		}
		return Disabled
	case string:
		if value == "" {
			return EmptyString
		}
		return value
	default:
		out, err := json.Marshal(value)
		if err != nil {
			return string(v)
		}
		return string(out)
	}
}

// ReadOnlyValue renders an enterprise or Copilot setting value
func ReadOnlyValue(v *string) string {
	if v == nil {
		return NotAvailable
	}
	switch *v {
	case "enabled":
		return Enabled
	case "disabled":
		return Disabled
	case "not_set", "unconfigured", "":
		return NotSet
	default:
		return *v
	}
}
