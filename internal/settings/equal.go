package settings

import (
	"bytes"
	"encoding/json"

	"github.com/google/go-cmp/cmp"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// Equal compares two setting values by type and content. Absent and null
// are the same value; values of different JSON types are never equal;
// objects and arrays compare structurally.
func Equal(a, b models.SettingValue) bool {
	da, errA := a.Decode()
	db, errB := b.Decode()
	if errA != nil || errB != nil {
		return bytes.Equal(compact(a), compact(b))
	}
	return cmp.Equal(da, db)
}

func compact(v models.SettingValue) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return bytes.TrimSpace(v)
	}
	return buf.Bytes()
}

// ReadOnlyEqual compares enterprise and Copilot values. Two unavailable
// values are equal; not_set and unconfigured are the same state.
func ReadOnlyEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return normalizeReadOnly(*a) == normalizeReadOnly(*b)
}

func normalizeReadOnly(v string) string {
	switch v {
	case "not_set", "unconfigured", "":
		return "not_set"
	default:
		return v
	}
}
