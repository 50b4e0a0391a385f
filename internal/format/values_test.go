package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSettingValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "absent", raw: "", expected: "not set"},
		{name: "null", raw: "null", expected: "not set"},
		{name: "true", raw: "true", expected: "✓ enabled"},
		{name: "false", raw: "false", expected: "✗ disabled"},
		{name: "empty string", raw: `""`, expected: "empty string"},
		{name: "string", raw: `"read"`, expected: "read"},
		{name: "number", raw: "42", expected: "42"},
		{name: "object", raw: `{ "enabled": true, "level": "all" }`, expected: `{"enabled":true,"level":"all"}`},
		{name: "array", raw: `["a", "b"]`, expected: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v models.SettingValue
			if tt.raw != "" {
				v = models.SettingValue(tt.raw)
			}
			assert.Equal(t, tt.expected, SettingValue(v))
		})
	}
}

func TestReadOnlyValue(t *testing.T) {
	assert.Equal(t, "not available", ReadOnlyValue(nil))
	assert.Equal(t, "✓ enabled", ReadOnlyValue(strPtr("enabled")))
	assert.Equal(t, "✗ disabled", ReadOnlyValue(strPtr("disabled")))
	assert.Equal(t, "not set", ReadOnlyValue(strPtr("not_set")))
	assert.Equal(t, "not set", ReadOnlyValue(strPtr("unconfigured")))
	assert.Equal(t, "selected_orgs", ReadOnlyValue(strPtr("selected_orgs")))
}
