package models

import (
	"bytes"
	"encoding/json"
)

// SettingType marks whether a setting may be written to the target
type SettingType string

const (
	SettingNormal   SettingType = "normal"
	SettingReadOnly SettingType = "readonly"
)

// SettingDefinition is the static description of one setting key
type SettingDefinition struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Type        SettingType `json:"type"`
	Deprecated  bool        `json:"deprecated,omitempty"`
}

// Category groups setting definitions in display order
type Category struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Settings    []SettingDefinition `json:"settings"`
}

// SettingValue is a raw JSON setting value. A nil value means the key was
// absent, the literal null means it is unset.
type SettingValue []byte

// UnmarshalJSON keeps a copy of the raw value
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

// MarshalJSON emits the raw value, or null when absent
func (v SettingValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// IsNull reports whether the value is absent or null
func (v SettingValue) IsNull() bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode returns the value as a generic Go value; nil for absent or null
func (v SettingValue) Decode() (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	var out interface{}
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SettingComparison compares one ordinary setting between source and target
type SettingComparison struct {
	Key         string       `json:"key"`
	SourceValue SettingValue `json:"sourceValue,omitempty"`
	TargetValue SettingValue `json:"targetValue,omitempty"`
	IsEqual     bool         `json:"isEqual"`
	CanSync     bool         `json:"canSync"`
}

// ReadOnlyComparison compares one enterprise or Copilot setting. Values use
// the vocabulary enabled, disabled, not_set, unconfigured, or null when the
// value could not be collected.
type ReadOnlyComparison struct {
	Key         string  `json:"key,omitempty"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	SourceValue *string `json:"sourceValue"`
	TargetValue *string `json:"targetValue"`
	IsEqual     bool    `json:"isEqual"`
}

// Endpoint identifies one side of a sync configuration
type Endpoint struct {
	Org        string `json:"org"`
	Host       string `json:"host,omitempty"`
	Enterprise string `json:"enterprise,omitempty"`
}

// SideCounts holds informational counts collected for one side
type SideCounts struct {
	Webhooks           *int    `json:"webhooks,omitempty"`
	Teams              *int    `json:"teams,omitempty"`
	ActionsPermissions *string `json:"actionsPermissions,omitempty"`
	CopilotSeats       *int    `json:"copilotSeats,omitempty"`
}

// ComparisonInfo carries per-side informational counts
type ComparisonInfo struct {
	Source SideCounts `json:"source"`
	Target SideCounts `json:"target"`
}

// SyncConfigComparisonResult is the full comparison of one sync configuration
type SyncConfigComparisonResult struct {
	SyncID                       SyncID               `json:"syncId"`
	Source                       Endpoint             `json:"source"`
	Target                       Endpoint             `json:"target"`
	Settings                     []SettingComparison  `json:"settings"`
	EnterpriseSettingsComparison []ReadOnlyComparison `json:"enterpriseSettingsComparison,omitempty"`
	CopilotSettingsComparison    []ReadOnlyComparison `json:"copilotSettingsComparison,omitempty"`
	Warnings                     []string             `json:"warnings,omitempty"`
	Info                         *ComparisonInfo      `json:"info,omitempty"`
}

// OrgRef names an organization
type OrgRef struct {
	Org string `json:"org"`
}

// SyncConfigSummary is one entry of the sync configuration list
type SyncConfigSummary struct {
	ID       SyncID `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
	Source   OrgRef `json:"source"`
	Target   OrgRef `json:"target"`
}

// FailedSetting is one key that could not be written to the target
type FailedSetting struct {
	Key   string `json:"key"`
	Error string `json:"error,omitempty"`
}

// ApplyResult is the reply of the settings apply endpoint
type ApplyResult struct {
	Success bool            `json:"success"`
	Applied []string        `json:"applied"`
	Failed  []FailedSetting `json:"failed"`
	Error   string          `json:"error,omitempty"`
}

// FailedKeys returns the keys of every failed setting
func (r ApplyResult) FailedKeys() []string {
	keys := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		keys = append(keys, f.Key)
	}
	return keys
}
