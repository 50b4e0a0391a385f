package settings

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/format"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// OtherGroupID holds compared settings that have no definition
const OtherGroupID = "other"

// Source performs the settings HTTP calls
type Source interface {
	ListSyncs(ctx context.Context) ([]models.SyncConfigSummary, error)
	SettingCategories(ctx context.Context) ([]models.Category, error)
	CompareSettings(ctx context.Context, syncID models.SyncID) (*models.SyncConfigComparisonResult, error)
	ApplySettings(ctx context.Context, syncID models.SyncID, keys []string) (*models.ApplyResult, error)
}

type definition struct {
	models.SettingDefinition
	category int
}

// Row is one display-ready standard setting
type Row struct {
	Key         string              `json:"key"`
	Label       string              `json:"label"`
	Description string              `json:"description,omitempty"`
	Deprecated  bool                `json:"deprecated"`
	Source      string              `json:"source"`
	Target      string              `json:"target"`
	SourceValue models.SettingValue `json:"sourceValue"`
	TargetValue models.SettingValue `json:"targetValue"`
	IsEqual     bool                `json:"isEqual"`
	CanSync     bool                `json:"canSync"`
}

// Group is one category of rows in definition order
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rows        []Row  `json:"rows"`
}

// ReadOnlyRow is one enterprise or Copilot setting. These are never syncable.
type ReadOnlyRow struct {
	Key         string `json:"key,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	IsEqual     bool   `json:"isEqual"`
}

// Counts summarizes the standard group
type Counts struct {
	Total             int `json:"total"`
	Equal             int `json:"equal"`
	Different         int `json:"different"`
	SyncableDifferent int `json:"syncableDifferent"`
}

// Model holds the comparison of one sync configuration
type Model struct {
	source Source
	logger *logrus.Logger

	mu          sync.RWMutex
	categories  []models.Category
	definitions map[string]definition
	syncID      models.SyncID
	result      *models.SyncConfigComparisonResult
	loadErr     error
	listeners   []func()
}

// NewModel creates an empty comparison model
func NewModel(source Source, logger *logrus.Logger) *Model {
	return &Model{
		source: source,
		logger: logger,
	}
}

// Subscribe registers fn to be called after every load, successful or not
func (m *Model) Subscribe(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Model) notify() {
	m.mu.RLock()
	listeners := append([]func(){}, m.listeners...)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// SyncConfigs lists sync configurations, active ones first
func (m *Model) SyncConfigs(ctx context.Context) ([]models.SyncConfigSummary, error) {
	syncs, err := m.source.ListSyncs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync configurations: %w", err)
	}
	sort.SliceStable(syncs, func(i, j int) bool {
		return !syncs[i].Archived && syncs[j].Archived
	})
	return syncs, nil
}

func (m *Model) ensureCategories(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.definitions != nil
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	categories, err := m.source.SettingCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load setting categories: %w", err)
	}

	definitions := make(map[string]definition)
	for i, cat := range categories {
		for _, def := range cat.Settings {
			definitions[def.Key] = definition{SettingDefinition: def, category: i}
		}
	}

	m.mu.Lock()
	m.categories = categories
	m.definitions = definitions
	m.mu.Unlock()
	return nil
}

// Load fetches a fresh comparison for syncID. A hard failure clears the
// held comparison; warnings from partial collection do not.
func (m *Model) Load(ctx context.Context, syncID models.SyncID) error {
	logger := m.logger.WithField("sync_id", syncID)

	err := m.ensureCategories(ctx)
	var result *models.SyncConfigComparisonResult
	if err == nil {
		result, err = m.source.CompareSettings(ctx, syncID)
	}

	m.mu.Lock()
	m.syncID = syncID
	if err != nil {
		m.result = nil
		m.loadErr = err
	} else {
		m.result = result
		m.loadErr = nil
	}
	m.mu.Unlock()

	if err != nil {
		logger.WithError(err).Error("Failed to load settings comparison")
	} else if len(result.Warnings) > 0 {
		logger.WithField("warnings", len(result.Warnings)).Warn("Settings comparison loaded with warnings")
	} else {
		logger.WithField("settings", len(result.Settings)).Debug("Settings comparison loaded")
	}

	m.notify()
	return err
}

// Reload fetches the comparison of the current sync configuration again
func (m *Model) Reload(ctx context.Context) error {
	m.mu.RLock()
	syncID := m.syncID
	m.mu.RUnlock()
	if syncID == "" {
		return apperrors.NewValidationError("no sync configuration loaded", nil)
	}
	return m.Load(ctx, syncID)
}

// Apply writes keys of the current sync configuration to the target
func (m *Model) Apply(ctx context.Context, keys []string) (*models.ApplyResult, error) {
	m.mu.RLock()
	syncID := m.syncID
	m.mu.RUnlock()
	if syncID == "" {
		return nil, apperrors.NewValidationError("no sync configuration loaded", nil)
	}
	return m.source.ApplySettings(ctx, syncID, keys)
}

// SyncID returns the sync configuration of the last load
func (m *Model) SyncID() models.SyncID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.syncID
}

// Result returns the held comparison, or nil after a hard failure
func (m *Model) Result() *models.SyncConfigComparisonResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

// LoadError returns the error of the last load
func (m *Model) LoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadErr
}

// Warnings returns the non-fatal collection failures of the last load
func (m *Model) Warnings() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil
	}
	return append([]string(nil), m.result.Warnings...)
}

// Comparison returns the effective comparison of key, with equality
// recomputed by type and syncability narrowed by the key's definition
func (m *Model) Comparison(key string) (models.SettingComparison, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return models.SettingComparison{}, false
	}
	for _, sc := range m.result.Settings {
		if sc.Key == key {
			return m.effective(sc), true
		}
	}
	return models.SettingComparison{}, false
}

func (m *Model) effective(sc models.SettingComparison) models.SettingComparison {
	sc.IsEqual = Equal(sc.SourceValue, sc.TargetValue)
	if def, ok := m.definitions[sc.Key]; ok && def.Type == models.SettingReadOnly {
		sc.CanSync = false
	}
	return sc
}

// Eligible reports whether key may be selected for apply
func (m *Model) Eligible(key string) bool {
	sc, ok := m.Comparison(key)
	return ok && sc.CanSync && !sc.IsEqual
}

// DifferentKeys returns every standard key that differs and can be synced
func (m *Model) DifferentKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil
	}
	var keys []string
	for _, sc := range m.result.Settings {
		eff := m.effective(sc)
		if eff.CanSync && !eff.IsEqual {
			keys = append(keys, sc.Key)
		}
	}
	return keys
}

// Rows groups the standard settings by category, in category and
// definition order. Settings without a definition end in an "Other" group.
func (m *Model) Rows() []Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil
	}

	byKey := make(map[string]models.SettingComparison, len(m.result.Settings))
	for _, sc := range m.result.Settings {
		byKey[sc.Key] = sc
	}

	groups := make([]Group, 0, len(m.categories)+1)
	for _, cat := range m.categories {
		group := Group{ID: cat.ID, Name: cat.Name, Description: cat.Description}
		for _, def := range cat.Settings {
			sc, ok := byKey[def.Key]
			if !ok {
				continue
			}
			group.Rows = append(group.Rows, m.row(sc, def))
		}
		if len(group.Rows) > 0 {
			groups = append(groups, group)
		}
	}

	other := Group{ID: OtherGroupID, Name: "Other"}
	for _, sc := range m.result.Settings {
		if _, ok := m.definitions[sc.Key]; ok {
			continue
		}
		other.Rows = append(other.Rows, m.row(sc, models.SettingDefinition{Key: sc.Key, Label: sc.Key}))
	}
	if len(other.Rows) > 0 {
		groups = append(groups, other)
	}
	return groups
}

func (m *Model) row(sc models.SettingComparison, def models.SettingDefinition) Row {
	eff := m.effective(sc)
	label := def.Label
	if label == "" {
		label = sc.Key
	}
	return Row{
		Key:         sc.Key,
		Label:       label,
		Description: def.Description,
		Deprecated:  def.Deprecated,
		Source:      format.SettingValue(sc.SourceValue),
		Target:      format.SettingValue(sc.TargetValue),
		SourceValue: sc.SourceValue,
		TargetValue: sc.TargetValue,
		IsEqual:     eff.IsEqual,
		CanSync:     eff.CanSync,
	}
}

// EnterpriseRows returns the enterprise comparison group
func (m *Model) EnterpriseRows() []ReadOnlyRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil
	}
	return readOnlyRows(m.result.EnterpriseSettingsComparison)
}

// CopilotRows returns the Copilot comparison group
func (m *Model) CopilotRows() []ReadOnlyRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil
	}
	return readOnlyRows(m.result.CopilotSettingsComparison)
}

func readOnlyRows(items []models.ReadOnlyComparison) []ReadOnlyRow {
	rows := make([]ReadOnlyRow, 0, len(items))
	for _, item := range items {
		label := item.Label
		if label == "" {
			label = item.Key
		}
		rows = append(rows, ReadOnlyRow{
			Key:         item.Key,
			Label:       label,
			Description: item.Description,
			Source:      format.ReadOnlyValue(item.SourceValue),
			Target:      format.ReadOnlyValue(item.TargetValue),
			IsEqual:     ReadOnlyEqual(item.SourceValue, item.TargetValue),
		})
	}
	return rows
}

// Counts summarizes the standard group of the held comparison
func (m *Model) Counts() Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counts Counts
	if m.result == nil {
		return counts
	}
	for _, sc := range m.result.Settings {
		eff := m.effective(sc)
		counts.Total++
		if eff.IsEqual {
			counts.Equal++
			continue
		}
		counts.Different++
		if eff.CanSync {
			counts.SyncableDifferent++
		}
	}
	return counts
}

// Report is the complete display-ready comparison
type Report struct {
	SyncID     models.SyncID          `json:"syncId"`
	Source     models.Endpoint        `json:"source"`
	Target     models.Endpoint        `json:"target"`
	Groups     []Group                `json:"groups"`
	Enterprise []ReadOnlyRow          `json:"enterprise"`
	Copilot    []ReadOnlyRow          `json:"copilot"`
	Counts     Counts                 `json:"counts"`
	Warnings   []string               `json:"warnings,omitempty"`
	Info       *models.ComparisonInfo `json:"info,omitempty"`
}

// Report assembles every group of the held comparison. It reports false
// when no comparison is loaded.
func (m *Model) Report() (Report, bool) {
	result := m.Result()
	if result == nil {
		return Report{}, false
	}
	return Report{
		SyncID:     result.SyncID,
		Source:     result.Source,
		Target:     result.Target,
		Groups:     m.Rows(),
		Enterprise: m.EnterpriseRows(),
		Copilot:    m.CopilotRows(),
		Counts:     m.Counts(),
		Warnings:   m.Warnings(),
		Info:       result.Info,
	}, true
}
