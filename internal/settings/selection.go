package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

var (
	// ErrEmptySelection is returned by Apply when nothing is selected
	ErrEmptySelection = apperrors.NewValidationError("no settings selected", nil)
	// ErrDeclined is returned by Apply when the confirmation is refused
	ErrDeclined = apperrors.NewValidationError("apply cancelled", nil)
)

// ConfirmRequest describes the overwrite about to happen
type ConfirmRequest struct {
	Source models.Endpoint
	Target models.Endpoint
	Keys   []string
}

// Prompt renders the request as a question
func (r ConfirmRequest) Prompt() string {
	return fmt.Sprintf("Apply %d setting(s) from %s to %s? This will overwrite the target values.",
		len(r.Keys), r.Source.Org, r.Target.Org)
}

// Confirmer gates every apply before the network call
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, req ConfirmRequest) (bool, error)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	return f(ctx, req)
}

// OutcomeKind classifies an apply attempt
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomePartial OutcomeKind = "partial"
	OutcomeFailure OutcomeKind = "failure"
)

// NoticeLevel is the severity of a notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the transient message shown after an apply
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// ApplyOutcome is the interpreted result of an apply attempt
type ApplyOutcome struct {
	Kind    OutcomeKind            `json:"kind"`
	Applied []string               `json:"applied"`
	Failed  []models.FailedSetting `json:"failed"`
	Message string                 `json:"message"`
	// Err is a PartialError for partial outcomes and the cause of failures
	Err error `json:"-"`
	// ReloadErr is set when the comparison could not be refreshed afterwards
	ReloadErr error `json:"-"`
}

// FailedKeys returns the keys that were not written
func (o ApplyOutcome) FailedKeys() []string {
	keys := make([]string, 0, len(o.Failed))
	for _, f := range o.Failed {
		keys = append(keys, f.Key)
	}
	return keys
}

// Notice returns the message to show for the outcome
func (o ApplyOutcome) Notice() Notice {
	switch o.Kind {
	case OutcomeSuccess:
		return Notice{Level: NoticeInfo, Message: o.Message}
	case OutcomePartial:
		return Notice{Level: NoticeWarning, Message: o.Message}
	default:
		return Notice{Level: NoticeError, Message: o.Message}
	}
}

// Selection is the set of setting keys chosen for apply. It is cleared
// whenever the comparison model reloads.
type Selection struct {
	model  *Model
	logger *logrus.Logger

	mu     sync.RWMutex
	keys   map[string]struct{}
	notice *Notice
}

// NewSelection creates an empty selection bound to model
func NewSelection(model *Model, logger *logrus.Logger) *Selection {
	s := &Selection{
		model:  model,
		logger: logger,
		keys:   make(map[string]struct{}),
	}
	model.Subscribe(s.Clear)
	return s
}

// Toggle removes a selected key, or adds it when its comparison can be
// synced and differs. Ineligible keys are ignored. It reports whether the
// key is selected afterwards.
func (s *Selection) Toggle(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
		return false
	}
	if !s.model.Eligible(key) {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// SelectAllDifferent selects every standard key that differs and can be
// synced and returns the selection size
func (s *Selection) SelectAllDifferent() int {
	keys := s.model.DifferentKeys()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.keys[key] = struct{}{}
	}
	return len(s.keys)
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.mu.Lock()
	s.keys = make(map[string]struct{})
	s.mu.Unlock()
}

// Has reports whether key is selected
func (s *Selection) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of selected keys
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Selected returns the selected keys in sorted order
func (s *Selection) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Notice returns the notice of the last apply, if any
func (s *Selection) Notice() (Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

func (s *Selection) setNotice(n Notice) {
	s.mu.Lock()
	s.notice = &n
	s.mu.Unlock()
}

// Apply writes the selected settings to the target after confirm agrees.
// A full success clears the selection; a partial success leaves the failed
// keys selected; a hard failure leaves the selection unchanged. After a
// success or partial success the comparison is reloaded.
func (s *Selection) Apply(ctx context.Context, confirm Confirmer) (*ApplyOutcome, error) {
	keys := s.Selected()
	if len(keys) == 0 {
		return nil, ErrEmptySelection
	}

	req := ConfirmRequest{Keys: keys}
	if result := s.model.Result(); result != nil {
		req.Source = result.Source
		req.Target = result.Target
	}
	ok, err := confirm.Confirm(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm apply: %w", err)
	}
	if !ok {
		return nil, ErrDeclined
	}

	logger := s.logger.WithFields(logrus.Fields{
		"sync_id":  s.model.SyncID(),
		"settings": len(keys),
	})

	result, err := s.model.Apply(ctx, keys)
	if err != nil {
		outcome := &ApplyOutcome{
			Kind:    OutcomeFailure,
			Message: apperrors.UserMessage(err),
			Err:     err,
		}
		s.setNotice(outcome.Notice())
		logger.WithError(err).Error("Failed to apply settings")
		return outcome, err
	}

	outcome := interpret(result)
	if outcome.Kind == OutcomeFailure {
		s.setNotice(outcome.Notice())
		logger.WithField("error", outcome.Message).Error("Settings apply was rejected")
		return outcome, outcome.Err
	}

	outcome.ReloadErr = s.model.Reload(ctx)
	if outcome.ReloadErr != nil {
		logger.WithError(outcome.ReloadErr).Warn("Failed to reload settings comparison after apply")
	}
	s.reselect(outcome.FailedKeys(), outcome.ReloadErr == nil)
	s.setNotice(outcome.Notice())

	logger.WithFields(logrus.Fields{
		"outcome": outcome.Kind,
		"applied": len(outcome.Applied),
		"failed":  len(outcome.Failed),
	}).Info("Applied settings")
	return outcome, nil
}

// reselect restores failed keys after the reload cleared the selection.
// Keys that became ineligible in the fresh comparison are dropped.
func (s *Selection) reselect(keys []string, validate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if validate && !s.model.Eligible(key) {
			continue
		}
		s.keys[key] = struct{}{}
	}
}

func interpret(result *models.ApplyResult) *ApplyOutcome {
	outcome := &ApplyOutcome{
		Applied: append([]string{}, result.Applied...),
		Failed:  append([]models.FailedSetting{}, result.Failed...),
	}

	switch {
	case len(result.Failed) > 0:
		outcome.Kind = OutcomePartial
		outcome.Err = apperrors.NewPartialError(outcome.Applied, outcome.FailedKeys())
		outcome.Message = fmt.Sprintf("Applied %d setting(s), %d failed: %s",
			len(outcome.Applied), len(outcome.Failed), strings.Join(outcome.FailedKeys(), ", "))
	case result.Success:
		outcome.Kind = OutcomeSuccess
		outcome.Message = fmt.Sprintf("Applied %d setting(s)", len(outcome.Applied))
	default:
		err := apperrors.NewApplicationError(result.Error)
		outcome.Kind = OutcomeFailure
		outcome.Err = err
		outcome.Message = err.Message
	}
	return outcome
}
