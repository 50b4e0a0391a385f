package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

func approve(ctx context.Context, req ConfirmRequest) (bool, error) { return true, nil }

func TestSelection_Toggle(t *testing.T) {
	model, _ := loadedModel(t)
	sel := NewSelection(model, testLogger())

	tests := []struct {
		name     string
		key      string
		selected bool
	}{
		{name: "different and syncable", key: "has_wiki", selected: true},
		{name: "deprecated stays syncable", key: "has_projects", selected: true},
		{name: "readonly definition", key: "plan", selected: false},
		{name: "already equal", key: "two_factor", selected: false},
		{name: "structurally equal", key: "policy", selected: false},
		{name: "payload says cannot sync", key: "custom_flag", selected: false},
		{name: "unknown key", key: "missing", selected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.selected, sel.Toggle(tt.key))
			assert.Equal(t, tt.selected, sel.Has(tt.key))
		})
	}

	assert.Equal(t, []string{"has_projects", "has_wiki"}, sel.Selected())
	assert.False(t, sel.Toggle("has_wiki"))
	assert.Equal(t, []string{"has_projects"}, sel.Selected())
}

func TestSelection_SelectAllDifferentAndClear(t *testing.T) {
	model, _ := loadedModel(t)
	sel := NewSelection(model, testLogger())

	assert.Equal(t, 2, sel.SelectAllDifferent())
	assert.Equal(t, []string{"has_projects", "has_wiki"}, sel.Selected())

	sel.Clear()
	assert.Equal(t, 0, sel.Len())
}

func TestSelection_ClearedOnReload(t *testing.T) {
	model, source := loadedModel(t)
	sel := NewSelection(model, testLogger())
	sel.SelectAllDifferent()

	source.On("CompareSettings", mock.Anything, testSyncID).Return(comparisonResult(t), nil).Once()
	require.NoError(t, model.Reload(context.Background()))
	assert.Equal(t, 0, sel.Len())
}

func TestSelection_ApplyGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("empty selection", func(t *testing.T) {
		model, source := loadedModel(t)
		sel := NewSelection(model, testLogger())

		_, err := sel.Apply(ctx, ConfirmFunc(approve))
		assert.ErrorIs(t, err, ErrEmptySelection)
		source.AssertNotCalled(t, "ApplySettings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("declined confirmation", func(t *testing.T) {
		model, source := loadedModel(t)
		sel := NewSelection(model, testLogger())
		sel.Toggle("has_wiki")

		var asked ConfirmRequest
		_, err := sel.Apply(ctx, ConfirmFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
			asked = req
			return false, nil
		}))
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Equal(t, "acme", asked.Source.Org)
		assert.Equal(t, "acme-cloud", asked.Target.Org)
		assert.Equal(t, []string{"has_wiki"}, asked.Keys)
		assert.Contains(t, asked.Prompt(), "overwrite")
		assert.Equal(t, []string{"has_wiki"}, sel.Selected())
		source.AssertNotCalled(t, "ApplySettings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("confirmer error", func(t *testing.T) {
		model, _ := loadedModel(t)
		sel := NewSelection(model, testLogger())
		sel.Toggle("has_wiki")

		cause := errors.New("stdin closed")
		_, err := sel.Apply(ctx, ConfirmFunc(func(ctx context.Context, req ConfirmRequest) (bool, error) {
			return false, cause
		}))
		assert.ErrorIs(t, err, cause)
	})
}

func TestSelection_ApplySuccess(t *testing.T) {
	ctx := context.Background()
	model, source := loadedModel(t)
	sel := NewSelection(model, testLogger())
	sel.SelectAllDifferent()

	source.On("ApplySettings", mock.Anything, testSyncID, []string{"has_projects", "has_wiki"}).
		Return(&models.ApplyResult{Success: true, Applied: []string{"has_projects", "has_wiki"}}, nil).Once()
	source.On("CompareSettings", mock.Anything, testSyncID).Return(comparisonResult(t), nil).Once()

	outcome, err := sel.Apply(ctx, ConfirmFunc(approve))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Len(t, outcome.Applied, 2)
	assert.Equal(t, 0, sel.Len())

	notice, ok := sel.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeInfo, notice.Level)
	assert.Equal(t, "Applied 2 setting(s)", notice.Message)
	source.AssertExpectations(t)
}

func TestSelection_ApplyPartial(t *testing.T) {
	ctx := context.Background()
	model, source := loadedModel(t)
	sel := NewSelection(model, testLogger())
	sel.Toggle("has_wiki")
	sel.Toggle("has_projects")

	source.On("ApplySettings", mock.Anything, testSyncID, []string{"has_projects", "has_wiki"}).
		Return(&models.ApplyResult{
			Success: false,
			Applied: []string{"has_projects"},
			Failed:  []models.FailedSetting{{Key: "has_wiki", Error: "forbidden"}},
		}, nil).Once()
	source.On("CompareSettings", mock.Anything, testSyncID).Return(comparisonResult(t), nil).Once()

	outcome, err := sel.Apply(ctx, ConfirmFunc(approve))
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, outcome.Kind)
	assert.Equal(t, []string{"has_projects"}, outcome.Applied)
	assert.Equal(t, []string{"has_wiki"}, outcome.FailedKeys())
	assert.True(t, apperrors.IsPartial(outcome.Err))
	assert.NoError(t, outcome.ReloadErr)

	assert.Equal(t, []string{"has_wiki"}, sel.Selected(), "failed keys stay selected for retry")

	notice, ok := sel.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeWarning, notice.Level)
	assert.Contains(t, notice.Message, "has_wiki")
	source.AssertExpectations(t)
}

func TestSelection_ApplyPartialSurvivesReloadFailure(t *testing.T) {
	ctx := context.Background()
	model, source := loadedModel(t)
	sel := NewSelection(model, testLogger())
	sel.Toggle("has_wiki")

	source.On("ApplySettings", mock.Anything, testSyncID, []string{"has_wiki"}).
		Return(&models.ApplyResult{Failed: []models.FailedSetting{{Key: "has_wiki"}}}, nil).Once()
	source.On("CompareSettings", mock.Anything, testSyncID).
		Return(nil, apperrors.NewTransportError("request failed", errors.New("refused"))).Once()

	outcome, err := sel.Apply(ctx, ConfirmFunc(approve))
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, outcome.Kind)
	assert.Error(t, outcome.ReloadErr)
	assert.Nil(t, model.Result())
	assert.Equal(t, []string{"has_wiki"}, sel.Selected())
}

func TestSelection_ApplyFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("transport error", func(t *testing.T) {
		model, source := loadedModel(t)
		sel := NewSelection(model, testLogger())
		sel.SelectAllDifferent()

		source.On("ApplySettings", mock.Anything, testSyncID, mock.Anything).
			Return(nil, apperrors.NewHTTPStatusError(500, "500 Internal Server Error", "")).Once()

		outcome, err := sel.Apply(ctx, ConfirmFunc(approve))
		require.Error(t, err)
		assert.Equal(t, OutcomeFailure, outcome.Kind)
		assert.Equal(t, "500 Internal Server Error", outcome.Message)
		assert.Equal(t, []string{"has_projects", "has_wiki"}, sel.Selected())
		source.AssertNumberOfCalls(t, "CompareSettings", 1)

		notice, ok := sel.Notice()
		require.True(t, ok)
		assert.Equal(t, NoticeError, notice.Level)
	})

	t.Run("declared failure without per-key results", func(t *testing.T) {
		model, source := loadedModel(t)
		sel := NewSelection(model, testLogger())
		sel.Toggle("has_wiki")

		source.On("ApplySettings", mock.Anything, testSyncID, mock.Anything).
			Return(&models.ApplyResult{Success: false, Error: "target locked"}, nil).Once()

		outcome, err := sel.Apply(ctx, ConfirmFunc(approve))
		require.Error(t, err)
		assert.True(t, apperrors.IsApplication(err))
		assert.Equal(t, OutcomeFailure, outcome.Kind)
		assert.Equal(t, "target locked", outcome.Message)
		assert.Equal(t, []string{"has_wiki"}, sel.Selected())
	})
}

func TestInterpret(t *testing.T) {
	outcome := interpret(&models.ApplyResult{
		Success: false,
		Applied: []string{"a"},
		Failed:  []models.FailedSetting{{Key: "b"}},
	})
	assert.Equal(t, OutcomePartial, outcome.Kind)
	assert.Len(t, outcome.Applied, 1)
	assert.Equal(t, []string{"b"}, outcome.FailedKeys())
	assert.Equal(t, "Applied 1 setting(s), 1 failed: b", outcome.Message)
}
