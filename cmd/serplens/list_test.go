package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/serplens/serplens"
	main "github.com/serplens/serplens/cmd/serplens"
	"github.com/serplens/serplens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists analyses with ID, status, and keyword", func(t *testing.T) {
		t.Parallel()

		analyses := &mock.AnalysisService{
			FindAnalysesFn: func(_ context.Context) ([]*serplens.Analysis, error) {
				return []*serplens.Analysis{
					{
						ID:        2,
						Keyword:   "standing desk",
						Status:    serplens.StatusCompleted,
						CreatedAt: time.Date(2026, 1, 16, 11, 0, 0, 0, time.UTC),
					},
					{
						ID:        1,
						Keyword:   "best espresso machine",
						Status:    serplens.StatusFailed,
						CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Analyses: analyses,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "standing desk")
		assert.Contains(t, output, "best espresso machine")
		assert.Contains(t, output, "completed")
		assert.Contains(t, output, "failed")
		assert.Contains(t, output, "2026-01-16 11:00")
		assert.Empty(t, stderr.String())
	})

	t.Run("shows helpful message when no analyses exist", func(t *testing.T) {
		t.Parallel()

		analyses := &mock.AnalysisService{
			FindAnalysesFn: func(_ context.Context) ([]*serplens.Analysis, error) {
				return []*serplens.Analysis{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Analyses: analyses,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No analyses")
	})

	t.Run("returns error when FindAnalyses fails", func(t *testing.T) {
		t.Parallel()

		analyses := &mock.AnalysisService{
			FindAnalysesFn: func(_ context.Context) ([]*serplens.Analysis, error) {
				return nil, serplens.Errorf(serplens.EINTERNAL, "database error")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Analyses: analyses,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, stdout.String())
	})
}
