package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bnema/reaction-tally/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallySpinnerViewShowsFetchProgress(t *testing.T) {
	t.Parallel()

	model := newTallySpinnerModel(nil)
	assert.Contains(t, model.View(), "Scanning channel...")

	updated, _ := model.Update(tallyProgressMsg{Fetches: 10, Finished: 4, Failed: 1})
	model = updated.(tallySpinnerModel)
	assert.Contains(t, model.View(), "Counting reactions 4/10")
	assert.Contains(t, model.View(), "(1 failed)")

	updated, _ = model.Update(tallyProgressMsg{Fetches: 10, Finished: 3})
	model = updated.(tallySpinnerModel)
	assert.Contains(t, model.View(), "Counting reactions 4/10")

	updated, _ = model.Update(tallyInterruptedMsg{})
	model = updated.(tallySpinnerModel)
	assert.Contains(t, model.View(), "stopping")

	updated, _ = model.Update(tallyDoneMsg{})
	assert.Empty(t, updated.(tallySpinnerModel).View())
}

func TestRunTallySpinnerLetsRunFinishAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := errors.New("partial")

	err := runTallySpinner(ctx, &bytes.Buffer{}, func(runCtx context.Context, progress application.ProgressFunc) error {
		progress(application.AggregateProgress{Fetches: 2, Finished: 1})
		cancel()
		<-runCtx.Done()
		progress(application.AggregateProgress{Fetches: 2, Finished: 2})
		return runErr
	})
	require.ErrorIs(t, err, runErr)
}
