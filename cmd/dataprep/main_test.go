package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SALT-UWB/dysarthric-TTS/internal/pipeline"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 2, exitCode(fmt.Errorf("run: %w", pipeline.ErrRecordingsFailed)))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestCommandsRegistered(t *testing.T) {
	split := newSplitCommand()
	assert.Equal(t, "split", split.Name())
	assert.NotNil(t, split.Flags().Lookup("input"))
	assert.NotNil(t, split.Flags().Lookup("workers"))

	merge := newMergeCommand()
	assert.Equal(t, "merge", merge.Name())

	statsCmd := newStatsCommand()
	assert.Equal(t, "stats", statsCmd.Name())
	assert.NotNil(t, statsCmd.Flags().Lookup("report"))
}
