package replog

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

func TestLog_RecordsAndForwards(t *testing.T) {
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	log := New("run-7")
	log.Info("activating %s", "/content/a")
	log.Error("failed with %d", 500)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "activating /content/a", entries[0].Message)
	assert.True(t, log.Has(LevelError))
	assert.False(t, log.Has(LevelWarn))
	assert.Contains(t, buf.String(), "[INFO] [run-7] activating /content/a")
	assert.Contains(t, buf.String(), "[ERROR] [run-7] failed with 500")
}
