package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRunFields(t *testing.T) {
	ctx := util.WithSymbol(util.WithRunID(context.Background(), "run-1"), "SIM")

	fields := appendRunFields(ctx, []Field{NewField("ticks", 3)})

	assert.Equal(t, []Field{
		{Key: "ticks", Value: 3},
		{Key: "run_id", Value: "run-1"},
		{Key: "symbol", Value: "SIM"},
	}, fields)
}

func TestNewLogger_WritesToOutputPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sim.log")

	log, err := NewLogger(WithLoggingLevel(DebugLevel), WithOutputPaths([]string{out}))
	require.NoError(t, err)

	ctx := util.WithRunID(context.Background(), "run-2")
	log.InfoContext(ctx, "generated", NewField("ticks", 10))
	log.ErrorContext(ctx, errors.NewTracer("export failed"))
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"generated"`)
	assert.Contains(t, string(content), `"run_id":"run-2"`)
	assert.NotContains(t, string(content), `"msg"`)
	assert.Contains(t, string(content), "export failed")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Warn("discarded", NewField("k", "v"))
	assert.NoError(t, log.Sync())
}
