package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_NopByDefault(t *testing.T) {
	logger := NewLogger(LoggerOptions{})
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.log")
	logger := NewLogger(LoggerOptions{File: path})

	logger.Info("rendered", zap.String("theme", "basic"))
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"rendered"`)
	assert.Contains(t, string(content), `"theme":"basic"`)
}
