package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestJSONLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("posted", StringField("operation", "replaceResult"), IntField("bytes", 42))
	logger.Error("failed", ErrorField(errors.New("boom")))

	lines := decodeLines(t, buf.String())
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "posted", lines[0]["message"])
	fields := lines[0]["fields"].(map[string]any)
	assert.Equal(t, "replaceResult", fields["operation"])
	assert.EqualValues(t, 42, fields["bytes"])
	assert.Equal(t, "boom", lines[1]["fields"].(map[string]any)["error"])
}

func TestJSONLogger_WithFieldsSharesSink(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelDebug)
	child := logger.WithFields(StringField("sourcedid", "s-1"))

	child.Debug("child", StringField("extra", "x"))
	logger.Debug("parent")

	lines := decodeLines(t, buf.String())
	require.Len(t, lines, 2)
	assert.Equal(t, "s-1", lines[0]["fields"].(map[string]any)["sourcedid"])
	assert.NotContains(t, lines[1], "fields")
}

func TestJSONLogger_Files(t *testing.T) {
	dir := t.TempDir()
	logger, err := SetupLogging(filepath.Join(dir, "nested"), LevelDebug)
	require.NoError(t, err)

	logger.Info("hello")
	logger.LogOutboundPOX(OutboundPOXLog{MessageID: "m-1", Operation: "replaceResultRequest"})
	logger.LogInboundPOX(InboundPOXLog{MessageID: "m-1", StatusCode: 200, CodeMajor: "success"})
	require.NoError(t, logger.Close())

	logger.Info("after close")
	require.NoError(t, logger.Close())

	main, err := os.ReadFile(filepath.Join(dir, "nested", "outcomes.log"))
	require.NoError(t, err)
	assert.Len(t, decodeLines(t, string(main)), 1)

	exchange, err := os.ReadFile(filepath.Join(dir, "nested", "pox_exchange.log"))
	require.NoError(t, err)
	lines := decodeLines(t, string(exchange))
	require.Len(t, lines, 2)
	assert.Equal(t, "outbound", lines[0]["direction"])
	assert.Equal(t, "m-1", lines[0]["entry"].(map[string]any)["message_id"])
	assert.Equal(t, "inbound", lines[1]["direction"])
	assert.Equal(t, "success", lines[1]["entry"].(map[string]any)["code_major"])
}

func TestJSONLogger_NoExchangeSink(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelDebug)
	logger.LogOutboundPOX(OutboundPOXLog{MessageID: "m-1"})
	assert.Empty(t, buf.String())
}

func TestJSONLogger_MarshalFailure(t *testing.T) {
	orig := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) { return nil, errors.New("nope") }
	defer func() { jsonMarshal = orig }()

	var buf bytes.Buffer
	NewJSONWriterLogger(&buf, LevelDebug).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestNewJSONLogger_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewJSONLogger(LoggerConfig{OutputPath: filepath.Join(file, "out.log")})
	assert.Error(t, err)
}
