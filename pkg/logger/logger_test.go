package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := L.Logger.GetLevel()
	SetLogOutput(&buf)
	SetLogFormat("json")
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetLogFormat("fmt")
		L.Logger.SetLevel(prevLevel)
	})
	return &buf
}

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := G(context.Background())
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLogger(t *testing.T) {
	custom := logrus.NewEntry(logrus.New()).WithField("component", "installer")
	ctx := WithLogger(context.Background(), custom)

	got := G(ctx)
	assert.Equal(t, "installer", got.Data["component"])
}

func TestWithOperation(t *testing.T) {
	buf := captureGlobal(t)

	ctx := WithOperation(context.Background(), "install")
	G(ctx).WithField("skill", "foo").Info("installing")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "install", line["op"])
	assert.Equal(t, "foo", line["skill"])
	assert.Equal(t, "installing", line["message"])
	assert.Equal(t, "info", line["logLevel"])

	_, err := uuid.Parse(line["op_id"].(string))
	assert.NoError(t, err)

	other := WithOperation(context.Background(), "install")
	assert.NotEqual(t, G(ctx).Data["op_id"], G(other).Data["op_id"])
}

func TestSetLogLevel(t *testing.T) {
	buf := captureGlobal(t)

	require.NoError(t, SetLogLevel("warn"))
	L.Info("hidden")
	assert.Empty(t, buf.String())
	L.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, SetLogLevel("loud"))
}

func TestSetLogFormat(t *testing.T) {
	captureGlobal(t)

	SetLogFormat("json")
	assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)
	SetLogFormat("text")
	assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
	SetLogFormat("unknown")
	assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
}
