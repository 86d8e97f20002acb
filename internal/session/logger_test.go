package session

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerAdapterForwardsToLogrus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.TraceLevel)
	adapter := NewLoggerAdapter(log.NewEntry(logger)).With(watermill.LogFields{"topic": DefaultTopic})

	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})
	entry := hook.LastEntry()
	require.Equal(t, log.ErrorLevel, entry.Level)
	require.Equal(t, "publish failed", entry.Message)
	require.Equal(t, DefaultTopic, entry.Data["topic"])
	require.Equal(t, 2, entry.Data["attempt"])
	require.Equal(t, "watermill", entry.Data["component"])
	require.EqualError(t, entry.Data[log.ErrorKey].(error), "boom")

	adapter.Debug("subscribed", nil)
	require.Equal(t, log.DebugLevel, hook.LastEntry().Level)
	adapter.Trace("tick", nil)
	require.Equal(t, log.TraceLevel, hook.LastEntry().Level)
	adapter.Info("ready", nil)
	require.Equal(t, log.InfoLevel, hook.LastEntry().Level)
	require.Len(t, hook.AllEntries(), 4)
}
