package session

import (
	"github.com/ThreeDotsLabs/watermill"
	log "github.com/sirupsen/logrus"
)

// LoggerAdapter routes watermill's logging through logrus.
type LoggerAdapter struct {
	entry *log.Entry
}

// NewLoggerAdapter wraps entry. A nil entry uses the standard logger.
func NewLoggerAdapter(entry *log.Entry) *LoggerAdapter {
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &LoggerAdapter{entry: entry.WithField("component", "watermill")}
}

func (l *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(log.Fields(fields)).WithError(err).Error(msg)
}

func (l *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(log.Fields(fields)).Info(msg)
}

func (l *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(log.Fields(fields)).Debug(msg)
}

func (l *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(log.Fields(fields)).Trace(msg)
}

func (l *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{entry: l.entry.WithFields(log.Fields(fields))}
}

var _ watermill.LoggerAdapter = (*LoggerAdapter)(nil)
