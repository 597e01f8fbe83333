package logger

import (
	"context"
)

// Entry accumulates metric fields (duration_ms, count, size, status) for one log line.
// The line itself goes through the logger found in the context passed at log time.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Ingest completed")
type Entry struct {
	fields Fields
}

// With starts an Entry with the given fields.
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// With returns a new Entry with fields merged over e's.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

// WithField returns a new Entry with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration sets duration_ms.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

// WithCount sets count.
func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

// WithSize sets size.
func (e *Entry) WithSize(size int) *Entry {
	return e.WithField(FieldSize, size)
}

func (e *Entry) target(ctx context.Context) *Logger {
	return FromContext(ctx).WithFields(e.fields)
}

// Debug logs at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Debugf(format, args...)
}

// Info logs at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Infof(format, args...)
}

// Warn logs at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Warnf(format, args...)
}

// Error logs at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Errorf(format, args...)
}
