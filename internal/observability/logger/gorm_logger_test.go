package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(cfg GormLoggerConfig) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), cfg), logs
}

func traceQuery() (string, int64) {
	return "SELECT * FROM claims WHERE id = 1", 1
}

func TestGormLoggerSlowQueryWarns(t *testing.T) {
	gl, logs := newObservedGormLogger(GormLoggerConfig{
		Level:         gormlogger.Warn,
		SlowThreshold: 10 * time.Millisecond,
	})

	begin := time.Now().Add(-time.Second)
	gl.Trace(context.Background(), begin, traceQuery, nil)

	entries := logs.FilterMessage("gorm.query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "gorm", fields["component"])
	assert.EqualValues(t, 1, fields["rows_affected"])
}

func TestGormLoggerQueryError(t *testing.T) {
	gl, logs := newObservedGormLogger(DefaultGormLoggerConfig())

	gl.Trace(context.Background(), time.Now(), traceQuery, errors.New("disk I/O error"))

	entries := logs.FilterMessage("gorm.query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	gl, logs := newObservedGormLogger(DefaultGormLoggerConfig())

	gl.Trace(context.Background(), time.Now(), traceQuery, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestGormLoggerSilentLevel(t *testing.T) {
	gl, logs := newObservedGormLogger(GormLoggerConfig{Level: gormlogger.Silent})

	gl.Trace(context.Background(), time.Now().Add(-time.Second), traceQuery, errors.New("boom"))
	gl.Info(context.Background(), "hello")

	assert.Zero(t, logs.Len())
}

func TestGormLoggerParamsFilterStripsValues(t *testing.T) {
	gl, _ := newObservedGormLogger(DefaultGormLoggerConfig())

	sql, params := gl.ParamsFilter(context.Background(), "SELECT * FROM users WHERE username = ?", "amina")
	assert.Equal(t, "SELECT * FROM users WHERE username = ?", sql)
	assert.Nil(t, params)
}
