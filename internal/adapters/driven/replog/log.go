// Package replog provides the per-action replication log.
package replog

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

// Ensure Log implements the interface.
var _ driven.ReplicationLog = (*Log)(nil)

// Level is the severity of an entry.
type Level string

// Severities.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one logged message.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Log forwards entries to the process logger under a run id and keeps them.
type Log struct {
	out logger.Scoped

	mu      sync.Mutex
	entries []Entry
}

// New creates a log for one replication run.
func New(runID string) *Log {
	return &Log{out: logger.With(runID)}
}

// Debug records a debug entry.
func (l *Log) Debug(format string, args ...any) {
	l.add(LevelDebug, format, args)
	l.out.Debug(format, args...)
}

// Info records an info entry.
func (l *Log) Info(format string, args ...any) {
	l.add(LevelInfo, format, args)
	l.out.Info(format, args...)
}

// Warn records a warning.
func (l *Log) Warn(format string, args ...any) {
	l.add(LevelWarn, format, args)
	l.out.Warn(format, args...)
}

// Error records an error.
func (l *Log) Error(format string, args ...any) {
	l.add(LevelError, format, args)
	l.out.Error(format, args...)
}

func (l *Log) add(level Level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Time: time.Now(), Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of the recorded entries.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Has reports whether an entry of level was recorded.
func (l *Log) Has(level Level) bool {
	for _, e := range l.Entries() {
		if e.Level == level {
			return true
		}
	}
	return false
}
