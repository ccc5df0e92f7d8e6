// Package tracklog appends one formatted line per document event to an
// activity log file, mirroring the run history the engine's operators read
// after the fact.
package tracklog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// EventType classifies a document event.
type EventType string

const (
	EventClean        EventType = "clean"
	EventRepaired     EventType = "repaired"
	EventUnrepairable EventType = "unrepairable"
	EventWriteFailed  EventType = "write-failed"
	EventIOError      EventType = "io-error"
	EventWithheld     EventType = "withheld"
)

// Event is one recorded document outcome.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Document  string
	Detail    string
}

// FormatLine renders an event as a single log line.
func FormatLine(e Event) string {
	return fmt.Sprintf("[%s] [%s] %s - %s\n",
		e.Timestamp.UTC().Format("2006-01-02 15:04:05"), e.Type, e.Document, e.Detail)
}

// Logger appends events to a file. A nil Logger discards events, so callers
// never need to branch on whether tracking is enabled.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New returns a Logger appending to path, or nil when path is empty.
func New(path string) *Logger {
	if path == "" {
		return nil
	}
	return &Logger{path: path}
}

// Record appends one event line.
func (l *Logger) Record(e Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening track log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(e)); err != nil {
		return fmt.Errorf("appending track log: %w", err)
	}
	return nil
}
