// Package writer persists repaired documents: a timestamped backup of the
// original bytes followed by an atomic temp-write-and-rename of the new
// text. The original file is never left half-written.
package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrTimeout indicates the soft I/O deadline elapsed before the write
// completed.
var ErrTimeout = errors.New("write timed out")

// DefaultTimeout bounds a single document's backup-and-replace.
const DefaultTimeout = 10 * time.Second

const backupTimeFormat = "20060102T150405Z"

// Writer replaces document files on disk.
type Writer struct {
	Timeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New returns a Writer with the given soft timeout. A non-positive timeout
// falls back to DefaultTimeout.
func New(timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Writer{Timeout: timeout, now: time.Now}
}

// Replace backs up the original bytes to <path>.backup.<timestamp>, then
// writes text to a temporary file in the same directory and renames it over
// path. On failure after the backup was made, the temporary file is
// discarded, the backup is retained, and the backup path is still returned
// so the result can record it. A reported failure is final: once Replace
// has returned an error, the original file can no longer be replaced.
func (w *Writer) Replace(ctx context.Context, path string, original []byte, text string) (string, error) {
	backupPath := fmt.Sprintf("%s.backup.%s", path, w.now().UTC().Format(backupTimeFormat))

	gate := &renameGate{}
	done := make(chan error, 1)
	go func() {
		done <- w.replace(path, backupPath, original, text, gate)
	}()

	select {
	case err := <-done:
		if err != nil {
			return existingBackup(backupPath), err
		}
		return backupPath, nil
	case <-ctx.Done():
		if gate.abandon() {
			return backupPath, nil
		}
		return existingBackup(backupPath), fmt.Errorf("replacing %s: %w", path, ctx.Err())
	case <-time.After(w.Timeout):
		if gate.abandon() {
			return backupPath, nil
		}
		return existingBackup(backupPath), fmt.Errorf("replacing %s: %w", path, ErrTimeout)
	}
}

// renameGate serializes the worker's commit against the caller's deadline.
// Once abandon has run, commit discards the temporary file instead of
// renaming it over the original; when the rename already won the race,
// abandon reports that so the caller records a success the disk agrees with.
type renameGate struct {
	mu        sync.Mutex
	abandoned bool
	renamed   bool
}

var errAbandoned = errors.New("write abandoned after deadline")

func (g *renameGate) commit(tmpPath, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.abandoned {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return errAbandoned
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("replacing file: %w", err)
	}
	g.renamed = true
	return nil
}

// abandon marks the write as given up and reports whether the rename had
// already committed.
func (g *renameGate) abandon() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.abandoned = true
	return g.renamed
}

func (w *Writer) replace(path, backupPath string, original []byte, text string, gate *renameGate) error {
	if err := os.WriteFile(backupPath, original, 0600); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wfmend-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()          // best-effort cleanup
		_ = os.Remove(tmpPath)   // best-effort cleanup
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("setting permissions: %w", err)
	}

	return gate.commit(tmpPath, path)
}

// existingBackup returns backupPath when the backup file made it to disk,
// so failed writes can still record the retained backup.
func existingBackup(backupPath string) string {
	if _, err := os.Stat(backupPath); err != nil {
		return ""
	}
	return backupPath
}
