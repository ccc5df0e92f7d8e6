package writer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReplaceWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cfg")
	original := []byte("name: \"Old\"\n")
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	w := New(0)
	backup, err := w.Replace(context.Background(), path, original, "name: \"New\"\n")
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "name: \"New\"\n" {
		t.Errorf("file content = %q", got)
	}

	if !strings.HasPrefix(backup, path+".backup.") {
		t.Errorf("backup path = %q, want prefix %q", backup, path+".backup.")
	}
	backed, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backed) != string(original) {
		t.Errorf("backup content = %q, want original", backed)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".wfmend-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestReplaceFailureLeavesNoBackupPath(t *testing.T) {
	dir := t.TempDir()
	// Parent directory never created: the backup write fails before
	// anything touches disk.
	path := filepath.Join(dir, "missing", "pipeline.cfg")

	w := New(0)
	backup, err := w.Replace(context.Background(), path, []byte("x\n"), "y\n")
	if err == nil {
		t.Fatal("Replace() succeeded, want error")
	}
	if backup != "" {
		t.Errorf("backup = %q, want none", backup)
	}
	if !strings.Contains(err.Error(), "backup") {
		t.Errorf("error = %v, want backup failure", err)
	}
}

func TestReplaceTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cfg")
	if err := os.WriteFile(path, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := New(time.Nanosecond)
	_, err := w.Replace(context.Background(), path, []byte("x\n"), strings.Repeat("y", 1<<20))
	// With a nanosecond budget the deadline fires before the write can
	// finish; either way the call must return promptly, not hang.
	if err != nil && !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestReplaceDeadlineNeverCommitsLate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cfg")
	original := []byte("name: \"Old\"\n")
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	w := New(time.Nanosecond)
	newText := "name: \"New\"\n"
	backup, err := w.Replace(context.Background(), path, original, newText)

	// The reported outcome must be final: give the detached worker time
	// to finish whatever it was doing, then check the disk agrees.
	time.Sleep(200 * time.Millisecond)

	got, rerr := os.ReadFile(path)
	if rerr != nil {
		t.Fatal(rerr)
	}
	if err != nil {
		if string(got) != string(original) {
			t.Errorf("Replace() reported failure but disk holds %q", got)
		}
	} else {
		if string(got) != newText {
			t.Errorf("Replace() reported success but disk holds %q", got)
		}
		if backup == "" {
			t.Error("successful replace returned no backup path")
		}
	}

	entries, rerr := os.ReadDir(dir)
	if rerr != nil {
		t.Fatal(rerr)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".wfmend-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestReplaceCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cfg")
	if err := os.WriteFile(path, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(time.Minute)
	start := time.Now()
	_, _ = w.Replace(ctx, path, []byte("x\n"), "y\n")
	if time.Since(start) > 5*time.Second {
		t.Error("Replace() blocked despite cancelled context")
	}
}

func TestBackupTimestampFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cfg")
	original := []byte("a\n")
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	w := New(0)
	w.now = func() time.Time { return time.Date(2026, 8, 27, 10, 20, 30, 0, time.UTC) }

	backup, err := w.Replace(context.Background(), path, original, "b\n")
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if want := path + ".backup.20260827T102030Z"; backup != want {
		t.Errorf("backup = %q, want %q", backup, want)
	}
}
