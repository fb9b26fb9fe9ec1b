package envelope

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sercanarga/norflash/internal/norerr"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock", "norflash.lock")
	powerdDir := filepath.Join(dir, "powerd")
	if err := os.MkdirAll(powerdDir, 0755); err != nil {
		t.Fatal(err)
	}

	s := New(lockPath, powerdDir, false)
	if err := s.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	entries, err := os.ReadDir(powerdDir)
	if err != nil || len(entries) != 1 {
		t.Errorf("powerd dir entries = %v, err = %v, want exactly one pid file", entries, err)
	}

	s.Release()
	entries, err = os.ReadDir(powerdDir)
	if err != nil || len(entries) != 0 {
		t.Errorf("powerd dir after Release = %v, want empty", entries)
	}
}

func TestAcquireWithoutPowerdDirIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "norflash.lock")
	s := New(lockPath, filepath.Join(dir, "no-such-powerd-dir"), false)

	if err := s.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() error = %v, want nil when powerd dir is absent", err)
	}
	s.Release()
}

func TestAcquireTimesOutWhenAlreadyLocked(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "norflash.lock")

	first := New(lockPath, filepath.Join(dir, "powerd"), false)
	if err := first.Acquire(time.Second); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer first.Release()

	second := New(lockPath, filepath.Join(dir, "powerd"), false)
	err := second.Acquire(600 * time.Millisecond)
	if !norerr.Is(err, norerr.KindEnvironment) {
		t.Fatalf("second Acquire() error = %v, want KindEnvironment", err)
	}
}

func TestIgnoreSkipsBothAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "norflash.lock")

	s := New(lockPath, filepath.Join(dir, "powerd"), true)
	if err := s.Acquire(time.Second); err != nil {
		t.Fatalf("Acquire() with Ignore error = %v", err)
	}
	if _, err := os.Stat(lockPath); err == nil {
		t.Error("lock file created despite Ignore")
	}
	s.Release() // must not panic even though nothing was acquired
}
