// Package envelope implements the process envelope around one norflash
// invocation: the filesystem big lock guaranteeing at-most-one
// flashing process machine-wide, and the powerd PID-file interlock that
// keeps the host's power manager from suspending mid-flash. Both are
// scoped acquisitions on a Session, released on every exit path.
package envelope

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sercanarga/norflash/internal/norerr"
)

// DefaultLockPath is the well-known system big-lock path.
const DefaultLockPath = "/var/lock/norflash.lock"

// DefaultPowerdDir is the directory a power-management daemon watches for
// PID files naming processes it must not suspend. Not every host runs
// such a daemon, so its absence is not an error.
const DefaultPowerdDir = "/var/lib/power_manager/lock"

// DefaultTimeout is how long Acquire polls before giving up.
const DefaultTimeout = 180 * time.Second

// pollInterval is the coarse poll period between lock retries.
const pollInterval = 500 * time.Millisecond

// Session owns the process envelope's two acquisitions for the lifetime of
// one norflash invocation.
type Session struct {
	lockPath   string
	powerdDir  string
	lockFile   *os.File
	powerdFile string

	// Ignore suppresses both acquisition and release, for a diagnostic
	// run that should not take the system lock.
	Ignore bool
}

// New builds a Session. Empty paths fall back to the package defaults;
// tests and alternate deployments can point both elsewhere.
func New(lockPath, powerdDir string, ignore bool) *Session {
	if lockPath == "" {
		lockPath = DefaultLockPath
	}
	if powerdDir == "" {
		powerdDir = DefaultPowerdDir
	}
	return &Session{lockPath: lockPath, powerdDir: powerdDir, Ignore: ignore}
}

// Acquire takes the big lock (open+flock+write-pid) with a timeout,
// polling at coarse intervals, then writes a PID file into the
// powerd interlock directory if it exists. If s.Ignore is set, both steps
// are skipped entirely (diagnostic mode).
func (s *Session) Acquire(timeout time.Duration) error {
	if s.Ignore {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if err := s.acquireBigLock(timeout); err != nil {
		return err
	}
	if err := s.writePowerdPID(); err != nil {
		s.releaseBigLock()
		return err
	}
	return nil
}

// acquireBigLock opens (creating if necessary) the lock file and attempts
// a non-blocking exclusive flock, retrying at pollInterval until either it
// succeeds or timeout elapses.
func (s *Session) acquireBigLock(timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0755); err != nil {
		return norerr.Wrap(norerr.KindEnvironment, "Lock", "creating lock directory", err)
	}
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return norerr.Wrap(norerr.KindEnvironment, "Lock", "opening lock file", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if err != unix.EWOULDBLOCK {
			f.Close()
			return norerr.Wrap(norerr.KindEnvironment, "Lock", "flock failed", err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return norerr.New(norerr.KindEnvironment, "Lock", "could not acquire lock")
		}
		time.Sleep(pollInterval)
	}

	if err := f.Truncate(0); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return norerr.Wrap(norerr.KindEnvironment, "Lock", "truncating lock file", err)
	}
	if _, err := f.WriteString(fmt.Sprintf("%d\n", os.Getpid())); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return norerr.Wrap(norerr.KindEnvironment, "Lock", "writing pid to lock file", err)
	}

	s.lockFile = f
	return nil
}

func (s *Session) releaseBigLock() {
	if s.lockFile == nil {
		return
	}
	unix.Flock(int(s.lockFile.Fd()), unix.LOCK_UN)
	s.lockFile.Close()
	s.lockFile = nil
}

// writePowerdPID writes a PID file into the powerd interlock directory,
// but only if that directory already exists: no daemon watching it is
// not an error, since the directory isn't guaranteed present on every
// host.
func (s *Session) writePowerdPID() error {
	if _, err := os.Stat(s.powerdDir); err != nil {
		return nil
	}
	path := filepath.Join(s.powerdDir, fmt.Sprintf("norflash.%d", os.Getpid()))
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		return norerr.Wrap(norerr.KindEnvironment, "Lock", "writing powerd pid file", err)
	}
	s.powerdFile = path
	return nil
}

// Release tears down both acquisitions, in reverse order, on normal exit
// or failure alike. Safe to call multiple times and safe to call when
// Acquire was never called or returned early.
func (s *Session) Release() {
	if s.Ignore {
		return
	}
	if s.powerdFile != "" {
		os.Remove(s.powerdFile)
		s.powerdFile = ""
	}
	s.releaseBigLock()
}
