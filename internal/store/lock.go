package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFileName = "session.lock"

// ErrSessionActive is returned by Acquire when another live process holds
// the lock.
var ErrSessionActive = errors.New("another workbench session is using this storage")

// SessionLock is a PID lock file marking the storage directory as in use.
// Workbench sessions do not coordinate writes (the last save wins), so the
// lock only exists to warn about a second session.
type SessionLock struct {
	path  string
	owned bool
}

// NewSessionLock creates a lock manager for the given data directory.
func NewSessionLock(dir string) *SessionLock {
	return &SessionLock{
		path: filepath.Join(dir, lockFileName),
	}
}

// Acquire attempts to take the lock.
// Returns an error wrapping ErrSessionActive if a live process holds it.
// Stale locks (from dead processes) are automatically cleaned up.
func (l *SessionLock) Acquire() error {
	// Try atomic creation with O_EXCL
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		return l.writePID(f)
	}

	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	// Lock file exists - check if it's stale
	data, readErr := os.ReadFile(l.path)
	if readErr != nil {
		return fmt.Errorf("failed to read existing lock file: %w", readErr)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr == nil && processExists(pid) {
		if pid == os.Getpid() {
			return fmt.Errorf("%w (this process, PID %d)", ErrSessionActive, pid)
		}
		return fmt.Errorf("%w (PID %d)", ErrSessionActive, pid)
	}

	// Invalid PID or dead process - remove stale lock and retry once
	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}

	f, err = os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (acquired during retry)", ErrSessionActive)
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return l.writePID(f)
}

func (l *SessionLock) writePID(f *os.File) error {
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	l.owned = true
	return nil
}

// Release removes the lock file if this lock acquired it.
// Returns nil if the lock was never acquired or is already gone (idempotent).
func (l *SessionLock) Release() error {
	if !l.owned {
		return nil
	}
	l.owned = false
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Owned reports whether this lock holds the lock file.
func (l *SessionLock) Owned() bool {
	return l.owned
}

// processExists checks if a process with the given PID is running.
// Uses kill with signal 0, which checks for process existence without sending a signal.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
