package filestore

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// fileLock is an exclusive advisory lock held for the life of a Store.
type fileLock struct {
	file *os.File
}

// tryLock attempts to lock path without blocking. ok is false when another
// process holds the lock.
func tryLock(path string) (*fileLock, bool, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, false, lockError(path, err)
	}
	return &fileLock{file: file}, true, nil
}

// lockError maps a failed flock to a nil error when the lock is merely held
// elsewhere.
func lockError(path string, err error) error {
	if errors.Is(err, syscall.EWOULDBLOCK) {
		return nil
	}
	return fmt.Errorf("lock %s: %w", path, err)
}

// Release releases the lock.
func (l *fileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	err := l.file.Close()
	l.file = nil
	return err
}
