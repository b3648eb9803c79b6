package lockfile

import (
	"errors"
	"os"
	"syscall"
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("lockfile is in use by another gsm process")

// FileLock provides exclusive file-based locking using flock.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created if it doesn't exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// TryLock acquires an exclusive lock without blocking.
// Returns ErrLocked if the lock is held elsewhere.
func (l *FileLock) TryLock() error {
	err := l.acquire(syscall.LOCK_EX | syscall.LOCK_NB)
	if errors.Is(err, syscall.EWOULDBLOCK) {
		return ErrLocked
	}
	return err
}

func (l *FileLock) acquire(how int) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return err
	}
	l.file = f
	return nil
}

// Unlock releases the lock and closes the file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}
