package dataset

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"bidslite/internal/faults"
)

// LockFileName is created in the output directory while an apply run holds it.
const LockFileName = ".bidslite.lock"

// Lock is an exclusive hold on an output tree.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the apply lock for out without blocking. It fails with
// faults.ErrLocked when another process holds it.
func AcquireLock(out string) (*Lock, error) {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "dataset", "lock", "create output directory", err)
	}
	path := filepath.Join(out, LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "dataset", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrLocked, "dataset", "lock", "another apply run is writing to "+out, nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return faults.Wrap(faults.ErrIO, "dataset", "unlock", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}
