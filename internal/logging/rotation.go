package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig controls size-based log rotation.
type RotationConfig struct {
	// MaxSizeMB is the rotation threshold in megabytes. 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep. 0 keeps none.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// rotatingFile appends to a log file and rotates it when a write would
// push it past the size limit. Rotated files keep numbered suffixes,
// .1 newest through .N oldest. Safe for concurrent use.
type rotatingFile struct {
	mu sync.Mutex

	path    string
	limit   int64 // bytes, 0 means never rotate
	backups int
	gzip    bool

	f    *os.File
	size int64
}

// newRotatingFile opens or creates the log file at path, creating parent
// directories as needed.
func newRotatingFile(path string, cfg RotationConfig) (*rotatingFile, error) {
	rf := &rotatingFile{
		path:    path,
		limit:   int64(cfg.MaxSizeMB) << 20,
		backups: cfg.MaxBackups,
		gzip:    cfg.Compress,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rf.f = f
	rf.size = info.Size()
	return nil
}

// Write implements io.Writer. A failed rotation is retried on the next
// write; meanwhile the entry still lands in the oversized file rather
// than being dropped.
func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.f == nil {
		return 0, fmt.Errorf("log file closed")
	}
	if rf.limit > 0 && rf.size+int64(len(p)) > rf.limit {
		_ = rf.rotate()
		if rf.f == nil {
			return 0, fmt.Errorf("log file closed")
		}
	}

	n, err := rf.f.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate moves the live file into the backup chain and starts a fresh
// one at the same path. The caller holds the lock.
func (rf *rotatingFile) rotate() error {
	if err := rf.f.Close(); err != nil {
		rf.f = nil
		return fmt.Errorf("close log file: %w", err)
	}
	rf.f = nil

	var moveErr error
	if rf.backups <= 0 {
		moveErr = os.Remove(rf.path)
	} else {
		rf.shiftBackups()
		moveErr = os.Rename(rf.path, rf.backupName(1))
		if moveErr == nil && rf.gzip {
			// Best effort: the plain backup survives if compression fails.
			_ = gzipInPlace(rf.backupName(1))
		}
	}

	if err := rf.open(); err != nil {
		return err
	}
	return moveErr
}

// shiftBackups renumbers existing backups toward the tail, dropping the
// oldest. Plain and gzipped names both shift.
func (rf *rotatingFile) shiftBackups() {
	os.Remove(rf.backupName(rf.backups))
	os.Remove(rf.backupName(rf.backups) + ".gz")

	for i := rf.backups - 1; i >= 1; i-- {
		from, to := rf.backupName(i), rf.backupName(i+1)
		if _, err := os.Stat(from + ".gz"); err == nil {
			os.Rename(from+".gz", to+".gz")
			continue
		}
		if _, err := os.Stat(from); err == nil {
			os.Rename(from, to)
		}
	}
}

func (rf *rotatingFile) backupName(n int) string {
	return fmt.Sprintf("%s.%d", rf.path, n)
}

// Close flushes and closes the live file. Further writes fail.
func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.f == nil {
		return nil
	}
	if err := rf.f.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	err := rf.f.Close()
	rf.f = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// gzipInPlace compresses path to path.gz and removes the original on
// success.
func gzipInPlace(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path + ".gz")
		return err
	}
	return os.Remove(path)
}
