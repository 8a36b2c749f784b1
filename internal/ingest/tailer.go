package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fluxmap/fluxmap/internal/errors"
	"github.com/fluxmap/fluxmap/internal/logging"
)

// Tailer follows a growing NDJSON log file and delivers complete appended
// lines to a callback, like tail -f. It watches the containing directory
// so it survives log rotation: when the file is renamed or removed and a
// new one appears at the same path, the Tailer reopens it from the start.
type Tailer struct {
	path   string
	poll   time.Duration
	logger *logging.Logger

	file    *os.File
	offset  int64
	partial []byte
}

// NewTailer creates a Tailer for the given file path. The poll interval
// is a fallback for filesystems where notifications are unreliable;
// values below 10ms are raised to 250ms.
func NewTailer(path string, poll time.Duration, logger *logging.Logger) *Tailer {
	if poll < 10*time.Millisecond {
		poll = 250 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Tailer{
		path:   path,
		poll:   poll,
		logger: logger.WithComponent("tailer"),
	}
}

// Run reads the file from the beginning, then follows it until the context
// is canceled. fn is called once per complete line, in order, from the
// Run goroutine. Returns nil on cancellation.
func (t *Tailer) Run(ctx context.Context, fn func(line []byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewIngestError("creating watcher", errors.Join(errors.ErrWatchFailed, err)).WithSource(t.path)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: rotation replaces the file and a
	// watch on the old inode would go quiet.
	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		return errors.NewIngestError("watching directory", errors.Join(errors.ErrWatchFailed, err)).WithSource(dir)
	}

	if err := t.open(); err != nil {
		return err
	}
	defer t.closeFile()

	if err := t.drain(fn); err != nil {
		return err
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.NewIngestError("watch ended", errors.ErrStreamClosed).WithSource(t.path)
			}
			if event.Name != t.path {
				continue
			}
			switch {
			case event.Op&fsnotify.Write != 0:
				if err := t.drain(fn); err != nil {
					return err
				}
			case event.Op&(fsnotify.Rename|fsnotify.Remove) != 0:
				t.logger.Info("log file rotated", "path", t.path)
				t.closeFile()
			case event.Op&fsnotify.Create != 0:
				if err := t.reopen(); err != nil {
					return err
				}
				if err := t.drain(fn); err != nil {
					return err
				}
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return errors.NewIngestError("watch ended", errors.ErrStreamClosed).WithSource(t.path)
			}
			t.logger.Warn("watcher error", "error", watchErr.Error())

		case <-ticker.C:
			// Poll fallback: also catches truncation, which fsnotify
			// reports as a plain write.
			if err := t.checkTruncation(); err != nil {
				return err
			}
			if t.file == nil {
				if err := t.open(); err != nil {
					if errors.Is(err, os.ErrNotExist) {
						continue
					}
					return err
				}
			}
			if err := t.drain(fn); err != nil {
				return err
			}
		}
	}
}

// open opens the file and resets the read offset to the start.
func (t *Tailer) open() error {
	f, err := os.Open(t.path)
	if err != nil {
		return errors.NewIngestError("opening source", err).WithSource(t.path)
	}
	t.file = f
	t.offset = 0
	t.partial = t.partial[:0]
	return nil
}

// reopen closes any current handle and opens the path fresh.
func (t *Tailer) reopen() error {
	t.closeFile()
	return t.open()
}

func (t *Tailer) closeFile() {
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
}

// checkTruncation reopens the file if it shrank below the read offset.
func (t *Tailer) checkTruncation() error {
	if t.file == nil {
		return nil
	}
	info, err := os.Stat(t.path)
	if err != nil {
		// File vanished between rotation events; the Create event or the
		// next poll will reopen it.
		t.closeFile()
		return nil
	}
	if info.Size() < t.offset {
		t.logger.Info("log file truncated", "path", t.path)
		return t.reopen()
	}
	return nil
}

// drain reads all available bytes and emits complete lines. A trailing
// partial line is buffered until its newline arrives.
func (t *Tailer) drain(fn func(line []byte)) error {
	if t.file == nil {
		return nil
	}

	buf := make([]byte, 64*1024)
	for {
		n, err := t.file.ReadAt(buf, t.offset)
		if n > 0 {
			t.offset += int64(n)
			t.partial = append(t.partial, buf[:n]...)
			t.emitLines(fn)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewIngestError("reading source", err).WithSource(t.path)
		}
	}
}

// emitLines splits the pending buffer on newlines and delivers each
// complete line.
func (t *Tailer) emitLines(fn func(line []byte)) {
	for {
		idx := bytes.IndexByte(t.partial, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, t.partial[:idx])
		t.partial = t.partial[idx+1:]
		if !isBlank(line) {
			fn(line)
		}
	}
}
