package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/yungbote/survey-backend/internal/platform/logger"
)

// FileMedium keeps the document in a single JSON file replaced by rename.
type FileMedium struct {
	path string
	log  *logger.Logger
}

func NewFileMedium(path string, log *logger.Logger) *FileMedium {
	return &FileMedium{path: filepath.Clean(path), log: log.With("medium", "file", "path", path)}
}

func (m *FileMedium) Describe() string { return "file:" + m.path }

func (m *FileMedium) Init(ctx context.Context, seed []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create data dir: %w", err)
	}
	info, err := os.Stat(m.path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("%s is a directory", m.path)
		}
		return false, probeWritable(dir)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat document: %w", err)
	}
	if err := m.write(seed); err != nil {
		return false, err
	}
	m.log.Debug("Created survey document")
	return true, nil
}

func (m *FileMedium) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return b, nil
}

func (m *FileMedium) Save(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(m.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("stat document: %w", err)
	}
	return m.write(doc)
}

func (m *FileMedium) Close() error { return nil }

// write goes through a temp file in the same directory: write, fsync, rename, fsync dir.
func (m *FileMedium) write(doc []byte) error {
	dir := filepath.Dir(m.path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		cleanup()
		return fmt.Errorf("replace document: %w", err)
	}
	if err := fsyncDir(dir); err != nil {
		m.log.Warn("Directory fsync failed after replace", "error", err)
	}
	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func fsyncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	df, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer df.Close()
	if err := df.Sync(); err != nil {
		// some filesystems (macOS) refuse fsync on directories
		if errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EINVAL) {
			return nil
		}
		return err
	}
	return nil
}
