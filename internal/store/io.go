package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/flock"
)

// loadDocument reads and unmarshals a YAML document. A missing file maps
// to notFound; unparseable content maps to ErrCorruptEntity so callers
// can tell absence from damage.
func (s *FileStore) loadDocument(ctx context.Context, path string, out any, notFound error) error {
	lockFile, err := s.acquireLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed from validated slugs
	if err != nil {
		if os.IsNotExist(err) {
			return notFound
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %s", path, sdlcerrors.ErrCorruptEntity, err)
	}
	return nil
}

// saveDocument marshals and writes a YAML document atomically under an
// exclusive lock.
func (s *FileStore) saveDocument(ctx context.Context, path string, doc any) error {
	lockFile, err := s.acquireLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	return atomicWrite(path, data)
}

// acquireLock acquires an exclusive advisory lock guarding path.
// It respects context cancellation during the retry loop.
func (s *FileStore) acquireLock(ctx context.Context, path string) (*os.File, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed from validated slugs
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", sdlcerrors.ErrLockTimeout)
		}

		time.Sleep(lockPollInterval)
	}
}

// releaseLock releases an advisory lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Ensure data is persisted before rename.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// IsNotFound reports whether err is one of the store's absence sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, sdlcerrors.ErrFeatureNotFound) ||
		errors.Is(err, sdlcerrors.ErrMilestoneNotFound) ||
		errors.Is(err, sdlcerrors.ErrStateNotFound)
}
