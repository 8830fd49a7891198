package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// sqliteMagic opens every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// dropOrder lists tables children first so foreign keys never block a drop.
var dropOrder = []string{
	"items", "folders", "categories", "areas", "storage_locations", "activity_log", "sequence_counters",
}

// IsSQLiteImage reports whether data starts with the SQLite file header.
func IsSQLiteImage(data []byte) bool {
	return bytes.HasPrefix(data, sqliteMagic)
}

// Snapshot returns a consistent byte image of the whole database.
// The image is produced with VACUUM INTO, so it is compacted and
// self-contained (no WAL sidecar).
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	dir, err := os.MkdirTemp("", "jdex-snapshot-")
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "snapshot.sqlite")
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Replace swaps the whole database for the given image. No schema check
// or merge is done: the image becomes the store. The file is replaced
// atomically, so a crash leaves either the old or the new database.
//
// The store is reopened on the new file; handles from DB() taken before
// the call are invalid afterwards.
func (s *Store) Replace(ctx context.Context, data []byte) error {
	if s.path == "" || s.path == ":memory:" {
		return ErrNotReplaceable
	}
	if !IsSQLiteImage(data) {
		return ErrNotSQLite
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	// Fold the WAL back so closing leaves a single file behind.
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint before replace: %w", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close before replace: %w", err)
	}
	s.db = nil

	writeErr := atomic.WriteFile(s.path, bytes.NewReader(data))
	if writeErr == nil {
		for _, suffix := range []string{"-wal", "-shm"} {
			if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
				writeErr = fmt.Errorf("remove stale %s: %w", suffix, err)
				break
			}
		}
	}

	// Reopen whichever file is now in place.
	db, err := openDB(s.path)
	if err != nil {
		return errors.Join(writeErr, fmt.Errorf("reopen after replace: %w", err))
	}
	s.db = db

	if writeErr != nil {
		return fmt.Errorf("replace database file: %w", writeErr)
	}
	return nil
}

// Recreate drops every table and applies the schema from scratch inside
// the transaction. Callers reseed in the same transaction.
func (t *Tx) Recreate(ctx context.Context) error {
	for _, table := range dropOrder {
		if _, err := t.tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := t.tx.ExecContext(ctx, "PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("reset user_version: %w", err)
	}
	if err := applySchema(ctx, t.tx); err != nil {
		return fmt.Errorf("recreate schema: %w", err)
	}
	return nil
}
