// Package artifact persists the one merged-audio file each user may own.
package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"stitcher/internal/config"
	"stitcher/internal/fileutil"
)

// Record describes one persisted merged-audio artifact.
type Record struct {
	UserID    string
	Path      string
	CreatedAt time.Time
	ByteSize  int64
}

// Store manages artifact persistence: one audio file per user on disk plus a
// SQLite index. The at-most-one-artifact-per-user invariant is enforced here,
// not by callers: Put replaces, Delete is idempotent.
type Store struct {
	db  *sql.DB
	dir string
}

// Open initializes or connects to the artifact index and ensures the artifact
// directory exists.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.ArtifactDir, "artifacts.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
        user_id TEXT PRIMARY KEY,
        path TEXT NOT NULL,
        created_at TEXT NOT NULL,
        byte_size INTEGER NOT NULL
    )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, dir: cfg.Paths.ArtifactDir}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists srcPath as the user's artifact, replacing any existing one.
// A prior artifact file is removed before the replacement is written, so at
// most one file per user ever sits on disk. The stored file is named from the
// user id and creation time so successive merges never collide.
func (s *Store) Put(ctx context.Context, user, srcPath string) (*Record, error) {
	prior, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		if err := os.Remove(prior.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove superseded artifact: %w", err)
		}
	}

	now := time.Now().UTC()
	name := fmt.Sprintf("combined_%s_%d%s", slugify(user), now.UnixNano(), filepath.Ext(srcPath))
	dest := filepath.Join(s.dir, name)

	if err := fileutil.CopyFileVerified(srcPath, dest); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}
	size, err := fileutil.FileSize(dest)
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artifacts (user_id, path, created_at, byte_size) VALUES (?, ?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET path = excluded.path,
             created_at = excluded.created_at, byte_size = excluded.byte_size`,
		user,
		dest,
		now.Format(time.RFC3339Nano),
		size,
	); err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("index artifact: %w", err)
	}

	return &Record{UserID: user, Path: dest, CreatedAt: now, ByteSize: size}, nil
}

// Get returns the user's artifact record, or nil when none exists. A record
// whose file has vanished from disk is treated as absent and dropped from the
// index.
func (s *Store) Get(ctx context.Context, user string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, path, created_at, byte_size FROM artifacts WHERE user_id = ?`,
		user,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	if _, statErr := os.Stat(rec.Path); errors.Is(statErr, os.ErrNotExist) {
		if err := s.Delete(ctx, user); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return rec, nil
}

// Delete removes the user's artifact file and index entry. Missing rows and
// missing files are not errors.
func (s *Store) Delete(ctx context.Context, user string) error {
	rec, err := s.recordOnly(ctx, user)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE user_id = ?`, user); err != nil {
		return fmt.Errorf("delete artifact row: %w", err)
	}
	if err := os.Remove(rec.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete artifact file: %w", err)
	}
	return nil
}

// List returns all artifact records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, path, created_at, byte_size FROM artifacts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) recordOnly(ctx context.Context, user string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, path, created_at, byte_size FROM artifacts WHERE user_id = ?`,
		user,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return rec, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		userID     string
		path       string
		createdRaw string
		byteSize   int64
	)
	if err := scanner.Scan(&userID, &path, &createdRaw, &byteSize); err != nil {
		return nil, err
	}
	rec := &Record{UserID: userID, Path: path, ByteSize: byteSize}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	return rec, nil
}

func slugify(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "user"
	}
	return slug
}
