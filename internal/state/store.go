// Package state records where packages live and what they contained when
// last scanned, in a SQLite database.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/cardfile/pkg/core"
)

// Package is an indexed package.
type Package struct {
	Kind      string
	Name      string
	Path      string
	Version   core.Version
	Hash      string
	ScanID    string
	UpdatedAt time.Time
}

// Scan is one pass of the indexer over the package roots.
type Scan struct {
	ID          string
	StartedAt   time.Time
	CompletedAt *time.Time
	Found       int
}

// Store is a SQLite package index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new, unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open opens the database at path. Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginScan records the start of a scan and returns it.
func (s *Store) BeginScan() (*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	scan := &Scan{ID: uuid.New().String(), StartedAt: time.Now().UTC()}
	_, err := s.db.Exec(
		`INSERT INTO scans (id, started_at) VALUES (?, ?)`,
		scan.ID, formatTime(scan.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}
	return scan, nil
}

// CompleteScan marks a scan finished and removes packages it did not see.
// It returns the number of packages removed.
func (s *Store) CompleteScan(scan *Scan) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM packages WHERE scan_id = ?`, scan.ID).Scan(&found); err != nil {
		return 0, fmt.Errorf("failed to count packages: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM packages WHERE scan_id IS NULL OR scan_id != ?`, scan.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune packages: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune packages: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(
		`UPDATE scans SET completed_at = ?, found = ? WHERE id = ?`,
		formatTime(now), found, scan.ID,
	); err != nil {
		return 0, fmt.Errorf("failed to complete scan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	scan.CompletedAt = &now
	scan.Found = found
	return int(removed), nil
}

// LastScan returns the most recently started scan, or nil if there is none.
func (s *Store) LastScan() (*Scan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var (
		scan      Scan
		started   string
		completed sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT id, started_at, completed_at, found FROM scans ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&scan.ID, &started, &completed, &scan.Found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	if scan.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		scan.CompletedAt = &t
	}
	return &scan, nil
}

// Upsert records a package, replacing any earlier record of the same kind
// and name.
func (s *Store) Upsert(pkg *Package) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	pkg.UpdatedAt = time.Now().UTC()
	var scanID any
	if pkg.ScanID != "" {
		scanID = pkg.ScanID
	}
	_, err := s.db.Exec(`
		INSERT INTO packages (kind, name, path, version, hash, scan_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, name) DO UPDATE SET
			path = excluded.path,
			version = excluded.version,
			hash = excluded.hash,
			scan_id = excluded.scan_id,
			updated_at = excluded.updated_at`,
		pkg.Kind, pkg.Name, pkg.Path, int64(pkg.Version), pkg.Hash, scanID, formatTime(pkg.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert package %s/%s: %w", pkg.Kind, pkg.Name, err)
	}
	return nil
}

// Get returns the package of the given kind and name, or nil if it is not
// indexed. Names match case-insensitively.
func (s *Store) Get(kind, name string) (*Package, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(`
		SELECT kind, name, path, version, hash, scan_id, updated_at
		FROM packages WHERE kind = ? AND name = ?`, kind, name)
	pkg, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s/%s: %w", kind, name, err)
	}
	return pkg, nil
}

// Lookup returns the recorded root file of a package.
func (s *Store) Lookup(kind, name string) (string, bool, error) {
	pkg, err := s.Get(kind, name)
	if err != nil || pkg == nil {
		return "", false, err
	}
	return pkg.Path, true, nil
}

// Hash returns the content hash recorded for path, or "" if none is.
func (s *Store) Hash(path string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var hash string
	err := s.db.QueryRow(`SELECT hash FROM packages WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get content hash: %w", err)
	}
	return hash, nil
}

// List returns indexed packages ordered by kind and name. An empty kind
// lists every kind.
func (s *Store) List(kind string) ([]*Package, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT kind, name, path, version, hash, scan_id, updated_at FROM packages`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY kind, name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pkgs []*Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, rows.Err()
}

// Delete removes a package record.
func (s *Store) Delete(kind, name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(`DELETE FROM packages WHERE kind = ? AND name = ?`, kind, name); err != nil {
		return fmt.Errorf("failed to delete package %s/%s: %w", kind, name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*Package, error) {
	var (
		pkg     Package
		version int64
		scanID  sql.NullString
		updated string
	)
	if err := row.Scan(&pkg.Kind, &pkg.Name, &pkg.Path, &version, &pkg.Hash, &scanID, &updated); err != nil {
		return nil, err
	}
	pkg.Version = core.Version(version)
	pkg.ScanID = scanID.String

	t, err := parseTime(updated)
	if err != nil {
		return nil, err
	}
	pkg.UpdatedAt = t
	return &pkg, nil
}

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
