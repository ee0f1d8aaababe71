package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pdfdex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed document store. The primary table and the
// FTS5 companion table are mutated together inside one transaction per
// operation, so the full-text index is always a pure function of the
// live rows. A store-level mutex enforces the single-writer discipline;
// reads run concurrently under WAL.
type Store struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pdfdex/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pdfdex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document and its full-text entry in
// one transaction.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	return s.SaveDocuments(ctx, []*domain.Document{doc})
}

// SaveDocuments stores or updates documents in a single transaction.
func (s *Store) SaveDocuments(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, doc := range docs {
		if doc.ID == "" {
			return domain.ErrInvalidInput
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, doc := range docs {
		if err := upsertInTx(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// upsertInTx writes the primary row and rewrites its full-text entry.
// Both happen in the caller's transaction; neither can commit alone.
func upsertInTx(ctx context.Context, tx *sql.Tx, doc *domain.Document) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents
			(id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			description = excluded.description,
			fingerprint = excluded.fingerprint,
			path = excluded.path,
			location_tag = excluded.location_tag,
			indexed_at = excluded.indexed_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Content, doc.Description, doc.Fingerprint,
		doc.Path, doc.LocationTag, doc.IndexedAt, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents_fts WHERE doc_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing full-text entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents_fts (title, content, description, doc_id)
		VALUES (?, ?, ?, ?)
	`, doc.Title, doc.Content, doc.Description, doc.ID); err != nil {
		return fmt.Errorf("saving full-text entry: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// FindByFingerprint retrieves the oldest document with the given
// content digest.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at
		FROM documents WHERE fingerprint = ?
		ORDER BY created_at, id
		LIMIT 1
	`, fingerprint)

	return scanDocument(row)
}

// FindByPath retrieves the document at the given normalised path.
func (s *Store) FindByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at
		FROM documents WHERE path = ?
	`, path)

	return scanDocument(row)
}

// DeleteDocument removes a document and its full-text entry.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents_fts WHERE doc_id = ?", id); err != nil {
		return fmt.Errorf("deleting full-text entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteStale removes every document whose generation stamp differs
// from generation and returns the removed rows.
func (s *Store) DeleteStale(ctx context.Context, generation int64) ([]domain.Document, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `
		SELECT id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at
		FROM documents WHERE indexed_at != ?
		ORDER BY path
	`, generation)
	if err != nil {
		return nil, fmt.Errorf("querying stale documents: %w", err)
	}
	stale, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}

	for i := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", stale[i].ID); err != nil {
			return nil, fmt.Errorf("deleting stale document: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents_fts WHERE doc_id = ?", stale[i].ID); err != nil {
			return nil, fmt.Errorf("deleting stale full-text entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return stale, nil
}

// ListDocuments returns all documents ordered by path.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, description, fingerprint, path, location_tag, indexed_at, created_at, updated_at
		FROM documents ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return scanDocuments(rows)
}

// Search runs a ranked full-text query over title, content and
// description. Results come back most relevant first per bm25.
func (s *Store) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	match := prepareMatchQuery(query)
	if match == "" {
		return []domain.SearchResult{}, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.content, d.description, d.fingerprint, d.path,
		       d.location_tag, d.indexed_at, d.created_at, d.updated_at,
		       bm25(documents_fts) AS score
		FROM documents_fts
		INNER JOIN documents d ON d.id = documents_fts.doc_id
		WHERE documents_fts MATCH ?
		ORDER BY score
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("querying full-text index: %w", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var doc domain.Document
		var score float64
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Description,
			&doc.Fingerprint, &doc.Path, &doc.LocationTag, &doc.IndexedAt,
			&doc.CreatedAt, &doc.UpdatedAt, &score); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if !opts.WithContent {
			doc.Content = ""
		}
		// bm25 returns lower-is-better negative values; flip the sign
		// so callers see higher-is-better.
		results = append(results, domain.SearchResult{Document: doc, Score: -score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// prepareMatchQuery quotes each token so user input cannot inject FTS5
// query syntax. Tokens combine with implicit AND.
func prepareMatchQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// ==================== Scan Helpers ====================

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Description,
		&doc.Fingerprint, &doc.Path, &doc.LocationTag, &doc.IndexedAt,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// scanDocuments scans and closes a document result set.
func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Description,
			&doc.Fingerprint, &doc.Path, &doc.LocationTag, &doc.IndexedAt,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}
