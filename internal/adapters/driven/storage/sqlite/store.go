package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/documint-labs/documint/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// project and insight store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.documint/data/documint.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".documint", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "documint.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

// ProjectStore returns a ProjectStore interface backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// InsightStore returns an InsightStore interface backed by this store.
func (s *Store) InsightStore() driven.InsightStore {
	return &insightStore{store: s}
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

	// Sort and run migrations
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

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// Load retrieves a project by name.
func (s *projectStore) Load(ctx context.Context, name string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, domain, embedding_model, revision, updated_at
		FROM projects WHERE name = ?
	`, name)

	var project domain.Project
	var domainName string
	var updatedAt sql.NullTime
	if err := row.Scan(&project.Name, &domainName, &project.EmbeddingModel,
		&project.Revision, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	project.Domain = domain.Domain(domainName)
	if updatedAt.Valid {
		project.UpdatedAt = updatedAt.Time.UTC()
	}

	docs, err := s.loadDocuments(ctx, name)
	if err != nil {
		return nil, err
	}
	project.Documents = docs

	chunks, err := s.loadChunks(ctx, name)
	if err != nil {
		return nil, err
	}
	project.Chunks = chunks

	return &project, nil
}

// loadDocuments reads a project's document manifest in ingestion order.
func (s *projectStore) loadDocuments(ctx context.Context, projectName string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, byte_size, page_count, created_at
		FROM documents WHERE project_name = ?
		ORDER BY position
	`, projectName)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var createdAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.ByteSize,
			&doc.PageCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time.UTC()
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// loadChunks reads a project's chunks in stored order.
func (s *projectStore) loadChunks(ctx context.Context, projectName string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, heading, content, page_number, order_index, embedding
		FROM chunks WHERE project_name = ?
		ORDER BY position
	`, projectName)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Heading,
			&chunk.Content, &chunk.PageNumber, &chunk.OrderIndex, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// Save stores or replaces a project's manifest and chunks in a single
// transaction.
func (s *projectStore) Save(ctx context.Context, project *domain.Project) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	updatedAt := project.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (name, domain, embedding_model, revision, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			domain = excluded.domain,
			embedding_model = excluded.embedding_model,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`, project.Name, string(project.Domain), project.EmbeddingModel,
		project.Revision, updatedAt)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	// Replace the manifest and chunks wholesale. Positions preserve the
	// in-memory ordering across reloads.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE project_name = ?", project.Name); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE project_name = ?", project.Name); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	for i, doc := range project.Documents {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (project_name, id, name, byte_size, page_count, created_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, project.Name, doc.ID, doc.Name, doc.ByteSize, doc.PageCount,
			doc.CreatedAt, i); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.Name, err)
		}
	}

	for i, chunk := range project.Chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (project_name, id, document_id, heading, content, page_number, order_index, embedding, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, project.Name, chunk.ID, chunk.DocumentID, chunk.Heading, chunk.Content,
			chunk.PageNumber, chunk.OrderIndex, float32SliceToBytes(chunk.Embedding), i); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project save: %w", err)
	}
	return nil
}

// Delete removes a project entirely. Documents and chunks cascade.
func (s *projectStore) Delete(ctx context.Context, name string) error {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the names of all stored projects, sorted.
func (s *projectStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning project name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpdateEmbeddings writes chunk vectors back without touching the
// project structure or revision.
func (s *projectStore) UpdateEmbeddings(
	ctx context.Context, projectName string, vectors map[string][]float32, model string,
) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE projects SET embedding_model = ?, updated_at = ? WHERE name = ?
	`, model, time.Now().UTC(), projectName)
	if err != nil {
		return fmt.Errorf("updating embedding model: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	for chunkID, vec := range vectors {
		if _, err := tx.ExecContext(ctx, `
			UPDATE chunks SET embedding = ? WHERE project_name = ? AND id = ?
		`, float32SliceToBytes(vec), projectName, chunkID); err != nil {
			return fmt.Errorf("updating embedding for chunk %s: %w", chunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// UpdateDomain records the last query classification without touching
// the project structure or revision.
func (s *projectStore) UpdateDomain(
	ctx context.Context, projectName string, d domain.Domain,
) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE projects SET domain = ? WHERE name = ?
	`, string(d), projectName)
	if err != nil {
		return fmt.Errorf("updating domain: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close is satisfied by the parent store; the wrapper shares its
// connection.
func (s *projectStore) Close() error { return nil }

// ==================== Insight Store ====================

// insightStore implements driven.InsightStore.
type insightStore struct {
	store *Store
}

var _ driven.InsightStore = (*insightStore)(nil)

// Save stores an insight. Results are serialised as JSON.
func (s *insightStore) Save(ctx context.Context, insight *domain.Insight) error {
	resultsJSON, err := json.Marshal(insight.Results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	createdAt := insight.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO insights (id, project_name, persona, task, k, domain, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, insight.ID, insight.ProjectName, insight.Persona, insight.Task,
		insight.K, string(insight.Domain), string(resultsJSON), createdAt)
	if err != nil {
		return fmt.Errorf("saving insight: %w", err)
	}
	return nil
}

// Get retrieves an insight by ID.
func (s *insightStore) Get(ctx context.Context, id string) (*domain.Insight, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_name, persona, task, k, domain, results, created_at
		FROM insights WHERE id = ?
	`, id)

	insight, err := scanInsight(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading insight: %w", err)
	}
	return insight, nil
}

// ListByProject returns all insights for a project, newest first.
func (s *insightStore) ListByProject(ctx context.Context, projectName string) ([]domain.Insight, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_name, persona, task, k, domain, results, created_at
		FROM insights WHERE project_name = ?
		ORDER BY created_at DESC, id
	`, projectName)
	if err != nil {
		return nil, fmt.Errorf("querying insights: %w", err)
	}
	defer rows.Close()

	var insights []domain.Insight
	for rows.Next() {
		insight, err := scanInsight(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}
		insights = append(insights, *insight)
	}
	return insights, rows.Err()
}

// Delete removes an insight by ID.
func (s *insightStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM insights WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting insight: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanInsight reads one insight row via the given scan function.
func scanInsight(scan func(...any) error) (*domain.Insight, error) {
	var insight domain.Insight
	var domainName, resultsJSON string
	var createdAt sql.NullTime

	if err := scan(&insight.ID, &insight.ProjectName, &insight.Persona,
		&insight.Task, &insight.K, &domainName, &resultsJSON, &createdAt); err != nil {
		return nil, err
	}

	insight.Domain = domain.Domain(domainName)
	if createdAt.Valid {
		insight.CreatedAt = createdAt.Time.UTC()
	}
	if err := json.Unmarshal([]byte(resultsJSON), &insight.Results); err != nil {
		return nil, fmt.Errorf("unmarshalling results: %w", err)
	}
	return &insight, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
