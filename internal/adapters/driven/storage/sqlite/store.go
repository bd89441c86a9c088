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

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db       *sql.DB
	path     string
	capacity int64
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/recall.db.
// A non-positive capacityBytes means unlimited storage.
func NewStore(dataDir string, capacityBytes int64) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "recall.db")

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
		db:       db,
		path:     dbPath,
		capacity: capacityBytes,
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

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// UsageStore returns a UsageStore interface backed by this store.
func (s *Store) UsageStore() driven.UsageStore {
	return &usageStore{store: s}
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

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument atomically stores a document with its chunks, enforcing
// the capacity ceiling inside the transaction.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	stored := storedBytes(doc, chunks)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if s.store.capacity > 0 {
		var used int64
		row := tx.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(stored_bytes), 0) FROM documents WHERE project_id = ?",
			doc.ProjectID)
		if err := row.Scan(&used); err != nil {
			return fmt.Errorf("summing stored bytes: %w", err)
		}
		if used+stored > s.store.capacity {
			return domain.ErrQuotaExceeded
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, project_id, name, content, content_type, size_bytes, stored_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.Name, doc.Content, doc.ContentType,
		doc.SizeBytes, stored, doc.CreatedAt); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, start_offset, end_offset,
			keywords, embedding, embedding_model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		keywordsJSON, err := json.Marshal(chunk.Keywords)
		if err != nil {
			return fmt.Errorf("marshalling keywords: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Index,
			chunk.Content, chunk.StartOffset, chunk.EndOffset,
			string(keywordsJSON), embeddingBlob, chunk.EmbeddingModel, chunk.CreatedAt); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, content, content_type, size_bytes, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocumentRow(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns documents for a project in insertion order.
func (s *documentStore) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, name, content, content_type, size_bytes, created_at
		FROM documents WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, start_offset, end_offset,
			keywords, embedding, embedding_model, created_at
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ListChunks returns all chunks for a project, by document insertion
// order then position.
func (s *documentStore) ListChunks(ctx context.Context, projectID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.position, c.content, c.start_offset, c.end_offset,
			c.keywords, c.embedding, c.embedding_model, c.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.project_id = ?
		ORDER BY d.rowid, c.position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying project chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteDocument removes a document; the foreign key cascades to chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats reports aggregate usage for a project.
func (s *documentStore) Stats(ctx context.Context, projectID string) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{CapacityBytes: s.store.capacity}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(stored_bytes), 0)
		FROM documents WHERE project_id = ?
	`, projectID)
	if err := row.Scan(&stats.DocumentCount, &stats.BytesUsed); err != nil {
		return nil, fmt.Errorf("scanning document stats: %w", err)
	}

	row = s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN c.embedding IS NOT NULL AND c.embedding_model != '' THEN 1 ELSE 0 END), 0)
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.project_id = ?
	`, projectID)
	if err := row.Scan(&stats.ChunkCount, &stats.EmbeddingCount); err != nil {
		return nil, fmt.Errorf("scanning chunk stats: %w", err)
	}

	return stats, nil
}

// EvictOldest removes the oldest document of a project and returns it.
func (s *documentStore) EvictOldest(ctx context.Context, projectID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, content, content_type, size_bytes, created_at
		FROM documents WHERE project_id = ?
		ORDER BY created_at, rowid
		LIMIT 1
	`, projectID)

	doc, err := scanDocumentRow(row)
	if err != nil {
		return nil, err
	}

	if err := s.DeleteDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("evicting document: %w", err)
	}
	return doc, nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// AppendMessage stores a new chat message.
func (s *chatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	sourcesJSON, err := json.Marshal(msg.Sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	usageJSON, err := json.Marshal(msg.Usage)
	if err != nil {
		return fmt.Errorf("marshalling usage: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, project_id, role, content, sources, usage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ProjectID, string(msg.Role), msg.Content,
		string(sourcesJSON), string(usageJSON), msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// ListMessages returns a project's messages in insertion order.
func (s *chatStore) ListMessages(ctx context.Context, projectID string) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, role, content, sources, usage, created_at
		FROM messages WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		var sourcesJSON, usageJSON string
		var createdAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.ProjectID, &role, &msg.Content,
			&sourcesJSON, &usageJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg.Role = domain.MessageRole(role)
		if createdAt.Valid {
			msg.CreatedAt = createdAt.Time
		}

		if sourcesJSON != "" && sourcesJSON != jsonNull {
			if err := json.Unmarshal([]byte(sourcesJSON), &msg.Sources); err != nil {
				return nil, fmt.Errorf("unmarshalling sources: %w", err)
			}
		}
		if usageJSON != "" && usageJSON != jsonNull {
			var usage domain.MessageUsage
			if err := json.Unmarshal([]byte(usageJSON), &usage); err != nil {
				return nil, fmt.Errorf("unmarshalling usage: %w", err)
			}
			msg.Usage = &usage
		}

		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}

// ClearMessages removes all messages for a project.
func (s *chatStore) ClearMessages(ctx context.Context, projectID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM messages WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return nil
}

// ==================== Usage Store ====================

// usageStore implements driven.UsageStore.
type usageStore struct {
	store *Store
}

var _ driven.UsageStore = (*usageStore)(nil)

// AppendUsage stores a new usage record.
func (s *usageStore) AppendUsage(ctx context.Context, rec *domain.UsageRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, project_id, kind, quantity, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ProjectID, string(rec.Kind), rec.Quantity, rec.Cost, rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving usage record: %w", err)
	}
	return nil
}

// ListUsage returns records created in [from, to) in insertion order.
func (s *usageStore) ListUsage(
	ctx context.Context, projectID string, from, to time.Time,
) ([]domain.UsageRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, kind, quantity, cost, created_at
		FROM usage_records
		WHERE project_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY rowid
	`, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var records []domain.UsageRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.UsageRecord
		var kind string
		var createdAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &kind, &rec.Quantity, &rec.Cost, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning usage record: %w", err)
		}
		rec.Kind = domain.OperationKind(kind)
		if createdAt.Valid {
			rec.CreatedAt = createdAt.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage records: %w", err)
	}

	return records, nil
}

// SumCost returns the total cost of records created in [from, to).
func (s *usageStore) SumCost(ctx context.Context, projectID string, from, to time.Time) (float64, error) {
	var total float64
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cost), 0)
		FROM usage_records
		WHERE project_id = ? AND created_at >= ? AND created_at < ?
	`, projectID, from, to)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("summing usage cost: %w", err)
	}
	return total, nil
}

// ResetUsage removes all records for a project.
func (s *usageStore) ResetUsage(ctx context.Context, projectID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM usage_records WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("resetting usage records: %w", err)
	}
	return nil
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

// storedBytes computes the stored footprint of a document: raw content
// plus chunk text plus four bytes per embedding dimension.
func storedBytes(doc *domain.Document, chunks []domain.Chunk) int64 {
	total := int64(len(doc.Content))
	for _, chunk := range chunks {
		total += int64(len(chunk.Content)) + int64(4*len(chunk.Embedding))
	}
	return total
}

// scanDocument scans a document from *sql.Rows.
func scanDocument(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var createdAt sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Name, &doc.Content,
		&doc.ContentType, &doc.SizeBytes, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}

// scanDocumentRow scans a document from *sql.Row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var createdAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.ProjectID, &doc.Name, &doc.Content,
		&doc.ContentType, &doc.SizeBytes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}

// scanChunks scans multiple chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var keywordsJSON string
		var embeddingBlob []byte
		var createdAt sql.NullTime

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content,
			&chunk.StartOffset, &chunk.EndOffset, &keywordsJSON,
			&embeddingBlob, &chunk.EmbeddingModel, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		if createdAt.Valid {
			chunk.CreatedAt = createdAt.Time
		}

		if keywordsJSON != "" && keywordsJSON != jsonNull {
			if err := json.Unmarshal([]byte(keywordsJSON), &chunk.Keywords); err != nil {
				return nil, fmt.Errorf("unmarshalling keywords: %w", err)
			}
		}

		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
