package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	revision INTEGER NOT NULL DEFAULT 1,
	extracted_text TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	used_ocr BOOLEAN NOT NULL DEFAULT FALSE,
	circular BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);

CREATE TABLE IF NOT EXISTS compliance_tasks (
	id TEXT PRIMARY KEY,
	document_id TEXT REFERENCES documents(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMPTZ,
	owner_role TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	citation TEXT NOT NULL DEFAULT '',
	maker TEXT NOT NULL,
	checker TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	review_note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compliance_tasks_status ON compliance_tasks(status);
CREATE INDEX IF NOT EXISTS idx_compliance_tasks_document ON compliance_tasks(document_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Create inserts a new document or, for a re-upload of an existing id,
// bumps the revision and resets extraction state. The stored revision is
// written back to doc so callers can log which revision workers must match.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, storage_path, revision, extracted_text, page_count, used_ocr, circular, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
	filename = EXCLUDED.filename,
	mime_type = EXCLUDED.mime_type,
	storage_path = EXCLUDED.storage_path,
	revision = documents.revision + 1,
	extracted_text = '',
	page_count = 0,
	used_ocr = FALSE,
	circular = FALSE,
	status = EXCLUDED.status,
	error_message = '',
	updated_at = EXCLUDED.updated_at
RETURNING revision
`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, doc.Revision, doc.Text, doc.PageCount,
		doc.UsedOCR, doc.Circular, string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err := row.Scan(&doc.Revision); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, revision, extracted_text, page_count, used_ocr, circular, status, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var status string

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Revision, &doc.Text,
		&doc.PageCount, &doc.UsedOCR, &doc.Circular, &status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "postgres.get_document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, mime_type, storage_path, revision, extracted_text, page_count, used_ocr, circular, status, error_message, created_at, updated_at
FROM documents
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		var status string
		err := rows.Scan(
			&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Revision, &doc.Text,
			&doc.PageCount, &doc.UsedOCR, &doc.Circular, &status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "postgres.update_status", fmt.Errorf("id=%s", id))
	}
	return nil
}

// SaveExtraction writes the extraction outcome for one specific revision.
// The revision guard turns the lost-update race between a re-upload and an
// in-flight worker into a no-op: the stale worker sees applied=false and
// drops its result.
func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, revision int, res domain.ExtractionResult, circular bool) (bool, error) {
	status := domain.StatusExtracted
	if !circular {
		status = domain.StatusRejected
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_text = $3, page_count = $4, used_ocr = $5, circular = $6, status = $7, error_message = '', updated_at = $8
WHERE id = $1 AND revision = $2
`, id, revision, res.Text, res.PageCount, res.UsedOCR, circular, string(status), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("save extraction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save extraction rows affected: %w", err)
	}
	return rows > 0, nil
}
