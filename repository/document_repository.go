package repository

import (
	"context"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for bid documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record. The caller assigns the ID up front
// so the stored payload path and the row agree. Extracted text and metadata
// are written once here; re-extraction requires a new upload.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	query := `
		INSERT INTO documents (
			id, bid_id, document_type, filename, storage_path, file_size,
			mime_type, extracted_text, document_metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING uploaded_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.BidID,
		doc.DocumentType,
		doc.Filename,
		doc.StoragePath,
		doc.FileSize,
		doc.MimeType,
		doc.ExtractedText,
		doc.Metadata,
	).Scan(&doc.UploadedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, bid_id, document_type, filename, storage_path, file_size,
			mime_type, extracted_text, document_metadata, uploaded_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.BidID,
		&doc.DocumentType,
		&doc.Filename,
		&doc.StoragePath,
		&doc.FileSize,
		&doc.MimeType,
		&doc.ExtractedText,
		&doc.Metadata,
		&doc.UploadedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByBidID retrieves all documents for a bid in upload order
func (r *DocumentRepository) ListByBidID(ctx context.Context, bidID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, bid_id, document_type, filename, storage_path, file_size,
			mime_type, extracted_text, document_metadata, uploaded_at
		FROM documents
		WHERE bid_id = $1
		ORDER BY uploaded_at ASC`

	rows, err := r.db.Query(ctx, query, bidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.BidID,
			&doc.DocumentType,
			&doc.Filename,
			&doc.StoragePath,
			&doc.FileSize,
			&doc.MimeType,
			&doc.ExtractedText,
			&doc.Metadata,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Delete deletes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
