package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentType categorizes an uploaded bid document
type DocumentType string

const (
	DocumentTypeFinancial DocumentType = "financial"
	DocumentTypeRFP       DocumentType = "rfp"
	DocumentTypeEOI       DocumentType = "eoi"
	DocumentTypeSBD       DocumentType = "sbd" // Standard Bidding Document
	DocumentTypeSPQ       DocumentType = "spq" // Supplier Pre-Qualification
	DocumentTypeTechnical DocumentType = "technical"
	DocumentTypeOther     DocumentType = "other"
)

// DocumentMetadata holds per-format extraction metadata
type DocumentMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m DocumentMetadata) Value() (driver.Value, error) {
	if m == nil {
		m = make(DocumentMetadata)
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *DocumentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(DocumentMetadata)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*m = make(DocumentMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Document represents an uploaded bid document. ExtractedText is filled once
// at upload time and is immutable afterwards; re-extraction requires a new
// upload. The text may itself carry an embedded extraction error description,
// which is not a failure signal.
type Document struct {
	ID            uuid.UUID        `json:"id"`
	BidID         uuid.UUID        `json:"bid_id"`
	DocumentType  DocumentType     `json:"document_type"`
	Filename      string           `json:"filename"`
	StoragePath   string           `json:"storage_path"`
	FileSize      int64            `json:"file_size"`
	MimeType      string           `json:"mime_type"`
	ExtractedText string           `json:"extracted_text"`
	Metadata      DocumentMetadata `json:"document_metadata"`
	UploadedAt    time.Time        `json:"uploaded_at"`
}
