package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"tenderpulse-backend/extractor"
	"tenderpulse-backend/models"
	"tenderpulse-backend/repository"
	"tenderpulse-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for bid documents
type DocumentHandler struct {
	docRepo          *repository.DocumentRepository
	bidRepo          *repository.BidRepository
	storage          storage.Storage
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docRepo *repository.DocumentRepository, bidRepo *repository.BidRepository, store storage.Storage, maxFileSize int64) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = 50 * 1024 * 1024
	}
	return &DocumentHandler{
		docRepo:     docRepo,
		bidRepo:     bidRepo,
		storage:     store,
		maxFileSize: maxFileSize,
		allowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"application/msword": true, // .doc
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
			"application/vnd.ms-excel": true, // .xls
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
		},
	}
}

// UploadDocument handles POST /api/bids/:id/documents. The document payload
// is stored, text is extracted immediately, and both are persisted together.
// Extraction never fails the upload: failures land in the stored text as an
// embedded error description.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	bidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	if _, err := h.bidRepo.GetByID(c.Request.Context(), bidID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	docType := models.DocumentType(c.PostForm("document_type"))
	if docType == "" {
		docType = models.DocumentTypeOther
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeForFilename(fileHeader.Filename)
	}

	if !h.allowedMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, DOC, DOCX, XLS, XLSX",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	// Extraction needs the raw bytes, so buffer the payload before upload.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	documentID := uuid.New()

	storagePath, err := h.storage.Upload(c.Request.Context(), documentID, fileHeader.Filename, bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to upload file: %v", err),
			},
		})
		return
	}

	ext := filepath.Ext(fileHeader.Filename)
	text := extractor.Extract(data, ext)

	metadata := models.DocumentMetadata{
		"format": string(extractor.FormatForExtension(ext)),
	}
	switch {
	case extractor.IsErrorText(text):
		slog.Warn("document text extraction failed, storing error description",
			"document_id", documentID, "filename", fileHeader.Filename)
		metadata["extraction_error"] = true
	case text == "":
		slog.Warn("no text extracted from document",
			"document_id", documentID, "filename", fileHeader.Filename)
	}

	doc := &models.Document{
		ID:            documentID,
		BidID:         bidID,
		DocumentType:  docType,
		Filename:      fileHeader.Filename,
		StoragePath:   storagePath,
		FileSize:      fileHeader.Size,
		MimeType:      mimeType,
		ExtractedText: extractor.ClampForStorage(text),
		Metadata:      metadata,
	}

	if err := h.docRepo.Create(c.Request.Context(), doc); err != nil {
		h.storage.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save document record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":            doc.ID,
			"bid_id":        doc.BidID,
			"document_type": doc.DocumentType,
			"filename":      doc.Filename,
			"mime_type":     doc.MimeType,
			"file_size":     doc.FileSize,
			"uploaded_at":   doc.UploadedAt,
		},
	})
}

// ListBidDocuments handles GET /api/bids/:id/documents
func (h *DocumentHandler) ListBidDocuments(c *gin.Context) {
	bidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	docs, err := h.docRepo.ListByBidID(c.Request.Context(), bidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}

// DownloadDocument handles GET /api/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	doc, err := h.docRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download document: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, reader, nil)
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	doc, err := h.docRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	if err := h.docRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.storage.Delete(c.Request.Context(), doc.StoragePath); err != nil {
		slog.Warn("failed to delete stored payload", "document_id", id, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": id,
		},
	})
}

func mimeTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
