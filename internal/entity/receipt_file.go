package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptFile represents an ingested source file for data transfer
// between layers. ContentHash is the hex encoded sha256 of the bytes.
type ReceiptFile struct {
	ID          uuid.UUID `json:"id"`
	SourcePath  string    `json:"source_path"`
	ContentHash string    `json:"content_hash"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int       `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
