package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/constants"
)

// ExtractJob tracks one extraction run over one file, for data transfer
// between layers.
type ExtractJob struct {
	ID            uuid.UUID           `json:"id"`
	FileID        uuid.UUID           `json:"file_id"`
	ReceiptID     *uuid.UUID          `json:"receipt_id,omitempty"`
	Format        string              `json:"format"`
	Status        constants.JobStatus `json:"status"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
	ErrorMessage  *string             `json:"error_message,omitempty"`
	Confidence    *float32            `json:"confidence,omitempty"`
	OCRText       *string             `json:"ocr_text,omitempty"`
	ExtractedJSON json.RawMessage     `json:"extracted_json,omitempty"`
}
