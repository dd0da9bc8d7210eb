package extract

import (
	"context"
	"time"
)

// TextExtractor is stage 1 of processing: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}
