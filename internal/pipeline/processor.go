// Package pipeline coordinates the two extraction stages over stored
// files: text extraction (OCR) and field parsing.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/extract"
	"github.com/oduya/receipt-tracker/internal/parse"
	"github.com/oduya/receipt-tracker/internal/repository"
)

// Processor runs text extract then field parse for one file, recording
// progress on an extract job as it goes.
type Processor struct {
	files     repository.ReceiptFileRepository
	jobs      repository.ExtractJobRepository
	receipts  repository.ReceiptRepository
	extractor extract.TextExtractor
	parser    *parse.Pipeline
	logger    *slog.Logger
}

func NewProcessor(
	files repository.ReceiptFileRepository,
	jobs repository.ExtractJobRepository,
	receipts repository.ReceiptRepository,
	extractor extract.TextExtractor,
	parser *parse.Pipeline,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		files:     files,
		jobs:      jobs,
		receipts:  receipts,
		extractor: extractor,
		parser:    parser,
		logger:    logger,
	}
}

// ProcessFile runs both stages for a stored file and returns the job ID.
// Parse failures are terminal for the job but are not returned as errors;
// the job row carries the message.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (uuid.UUID, error) {
	file, err := p.files.GetByID(ctx, fileID)
	if err != nil {
		p.logger.Error("processor: file lookup failed", "file_id", fileID, "error", err)
		return uuid.Nil, err
	}

	job, err := p.jobs.Start(ctx, fileID, constants.MapExtToFormat(file.FileExt))
	if err != nil {
		return uuid.Nil, err
	}

	textRes, err := p.extractor.Extract(ctx, file.SourcePath)
	if err != nil {
		p.logger.Error("processor: text extraction failed", "file_id", fileID, "job_id", job.ID, "error", err)
		if markErr := p.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			p.logger.Error("processor: failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		return job.ID, err
	}
	if err := p.jobs.MarkTextExtracted(ctx, job.ID, textRes.Text, textRes.Confidence); err != nil {
		return job.ID, err
	}
	p.logger.Debug("extract stage done",
		"file_id", fileID,
		"job_id", job.ID,
		"method", textRes.Method,
		"pages", textRes.Pages,
		"confidence", textRes.Confidence,
	)

	res := p.parser.Process(textRes.Text)
	if !res.Success {
		p.logger.Warn("parse stage failed", "job_id", job.ID, "reason", res.Error)
		if markErr := p.jobs.MarkFailed(ctx, job.ID, res.Error); markErr != nil {
			return job.ID, markErr
		}
		return job.ID, nil
	}

	extracted, err := json.Marshal(res)
	if err != nil {
		return job.ID, err
	}
	if err := parse.ValidateResultJSON(extracted); err != nil {
		p.logger.Error("processor: result document failed schema validation", "job_id", job.ID, "error", err)
		if markErr := p.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			p.logger.Error("processor: failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		return job.ID, err
	}

	rc, err := p.receipts.CreateFromResult(ctx, &repository.CreateReceiptRequest{
		FileID:     &fileID,
		SourceFile: file.Filename,
		Result:     res,
	})
	if err != nil {
		if markErr := p.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			p.logger.Error("processor: failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		return job.ID, err
	}
	if err := p.jobs.MarkParsed(ctx, job.ID, rc.ID, extracted); err != nil {
		return job.ID, err
	}
	p.logger.Info("file processed", "file_id", fileID, "job_id", job.ID, "receipt_id", rc.ID, "category", rc.Category)
	return job.ID, nil
}
