package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/entity"
)

type ExtractJobRepository interface {
	// Start records a RUNNING job for the file and returns it.
	Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error)
	// MarkTextExtracted moves the job to TEXT_OK and stores the raw text.
	MarkTextExtracted(ctx context.Context, id uuid.UUID, text string, confidence float32) error
	// MarkParsed moves the job to PARSED and links the stored receipt.
	MarkParsed(ctx context.Context, id, receiptID uuid.UUID, extracted json.RawMessage) error
	// MarkFailed moves the job to its terminal FAILED state.
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
}

type extractJobRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewExtractJobRepository(db *DB, logger *slog.Logger) ExtractJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractJobRepo{db: db, logger: logger}
}

const jobColumns = `id, file_id, receipt_id, format, status, started_at, finished_at, error_message, confidence, ocr_text, extracted_json`

func (r *extractJobRepo) Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		Status:    constants.JobStatusRunning,
		StartedAt: time.Now(),
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO extract_jobs (id, file_id, format, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		job.ID.String(), fileID.String(), format, string(job.Status), formatTime(job.StartedAt),
	)
	if err != nil {
		r.logger.Error("failed to start extract job", "file_id", fileID, "error", err)
		return nil, err
	}
	return job, nil
}

func (r *extractJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	row := r.db.queryRow(ctx, `SELECT `+jobColumns+` FROM extract_jobs WHERE id = ?`, id.String())

	var (
		job                 entity.ExtractJob
		jobID, fileID       string
		receiptID, finished sql.NullString
		status              string
		startedAt           string
		errMsg, ocrText     sql.NullString
		confidence          sql.NullFloat64
		extracted           sql.NullString
	)
	err := row.Scan(&jobID, &fileID, &receiptID, &job.Format, &status, &startedAt,
		&finished, &errMsg, &confidence, &ocrText, &extracted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if job.ID, err = uuid.Parse(jobID); err != nil {
		return nil, err
	}
	if job.FileID, err = uuid.Parse(fileID); err != nil {
		return nil, err
	}
	if receiptID.Valid {
		rid, err := uuid.Parse(receiptID.String)
		if err != nil {
			return nil, err
		}
		job.ReceiptID = &rid
	}
	job.Status = constants.JobStatus(status)
	job.StartedAt = parseTime(startedAt)
	if finished.Valid {
		t := parseTime(finished.String)
		job.FinishedAt = &t
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if confidence.Valid {
		c := float32(confidence.Float64)
		job.Confidence = &c
	}
	if ocrText.Valid {
		job.OCRText = &ocrText.String
	}
	if extracted.Valid {
		job.ExtractedJSON = json.RawMessage(extracted.String)
	}
	return &job, nil
}

func (r *extractJobRepo) MarkTextExtracted(ctx context.Context, id uuid.UUID, text string, confidence float32) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_jobs SET status = ?, ocr_text = ?, confidence = ? WHERE id = ?`,
		string(constants.JobStatusTextOK), text, confidence, id.String(),
	)
	return checkAffected(res, err)
}

func (r *extractJobRepo) MarkParsed(ctx context.Context, id, receiptID uuid.UUID, extracted json.RawMessage) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_jobs SET status = ?, receipt_id = ?, extracted_json = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusParsed), receiptID.String(), string(extracted), formatTime(time.Now()), id.String(),
	)
	return checkAffected(res, err)
}

func (r *extractJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), msg, formatTime(time.Now()), id.String(),
	)
	return checkAffected(res, err)
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
