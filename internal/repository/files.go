package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/internal/entity"
)

type ReceiptFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptFile, error)
	GetByHash(ctx context.Context, hashHex string) (*entity.ReceiptFile, error)
	Create(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, error)
	// UpsertByHash returns the existing row when the content hash is already
	// known; the bool reports whether it was a duplicate.
	UpsertByHash(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, bool, error)
	Count(ctx context.Context) (int, error)
}

type receiptFileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewReceiptFileRepository(db *DB, logger *slog.Logger) ReceiptFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptFileRepo{db: db, logger: logger}
}

const fileColumns = `id, source_path, content_hash, filename, file_ext, file_size, uploaded_at`

func (r *receiptFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptFile, error) {
	row := r.db.queryRow(ctx, `SELECT `+fileColumns+` FROM receipt_files WHERE id = ?`, id.String())
	return scanFile(row)
}

func (r *receiptFileRepo) GetByHash(ctx context.Context, hashHex string) (*entity.ReceiptFile, error) {
	row := r.db.queryRow(ctx, `SELECT `+fileColumns+` FROM receipt_files WHERE content_hash = ?`, hashHex)
	return scanFile(row)
}

func (r *receiptFileRepo) Create(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, error) {
	out := *f
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.UploadedAt.IsZero() {
		out.UploadedAt = time.Now()
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO receipt_files (`+fileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID.String(), out.SourcePath, out.ContentHash, out.Filename, out.FileExt, out.FileSize, formatTime(out.UploadedAt),
	)
	if err != nil {
		r.logger.Error("failed to create receipt file", "source_path", f.SourcePath, "error", err)
		return nil, err
	}
	return &out, nil
}

func (r *receiptFileRepo) UpsertByHash(ctx context.Context, f *entity.ReceiptFile) (*entity.ReceiptFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, f)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}

func (r *receiptFileRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM receipt_files`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanFile(row *sql.Row) (*entity.ReceiptFile, error) {
	var (
		f          entity.ReceiptFile
		id         string
		uploadedAt string
	)
	err := row.Scan(&id, &f.SourcePath, &f.ContentHash, &f.Filename, &f.FileExt, &f.FileSize, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	f.UploadedAt = parseTime(uploadedAt)
	return &f, nil
}
