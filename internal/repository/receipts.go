package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/parse"
)

// CreateReceiptRequest wraps parameters for storing an extraction result.
type CreateReceiptRequest struct {
	FileID     *uuid.UUID
	SourceFile string
	Result     parse.Result
}

// UpdateReceiptParams carries the manually correctable fields; nil means
// leave the column as it is.
type UpdateReceiptParams struct {
	Vendor   *string
	Amount   *decimal.Decimal
	TxDate   *string
	Category *string
}

// ListReceiptsParams filter List; zero values mean unfiltered.
type ListReceiptsParams struct {
	Category    string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Offset      int
}

type ReceiptRepository interface {
	CreateFromResult(ctx context.Context, req *CreateReceiptRequest) (*entity.Receipt, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	List(ctx context.Context, params ListReceiptsParams) ([]*entity.Receipt, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateReceiptParams) (*entity.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type receiptRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReceiptRepository(db *DB, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, logger: logger}
}

const receiptColumns = `id, file_id, vendor, amount, tx_date, category, raw_text, success, error, source_file, created_at, updated_at`

func (r *receiptRepository) CreateFromResult(ctx context.Context, req *CreateReceiptRequest) (*entity.Receipt, error) {
	now := time.Now()
	rc := &entity.Receipt{
		ID:        uuid.New(),
		FileID:    req.FileID,
		Vendor:    req.Result.Vendor,
		Amount:    req.Result.Amount,
		TxDate:    req.Result.Date,
		Category:  req.Result.Category,
		RawText:   req.Result.RawText,
		Success:   req.Result.Success,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Result.Error != "" {
		msg := req.Result.Error
		rc.Error = &msg
	}
	if req.SourceFile != "" {
		sf := req.SourceFile
		rc.SourceFile = &sf
	}

	var fileID any
	if rc.FileID != nil {
		fileID = rc.FileID.String()
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO receipts (`+receiptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID.String(), fileID, rc.Vendor, decimalText(rc.Amount), rc.TxDate, rc.Category,
		rc.RawText, boolInt(rc.Success), rc.Error, rc.SourceFile,
		formatTime(rc.CreatedAt), formatTime(rc.UpdatedAt),
	)
	if err != nil {
		r.logger.Error("failed to create receipt", "source_file", req.SourceFile, "error", err)
		return nil, err
	}

	for i, li := range req.Result.LineItems {
		item := entity.LineItem{
			ID:         uuid.New(),
			ReceiptID:  rc.ID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice,
			TotalPrice: li.TotalPrice,
			Position:   i,
		}
		_, err := r.db.exec(ctx,
			`INSERT INTO line_items (id, receipt_id, name, quantity, unit_price, total_price, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID.String(), item.ReceiptID.String(), item.Name, item.Quantity,
			item.UnitPrice.String(), item.TotalPrice.String(), item.Position,
		)
		if err != nil {
			r.logger.Error("failed to create line item", "receipt_id", rc.ID, "error", err)
			return nil, err
		}
		rc.LineItems = append(rc.LineItems, item)
	}
	if rc.LineItems == nil {
		rc.LineItems = []entity.LineItem{}
	}
	return rc, nil
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	rows, err := r.db.query(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	rc, err := scanReceipt(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadLineItems(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *receiptRepository) List(ctx context.Context, params ListReceiptsParams) ([]*entity.Receipt, error) {
	q := `SELECT ` + receiptColumns + ` FROM receipts WHERE 1=1`
	var args []any
	if params.Category != "" {
		q += ` AND category = ?`
		args = append(args, params.Category)
	}
	if !params.CreatedFrom.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, formatTime(params.CreatedFrom))
	}
	if !params.CreatedTo.IsZero() {
		q += ` AND created_at <= ?`
		args = append(args, formatTime(params.CreatedTo))
	}
	q += ` ORDER BY created_at DESC`
	if params.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, params.Limit)
	}
	if params.Offset > 0 {
		q += ` OFFSET ?`
		args = append(args, params.Offset)
	}

	rows, err := r.db.query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list receipts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rc := range out {
		if err := r.loadLineItems(ctx, rc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *receiptRepository) Update(ctx context.Context, id uuid.UUID, params UpdateReceiptParams) (*entity.Receipt, error) {
	q := `UPDATE receipts SET updated_at = ?`
	args := []any{formatTime(time.Now())}
	if params.Vendor != nil {
		q += `, vendor = ?`
		args = append(args, *params.Vendor)
	}
	if params.Amount != nil {
		q += `, amount = ?`
		args = append(args, params.Amount.String())
	}
	if params.TxDate != nil {
		q += `, tx_date = ?`
		args = append(args, *params.TxDate)
	}
	if params.Category != nil {
		q += `, category = ?`
		args = append(args, *params.Category)
	}
	q += ` WHERE id = ?`
	args = append(args, id.String())

	res, err := r.db.exec(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to update receipt", "receipt_id", id, "error", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.exec(ctx, `DELETE FROM receipts WHERE id = ?`, id.String())
	if err != nil {
		r.logger.Error("failed to delete receipt", "receipt_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = r.db.exec(ctx, `DELETE FROM line_items WHERE receipt_id = ?`, id.String())
	return err
}

func (r *receiptRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *receiptRepository) loadLineItems(ctx context.Context, rc *entity.Receipt) error {
	rows, err := r.db.query(ctx,
		`SELECT id, receipt_id, name, quantity, unit_price, total_price, position
		 FROM line_items WHERE receipt_id = ? ORDER BY position`, rc.ID.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	rc.LineItems = []entity.LineItem{}
	for rows.Next() {
		var (
			item            entity.LineItem
			id, recID       string
			unitStr, totStr string
		)
		if err := rows.Scan(&id, &recID, &item.Name, &item.Quantity, &unitStr, &totStr, &item.Position); err != nil {
			return err
		}
		if item.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if item.ReceiptID, err = uuid.Parse(recID); err != nil {
			return err
		}
		if item.UnitPrice, err = decimal.NewFromString(unitStr); err != nil {
			return err
		}
		if item.TotalPrice, err = decimal.NewFromString(totStr); err != nil {
			return err
		}
		rc.LineItems = append(rc.LineItems, item)
	}
	return rows.Err()
}

func scanReceipt(rows *sql.Rows) (*entity.Receipt, error) {
	var (
		rc                   entity.Receipt
		id                   string
		fileID, amount       sql.NullString
		vendor, txDate       sql.NullString
		errMsg, sourceFile   sql.NullString
		success              int
		createdAt, updatedAt string
	)
	err := rows.Scan(&id, &fileID, &vendor, &amount, &txDate, &rc.Category, &rc.RawText,
		&success, &errMsg, &sourceFile, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if rc.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if fileID.Valid {
		fid, err := uuid.Parse(fileID.String)
		if err != nil {
			return nil, err
		}
		rc.FileID = &fid
	}
	if vendor.Valid {
		rc.Vendor = &vendor.String
	}
	if amount.Valid {
		d, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, err
		}
		rc.Amount = &d
	}
	if txDate.Valid {
		rc.TxDate = &txDate.String
	}
	if errMsg.Valid {
		rc.Error = &errMsg.String
	}
	if sourceFile.Valid {
		rc.SourceFile = &sourceFile.String
	}
	rc.Success = success != 0
	rc.CreatedAt = parseTime(createdAt)
	rc.UpdatedAt = parseTime(updatedAt)
	return &rc, nil
}

func decimalText(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
