// Package export produces XLSX workbooks from stored receipts.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/repository"
)

// Service is a tiny façade over the receipt repository that renders
// exports. The workbook carries two sheets: one row per receipt and one
// row per line item.
type Service struct {
	receipts repository.ReceiptRepository
	logger   *slog.Logger
}

func NewService(receipts repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{receipts: receipts, logger: logger}
}

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Line Items"
)

// ExportReceiptsXLSX returns an XLSX workbook for receipts ingested inside
// the given window. Zero times mean unbounded.
func (s *Service) ExportReceiptsXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	start := time.Now()

	recs, err := s.receipts.List(ctx, repository.ListReceiptsParams{
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	if err := s.writeReceiptsSheet(f, recs); err != nil {
		return nil, err
	}
	if err := s.writeItemsSheet(f, recs); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeReceiptsSheet(f *excelize.File, recs []*entity.Receipt) error {
	headers := []string{"Vendor", "Amount", "Date", "Category", "Items", "Source File", "Ingested At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(receiptsSheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(receiptsSheet, cell, v)
		}
		write(1, strOrEmpty(r.Vendor))
		if r.Amount != nil {
			write(2, r.Amount.String())
		}
		write(3, strOrEmpty(r.TxDate))
		write(4, r.Category)
		write(5, len(r.LineItems))
		write(6, strOrEmpty(r.SourceFile))
		write(7, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row++
	}

	_ = f.SetColWidth(receiptsSheet, "A", "A", 32) // vendor
	_ = f.SetColWidth(receiptsSheet, "B", "B", 14) // amount
	_ = f.SetColWidth(receiptsSheet, "C", "C", 22) // date
	_ = f.SetColWidth(receiptsSheet, "D", "D", 16) // category
	_ = f.SetColWidth(receiptsSheet, "F", "G", 28)
	return nil
}

func (s *Service) writeItemsSheet(f *excelize.File, recs []*entity.Receipt) error {
	headers := []string{"Vendor", "Item", "Quantity", "Unit Price", "Total Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(itemsSheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, r := range recs {
		for _, li := range r.LineItems {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(itemsSheet, cell, v)
			}
			write(1, strOrEmpty(r.Vendor))
			write(2, li.Name)
			write(3, li.Quantity)
			write(4, li.UnitPrice.String())
			write(5, li.TotalPrice.String())
			row++
		}
	}

	_ = f.SetColWidth(itemsSheet, "A", "B", 32)
	_ = f.SetColWidth(itemsSheet, "C", "E", 14)
	return nil
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
