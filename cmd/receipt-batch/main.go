package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oduya/receipt-tracker/internal/common"
	"github.com/oduya/receipt-tracker/internal/export"
	"github.com/oduya/receipt-tracker/internal/extract"
	"github.com/oduya/receipt-tracker/internal/ingest"
	"github.com/oduya/receipt-tracker/internal/ocr"
	"github.com/oduya/receipt-tracker/internal/parse"
	"github.com/oduya/receipt-tracker/internal/pipeline"
	"github.com/oduya/receipt-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use a throwaway SQLite database instead of DB_URL")
		dir     = flag.String("dir", "", "directory to process receipts from (required)")
		out     = flag.String("out", "", "output XLSX file path (defaults to <dir>/../receipts.xlsx)")
		fromStr = flag.String("from", "", "only export receipts ingested on or after this date, YYYY-MM-DD")
		toStr   = flag.String("to", "", "only export receipts ingested on or before this date, YYYY-MM-DD")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "receipts.xlsx")
	}

	var from, to time.Time
	var err error
	if *fromStr != "" {
		if from, err = time.Parse("2006-01-02", *fromStr); err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
	}
	if *toStr != "" {
		if to, err = time.Parse("2006-01-02", *toStr); err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	dbCfg := repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}
	if *inmem {
		tmpDir, err := os.MkdirTemp("", "receipt-batch-*")
		if err != nil {
			logger.Error("failed to create temp dir", "error", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()
		dbCfg.Driver = repository.DriverSQLite
		dbCfg.DSN = filepath.Join(tmpDir, "batch.db")
	}

	db, err := repository.Open(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	filesRepo := repository.NewReceiptFileRepository(db, logger)
	jobsRepo := repository.NewExtractJobRepository(db, logger)
	receiptsRepo := repository.NewReceiptRepository(db, logger)

	extractor := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger), logger)

	parser := parse.NewPipeline(parse.Config{
		MinTextLength: cfg.Parser.MinTextLength,
		MinAmount:     decimal.NewFromFloat(cfg.Parser.MinAmount),
		MaxAmount:     decimal.NewFromFloat(cfg.Parser.MaxAmount),
		MinItemTotal:  decimal.NewFromFloat(cfg.Parser.MinItemTotal),
	}, logger)

	processor := pipeline.NewProcessor(filesRepo, jobsRepo, receiptsRepo, extractor, parser, logger)
	ingestor := ingest.NewFSIngestor(filesRepo, logger)

	logger.Info("starting ingestion", "dir", *dir)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	var ingested []uuid.UUID
	for _, result := range results {
		if result.Err != "" || result.Deduplicated {
			continue
		}
		fileID, err := uuid.Parse(result.FileID)
		if err != nil {
			logger.Error("failed to parse file ID", "file_id", result.FileID, "error", err)
			continue
		}
		ingested = append(ingested, fileID)
	}
	logger.Info("ingestion complete",
		"files_ingested", len(ingested),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	processed := 0
	failures := 0
	for _, fileID := range ingested {
		logger.Info("processing file", "file_id", fileID)
		if _, err := processor.ProcessFile(ctx, fileID); err != nil {
			logger.Error("failed to process file", "file_id", fileID, "error", err)
			failures++
		} else {
			processed++
		}
	}

	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(receiptsRepo, logger)
	xlsxBytes, err := exportService.ExportReceiptsXLSX(ctx, from, to)
	if err != nil {
		logger.Error("failed to export receipts", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_ingested", len(ingested),
		"files_processed", processed,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files ingested: %d\n", len(ingested))
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}
