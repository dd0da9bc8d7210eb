package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oduya/receipt-tracker/internal/async"
	"github.com/oduya/receipt-tracker/internal/common"
	"github.com/oduya/receipt-tracker/internal/export"
	"github.com/oduya/receipt-tracker/internal/extract"
	"github.com/oduya/receipt-tracker/internal/ingest"
	"github.com/oduya/receipt-tracker/internal/ocr"
	"github.com/oduya/receipt-tracker/internal/parse"
	"github.com/oduya/receipt-tracker/internal/pipeline"
	"github.com/oduya/receipt-tracker/internal/repository"
	"github.com/oduya/receipt-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("db health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("db health ok", "driver", cfg.Database.Driver)

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		logger.Error("create upload dir", "dir", cfg.Server.UploadDir, "error", err)
		os.Exit(1)
	}

	filesRepo := repository.NewReceiptFileRepository(db, logger)
	jobsRepo := repository.NewExtractJobRepository(db, logger)
	receiptsRepo := repository.NewReceiptRepository(db, logger)

	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	textAdapter := extract.NewOCRAdapter(ocrExtractor, logger)

	parser := parse.NewPipeline(parse.Config{
		MinTextLength: cfg.Parser.MinTextLength,
		MinAmount:     decimal.NewFromFloat(cfg.Parser.MinAmount),
		MaxAmount:     decimal.NewFromFloat(cfg.Parser.MaxAmount),
		MinItemTotal:  decimal.NewFromFloat(cfg.Parser.MinItemTotal),
	}, logger)

	proc := pipeline.NewProcessor(filesRepo, jobsRepo, receiptsRepo, textAdapter, parser, logger)
	queue := async.NewProcessorQueue(proc, logger, async.WithWorkers(cfg.Watch.Workers))

	ingestor := ingest.NewFSIngestor(filesRepo, logger)
	if len(cfg.Watch.Roots) > 0 {
		startInboxWatcher(ctx, cfg.Watch, ingestor, queue, logger)
	}

	exporter := export.NewService(receiptsRepo, logger)
	srv := server.New(server.Config{
		UploadDir:      cfg.Server.UploadDir,
		MaxReceipts:    cfg.Server.MaxReceipts,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, receiptsRepo, filesRepo, jobsRepo, ingestor, proc, exporter, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	grpcServer := startHealthServer(cfg.Server.HealthAddr, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("stopped")
}

// startInboxWatcher feeds files appearing under the watch roots through
// ingestion and on to the extraction queue.
func startInboxWatcher(ctx context.Context, cfg common.WatchConfig, ingestor ingest.Ingestor, queue *async.ProcessorQueue, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Roots,
		InitialScan: true,
		Debounce:    cfg.Debounce,
	}, logger)
	if err != nil {
		logger.Error("start watcher", "error", err)
		return
	}
	logger.Info("watching inbox", "roots", cfg.Roots)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
			case path, ok := <-events:
				if !ok {
					return
				}
				res, err := ingestor.IngestPath(ctx, path)
				if err != nil {
					logger.Error("ingest watched file", "path", path, "error", err)
					continue
				}
				if res.Deduplicated {
					logger.Info("skipping duplicate", "path", path, "file_id", res.FileID)
					continue
				}
				fileID, err := uuid.Parse(res.FileID)
				if err != nil {
					logger.Error("bad file id from ingest", "file_id", res.FileID, "error", err)
					continue
				}
				if err := queue.Enqueue(ctx, async.Job{FileID: fileID}); err != nil {
					logger.Error("enqueue extraction", "file_id", fileID, "error", err)
				}
			}
		}
	}()
}

// startHealthServer exposes a gRPC health endpoint for orchestrators.
func startHealthServer(addr string, logger *slog.Logger) *grpc.Server {
	if addr == "" {
		return nil
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("health listen", "addr", addr, "error", err)
		return nil
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		logger.Info("grpc health serving", "addr", addr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
		}
	}()
	return grpcServer
}
