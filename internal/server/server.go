// Package server exposes the receipt tracker over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/oduya/receipt-tracker/internal/export"
	"github.com/oduya/receipt-tracker/internal/ingest"
	"github.com/oduya/receipt-tracker/internal/pipeline"
	"github.com/oduya/receipt-tracker/internal/repository"
)

// Config holds the HTTP-layer tunables.
type Config struct {
	UploadDir string
	// MaxReceipts caps how many files the instance accepts before uploads
	// are rejected with 429. Zero means the default of 10.
	MaxReceipts int
	// MaxUploadBytes bounds a single multipart upload. Zero means 32 MiB.
	MaxUploadBytes int64
}

// Server handles HTTP requests for receipts.
type Server struct {
	cfg      Config
	receipts repository.ReceiptRepository
	files    repository.ReceiptFileRepository
	jobs     repository.ExtractJobRepository
	ingestor ingest.Ingestor
	proc     *pipeline.Processor
	exporter *export.Service
	logger   *slog.Logger
	mux      *http.ServeMux
}

func New(
	cfg Config,
	receipts repository.ReceiptRepository,
	files repository.ReceiptFileRepository,
	jobs repository.ExtractJobRepository,
	ingestor ingest.Ingestor,
	proc *pipeline.Processor,
	exporter *export.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxReceipts <= 0 {
		cfg.MaxReceipts = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		cfg:      cfg,
		receipts: receipts,
		files:    files,
		jobs:     jobs,
		ingestor: ingestor,
		proc:     proc,
		exporter: exporter,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("POST /api/receipts/upload", s.handleUpload)
	s.mux.HandleFunc("GET /api/receipts", s.handleListReceipts)
	s.mux.HandleFunc("GET /api/receipts/export", s.handleExport)
	s.mux.HandleFunc("GET /api/receipts/{id}", s.handleGetReceipt)
	s.mux.HandleFunc("PUT /api/receipts/{id}", s.handleUpdateReceipt)
	s.mux.HandleFunc("DELETE /api/receipts/{id}", s.handleDeleteReceipt)
	// {id} here is the file ID returned by upload
	s.mux.HandleFunc("POST /api/receipts/{id}/process", s.handleProcessFile)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
