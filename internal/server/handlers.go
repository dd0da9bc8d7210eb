package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/ingest"
	"github.com/oduya/receipt-tracker/internal/repository"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Receipt Tracker API"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.logger.Warn("bad multipart form", "error", err)
		jsonError(w, "could not parse upload form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if !ingest.AllowedExt(filepath.Ext(header.Filename)) {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	n, err := s.files.Count(r.Context())
	if err != nil {
		s.internalError(w, "count files", err)
		return
	}
	if n >= s.cfg.MaxReceipts {
		jsonError(w, "receipt limit reached, delete some receipts first", http.StatusTooManyRequests)
		return
	}

	dst := filepath.Join(s.cfg.UploadDir, uuid.NewString()+"_"+filepath.Base(header.Filename))
	out, err := os.Create(dst)
	if err != nil {
		s.internalError(w, "create upload file", err)
		return
	}
	if _, err := io.Copy(out, f); err != nil {
		_ = out.Close()
		s.internalError(w, "write upload file", err)
		return
	}
	if err := out.Close(); err != nil {
		s.internalError(w, "close upload file", err)
		return
	}

	res, err := s.ingestor.IngestPath(r.Context(), dst)
	if err != nil {
		s.internalError(w, "ingest upload", err)
		return
	}
	if res.Deduplicated {
		// the file row keeps the original path; this copy is redundant
		if rmErr := os.Remove(dst); rmErr != nil {
			s.logger.Warn("failed to remove duplicate upload", "path", dst, "error", rmErr)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":           res.FileID,
		"filename":     header.Filename,
		"deduplicated": res.Deduplicated,
	})
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	params := repository.ListReceiptsParams{Category: r.URL.Query().Get("category")}
	recs, err := s.receipts.List(r.Context(), params)
	if err != nil {
		s.internalError(w, "list receipts", err)
		return
	}
	if recs == nil {
		recs = []*entity.Receipt{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rc, err := s.receipts.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		jsonError(w, "receipt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

type updateReceiptRequest struct {
	Vendor   *string          `json:"vendor"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     *string          `json:"date"`
	Category *string          `json:"category"`
}

func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Category != nil {
		cat, known := constants.Canonicalize(*req.Category)
		if !known {
			jsonError(w, "unknown category", http.StatusBadRequest)
			return
		}
		c := string(cat)
		req.Category = &c
	}

	rc, err := s.receipts.Update(r.Context(), id, repository.UpdateReceiptParams{
		Vendor:   req.Vendor,
		Amount:   req.Amount,
		TxDate:   req.Date,
		Category: req.Category,
	})
	if errors.Is(err, repository.ErrNotFound) {
		jsonError(w, "receipt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "update receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rc, err := s.receipts.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		jsonError(w, "receipt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get receipt", err)
		return
	}

	if err := s.receipts.Delete(r.Context(), id); err != nil {
		s.internalError(w, "delete receipt", err)
		return
	}

	// remove the stored upload too; the receipt row is already gone so a
	// failure here only leaks a file
	if rc.FileID != nil {
		if file, err := s.files.GetByID(r.Context(), *rc.FileID); err == nil {
			if rmErr := os.Remove(file.SourcePath); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.Warn("failed to remove stored upload", "path", file.SourcePath, "error", rmErr)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "receipt deleted"})
}

func (s *Server) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	jobID, err := s.proc.ProcessFile(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "process file", err)
		return
	}

	job, err := s.jobs.GetByID(r.Context(), jobID)
	if err != nil {
		s.internalError(w, "get job", err)
		return
	}
	if job.Status == constants.JobStatusFailed {
		msg := "extraction failed"
		if job.ErrorMessage != nil {
			msg = *job.ErrorMessage
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"job_id": job.ID,
			"status": job.Status,
			"error":  msg,
		})
		return
	}

	rc, err := s.receipts.GetByID(r.Context(), *job.ReceiptID)
	if err != nil {
		s.internalError(w, "get receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to")
	if !ok {
		return
	}
	if !to.IsZero() {
		// make the "to" day inclusive
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	b, err := s.exporter.ExportReceiptsXLSX(r.Context(), from, to)
	if err != nil {
		s.internalError(w, "export receipts", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		jsonError(w, "invalid "+name+" date, want YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	jsonError(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
