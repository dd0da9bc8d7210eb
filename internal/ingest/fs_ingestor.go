package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	files  repository.ReceiptFileRepository
	logger *slog.Logger
}

func NewFSIngestor(files repository.ReceiptFileRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{files: files, logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path failed", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("open failed", "path", abs, "error", err)
		return out, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			i.logger.Warn("close failed", "path", abs, "error", closeErr)
		}
	}()

	st, err := f.Stat()
	if err != nil {
		return out, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		i.logger.Error("hash failed", "path", abs, "error", err)
		return out, err
	}
	hashHex := hex.EncodeToString(h.Sum(nil))

	row, dedup, err := i.files.UpsertByHash(ctx, &entity.ReceiptFile{
		SourcePath:  abs,
		ContentHash: hashHex,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    int(st.Size()),
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return out, err
	}

	return IngestionResult{
		SourcePath:   row.SourcePath,
		FileID:       row.ID.String(),
		Deduplicated: dedup,
		HashHex:      row.ContentHash,
		FileExt:      row.FileExt,
		UploadedAt:   row.UploadedAt,
	}, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and calls
// IngestPath for each matching file. Per-file failures are recorded in the
// results rather than aborting the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
