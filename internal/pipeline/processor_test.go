package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/extract"
	"github.com/oduya/receipt-tracker/internal/parse"
	"github.com/oduya/receipt-tracker/internal/repository"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ context.Context, _ string) (extract.TextExtractionResult, error) {
	if s.err != nil {
		return extract.TextExtractionResult{}, s.err
	}
	return extract.TextExtractionResult{
		Text:       s.text,
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "plain-text",
		Confidence: 1.0,
	}, nil
}

type testEnv struct {
	files    repository.ReceiptFileRepository
	jobs     repository.ExtractJobRepository
	receipts repository.ReceiptRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	return testEnv{
		files:    repository.NewReceiptFileRepository(db, nil),
		jobs:     repository.NewExtractJobRepository(db, nil),
		receipts: repository.NewReceiptRepository(db, nil),
	}
}

func (e testEnv) storeFile(t *testing.T, name string) uuid.UUID {
	t.Helper()
	f, err := e.files.Create(context.Background(), &entity.ReceiptFile{
		SourcePath:  "/in/" + name,
		ContentHash: uuid.NewString(),
		Filename:    name,
		FileExt:     "txt",
		FileSize:    64,
	})
	if err != nil {
		t.Fatalf("store file: %v", err)
	}
	return f.ID
}

func newProcessor(env testEnv, ex extract.TextExtractor) *Processor {
	return NewProcessor(env.files, env.jobs, env.receipts, ex, parse.NewPipeline(parse.Config{}, nil), nil)
}

func TestProcessFile(t *testing.T) {
	env := newTestEnv(t)
	fileID := env.storeFile(t, "bakery.txt")
	proc := newProcessor(env, stubExtractor{text: "GOLDEN BAKERY\nBread Loaf 900.00\nTotal: 900.00\n12/01/2024"})

	jobID, err := proc.ProcessFile(context.Background(), fileID)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	job, err := env.jobs.GetByID(context.Background(), jobID)
	if err != nil {
		t.Fatalf("job lookup: %v", err)
	}
	if job.Status != constants.JobStatusParsed {
		t.Errorf("job status = %s, want PARSED", job.Status)
	}
	if job.ReceiptID == nil {
		t.Fatal("job has no receipt id")
	}
	if job.OCRText == nil || *job.OCRText == "" {
		t.Error("job did not record extracted text")
	}

	rc, err := env.receipts.GetByID(context.Background(), *job.ReceiptID)
	if err != nil {
		t.Fatalf("receipt lookup: %v", err)
	}
	if rc.Vendor == nil || *rc.Vendor != "GOLDEN BAKERY" {
		t.Errorf("vendor = %v, want GOLDEN BAKERY", rc.Vendor)
	}
	if rc.SourceFile == nil || *rc.SourceFile != "bakery.txt" {
		t.Errorf("source file = %v, want bakery.txt", rc.SourceFile)
	}
}

func TestProcessFileExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	fileID := env.storeFile(t, "broken.txt")
	proc := newProcessor(env, stubExtractor{err: errors.New("tesseract: exit status 1")})

	jobID, err := proc.ProcessFile(context.Background(), fileID)
	if err == nil {
		t.Fatal("ProcessFile() error = nil, want extraction failure")
	}

	job, lookupErr := env.jobs.GetByID(context.Background(), jobID)
	if lookupErr != nil {
		t.Fatalf("job lookup: %v", lookupErr)
	}
	if job.Status != constants.JobStatusFailed {
		t.Errorf("job status = %s, want FAILED", job.Status)
	}
	if job.ErrorMessage == nil {
		t.Error("job has no error message")
	}
}

func TestProcessFileParseFailureStoresNoReceipt(t *testing.T) {
	env := newTestEnv(t)
	fileID := env.storeFile(t, "blank.txt")
	proc := newProcessor(env, stubExtractor{text: "hi"})

	jobID, err := proc.ProcessFile(context.Background(), fileID)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v, parse failures are job-terminal not errors", err)
	}

	job, lookupErr := env.jobs.GetByID(context.Background(), jobID)
	if lookupErr != nil {
		t.Fatalf("job lookup: %v", lookupErr)
	}
	if job.Status != constants.JobStatusFailed {
		t.Errorf("job status = %s, want FAILED", job.Status)
	}
	if job.ReceiptID != nil {
		t.Error("failed parse stored a receipt")
	}
	if n, _ := env.receipts.Count(context.Background()); n != 0 {
		t.Errorf("receipt count = %d, want 0", n)
	}
}

func TestProcessFileUnknownFile(t *testing.T) {
	env := newTestEnv(t)
	proc := newProcessor(env, stubExtractor{text: "whatever"})

	if _, err := proc.ProcessFile(context.Background(), uuid.New()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ProcessFile(unknown) error = %v, want ErrNotFound", err)
	}
}
