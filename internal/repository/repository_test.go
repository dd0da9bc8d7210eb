package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/oduya/receipt-tracker/constants"
	"github.com/oduya/receipt-tracker/internal/entity"
	"github.com/oduya/receipt-tracker/internal/parse"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestRebind(t *testing.T) {
	d := &DB{driver: DriverPostgres}
	got := d.rebind(`INSERT INTO t (a, b) VALUES (?, ?) RETURNING ?`)
	want := `INSERT INTO t (a, b) VALUES ($1, $2) RETURNING $3`
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}

	d = &DB{driver: DriverSQLite}
	if got := d.rebind(`SELECT ?`); got != `SELECT ?` {
		t.Errorf("rebind() = %q, want untouched for sqlite", got)
	}
}

func TestReceiptFileUpsertByHash(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptFileRepository(db, nil)
	ctx := context.Background()

	f := &entity.ReceiptFile{
		SourcePath:  "/in/receipt.pdf",
		ContentHash: "ab12cd34",
		Filename:    "receipt.pdf",
		FileExt:     "pdf",
		FileSize:    1024,
	}
	created, dup, err := repo.UpsertByHash(ctx, f)
	if err != nil {
		t.Fatalf("UpsertByHash() error = %v", err)
	}
	if dup {
		t.Error("first upsert reported duplicate")
	}
	if created.ID == uuid.Nil {
		t.Error("created file has nil id")
	}

	again, dup, err := repo.UpsertByHash(ctx, &entity.ReceiptFile{
		SourcePath:  "/elsewhere/copy.pdf",
		ContentHash: "ab12cd34",
		Filename:    "copy.pdf",
		FileExt:     "pdf",
		FileSize:    1024,
	})
	if err != nil {
		t.Fatalf("UpsertByHash() second error = %v", err)
	}
	if !dup {
		t.Error("second upsert with same hash not reported as duplicate")
	}
	if again.ID != created.ID {
		t.Errorf("duplicate returned id %s, want %s", again.ID, created.ID)
	}

	if _, err := repo.GetByHash(ctx, "feedbeef"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByHash(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestReceiptLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db, nil)
	ctx := context.Background()

	p := parse.NewPipeline(parse.Config{}, nil)
	res := p.Process("GOLDEN BAKERY\nBread Loaf 900.00\nTotal: 900.00\n12/01/2024")
	if !res.Success {
		t.Fatalf("fixture result failed: %s", res.Error)
	}

	rc, err := repo.CreateFromResult(ctx, &CreateReceiptRequest{SourceFile: "bakery.txt", Result: res})
	if err != nil {
		t.Fatalf("CreateFromResult() error = %v", err)
	}
	if len(rc.LineItems) != 1 {
		t.Fatalf("stored %d line items, want 1", len(rc.LineItems))
	}

	got, err := repo.GetByID(ctx, rc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Vendor == nil || *got.Vendor != "GOLDEN BAKERY" {
		t.Errorf("vendor = %v, want GOLDEN BAKERY", got.Vendor)
	}
	if got.Amount == nil || !got.Amount.Equal(res.LineItems[0].TotalPrice) {
		t.Errorf("amount = %v, want 900.00", got.Amount)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].Name != "Bread Loaf" {
		t.Errorf("line items = %+v", got.LineItems)
	}

	newCat := "groceries"
	updated, err := repo.Update(ctx, rc.ID, UpdateReceiptParams{Category: &newCat})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Category != "groceries" {
		t.Errorf("category = %q after update, want groceries", updated.Category)
	}

	list, err := repo.List(ctx, ListReceiptsParams{Category: "groceries"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List(groceries) returned %d rows, want 1", len(list))
	}
	if list, _ := repo.List(ctx, ListReceiptsParams{Category: "fuel"}); len(list) != 0 {
		t.Errorf("List(fuel) returned %d rows, want 0", len(list))
	}

	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}

	if err := repo.Delete(ctx, rc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, rc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, rc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestExtractJobLifecycle(t *testing.T) {
	db := openTestDB(t)
	jobs := NewExtractJobRepository(db, nil)
	ctx := context.Background()

	fileID := uuid.New()
	job, err := jobs.Start(ctx, fileID, constants.PDF)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if job.Status != constants.JobStatusRunning {
		t.Errorf("status = %s, want RUNNING", job.Status)
	}

	if err := jobs.MarkTextExtracted(ctx, job.ID, "raw receipt text", 0.8); err != nil {
		t.Fatalf("MarkTextExtracted() error = %v", err)
	}
	got, err := jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != constants.JobStatusTextOK {
		t.Errorf("status = %s, want TEXT_OK", got.Status)
	}
	if got.OCRText == nil || *got.OCRText != "raw receipt text" {
		t.Errorf("ocr text = %v", got.OCRText)
	}

	receiptID := uuid.New()
	if err := jobs.MarkParsed(ctx, job.ID, receiptID, json.RawMessage(`{"success":true}`)); err != nil {
		t.Fatalf("MarkParsed() error = %v", err)
	}
	got, _ = jobs.GetByID(ctx, job.ID)
	if got.Status != constants.JobStatusParsed {
		t.Errorf("status = %s, want PARSED", got.Status)
	}
	if got.ReceiptID == nil || *got.ReceiptID != receiptID {
		t.Errorf("receipt id = %v, want %s", got.ReceiptID, receiptID)
	}
	if got.FinishedAt == nil {
		t.Error("finished_at not set after MarkParsed")
	}

	if err := jobs.MarkFailed(ctx, uuid.New(), "boom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkFailed(unknown) error = %v, want ErrNotFound", err)
	}
}
