package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/ledger"
)

func newTestBoltStore(t *testing.T) *ledger.BoltStore {
	t.Helper()
	s, err := ledger.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(bookingID, trainID string) domain.BookingRecord {
	return domain.BookingRecord{
		BookingID:      bookingID,
		TrainID:        trainID,
		Origin:         "DEL",
		Destination:    "BOM",
		TravelDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		BookingDate:    time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		ClassName:      "SL",
		SeatsRequested: 2,
		Fare:           1250.50,
		Status:         domain.BookingStatusConfirmed,
		CreatedAt:      time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
	}
}

func TestBoltStore_AllEmpty(t *testing.T) {
	s := newTestBoltStore(t)
	records, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty ledger, got %d records", len(records))
	}
}

func TestBoltStore_AppendPreservesOrder(t *testing.T) {
	s := newTestBoltStore(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := s.Append(ctx, testRecord(id, "T100")); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"b1", "b2", "b3"} {
		if records[i].BookingID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, records[i].BookingID)
		}
	}
}

func TestBoltStore_UpdateStatus(t *testing.T) {
	s := newTestBoltStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, testRecord("b1", "T100")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, testRecord("b2", "T200")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, testRecord("b3", "T100")); err != nil {
		t.Fatalf("append: %v", err)
	}

	updated, err := s.UpdateStatus(ctx, "T100", domain.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Every matching row flips, the last one comes back.
	if updated.BookingID != "b3" {
		t.Fatalf("expected last matching record b3, got %s", updated.BookingID)
	}
	if updated.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", updated.Status)
	}

	records, _ := s.All(ctx)
	for _, rec := range records {
		want := domain.BookingStatusCancelled
		if rec.TrainID == "T200" {
			want = domain.BookingStatusConfirmed
		}
		if rec.Status != want {
			t.Fatalf("record %s: expected status %s, got %s", rec.BookingID, want, rec.Status)
		}
	}
}

func TestBoltStore_UpdateStatusNotFound(t *testing.T) {
	s := newTestBoltStore(t)

	_, err := s.UpdateStatus(context.Background(), "T999", domain.BookingStatusCancelled)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBoltStore_ReplaceAll(t *testing.T) {
	s := newTestBoltStore(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := s.Append(ctx, testRecord(id, "T100")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := s.ReplaceAll(ctx, []domain.BookingRecord{testRecord("b2", "T100")}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].BookingID != "b2" {
		t.Fatalf("expected only b2 to survive, got %+v", records)
	}
}

func TestBoltStore_ArchivePartitions(t *testing.T) {
	s := newTestBoltStore(t)
	ctx := context.Background()

	if err := s.AppendToPartition(ctx, "20260827", []domain.BookingRecord{testRecord("b1", "T100")}); err != nil {
		t.Fatalf("append to partition: %v", err)
	}
	if err := s.AppendToPartition(ctx, "20260828", []domain.BookingRecord{testRecord("b2", "T200")}); err != nil {
		t.Fatalf("append to partition: %v", err)
	}
	// Same-day batches merge into one partition.
	if err := s.AppendToPartition(ctx, "20260828", []domain.BookingRecord{testRecord("b3", "T300")}); err != nil {
		t.Fatalf("append to partition: %v", err)
	}

	dates, err := s.ListPartitionDates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 || dates[0] != "20260827" || dates[1] != "20260828" {
		t.Fatalf("unexpected partition dates: %v", dates)
	}

	part, err := s.ReadPartition(ctx, "20260828")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(part) != 2 || part[0].BookingID != "b2" || part[1].BookingID != "b3" {
		t.Fatalf("unexpected partition contents: %+v", part)
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 archived records, got %d", len(all))
	}
}

func TestBoltStore_ReadPartitionNotFound(t *testing.T) {
	s := newTestBoltStore(t)

	_, err := s.ReadPartition(context.Background(), "19990101")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
