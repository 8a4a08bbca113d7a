package ledger

import (
	"context"
	"errors"

	"github.com/smirnov-d/railbooking/internal/domain"
)

// ErrNotFound is returned when no booking or archive partition matches.
var ErrNotFound = errors.New("not found")

// LedgerStore holds the active (non-archived) bookings in insertion order.
// When several rows share a train id, the last appended one is authoritative.
type LedgerStore interface {
	Append(ctx context.Context, record domain.BookingRecord) error
	All(ctx context.Context) ([]domain.BookingRecord, error)
	// UpdateStatus flips the status of every row matching trainID and
	// returns the last matching row. ErrNotFound when nothing matches.
	UpdateStatus(ctx context.Context, trainID string, status domain.BookingStatus) (*domain.BookingRecord, error)
	ReplaceAll(ctx context.Context, records []domain.BookingRecord) error
}

// ArchiveStore keeps date-partitioned batches of evicted bookings.
// Partitions are append-only and never rewritten.
type ArchiveStore interface {
	AppendToPartition(ctx context.Context, dateKey string, records []domain.BookingRecord) error
	ReadPartition(ctx context.Context, dateKey string) ([]domain.BookingRecord, error)
	ListPartitionDates(ctx context.Context) ([]string, error)
	ReadAll(ctx context.Context) ([]domain.BookingRecord, error)
}

// Store is a combined ledger + archive backend.
type Store interface {
	LedgerStore
	ArchiveStore
	Close() error
}
