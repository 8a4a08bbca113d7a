package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/ledger"
)

const recordColumns = `booking_id, train_id, origin, destination, travel_date, booking_date, class, seats_requested, fare, status, created_at`

// PGLedgerStore is the relational variant of the ledger/archive contracts.
// Row order follows the serial primary key, so the last inserted row for a
// train id stays authoritative.
type PGLedgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *PGLedgerStore {
	return &PGLedgerStore{db: db}
}

// Close is a no-op: the pool is owned by the caller.
func (r *PGLedgerStore) Close() error { return nil }

func (r *PGLedgerStore) Append(ctx context.Context, rec domain.BookingRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO bookings (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.BookingID, rec.TrainID, rec.Origin, rec.Destination, rec.TravelDate,
		rec.BookingDate, rec.ClassName, rec.SeatsRequested, rec.Fare, rec.Status, rec.CreatedAt)
	return err
}

func (r *PGLedgerStore) All(ctx context.Context) ([]domain.BookingRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recordColumns+` FROM bookings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *PGLedgerStore) UpdateStatus(ctx context.Context, trainID string, status domain.BookingStatus) (*domain.BookingRecord, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$1 WHERE train_id=$2`, status, trainID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ledger.ErrNotFound
	}

	row := tx.QueryRow(ctx, `SELECT `+recordColumns+` FROM bookings WHERE train_id=$1 ORDER BY id DESC LIMIT 1`, trainID)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PGLedgerStore) ReplaceAll(ctx context.Context, records []domain.BookingRecord) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bookings`); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := tx.Exec(ctx, `INSERT INTO bookings (`+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.BookingID, rec.TrainID, rec.Origin, rec.Destination, rec.TravelDate,
			rec.BookingDate, rec.ClassName, rec.SeatsRequested, rec.Fare, rec.Status, rec.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGLedgerStore) AppendToPartition(ctx context.Context, dateKey string, records []domain.BookingRecord) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if _, err := tx.Exec(ctx, `INSERT INTO archived_bookings (partition_date, `+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			dateKey, rec.BookingID, rec.TrainID, rec.Origin, rec.Destination, rec.TravelDate,
			rec.BookingDate, rec.ClassName, rec.SeatsRequested, rec.Fare, rec.Status, rec.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGLedgerStore) ReadPartition(ctx context.Context, dateKey string) ([]domain.BookingRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recordColumns+` FROM archived_bookings WHERE partition_date=$1 ORDER BY id`, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ledger.ErrNotFound
	}
	return records, nil
}

func (r *PGLedgerStore) ListPartitionDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT partition_date FROM archived_bookings ORDER BY partition_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *PGLedgerStore) ReadAll(ctx context.Context) ([]domain.BookingRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recordColumns+` FROM archived_bookings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecord(row pgx.Row) (*domain.BookingRecord, error) {
	var rec domain.BookingRecord
	err := row.Scan(&rec.BookingID, &rec.TrainID, &rec.Origin, &rec.Destination,
		&rec.TravelDate, &rec.BookingDate, &rec.ClassName, &rec.SeatsRequested,
		&rec.Fare, &rec.Status, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	for rows.Next() {
		var rec domain.BookingRecord
		if err := rows.Scan(&rec.BookingID, &rec.TrainID, &rec.Origin, &rec.Destination,
			&rec.TravelDate, &rec.BookingDate, &rec.ClassName, &rec.SeatsRequested,
			&rec.Fare, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ ledger.Store = (*PGLedgerStore)(nil)
