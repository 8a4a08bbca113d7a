package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/smirnov-d/railbooking/internal/domain"
)

var csvHeader = []string{
	"booking_id", "train_id", "origin", "destination",
	"travel_date", "booking_date", "class", "seats_requested",
	"fare", "status", "created_at",
}

// CSVStore is the flat-file variant: one bookings.csv ledger plus
// archive/archive_<date>.csv partitions. Every operation reads or rewrites
// a whole file, so a single mutex serializes all access.
type CSVStore struct {
	mu         sync.Mutex
	ledgerPath string
	archiveDir string
}

func NewCSVStore(dir string) (*CSVStore, error) {
	archiveDir := filepath.Join(dir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &CSVStore{
		ledgerPath: filepath.Join(dir, "bookings.csv"),
		archiveDir: archiveDir,
	}, nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) Append(ctx context.Context, record domain.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCSV(s.ledgerPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return writeCSV(s.ledgerPath, append(records, record))
}

func (s *CSVStore) All(ctx context.Context) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCSV(s.ledgerPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return records, err
}

func (s *CSVStore) UpdateStatus(ctx context.Context, trainID string, status domain.BookingStatus) (*domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCSV(s.ledgerPath)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var last *domain.BookingRecord
	for i := range records {
		if records[i].TrainID != trainID {
			continue
		}
		records[i].Status = status
		last = &records[i]
	}
	if last == nil {
		return nil, ErrNotFound
	}
	if err := writeCSV(s.ledgerPath, records); err != nil {
		return nil, err
	}
	updated := *last
	return &updated, nil
}

func (s *CSVStore) ReplaceAll(ctx context.Context, records []domain.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCSV(s.ledgerPath, records)
}

func (s *CSVStore) AppendToPartition(ctx context.Context, dateKey string, records []domain.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.partitionPath(dateKey)
	existing, err := readCSV(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return writeCSV(path, append(existing, records...))
}

func (s *CSVStore) ReadPartition(ctx context.Context, dateKey string) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCSV(s.partitionPath(dateKey))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return records, err
}

func (s *CSVStore) ListPartitionDates(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partitionDates()
}

func (s *CSVStore) ReadAll(ctx context.Context) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates, err := s.partitionDates()
	if err != nil {
		return nil, err
	}
	var all []domain.BookingRecord
	for _, date := range dates {
		records, err := readCSV(s.partitionPath(date))
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func (s *CSVStore) partitionPath(dateKey string) string {
	return filepath.Join(s.archiveDir, "archive_"+dateKey+".csv")
}

func (s *CSVStore) partitionDates() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.archiveDir, "archive_*.csv"))
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, m := range matches {
		name := filepath.Base(m)
		dates = append(dates, name[len("archive_"):len(name)-len(".csv")])
	}
	sort.Strings(dates)
	return dates, nil
}

func readCSV(path string) ([]domain.BookingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]domain.BookingRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := unmarshalRow(row)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeCSV(path string, records []domain.BookingRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(marshalRow(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func marshalRow(r domain.BookingRecord) []string {
	return []string{
		r.BookingID,
		r.TrainID,
		r.Origin,
		r.Destination,
		r.TravelDate.Format(domain.DateLayout),
		r.BookingDate.Format(domain.DateLayout),
		r.ClassName,
		strconv.Itoa(r.SeatsRequested),
		strconv.FormatFloat(r.Fare, 'f', 2, 64),
		string(r.Status),
		r.CreatedAt.Format(time.RFC3339),
	}
}

func unmarshalRow(row []string) (domain.BookingRecord, error) {
	if len(row) != len(csvHeader) {
		return domain.BookingRecord{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}
	travelDate, err := time.Parse(domain.DateLayout, row[4])
	if err != nil {
		return domain.BookingRecord{}, err
	}
	bookingDate, err := time.Parse(domain.DateLayout, row[5])
	if err != nil {
		return domain.BookingRecord{}, err
	}
	seats, err := strconv.Atoi(row[7])
	if err != nil {
		return domain.BookingRecord{}, err
	}
	fare, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return domain.BookingRecord{}, err
	}
	createdAt, err := time.Parse(time.RFC3339, row[10])
	if err != nil {
		return domain.BookingRecord{}, err
	}
	return domain.BookingRecord{
		BookingID:      row[0],
		TrainID:        row[1],
		Origin:         row[2],
		Destination:    row[3],
		TravelDate:     travelDate,
		BookingDate:    bookingDate,
		ClassName:      row[6],
		SeatsRequested: seats,
		Fare:           fare,
		Status:         domain.BookingStatus(row[9]),
		CreatedAt:      createdAt,
	}, nil
}

var _ Store = (*CSVStore)(nil)
