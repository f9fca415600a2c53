package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericfisherdev/formbff/internal/domain/model"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*RecordRepo)(nil)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// RecordRepo is the SQL implementation of the RecordStore port interface.
type RecordRepo struct {
	db  *DB
	now func() time.Time
}

// RecordRepoOption configures a RecordRepo.
type RecordRepoOption func(*RecordRepo)

// WithClock overrides the clock used to stamp created_at and updated_at.
func WithClock(now func() time.Time) RecordRepoOption {
	return func(r *RecordRepo) { r.now = now }
}

// NewRecordRepo creates a new RecordRepo backed by the given DB.
func NewRecordRepo(db *DB, opts ...RecordRepoOption) *RecordRepo {
	r := &RecordRepo{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// recordRow mirrors the users table. Timestamps are scanned as strings
// because SQLite hands back TEXT while PostgreSQL hands back time.Time.
type recordRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// Ping verifies the underlying connections.
func (r *RecordRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// ListAll returns all records, most recently created first.
func (r *RecordRepo) ListAll(ctx context.Context) ([]model.Record, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM users ORDER BY created_at DESC, id DESC`

	var rows []recordRow
	if err := r.db.Reader.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("scan record %d: %w", row.ID, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetByID retrieves a record by ID. Returns nil, nil if the record does not exist.
func (r *RecordRepo) GetByID(ctx context.Context, id int64) (*model.Record, error) {
	query := r.db.Reader.Rebind(`SELECT id, name, email, created_at, updated_at FROM users WHERE id = ?`)

	var row recordRow
	err := r.db.Reader.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}

	rec, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("scan record %d: %w", id, err)
	}

	return &rec, nil
}

// Insert persists a new record. ID and both timestamps are assigned here;
// created_at and updated_at share the same instant.
func (r *RecordRepo) Insert(ctx context.Context, rec model.Record) (model.Record, error) {
	query := r.db.Writer.Rebind(`INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`)

	now := r.timestamp()

	var id int64
	err := r.db.Writer.QueryRowxContext(ctx, query, rec.Name, rec.Email, now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Record{}, fmt.Errorf("insert record %s: %w: %v", rec.Email, driven.ErrDuplicateEmail, err)
		}
		return model.Record{}, fmt.Errorf("insert record %s: %w", rec.Email, err)
	}

	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec, nil
}

// Save overwrites name and email of an existing record and refreshes
// updated_at. Returns driven.ErrRecordNotFound if no row matched.
func (r *RecordRepo) Save(ctx context.Context, rec model.Record) (model.Record, error) {
	query := r.db.Writer.Rebind(`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`)

	now := r.timestamp()
	if now.Before(rec.CreatedAt) {
		now = rec.CreatedAt
	}

	result, err := r.db.Writer.ExecContext(ctx, query, rec.Name, rec.Email, now, rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Record{}, fmt.Errorf("update record %d: %w: %v", rec.ID, driven.ErrDuplicateEmail, err)
		}
		return model.Record{}, fmt.Errorf("update record %d: %w", rec.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.Record{}, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Record{}, fmt.Errorf("update record %d: %w", rec.ID, driven.ErrRecordNotFound)
	}

	rec.UpdatedAt = now
	return rec, nil
}

// Delete removes a record by ID and reports whether a row was removed.
func (r *RecordRepo) Delete(ctx context.Context, id int64) (bool, error) {
	query := r.db.Writer.Rebind(`DELETE FROM users WHERE id = ?`)

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}

	return rows > 0, nil
}

// timestamp returns the current time in UTC at microsecond precision, the
// finest resolution both dialects round-trip.
func (r *RecordRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (row recordRow) toModel() (model.Record, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse created_at: %w", err)
	}

	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return model.Record{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// parseTime tries the datetime formats either dialect may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
