package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sangham/internal/submission/models"
	"sangham/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

const selectColumns = `id, name, phone_number, community, gothram, other_gothram, house_name,
	other_house_name, gender, date_of_birth, address, native_place, state, county,
	status, created_at, approved_at`

const displayOrder = `ORDER BY gothram COLLATE "C", COALESCE(house_name, '') COLLATE "C", name COLLATE "C", id`

// PostgresStore persists submissions in PostgreSQL. Every operation is a
// single statement, so no explicit transactions are needed.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed submission store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the submissions table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate submissions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (name, phone_number, community, gothram, other_gothram, house_name,
			other_house_name, gender, date_of_birth, address, native_place, state, county,
			status, created_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, approved_at
	`
	var approvedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query,
		sub.Name, sub.PhoneNumber, sub.Community, sub.Gothram,
		nullString(sub.OtherGothram), nullString(sub.HouseName), nullString(sub.OtherHouseName),
		nullString(sub.Gender), nullString(sub.DateOfBirth), nullString(sub.Address), nullString(sub.NativePlace),
		sub.State, sub.County, string(sub.Status), sub.CreatedAt, nullTime(sub.ApprovedAt),
	).Scan(&sub.ID, &sub.CreatedAt, &approvedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", classify(err))
	}
	sub.ApprovedAt = nil
	if approvedAt.Valid {
		t := approvedAt.Time
		sub.ApprovedAt = &t
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find submission by id: %w", classify(err))
	}
	return sub, nil
}

func (s *PostgresStore) List(ctx context.Context, status *models.Status) ([]*models.Submission, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == nil {
		rows, err = s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM submissions `+displayOrder)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM submissions WHERE status = $1 `+displayOrder, string(*status))
	}
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", classify(err))
	}
	defer rows.Close()

	out := make([]*models.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", classify(err))
	}
	return out, nil
}

// Approve moves a pending row to approved. A row that exists but is no longer
// pending yields ErrInvalidState.
func (s *PostgresStore) Approve(ctx context.Context, id int64, approvedAt time.Time) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE submissions SET status = 'approved', approved_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+selectColumns, id, approvedAt)
	sub, err := scanSubmission(row)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approve submission: %w", classify(err))
	}
	return nil, s.missOrInvalid(ctx, id)
}

// DeletePending removes a pending row and returns it.
func (s *PostgresStore) DeletePending(ctx context.Context, id int64) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM submissions WHERE id = $1 AND status = 'pending'
		RETURNING `+selectColumns, id)
	sub, err := scanSubmission(row)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delete submission: %w", classify(err))
	}
	return nil, s.missOrInvalid(ctx, id)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", sentinel.ErrUnavailable)
	}
	return nil
}

func (s *PostgresStore) missOrInvalid(ctx context.Context, id int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check submission exists: %w", classify(err))
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		sub                                                  models.Submission
		status                                               string
		otherGothram, houseName, otherHouseName, gender, dob sql.NullString
		address, nativePlace                                 sql.NullString
		approvedAt                                           sql.NullTime
	)
	err := row.Scan(&sub.ID, &sub.Name, &sub.PhoneNumber, &sub.Community, &sub.Gothram,
		&otherGothram, &houseName, &otherHouseName, &gender, &dob, &address, &nativePlace,
		&sub.State, &sub.County, &status, &sub.CreatedAt, &approvedAt)
	if err != nil {
		return nil, err
	}
	sub.Status = models.Status(status)
	if !sub.Status.IsValid() {
		return nil, fmt.Errorf("submission %d has unknown status %q", sub.ID, status)
	}
	sub.OtherGothram = fromNull(otherGothram)
	sub.HouseName = fromNull(houseName)
	sub.OtherHouseName = fromNull(otherHouseName)
	sub.Gender = fromNull(gender)
	sub.DateOfBirth = fromNull(dob)
	sub.Address = fromNull(address)
	sub.NativePlace = fromNull(nativePlace)
	if approvedAt.Valid {
		t := approvedAt.Time
		sub.ApprovedAt = &t
	}
	return &sub, nil
}

// classify marks connection-class Postgres failures as ErrUnavailable so the
// service can tell an outage apart from a bad statement.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%w: %s", sentinel.ErrUnavailable, pqErr.Message)
		}
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
