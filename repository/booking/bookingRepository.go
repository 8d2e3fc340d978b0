package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

type ListParams struct {
	Status     *model.BookingStatus
	AsBorrower bool
	AsOwner    bool
	Page       int
	Limit      int
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Booking, error)
	HasActive(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	List(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error)
	DueForReturn(ctx context.Context, due time.Time) ([]model.Booking, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookingCols = `id, book_id, borrower_id, booking_point_id, status,
	planned_pickup_date, actual_pickup_date, planned_return_date, actual_return_date,
	notes, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	return row.Scan(
		&b.ID, &b.BookID, &b.BorrowerID, &b.BookingPointID, &b.Status,
		&b.PlannedPickupDate, &b.ActualPickupDate, &b.PlannedReturnDate, &b.ActualReturnDate,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	// bookings has a partial unique index on book_id over active statuses, so
	// a concurrent second insert loses with a unique violation.
	const q = `
		INSERT INTO bookings (book_id, borrower_id, booking_point_id, status,
			planned_pickup_date, planned_return_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		b.BookID, b.BorrowerID, b.BookingPointID, b.Status,
		b.PlannedPickupDate, b.PlannedReturnDate, b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, q, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1 FOR UPDATE`
	var b model.Booking
	if err := scanBooking(tx.QueryRowContext(ctx, q, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) HasActive(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE book_id = $1 AND status IN ('PENDING','CONFIRMED','TAKEN'))`
	var ok bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `
		UPDATE bookings
		SET status = $2,
			actual_pickup_date = $3,
			actual_return_date = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return tx.QueryRowContext(ctx, q, b.ID, b.Status, b.ActualPickupDate, b.ActualReturnDate).
		Scan(&b.UpdatedAt)
}

func (r *repo) List(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	u := arg(userID)
	var cond string
	switch {
	case p.AsBorrower && p.AsOwner:
		cond = fmt.Sprintf("(bk.borrower_id = %s OR b.owner_id = %s)", u, u)
	case p.AsOwner:
		cond = "b.owner_id = " + u
	default:
		// borrower view is the default
		cond = "bk.borrower_id = " + u
	}
	if p.Status != nil {
		cond += " AND bk.status = " + arg(*p.Status)
	}

	const from = ` FROM bookings bk JOIN books b ON b.id = bk.book_id WHERE `

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	q := `SELECT bk.id, bk.book_id, bk.borrower_id, bk.booking_point_id, bk.status,
		bk.planned_pickup_date, bk.actual_pickup_date, bk.planned_return_date, bk.actual_return_date,
		bk.notes, bk.created_at, bk.updated_at` + from + cond +
		` ORDER BY bk.created_at, bk.id LIMIT ` + arg(p.Limit) + ` OFFSET ` + arg(offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repo) DueForReturn(ctx context.Context, due time.Time) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + `
		FROM bookings
		WHERE status = 'TAKEN' AND planned_return_date = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, due)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
