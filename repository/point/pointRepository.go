package point

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

type Repo interface {
	ListActive(ctx context.Context) ([]model.BookingPoint, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) ListActive(ctx context.Context) ([]model.BookingPoint, error) {
	const q = `
		SELECT id, name, address, coordinates, working_hours, phone, is_active
		FROM booking_points
		WHERE is_active
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookingPoint
	for rows.Next() {
		var p model.BookingPoint
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Coordinates, &p.WorkingHours, &p.Phone, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM booking_points WHERE id = $1 AND is_active)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}
