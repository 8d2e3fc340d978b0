package book

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

type SearchParams struct {
	Search        string
	Genre         string
	Author        string
	OwnerID       *uuid.UUID
	AvailableOnly bool
	Page          int
	Limit         int
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Search(ctx context.Context, p SearchParams) ([]model.Book, int, error)
	ByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error

	// Transactional steps. is_available is only ever written together with a
	// booking status change, under the row lock taken by GetForUpdate.
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Book, error)
	SetAvailability(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error
	Deactivate(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, title, author, description, genre, publication_year, condition,
	owner_id, is_available, is_active, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }, b *model.Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &b.PublicationYear,
		&b.Condition, &b.OwnerID, &b.IsAvailable, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, description, genre, publication_year, condition, owner_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, is_available, is_active, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Description, b.Genre, b.PublicationYear, b.Condition, b.OwnerID,
	).Scan(&b.ID, &b.IsAvailable, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	var b model.Book
	if err := scanBook(r.db.QueryRowContext(ctx, q, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Search(ctx context.Context, p SearchParams) ([]model.Book, int, error) {
	where := []string{"is_active"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.AvailableOnly {
		where = append(where, "is_available")
	}
	if p.Search != "" {
		n := arg("%" + p.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR author ILIKE %s)", n, n))
	}
	if p.Genre != "" {
		where = append(where, "genre ILIKE "+arg("%"+p.Genre+"%"))
	}
	if p.Author != "" {
		where = append(where, "author ILIKE "+arg("%"+p.Author+"%"))
	}
	if p.OwnerID != nil {
		where = append(where, "owner_id = "+arg(*p.OwnerID))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	q := `SELECT ` + bookCols + ` FROM books WHERE ` + cond +
		` ORDER BY created_at DESC, id DESC LIMIT ` + arg(p.Limit) + ` OFFSET ` + arg(offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repo) ByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE owner_id = $1 AND is_active ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title=$2, author=$3, description=$4, genre=$5, publication_year=$6,
			condition=$7, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.Description, b.Genre, b.PublicationYear, b.Condition,
	).Scan(&b.UpdatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id = $1 FOR UPDATE`
	var b model.Book
	if err := scanBook(tx.QueryRowContext(ctx, q, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) SetAvailability(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error {
	const q = `
		UPDATE books
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, available)
	return err
}

func (r *repo) Deactivate(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `
		UPDATE books
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
