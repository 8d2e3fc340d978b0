package book

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
	bookrepo "github.com/n1x9s/library/repository/book"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrActiveBooking ErrCode = "ACTIVE_BOOKING"
	ErrBadInput      ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// SearchParams = repository shape
type SearchParams = bookrepo.SearchParams

type CreateParams struct {
	Title           string
	Author          string
	Description     *string
	Genre           *string
	PublicationYear *int
	Condition       model.BookCondition
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Search(ctx context.Context, p SearchParams) ([]model.Book, int, error)
	ByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Book, error)
	Deactivate(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type BookingRepo interface {
	HasActive(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error)
}

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, p CreateParams) (*model.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Search(ctx context.Context, p SearchParams) ([]model.Book, int, error)
	MyBooks(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	Update(ctx context.Context, id, actorID uuid.UUID, p CreateParams) (*model.Book, error)

	// Delete soft-deletes the book. Blocked while an active booking exists.
	Delete(ctx context.Context, id, actorID uuid.UUID) error
}

type service struct {
	db       *sql.DB
	r        Repo
	bookings BookingRepo
}

func New(db *sql.DB, r Repo, bookings BookingRepo) Service {
	return &service{db: db, r: r, bookings: bookings}
}

func validCondition(c model.BookCondition) bool {
	switch c {
	case model.ConditionExcellent, model.ConditionGood, model.ConditionFair, model.ConditionPoor:
		return true
	}
	return false
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, p CreateParams) (*model.Book, error) {
	if p.Title == "" || p.Author == "" {
		return nil, makeErr(ErrBadInput)
	}
	if p.Condition == "" {
		p.Condition = model.ConditionGood
	}
	if !validCondition(p.Condition) {
		return nil, makeErr(ErrBadInput)
	}
	b := &model.Book{
		Title:           p.Title,
		Author:          p.Author,
		Description:     p.Description,
		Genre:           p.Genre,
		PublicationYear: p.PublicationYear,
		Condition:       p.Condition,
		OwnerID:         ownerID,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !b.IsActive {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) Search(ctx context.Context, p SearchParams) ([]model.Book, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return s.r.Search(ctx, p)
}

func (s *service) MyBooks(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	return s.r.ByOwner(ctx, ownerID)
}

func (s *service) Update(ctx context.Context, id, actorID uuid.UUID, p CreateParams) (*model.Book, error) {
	if p.Condition == "" {
		p.Condition = model.ConditionGood
	}
	if p.Title == "" || p.Author == "" || !validCondition(p.Condition) {
		return nil, makeErr(ErrBadInput)
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != actorID {
		return nil, makeErr(ErrForbidden)
	}

	b.Title = p.Title
	b.Author = p.Author
	b.Description = p.Description
	b.Genre = p.Genre
	b.PublicationYear = p.PublicationYear
	b.Condition = p.Condition
	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id, actorID uuid.UUID) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !b.IsActive {
		return makeErr(ErrNotFound)
	}
	if b.OwnerID != actorID {
		return makeErr(ErrForbidden)
	}

	active, err := s.bookings.HasActive(ctx, tx, id)
	if err != nil {
		return err
	}
	if active {
		return makeErr(ErrActiveBooking)
	}

	if err = s.r.Deactivate(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}
