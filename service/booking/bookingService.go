package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/n1x9s/library/model"
	bookingrepo "github.com/n1x9s/library/repository/booking"
)

// ListParams = repository shape
type ListParams = bookingrepo.ListParams

type CreateParams struct {
	BorrowerID        uuid.UUID
	BookID            uuid.UUID
	BookingPointID    uuid.UUID
	PlannedPickupDate time.Time
	PlannedReturnDate time.Time
	Notes             *string
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Booking, error)
	HasActive(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	List(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error)
}

type BookRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Book, error)
	SetAvailability(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error
}

type PointRepo interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserRepo interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Notifier delivers notification intents after a transition committed.
// Delivery is best-effort: it never fails the transition.
type Notifier interface {
	Dispatch(ctx context.Context, intents ...model.NotificationIntent)
}

type Service interface {
	// Create reserves a book: new booking in PENDING, book made unavailable.
	Create(ctx context.Context, p CreateParams) (*model.Booking, error)

	// Get returns a booking to its owner or borrower.
	Get(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error)

	// List returns the actor's bookings plus the total count.
	List(ctx context.Context, actorID uuid.UUID, p ListParams) ([]model.Booking, int, error)

	// UpdateStatus applies a role-gated transition to the target status.
	UpdateStatus(ctx context.Context, id, actorID uuid.UUID, target model.BookingStatus) (*model.Booking, error)

	// ConfirmPickup: borrower only, CONFIRMED -> TAKEN.
	ConfirmPickup(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error)

	// ConfirmReturn: borrower only, TAKEN -> RETURNED, book freed.
	ConfirmReturn(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error)

	// Cancel aborts a PENDING or CONFIRMED booking.
	Cancel(ctx context.Context, id, actorID uuid.UUID) error
}

type service struct {
	db     *sql.DB
	r      Repo
	books  BookRepo
	points PointRepo
	users  UserRepo
	n      Notifier
}

func New(db *sql.DB, r Repo, books BookRepo, points PointRepo, users UserRepo, n Notifier) Service {
	return &service{db: db, r: r, books: books, points: points, users: users, n: n}
}

func (s *service) Create(ctx context.Context, p CreateParams) (b *model.Booking, err error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if p.PlannedPickupDate.Before(today) {
		return nil, makeErr(ErrPickupInPast)
	}
	if !p.PlannedReturnDate.After(p.PlannedPickupDate) {
		return nil, makeErr(ErrReturnBeforePickup)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	book, err := s.books.GetForUpdate(ctx, tx, p.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if !book.IsActive {
		return nil, makeErr(ErrBookNotFound)
	}
	if !book.IsAvailable {
		return nil, makeErr(ErrBookUnavailable)
	}
	if book.OwnerID == p.BorrowerID {
		return nil, makeErr(ErrSelfBooking)
	}

	ok, err := s.points.Exists(ctx, p.BookingPointID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrPointNotFound)
	}

	ok, err = s.users.Exists(ctx, p.BorrowerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrUserNotFound)
	}

	active, err := s.r.HasActive(ctx, tx, p.BookID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrAlreadyBooked)
	}

	b = &model.Booking{
		BookID:            p.BookID,
		BorrowerID:        p.BorrowerID,
		BookingPointID:    p.BookingPointID,
		Status:            model.BookingPending,
		PlannedPickupDate: p.PlannedPickupDate,
		PlannedReturnDate: p.PlannedReturnDate,
		Notes:             p.Notes,
	}
	if err = s.r.Insert(ctx, tx, b); err != nil {
		if isUniqueViolation(err) {
			// lost the race against a concurrent create for the same book
			return nil, makeErr(ErrAlreadyBooked)
		}
		return nil, err
	}

	if err = s.books.SetAvailability(ctx, tx, book.ID, false); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.Dispatch(ctx, createdIntent(b, book))
	return b, nil
}

func (s *service) Get(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error) {
	b, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	book, err := s.books.ByID(ctx, b.BookID)
	if err != nil {
		return nil, err
	}
	if roleOf(b, book, actorID) == RoleNone {
		return nil, makeErr(ErrForbidden)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, p ListParams) ([]model.Booking, int, error) {
	if p.Status != nil && !p.Status.IsValid() {
		return nil, 0, makeErr(ErrBadStatus)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return s.r.List(ctx, actorID, p)
}

func (s *service) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, target model.BookingStatus) (*model.Booking, error) {
	if !target.IsValid() {
		return nil, makeErr(ErrBadStatus)
	}
	return s.transition(ctx, id, actorID, target, false)
}

func (s *service) ConfirmPickup(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, actorID, model.BookingTaken, true)
}

func (s *service) ConfirmReturn(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, actorID, model.BookingReturned, true)
}

func (s *service) Cancel(ctx context.Context, id, actorID uuid.UUID) error {
	_, err := s.transition(ctx, id, actorID, model.BookingCancelled, false)
	return err
}

// transition runs one request-scoped unit of work: load and lock booking and
// book, consult the transition table, persist the status write and any
// availability flip atomically, then dispatch intents after commit.
func (s *service) transition(ctx context.Context, id, actorID uuid.UUID, target model.BookingStatus, borrowerOnly bool) (b *model.Booking, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err = s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	book, err := s.books.GetForUpdate(ctx, tx, b.BookID)
	if err != nil {
		return nil, err
	}

	// confirm-pickup / confirm-return are borrower-only regardless of the
	// actor's other roles on this booking
	if borrowerOnly && actorID != b.BorrowerID {
		return nil, makeErr(ErrForbidden)
	}

	eff, err := apply(b, book, actorID, target, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err = s.r.UpdateStatus(ctx, tx, b); err != nil {
		return nil, err
	}
	if eff.setAvailable != nil {
		if err = s.books.SetAvailability(ctx, tx, book.ID, *eff.setAvailable); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if len(eff.intents) > 0 {
		s.n.Dispatch(ctx, eff.intents...)
	}
	return b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
