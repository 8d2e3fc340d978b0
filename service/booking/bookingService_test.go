package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/n1x9s/library/model"
)

// nopDriver backs a *sql.DB whose transactions begin, commit and roll back
// without a server, so the tx-scoped paths can run against the func-field
// mocks below. Any real statement reaching it is a test bug.
type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("unexpected statement") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

func init() { sql.Register("nop", nopDriver{}) }

func nopDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("nop", "")
	if err != nil {
		t.Fatalf("open nop db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type repoMock struct {
	insertFn       func(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	getForUpdateFn func(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Booking, error)
	hasActiveFn    func(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error)
	updateStatusFn func(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	listFn         func(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	return m.insertFn(ctx, tx, b)
}
func (m *repoMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return m.getByIDFn(ctx, id)
}
func (m *repoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Booking, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *repoMock) HasActive(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error) {
	return m.hasActiveFn(ctx, tx, bookID)
}
func (m *repoMock) UpdateStatus(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	return m.updateStatusFn(ctx, tx, b)
}
func (m *repoMock) List(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error) {
	return m.listFn(ctx, userID, p)
}

type bookRepoMock struct {
	byIDFn            func(ctx context.Context, id uuid.UUID) (*model.Book, error)
	setAvailabilityFn func(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error
}

var _ BookRepo = (*bookRepoMock)(nil)

func (m *bookRepoMock) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *bookRepoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *bookRepoMock) SetAvailability(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error {
	if m.setAvailabilityFn == nil {
		return nil
	}
	return m.setAvailabilityFn(ctx, tx, id, available)
}

type pointRepoMock struct {
	existsFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

var _ PointRepo = (*pointRepoMock)(nil)

func (m *pointRepoMock) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.existsFn(ctx, id)
}

type userRepoMock struct {
	existsFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

var _ UserRepo = (*userRepoMock)(nil)

func (m *userRepoMock) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.existsFn(ctx, id)
}

func dateAfterToday(days int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
}

func TestCreate_DateValidation(t *testing.T) {
	// date checks fire before any storage access
	svc := New(nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{
		BorrowerID:        borrowerID,
		PlannedPickupDate: dateAfterToday(-1),
		PlannedReturnDate: dateAfterToday(10),
	})
	require.Equal(t, ErrPickupInPast, Code(err))

	_, err = svc.Create(ctx, CreateParams{
		BorrowerID:        borrowerID,
		PlannedPickupDate: dateAfterToday(5),
		PlannedReturnDate: dateAfterToday(5),
	})
	require.Equal(t, ErrReturnBeforePickup, Code(err))

	_, err = svc.Create(ctx, CreateParams{
		BorrowerID:        borrowerID,
		PlannedPickupDate: dateAfterToday(10),
		PlannedReturnDate: dateAfterToday(5),
	})
	require.Equal(t, ErrReturnBeforePickup, Code(err))
}

func TestList_ParamClamping(t *testing.T) {
	var got ListParams
	m := &repoMock{
		listFn: func(ctx context.Context, userID uuid.UUID, p ListParams) ([]model.Booking, int, error) {
			got = p
			return nil, 0, nil
		},
	}
	svc := New(nil, m, nil, nil, nil, nil)

	_, _, err := svc.List(context.Background(), borrowerID, ListParams{Page: 0, Limit: 500})
	require.NoError(t, err)
	require.Equal(t, 1, got.Page)
	require.Equal(t, 20, got.Limit)

	_, _, err = svc.List(context.Background(), borrowerID, ListParams{Page: 3, Limit: 50})
	require.NoError(t, err)
	require.Equal(t, 3, got.Page)
	require.Equal(t, 50, got.Limit)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc := New(nil, nil, nil, nil, nil, nil)
	bad := model.BookingStatus("SHIPPED")
	_, _, err := svc.List(context.Background(), borrowerID, ListParams{Status: &bad})
	require.Equal(t, ErrBadStatus, Code(err))
}

func TestUpdateStatus_RejectsUnknownTarget(t *testing.T) {
	svc := New(nil, nil, nil, nil, nil, nil)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), ownerID, model.BookingStatus("LOST"))
	require.Equal(t, ErrBadStatus, Code(err))
}

func TestGet_AccessControl(t *testing.T) {
	b := testBooking(model.BookingPending)
	m := &repoMock{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
			if id != b.ID {
				return nil, sql.ErrNoRows
			}
			return b, nil
		},
	}
	books := &bookRepoMock{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			return testBook(), nil
		},
	}
	svc := New(nil, m, books, nil, nil, nil)
	ctx := context.Background()

	// unknown id resolves to not-found, not forbidden
	_, err := svc.Get(ctx, uuid.New(), strangerID)
	require.Equal(t, ErrNotFound, Code(err))

	// third party on an existing booking is forbidden
	_, err = svc.Get(ctx, b.ID, strangerID)
	require.Equal(t, ErrForbidden, Code(err))

	got, err := svc.Get(ctx, b.ID, borrowerID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	got, err = svc.Get(ctx, b.ID, ownerID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	require.False(t, isUniqueViolation(sql.ErrNoRows))
}

func availableBook() *model.Book {
	b := testBook()
	b.IsAvailable = true
	return b
}

func createParams() CreateParams {
	return CreateParams{
		BorrowerID:        borrowerID,
		BookID:            testBook().ID,
		BookingPointID:    uuid.MustParse("cccccccc-0000-0000-0000-000000000001"),
		PlannedPickupDate: dateAfterToday(1),
		PlannedReturnDate: dateAfterToday(8),
	}
}

// happyCreateMocks is the all-preconditions-pass baseline; each test breaks
// exactly one of them.
func happyCreateMocks() (*repoMock, *bookRepoMock, *pointRepoMock, *userRepoMock) {
	r := &repoMock{
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error) {
			return false, nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
			b.ID = uuid.New()
			return nil
		},
	}
	books := &bookRepoMock{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			return availableBook(), nil
		},
	}
	points := &pointRepoMock{
		existsFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil },
	}
	users := &userRepoMock{
		existsFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil },
	}
	return r, books, points, users
}

func TestCreate_BookNotFound(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	books.byIDFn = func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
		return nil, sql.ErrNoRows
	}
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCreate_DeactivatedBookNotFound(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	books.byIDFn = func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
		b := availableBook()
		b.IsActive = false
		return b, nil
	}
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCreate_BookUnavailable(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	books.byIDFn = func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
		return testBook(), nil // is_available = false
	}
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrBookUnavailable, Code(err))
}

func TestCreate_SelfBooking(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	p := createParams()
	p.BorrowerID = ownerID
	_, err := svc.Create(context.Background(), p)
	require.Equal(t, ErrSelfBooking, Code(err))
}

func TestCreate_PointNotFound(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	points.existsFn = func(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil }
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrPointNotFound, Code(err))
}

func TestCreate_UserNotFound(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	users.existsFn = func(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil }
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestCreate_AlreadyBooked(t *testing.T) {
	r, books, points, users := happyCreateMocks()
	r.hasActiveFn = func(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) (bool, error) {
		return true, nil
	}
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrAlreadyBooked, Code(err))
}

func TestCreate_InsertRaceMapsToAlreadyBooked(t *testing.T) {
	// a concurrent create can slip past HasActive and lose on the partial
	// unique index instead
	r, books, points, users := happyCreateMocks()
	r.insertFn = func(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "bookings_one_active_per_book"}
	}
	svc := New(nopDB(t), r, books, points, users, &notifierMock{})

	_, err := svc.Create(context.Background(), createParams())
	require.Equal(t, ErrAlreadyBooked, Code(err))
}

func TestCreate_Success(t *testing.T) {
	r, books, points, users := happyCreateMocks()

	type availCall struct {
		id        uuid.UUID
		available bool
	}
	var availCalls []availCall
	books.setAvailabilityFn = func(ctx context.Context, tx *sql.Tx, id uuid.UUID, available bool) error {
		availCalls = append(availCalls, availCall{id: id, available: available})
		return nil
	}
	n := &notifierMock{}
	svc := New(nopDB(t), r, books, points, users, n)

	b, err := svc.Create(context.Background(), createParams())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, b.ID)
	require.Equal(t, model.BookingPending, b.Status)

	// the book is taken off the shelf in the same unit of work
	require.Len(t, availCalls, 1)
	require.Equal(t, testBook().ID, availCalls[0].id)
	require.False(t, availCalls[0].available)

	// the owner hears about the new request after commit
	require.Len(t, n.got, 1)
	require.Equal(t, model.NotifyBookingCreated, n.got[0].Type)
	require.Equal(t, ownerID, n.got[0].UserID)
	require.NotNil(t, n.got[0].BookingID)
	require.Equal(t, b.ID, *n.got[0].BookingID)
}
