package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/n1x9s/library/model"
)

type notifierMock struct {
	got []model.NotificationIntent
}

func (m *notifierMock) Dispatch(ctx context.Context, intents ...model.NotificationIntent) {
	m.got = append(m.got, intents...)
}

type reminderRepoMock struct {
	dueFn func(ctx context.Context, due time.Time) ([]model.Booking, error)
}

func (m *reminderRepoMock) DueForReturn(ctx context.Context, due time.Time) ([]model.Booking, error) {
	return m.dueFn(ctx, due)
}

type reminderBooksMock struct {
	byIDFn func(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

func (m *reminderBooksMock) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}

func TestSendReturnReminders(t *testing.T) {
	b1 := *testBooking(model.BookingTaken)
	b2 := *testBooking(model.BookingTaken)
	b2.ID = uuid.New()
	b2.BookID = uuid.New()

	var askedDue time.Time
	repo := &reminderRepoMock{
		dueFn: func(ctx context.Context, due time.Time) ([]model.Booking, error) {
			askedDue = due
			return []model.Booking{b1, b2}, nil
		},
	}
	books := &reminderBooksMock{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			if id == b1.BookID {
				return testBook(), nil
			}
			return nil, sql.ErrNoRows
		},
	}
	n := &notifierMock{}

	sent, err := NewReminder(repo, books, n).SendReturnReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Len(t, n.got, 2)

	// sweep targets tomorrow, at date precision
	now := time.Now().UTC()
	wantDue := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	require.Equal(t, wantDue, askedDue)

	require.Equal(t, model.NotifyReturnReminder, n.got[0].Type)
	require.Equal(t, borrowerID, n.got[0].UserID)
	require.Contains(t, n.got[0].Message, "The Master and Margarita")
	// title lookup failure falls back to a generic message, reminder still sent
	require.Contains(t, n.got[1].Message, "your book")
}

func TestSendReturnReminders_RepoError(t *testing.T) {
	repo := &reminderRepoMock{
		dueFn: func(ctx context.Context, due time.Time) ([]model.Booking, error) {
			return nil, errors.New("db down")
		},
	}
	_, err := NewReminder(repo, nil, nil).SendReturnReminders(context.Background())
	require.Error(t, err)
}
