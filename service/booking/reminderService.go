package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

type ReminderRepo interface {
	DueForReturn(ctx context.Context, due time.Time) ([]model.Booking, error)
}

type ReminderBookRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

// Reminder emits return reminders for bookings due tomorrow. The caller is
// responsible for running it at most once per day; no dedup happens here.
type Reminder interface {
	SendReturnReminders(ctx context.Context) (int, error)
}

type reminder struct {
	r     ReminderRepo
	books ReminderBookRepo
	n     Notifier
}

func NewReminder(r ReminderRepo, books ReminderBookRepo, n Notifier) Reminder {
	return &reminder{r: r, books: books, n: n}
}

func (c *reminder) SendReturnReminders(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	due, err := c.r.DueForReturn(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		b := &due[i]
		title := "your book"
		if book, err := c.books.ByID(ctx, b.BookID); err == nil {
			title = book.Title
		}
		c.n.Dispatch(ctx, reminderIntent(b, title))
		sent++
	}
	return sent, nil
}
