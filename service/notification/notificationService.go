package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/n1x9s/library/model"
)

var ErrNotFound = errors.New("notification not found")

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service interface {
	// Dispatch persists one notification per intent. Best-effort: failures
	// are logged and skipped, never returned to the transition that emitted
	// the intent.
	Dispatch(ctx context.Context, intents ...model.NotificationIntent)

	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeOld(ctx context.Context, olderThan time.Duration) (int64, error)
}

type service struct {
	r   Repo
	log *slog.Logger
}

func New(r Repo, log *slog.Logger) Service { return &service{r: r, log: log} }

func (s *service) Dispatch(ctx context.Context, intents ...model.NotificationIntent) {
	for _, in := range intents {
		n := &model.Notification{
			UserID:    in.UserID,
			BookingID: in.BookingID,
			Type:      in.Type,
			Title:     in.Title,
			Message:   in.Message,
		}
		if err := s.r.Insert(ctx, n); err != nil {
			s.log.Error("notification dispatch failed",
				"type", in.Type, "user_id", in.UserID, "err", err)
		}
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.r.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.r.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return rows, unread, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.r.UnreadCount(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.r.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.r.MarkAllRead(ctx, userID)
}

func (s *service) PurgeOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.r.DeleteReadBefore(ctx, time.Now().UTC().Add(-olderThan))
}
