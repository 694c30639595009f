package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	notificationserrors "facilio/internal/notifications/errors"
	"facilio/internal/notifications/repository"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/model"
	"facilio/pkg/sanitizer"
)

// ErrUnsupportedEvent marks booking events that produce no notification.
var ErrUnsupportedEvent = errors.New("unsupported booking event")

type NotificationService interface {
	// Record turns a booking event into a notification for its user. Replays
	// of the same eventID are ignored.
	Record(ctx context.Context, eventID string, event model.BookingEvent) (*model.Notification, bool, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *notificationService) Record(ctx context.Context, eventID string, event model.BookingEvent) (*model.Notification, bool, error) {
	if eventID == "" {
		return nil, false, fmt.Errorf("%w: missing event id", ErrUnsupportedEvent)
	}
	userID := sanitizer.NormalizeIdentifier(event.UserID)
	if userID == "" {
		return nil, false, fmt.Errorf("%w: event %s has no user", ErrUnsupportedEvent, eventID)
	}

	kind, message, err := describe(event)
	if err != nil {
		return nil, false, err
	}

	n := &model.Notification{
		EventID:       eventID,
		UserID:        userID,
		Type:          kind,
		Message:       message,
		BookingID:     event.BookingID,
		FacilityID:    event.FacilityID,
		SubfacilityID: event.SubfacilityID,
		CreatedAt:     s.now(),
	}

	created, err := s.repo.InsertOnce(ctx, n)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.cfg.Log.Info("Notification recorded",
			"id", n.ID,
			"event_id", eventID,
			"user_id", userID,
			"type", kind,
		)
	} else {
		s.cfg.Log.Debug("Duplicate booking event ignored", "event_id", eventID)
	}
	return n, created, nil
}

func describe(event model.BookingEvent) (string, string, error) {
	when := fmt.Sprintf("%s at %s", event.Date, event.Time)
	switch event.Type {
	case model.BookingEventCreated:
		return model.NotificationBookingCreated,
			fmt.Sprintf("Your booking for %s was received and is pending approval.", when), nil
	case model.BookingEventStatusChanged:
		switch event.Status {
		case model.StatusApproved:
			return model.NotificationBookingStatusChanged,
				fmt.Sprintf("Your booking for %s was approved.", when), nil
		case model.StatusRejected:
			return model.NotificationBookingStatusChanged,
				fmt.Sprintf("Your booking for %s was rejected.", when), nil
		}
		return "", "", fmt.Errorf("%w: status %q", ErrUnsupportedEvent, event.Status)
	default:
		return "", "", fmt.Errorf("%w: type %q", ErrUnsupportedEvent, event.Type)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	userID = sanitizer.NormalizeIdentifier(userID)
	if userID == "" {
		return nil, 0, apperrors.MissingParameters("user_id")
	}

	q := repository.ListQuery{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      config.NormalizePaginationLimit(limit),
		Offset:     config.NormalizeOffset(offset),
	}

	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByUser(ctx, q)
		if err != nil {
			s.cfg.Log.Error("Failed to count notifications", "user_id", userID, "error", err)
			errCount = apperrors.Internal("Failed to count notifications", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		notifications, err = s.repo.FindByUser(ctx, q)
		if err != nil {
			s.cfg.Log.Error("Failed to list notifications", "user_id", userID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve notifications", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return notifications, count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Notification ID cannot be empty")
	}

	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, notificationserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Notification", id)
		case errors.Is(err, notificationserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid notification ID format")
		default:
			s.cfg.Log.Error("Failed to mark notification read", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update notification", err)
		}
	}
	return n, nil
}
