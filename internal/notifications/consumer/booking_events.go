// Package consumer turns booking events read from Kafka into notifications.
package consumer

import (
	"context"
	"errors"

	"facilio/internal/notifications/service"
	"facilio/pkg/kafka"
	"facilio/pkg/logger"
	"facilio/pkg/model"
)

// NewBookingEventHandler decodes booking events and records them. Bad
// payloads and unsupported events are permanent failures and go to the
// dead-letter topic; storage failures are retried.
func NewBookingEventHandler(svc service.NotificationService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		eventID := msg.GetEventID()
		if _, _, err := svc.Record(ctx, eventID, event); err != nil {
			if errors.Is(err, service.ErrUnsupportedEvent) {
				log.Warn("Dropping booking event", "event_id", eventID, "type", event.Type, "error", err)
				return kafka.NewPermanentError("unsupported booking event", err)
			}
			return kafka.NewTransientError("failed to record notification", err)
		}
		return nil
	}
}
