package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/email"
)

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type DriverLookup interface {
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
}

// Handler turns notification events into emails for the passenger and the
// assigned driver.
type Handler struct {
	mailer  Mailer
	drivers DriverLookup
	logger  *slog.Logger
}

func NewHandler(mailer Mailer, drivers DriverLookup, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mailer: mailer, drivers: drivers, logger: logger}
}

// Handle decodes one message. Undecodable payloads are logged and dropped so
// one bad message does not stall the consumer.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.WarnContext(ctx, "drop undecodable notification", slog.String("error", err.Error()))
		return nil
	}
	return h.Dispatch(ctx, event)
}

func (h *Handler) Dispatch(ctx context.Context, event Event) error {
	log := h.logger.With(slog.String("event_id", event.ID), slog.String("type", string(event.Type)), slog.String("booking_id", event.BookingID))

	if msg, ok := PassengerMessage(event); ok {
		if err := h.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("send passenger email: %w", err)
		}
	}

	if event.DriverID == nil || h.drivers == nil {
		return nil
	}
	driver, err := h.drivers.GetDriver(ctx, *event.DriverID)
	if err != nil {
		if domain.IsNotFound(err) {
			log.WarnContext(ctx, "assigned driver no longer exists", slog.Int64("driver_id", *event.DriverID))
			return nil
		}
		return err
	}
	if msg, ok := DriverMessage(event, *driver); ok {
		if err := h.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("send driver email: %w", err)
		}
	}
	log.DebugContext(ctx, "notification handled")
	return nil
}
