package reservation

import (
	"context"
	"fmt"

	"libres/infras/kafka"
	"libres/infras/otel"
	"libres/internal/domains/reservation/model/dto"
	"libres/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Consumer turns reservation lifecycle events into user-facing notifications. Delivery is a
// structured log line for now.
type Consumer struct {
	otel otel.Otel
}

func New(otel otel.Otel) Consumer {
	return Consumer{otel: otel}
}

func (c Consumer) Handle(ctx context.Context, msg kafkaGo.Message) (err error) {
	_, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Reservation")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	decoded, err := kafka.Decode[dto.ReservationResponse](msg)
	if err != nil {
		return fmt.Errorf("failed to decode reservation event: %w", err)
	}

	reservation, _ := decoded.Value.(dto.ReservationResponse)

	scope.SetAttributes(map[string]any{
		"event.type":     decoded.EventType,
		"reservation.id": reservation.ID,
	})

	text, ok := notification(decoded.EventType, reservation)
	if !ok {
		log.Warn().Str("event", decoded.EventType).Str("key", decoded.Key).Msg("ignoring unknown reservation event")

		return nil
	}

	log.Info().
		Str("event", decoded.EventType).
		Int64("reservation_id", reservation.ID).
		Int64("user_id", reservation.UserID).
		Msg(text)

	return nil
}

func notification(eventType string, r dto.ReservationResponse) (string, bool) {
	when := fmt.Sprintf("%s %s-%s", r.ReservationDate, r.StartTime, r.EndTime)

	switch eventType {
	case constant.EventReservationCreated:
		return "reservation received for " + when + ", awaiting confirmation", true
	case constant.EventReservationConfirmed:
		return "reservation confirmed for " + when, true
	case constant.EventReservationCancelled:
		return "reservation cancelled for " + when, true
	case constant.EventReservationDeleted:
		return "reservation removed for " + when, true
	default:
		return "", false
	}
}
