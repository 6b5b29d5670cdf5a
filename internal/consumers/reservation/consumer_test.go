package reservation_test

import (
	"context"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"libres/infras/otel/mocks"
	"libres/internal/consumers/reservation"
	"libres/shared/constant"
)

func TestConsumer_Handle(t *testing.T) {
	tests := []struct {
		name    string
		msg     kafkaGo.Message
		wantErr bool
	}{
		{
			name: "confirmed event",
			msg: kafkaGo.Message{
				Key:     []byte("3"),
				Value:   []byte(`{"id":3,"user_id":7,"time_slot_id":2,"reservation_date":"2026-10-20","start_time":"10:00","end_time":"11:30","status":"confirmed"}`),
				Headers: []kafkaGo.Header{{Key: constant.RequestHeaderEventType, Value: []byte(constant.EventReservationConfirmed)}},
			},
		},
		{
			name: "unknown event type is skipped",
			msg: kafkaGo.Message{
				Key:     []byte("3"),
				Value:   []byte(`{"id":3}`),
				Headers: []kafkaGo.Header{{Key: constant.RequestHeaderEventType, Value: []byte("reservation.archived")}},
			},
		},
		{
			name: "missing header is skipped",
			msg: kafkaGo.Message{
				Key:   []byte("3"),
				Value: []byte(`{"id":3}`),
			},
		},
		{
			name: "malformed payload",
			msg: kafkaGo.Message{
				Key:   []byte("3"),
				Value: []byte(`{"id":`),
			},
			wantErr: true,
		},
	}

	consumer := reservation.New(mocks.NewOtel())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := consumer.Handle(context.Background(), tt.msg)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}
