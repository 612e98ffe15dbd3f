package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestFormatLine(t *testing.T) {
	ev := BookingEvent{
		Type: BookingCreated, BookingID: 7, UserID: 3,
		MovieName: "Dune", MovieDate: "2024-05-01", MovieTime: "7:00 PM",
		Seats: []string{"A1", "A2"}, Email: "a@x.com", OccurredAt: "2024-05-01T10:00:00Z",
	}
	assert.Equal(t,
		"[2024-05-01T10:00:00Z] booking.created | booking_id=7 | user_id=3 | movie=\"Dune\" | date=2024-05-01 | time=\"7:00 PM\" | email=a@x.com | seats=[A1,A2]\n",
		FormatLine(ev))
}

func TestConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	c := NewConsumer("amqp://unused", path)

	b := model.Booking{ID: 1, UserID: 2, MovieName: "Dune", MovieDate: "2024-05-01", MovieTime: "7:00 PM", SeatNumbers: []string{"B4"}}
	created := NewBookingEvent(BookingCreated, b)
	cancelled := NewBookingEvent(BookingCancelled, b)
	for _, ev := range []BookingEvent{created, cancelled} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.handle(body))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatLine(created)+FormatLine(cancelled), string(data))
}

func TestConsumerHandleRejectsMalformed(t *testing.T) {
	c := NewConsumer("amqp://unused", filepath.Join(t.TempDir(), "booking.log"))
	assert.Error(t, c.handle([]byte("{not json")))
	assert.Error(t, c.handle([]byte(`{"type":"booking.created"}`)))
}
