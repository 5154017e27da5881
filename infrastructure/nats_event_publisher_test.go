package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"betroom/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	mockPub := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(mockPub)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	event := events.WagerPlacedEvent{
		WagerID:  7,
		RoomID:   3,
		RoomCode: "aB3xY9",
		UserID:   uuid.New(),
		OptionID: 2,
		Stake:    decimal.RequireFromString("250.50"),
	}

	var captured []byte
	mockPub.On("Publish", mock.Anything, "betroom.events.wager_placed", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil)

	err := publisher.Publish(context.Background(), event)
	require.NoError(t, err)
	mockPub.AssertExpectations(t)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.Equal(t, "wager_placed", envelope.EventType)
	assert.Equal(t, "betroom", envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))
	_, err = uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.WagerPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event.WagerID, payload.WagerID)
	assert.Equal(t, event.UserID, payload.UserID)
	assert.True(t, event.Stake.Equal(payload.Stake))
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	mockPub := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(mockPub)

	mockPub.On("Publish", mock.Anything, "betroom.events.room_closed", mock.Anything).
		Return(errors.New("nats down"))

	err := publisher.Publish(context.Background(), events.RoomClosedEvent{RoomID: 1, Code: "aaaaaa"})
	assert.Error(t, err)
}

func TestNATSEventPublisher_AttachForwardsBusEvents(t *testing.T) {
	mockPub := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(mockPub)
	bus := events.NewBus()
	publisher.Attach(bus)

	published := make(chan string, 1)
	mockPub.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { published <- args.String(1) }).
		Return(nil)

	bus.Emit(context.Background(), events.RoomCreatedEvent{RoomID: 1, Code: "Zz9Zz9", GameName: "roulette"})

	select {
	case subject := <-published:
		assert.Equal(t, "betroom.events.room_created", subject)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}

func TestStreamSubjects(t *testing.T) {
	assert.Equal(t, []string{"betroom.events.>"}, StreamSubjects())
	assert.Equal(t, "betroom.events.balance_change", SubjectFor(events.EventTypeBalanceChange))
}
