package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          uuid.New(),
		OldBalance:      decimal.RequireFromString("2000.00"),
		NewBalance:      decimal.RequireFromString("1699.50"),
		TransactionType: models.TransactionTypeWagerPlaced,
		ChangeAmount:    decimal.RequireFromString("-300.50"),
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush(context.Background())
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.UserID, received.UserID)
		assert.True(t, testEvent.NewBalance.Equal(received.NewBalance))
		assert.True(t, testEvent.ChangeAmount.Equal(received.ChangeAmount))
		assert.Equal(t, testEvent.TransactionType, received.TransactionType)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering events of different types in one flush
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	var wg sync.WaitGroup
	received := make(map[EventType]int)
	wg.Add(3)

	record := func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		received[event.Type()]++
		mu.Unlock()
	}
	mainBus.Subscribe(EventTypeWagerPlaced, record)
	mainBus.Subscribe(EventTypeRoomClosed, record)

	transactionalBus.Publish(WagerPlacedEvent{WagerID: 1, RoomID: 10, RoomCode: "aB3xY9", Stake: decimal.NewFromInt(300)})
	transactionalBus.Publish(WagerPlacedEvent{WagerID: 2, RoomID: 10, RoomCode: "aB3xY9", Stake: decimal.NewFromInt(500)})
	transactionalBus.Publish(RoomClosedEvent{RoomID: 10, Code: "aB3xY9", OutcomeLabel: "red", DrawValue: 14})
	// No subscriber for this one; it must not block the others
	transactionalBus.Publish(RoomCreatedEvent{RoomID: 11, Code: "Zz9Zz9"})

	transactionalBus.Flush(context.Background())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not all events were delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, received[EventTypeWagerPlaced])
	assert.Equal(t, 1, received[EventTypeRoomClosed])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeRoomClosed, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(RoomClosedEvent{RoomID: 1, Code: "aaaaaa"})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	delivered := make(chan struct{}, 1)

	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), UserCreatedEvent{UserID: uuid.New(), Nickname: "ana"})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler did not run")
	}
}
