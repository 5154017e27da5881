package events

import (
	"context"
	"sync"

	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeRoomCreated   EventType = "room_created"
	EventTypeWagerPlaced   EventType = "wager_placed"
	EventTypeRoomClosed    EventType = "room_closed"
)

// AllEventTypes lists every event type emitted by the services
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeUserCreated,
	EventTypeRoomCreated,
	EventTypeWagerPlaced,
	EventTypeRoomClosed,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          uuid.UUID              `json:"user_id"`
	OldBalance      decimal.Decimal        `json:"old_balance"`
	NewBalance      decimal.Decimal        `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    decimal.Decimal        `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user registration
type UserCreatedEvent struct {
	UserID         uuid.UUID       `json:"user_id"`
	Nickname       string          `json:"nickname"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// RoomCreatedEvent is emitted when an admin opens a room
type RoomCreatedEvent struct {
	RoomID   int64  `json:"room_id"`
	Code     string `json:"code"`
	GameName string `json:"game_name"`
}

func (e RoomCreatedEvent) Type() EventType {
	return EventTypeRoomCreated
}

// WagerPlacedEvent is emitted once a wager and its debit have been committed
type WagerPlacedEvent struct {
	WagerID  int64           `json:"wager_id"`
	RoomID   int64           `json:"room_id"`
	RoomCode string          `json:"room_code"`
	UserID   uuid.UUID       `json:"user_id"`
	OptionID int64           `json:"option_id"`
	Stake    decimal.Decimal `json:"stake"`
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// RoomClosedEvent is emitted once a room has been settled
type RoomClosedEvent struct {
	RoomID        int64           `json:"room_id"`
	Code          string          `json:"code"`
	OutcomeLabel  string          `json:"outcome_label"`
	DrawValue     int             `json:"draw_value"`
	TotalPool     decimal.Decimal `json:"total_pool"`
	WinningPool   decimal.Decimal `json:"winning_pool"`
	WinnerCount   int             `json:"winner_count"`
	HouseRetained decimal.Decimal `json:"house_retained"`
}

func (e RoomClosedEvent) Type() EventType {
	return EventTypeRoomClosed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits the pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional bus")

	// The transaction's context may already be done; handlers outlive it
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops the pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
