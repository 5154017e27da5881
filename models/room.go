package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RoomState represents where a room is in its lifecycle
type RoomState string

const (
	RoomStateOpen    RoomState = "open"
	RoomStateClosing RoomState = "closing"
	RoomStateClosed  RoomState = "closed"
)

// RoomEvent drives a room state transition
type RoomEvent string

const (
	RoomEventClose  RoomEvent = "close"
	RoomEventSettle RoomEvent = "settle"
)

var roomTransitions = map[RoomState]map[RoomEvent]RoomState{
	RoomStateOpen: {
		RoomEventClose: RoomStateClosing,
	},
	RoomStateClosing: {
		RoomEventSettle: RoomStateClosed,
	},
}

// NextRoomState returns the state reached by applying evt to cur.
// Closed is terminal; every transition not in the table is rejected.
func NextRoomState(cur RoomState, evt RoomEvent) (RoomState, error) {
	if next, ok := roomTransitions[cur][evt]; ok {
		return next, nil
	}
	return cur, fmt.Errorf("invalid room transition: %s --%s--> ?", cur, evt)
}

// Room is a single betting round tied to a game type
type Room struct {
	ID              int64      `db:"id"`
	Code            string     `db:"code"`
	GameTypeID      int64      `db:"game_type_id"`
	IsOpen          bool       `db:"is_open"`
	OutcomeOptionID *int64     `db:"outcome_option_id"`
	OutcomeValue    *int       `db:"outcome_value"`
	CreatedAt       time.Time  `db:"created_at"`
	ClosedAt        *time.Time `db:"closed_at"`

	// Recorded at settlement for audit
	TotalPool         decimal.NullDecimal `db:"total_pool"`
	RoundingRemainder decimal.NullDecimal `db:"rounding_remainder"`
}

// State returns the persisted lifecycle state. Closing is never persisted.
func (r *Room) State() RoomState {
	if r.IsOpen {
		return RoomStateOpen
	}
	return RoomStateClosed
}

// CanAcceptWagers reports whether wagers may still be placed
func (r *Room) CanAcceptWagers() bool {
	return r.IsOpen && r.OutcomeOptionID == nil
}

// RoomDetail is the read model returned to callers inspecting a room
type RoomDetail struct {
	Room          *Room
	GameType      *GameType
	OutcomeOption *OutcomeOption
	WagerCount    int
	TotalPool     decimal.Decimal
}
