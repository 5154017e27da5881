package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wager is one user's stake on one option in one room
type Wager struct {
	ID        int64               `db:"id"`
	UserID    uuid.UUID           `db:"user_id"`
	RoomID    int64               `db:"room_id"`
	OptionID  int64               `db:"option_id"`
	Stake     decimal.Decimal     `db:"stake"`
	Won       bool                `db:"won"`
	Payout    decimal.NullDecimal `db:"payout"`
	CreatedAt time.Time           `db:"created_at"`
	SettledAt *time.Time          `db:"settled_at"`
}

// IsSettled reports whether the wager's room has been closed and paid out
func (w *Wager) IsSettled() bool {
	return w.Payout.Valid
}

// HistoryEntry is a wager joined with the room, game and option it refers to
type HistoryEntry struct {
	WagerID     int64               `db:"wager_id"`
	RoomCode    string              `db:"room_code"`
	RoomOpen    bool                `db:"room_open"`
	GameName    string              `db:"game_name"`
	OptionLabel string              `db:"option_label"`
	Stake       decimal.Decimal     `db:"stake"`
	Won         bool                `db:"won"`
	Payout      decimal.NullDecimal `db:"payout"`
	PlacedAt    time.Time           `db:"placed_at"`
	SettledAt   *time.Time          `db:"settled_at"`
}
