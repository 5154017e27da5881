package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a player with a wallet balance
type User struct {
	ID        uuid.UUID       `db:"id"`
	Nickname  string          `db:"nickname"`
	DiscordID *int64          `db:"discord_id"` // Set when the user registered through the bot
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// CanAfford reports whether the balance covers amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// UserProfile is a user together with every wager they have placed
type UserProfile struct {
	User   *User
	Wagers []*HistoryEntry
}
