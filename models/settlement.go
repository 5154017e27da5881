package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WagerPayout is the settlement of a single wager
type WagerPayout struct {
	WagerID  int64
	UserID   uuid.UUID
	OptionID int64
	Stake    decimal.Decimal
	Payout   decimal.Decimal
	Won      bool
}

// SettlementResult describes the outcome of closing a room
type SettlementResult struct {
	Room          *Room
	WinningOption *OutcomeOption
	DrawValue     int
	TotalPool     decimal.Decimal
	WinningPool   decimal.Decimal
	// Remainder is the rounding residual before it was allocated to RemainderWagerID
	Remainder        decimal.Decimal
	RemainderWagerID *int64
	HouseRetained    decimal.Decimal
	Payouts          []*WagerPayout
}

// Winners returns only the payouts of winning wagers
func (r *SettlementResult) Winners() []*WagerPayout {
	var winners []*WagerPayout
	for _, p := range r.Payouts {
		if p.Won {
			winners = append(winners, p)
		}
	}
	return winners
}
