package betting

import (
	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places money is carried at
const MinorUnitPlaces = 2

// Stake is the input to Distribute: one wager's amount on one option
type Stake struct {
	WagerID  int64
	OptionID int64
	Amount   decimal.Decimal
}

// Payout is the amount returned to a single wager
type Payout struct {
	WagerID int64
	Amount  decimal.Decimal
	Won     bool
}

// Distribution is the result of splitting a room's pool among its winners
type Distribution struct {
	TotalPool   decimal.Decimal
	WinningPool decimal.Decimal
	// Payouts is in the same order as the stakes passed to Distribute
	Payouts []Payout
	// Remainder is totalPool minus the sum of the rounded payouts, measured before
	// it was folded into the payout of RemainderWagerID. Zero when nothing was rounded.
	Remainder        decimal.Decimal
	RemainderWagerID int64
	// HouseRetained is the part of the pool not paid back to anyone
	HouseRetained decimal.Decimal
}

// PayoutFor returns the payout of a wager, or zero when the wager is unknown
func (d *Distribution) PayoutFor(wagerID int64) decimal.Decimal {
	for _, p := range d.Payouts {
		if p.WagerID == wagerID {
			return p.Amount
		}
	}
	return decimal.Zero
}

// Distribute splits the pool proportionally among the stakes on winningOptionID.
//
// Each winner receives stake * totalPool / winningPool rounded half-up to the minor
// unit. Whatever rounding leaves over (positive or negative) is added to the winner
// with the largest stake, lowest wager ID first on ties, so the payouts always sum to
// the total pool. When nobody picked the winning option every payout is zero and the
// house retains the pool.
func Distribute(stakes []Stake, winningOptionID int64) Distribution {
	d := Distribution{
		TotalPool:     decimal.Zero,
		WinningPool:   decimal.Zero,
		Remainder:     decimal.Zero,
		HouseRetained: decimal.Zero,
		Payouts:       make([]Payout, len(stakes)),
	}

	for _, s := range stakes {
		d.TotalPool = d.TotalPool.Add(s.Amount)
		if s.OptionID == winningOptionID {
			d.WinningPool = d.WinningPool.Add(s.Amount)
		}
	}

	if d.WinningPool.IsZero() {
		for i, s := range stakes {
			d.Payouts[i] = Payout{WagerID: s.WagerID, Amount: decimal.Zero}
		}
		d.HouseRetained = d.TotalPool
		return d
	}

	paid := decimal.Zero
	largest := -1
	for i, s := range stakes {
		if s.OptionID != winningOptionID {
			d.Payouts[i] = Payout{WagerID: s.WagerID, Amount: decimal.Zero}
			continue
		}

		amount := s.Amount.Mul(d.TotalPool).DivRound(d.WinningPool, MinorUnitPlaces)
		d.Payouts[i] = Payout{WagerID: s.WagerID, Amount: amount, Won: true}
		paid = paid.Add(amount)

		if largest < 0 || isLargerStake(s, stakes[largest]) {
			largest = i
		}
	}

	d.Remainder = d.TotalPool.Sub(paid)
	if !d.Remainder.IsZero() {
		d.Payouts[largest].Amount = d.Payouts[largest].Amount.Add(d.Remainder)
		d.RemainderWagerID = stakes[largest].WagerID
	}

	return d
}

func isLargerStake(a, b Stake) bool {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c > 0
	}
	return a.WagerID < b.WagerID
}
