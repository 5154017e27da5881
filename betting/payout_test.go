package betting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumPayouts(d Distribution) decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}

const (
	red   = int64(1)
	black = int64(2)
	green = int64(3)
)

func TestDistribute_ProportionalSplit(t *testing.T) {
	stakes := []Stake{
		{WagerID: 1, OptionID: red, Amount: dec("300")},
		{WagerID: 2, OptionID: black, Amount: dec("500")},
		{WagerID: 3, OptionID: red, Amount: dec("201")},
	}

	d := Distribute(stakes, red)

	assert.True(t, d.TotalPool.Equal(dec("1001")))
	assert.True(t, d.WinningPool.Equal(dec("501")))
	assert.Equal(t, "599.40", d.PayoutFor(1).StringFixed(2))
	assert.Equal(t, "0.00", d.PayoutFor(2).StringFixed(2))
	assert.Equal(t, "401.60", d.PayoutFor(3).StringFixed(2))
	assert.True(t, d.Remainder.IsZero())
	assert.Zero(t, d.RemainderWagerID)
	assert.True(t, d.HouseRetained.IsZero())
	assert.True(t, sumPayouts(d).Equal(d.TotalPool))

	assert.True(t, d.Payouts[0].Won)
	assert.False(t, d.Payouts[1].Won)
	assert.True(t, d.Payouts[2].Won)
}

func TestDistribute_NoWinners(t *testing.T) {
	stakes := []Stake{
		{WagerID: 1, OptionID: red, Amount: dec("300")},
		{WagerID: 2, OptionID: black, Amount: dec("500.50")},
	}

	d := Distribute(stakes, green)

	require.Len(t, d.Payouts, 2)
	for _, p := range d.Payouts {
		assert.True(t, p.Amount.IsZero())
		assert.False(t, p.Won)
	}
	assert.True(t, d.WinningPool.IsZero())
	assert.True(t, d.HouseRetained.Equal(dec("800.50")))
	assert.True(t, d.Remainder.IsZero())
}

func TestDistribute_EmptyRoom(t *testing.T) {
	d := Distribute(nil, red)

	assert.Empty(t, d.Payouts)
	assert.True(t, d.TotalPool.IsZero())
	assert.True(t, d.HouseRetained.IsZero())
}

func TestDistribute_SingleWinnerTakesPool(t *testing.T) {
	stakes := []Stake{
		{WagerID: 10, OptionID: red, Amount: dec("250.25")},
		{WagerID: 11, OptionID: black, Amount: dec("999.99")},
		{WagerID: 12, OptionID: green, Amount: dec("300")},
	}

	d := Distribute(stakes, green)

	assert.Equal(t, "1550.24", d.PayoutFor(12).StringFixed(2))
	assert.True(t, sumPayouts(d).Equal(d.TotalPool))
}

func TestDistribute_RemainderPolicy(t *testing.T) {
	t.Run("positive remainder goes to lowest wager ID among equal stakes", func(t *testing.T) {
		// 1201 / 3 = 400.333..., rounded payouts sum to 1200.99
		stakes := []Stake{
			{WagerID: 5, OptionID: red, Amount: dec("300")},
			{WagerID: 3, OptionID: red, Amount: dec("300")},
			{WagerID: 7, OptionID: red, Amount: dec("300")},
			{WagerID: 9, OptionID: black, Amount: dec("301")},
		}

		d := Distribute(stakes, red)

		assert.Equal(t, "0.01", d.Remainder.StringFixed(2))
		assert.Equal(t, int64(3), d.RemainderWagerID)
		assert.Equal(t, "400.34", d.PayoutFor(3).StringFixed(2))
		assert.Equal(t, "400.33", d.PayoutFor(5).StringFixed(2))
		assert.Equal(t, "400.33", d.PayoutFor(7).StringFixed(2))
		assert.True(t, sumPayouts(d).Equal(d.TotalPool))
	})

	t.Run("negative remainder is taken from the largest stake", func(t *testing.T) {
		// 1202 / 3 = 400.666..., rounded payouts sum to 1202.01
		stakes := []Stake{
			{WagerID: 1, OptionID: red, Amount: dec("300")},
			{WagerID: 2, OptionID: red, Amount: dec("300")},
			{WagerID: 3, OptionID: red, Amount: dec("300")},
			{WagerID: 4, OptionID: black, Amount: dec("302")},
		}

		d := Distribute(stakes, red)

		assert.Equal(t, "-0.01", d.Remainder.StringFixed(2))
		assert.Equal(t, int64(1), d.RemainderWagerID)
		assert.Equal(t, "400.66", d.PayoutFor(1).StringFixed(2))
		assert.Equal(t, "400.67", d.PayoutFor(2).StringFixed(2))
		assert.True(t, sumPayouts(d).Equal(d.TotalPool))
	})

	t.Run("largest stake wins over lower wager ID", func(t *testing.T) {
		// 410.8768 + 412.2464 + 410.8768 rounds to 1234.01
		stakes := []Stake{
			{WagerID: 1, OptionID: red, Amount: dec("300")},
			{WagerID: 2, OptionID: red, Amount: dec("301")},
			{WagerID: 3, OptionID: red, Amount: dec("300")},
			{WagerID: 4, OptionID: black, Amount: dec("333")},
		}

		d := Distribute(stakes, red)

		assert.Equal(t, "-0.01", d.Remainder.StringFixed(2))
		assert.Equal(t, int64(2), d.RemainderWagerID)
		assert.Equal(t, "410.88", d.PayoutFor(1).StringFixed(2))
		assert.Equal(t, "412.24", d.PayoutFor(2).StringFixed(2))
		assert.Equal(t, "410.88", d.PayoutFor(3).StringFixed(2))
		assert.True(t, sumPayouts(d).Equal(d.TotalPool))
	})
}

func TestDistribute_HalfUpRounding(t *testing.T) {
	// each winner is owed exactly 200.005, which rounds half-up to 200.01
	stakes := []Stake{
		{WagerID: 1, OptionID: red, Amount: dec("200")},
		{WagerID: 2, OptionID: red, Amount: dec("200")},
		{WagerID: 3, OptionID: black, Amount: dec("0.01")},
	}

	d := Distribute(stakes, red)

	assert.Equal(t, "-0.01", d.Remainder.StringFixed(2))
	assert.Equal(t, int64(1), d.RemainderWagerID)
	assert.Equal(t, "200.00", d.PayoutFor(1).StringFixed(2))
	assert.Equal(t, "200.01", d.PayoutFor(2).StringFixed(2))
	assert.True(t, sumPayouts(d).Equal(d.TotalPool))
}

func TestDistribute_ConservesPool(t *testing.T) {
	rng := newSeededRand(42)

	for round := 0; round < 200; round++ {
		n := 1 + rng.IntN(25)
		stakes := make([]Stake, n)
		for i := range stakes {
			cents := 20001 + rng.IntN(500000)
			stakes[i] = Stake{
				WagerID:  int64(i + 1),
				OptionID: int64(1 + rng.IntN(3)),
				Amount:   decimal.New(int64(cents), -2),
			}
		}
		winning := int64(1 + rng.IntN(3))

		d := Distribute(stakes, winning)

		if d.WinningPool.IsZero() {
			assert.True(t, sumPayouts(d).IsZero())
			assert.True(t, d.HouseRetained.Equal(d.TotalPool))
			continue
		}

		assert.True(t, sumPayouts(d).Equal(d.TotalPool), "round %d: payouts must sum to pool", round)
		for i, p := range d.Payouts {
			assert.True(t, p.Amount.GreaterThanOrEqual(decimal.Zero))
			assert.Equal(t, stakes[i].OptionID == winning, p.Won)
			assert.True(t, p.Amount.Equal(p.Amount.Round(MinorUnitPlaces)))
		}
	}
}
