package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoulette_Label(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{1, "green"},
		{2, "red"},
		{3, "black"},
		{18, "red"},
		{35, "black"},
		{36, "red"},
		{37, "black"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Roulette{}.Label(tt.value), "pocket %d", tt.value)
	}
}

func TestCoinFlip_Label(t *testing.T) {
	assert.Equal(t, "heads", CoinFlip{}.Label(1))
	assert.Equal(t, "tails", CoinFlip{}.Label(2))
}

func TestRegistry_Lookup(t *testing.T) {
	reg := DefaultRegistry()

	g, ok := reg.Lookup("Roulette")
	require.True(t, ok)
	assert.Equal(t, "roulette", g.Name())

	g, ok = reg.Lookup(" coinflip ")
	require.True(t, ok)
	assert.Equal(t, "coinflip", g.Name())

	_, ok = reg.Lookup("blackjack")
	assert.False(t, ok)
}

func TestGenerator_DrawStaysInRange(t *testing.T) {
	gen := NewSecureGenerator(DefaultRegistry())
	seen := make(map[string]bool)

	for i := 0; i < 2000; i++ {
		d, err := gen.Draw("roulette")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Value, 1)
		assert.LessOrEqual(t, d.Value, 37)
		assert.Equal(t, Roulette{}.Label(d.Value), d.Label)
		seen[d.Label] = true
	}

	assert.True(t, seen["red"])
	assert.True(t, seen["black"])
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	a := NewSeededGenerator(DefaultRegistry(), 7)
	b := NewSeededGenerator(DefaultRegistry(), 7)

	for i := 0; i < 50; i++ {
		da, err := a.Draw("roulette")
		require.NoError(t, err)
		db, err := b.Draw("roulette")
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}
}

func TestGenerator_UnknownGame(t *testing.T) {
	gen := NewSeededGenerator(DefaultRegistry(), 1)

	_, err := gen.Draw("blackjack")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestGenerator_CustomGame(t *testing.T) {
	gen := NewSeededGenerator(NewRegistry(CoinFlip{}), 3)

	for i := 0; i < 20; i++ {
		d, err := gen.Draw("coinflip")
		require.NoError(t, err)
		assert.Contains(t, []string{"heads", "tails"}, d.Label)
	}

	_, err := gen.Draw("roulette")
	assert.ErrorIs(t, err, ErrUnknownGame)
}
