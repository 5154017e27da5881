package betting

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
)

// ErrUnknownGame is returned when no Game is registered for a game type name
var ErrUnknownGame = errors.New("no outcome generator registered for game type")

// Game maps a uniformly drawn integer to one of a game type's option labels.
type Game interface {
	// Name is the game type name as stored in game_types.name
	Name() string
	// Range is the inclusive interval the raw value is drawn from
	Range() (lo, hi int)
	// Label maps a value inside Range to an option label
	Label(value int) string
}

// Roulette draws a pocket in [1, 37]. Pocket 1 is green, even pockets are red,
// the remaining odd pockets are black.
type Roulette struct{}

func (Roulette) Name() string { return "roulette" }
func (Roulette) Range() (lo, hi int) { return 1, 37 }

func (Roulette) Label(value int) string {
	switch {
	case value == 1:
		return "green"
	case value%2 == 0:
		return "red"
	default:
		return "black"
	}
}

// CoinFlip draws 1 (heads) or 2 (tails).
type CoinFlip struct{}

func (CoinFlip) Name() string { return "coinflip" }
func (CoinFlip) Range() (lo, hi int) { return 1, 2 }

func (CoinFlip) Label(value int) string {
	if value == 1 {
		return "heads"
	}
	return "tails"
}

// Registry looks games up by name, ignoring case
type Registry struct {
	games map[string]Game
}

// NewRegistry creates a registry holding the given games
func NewRegistry(games ...Game) *Registry {
	r := &Registry{games: make(map[string]Game, len(games))}
	for _, g := range games {
		r.games[strings.ToLower(g.Name())] = g
	}
	return r
}

// DefaultRegistry returns a registry with every built-in game
func DefaultRegistry() *Registry {
	return NewRegistry(Roulette{}, CoinFlip{})
}

// Lookup returns the game registered under name
func (r *Registry) Lookup(name string) (Game, bool) {
	g, ok := r.games[strings.ToLower(strings.TrimSpace(name))]
	return g, ok
}

// Draw is a single generated outcome: the raw value and the label it maps to
type Draw struct {
	Value int
	Label string
}

// Generator produces outcomes for registered games.
// It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	registry *Registry
}

// NewSecureGenerator returns a generator backed by the operating system CSPRNG
func NewSecureGenerator(registry *Registry) *Generator {
	return &Generator{rng: newSecureRand(), registry: registry}
}

// NewSeededGenerator returns a generator with a reproducible sequence.
// Use it for audits and tests only.
func NewSeededGenerator(registry *Registry, seed uint64) *Generator {
	return &Generator{rng: newSeededRand(seed), registry: registry}
}

// Draw generates an outcome for the named game type
func (g *Generator) Draw(gameName string) (Draw, error) {
	game, ok := g.registry.Lookup(gameName)
	if !ok {
		return Draw{}, fmt.Errorf("%w: %q", ErrUnknownGame, gameName)
	}

	lo, hi := game.Range()
	g.mu.Lock()
	value := lo + g.rng.IntN(hi-lo+1)
	g.mu.Unlock()

	return Draw{Value: value, Label: game.Label(value)}, nil
}
