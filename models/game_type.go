package models

import (
	"strings"
	"time"
)

// GameType is a kind of game a room can be opened for, with its fixed option set
type GameType struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	Options   []*OutcomeOption
}

// OutcomeOption is one of the labels a game's draw can resolve to
type OutcomeOption struct {
	ID         int64  `db:"id"`
	GameTypeID int64  `db:"game_type_id"`
	Label      string `db:"label"`
	Position   int16  `db:"position"`
}

// FindOption returns the option with the given ID, or nil if the game type has no such option
func (g *GameType) FindOption(optionID int64) *OutcomeOption {
	for _, opt := range g.Options {
		if opt.ID == optionID {
			return opt
		}
	}
	return nil
}

// FindOptionByLabel matches a drawn label against the option set, ignoring case
func (g *GameType) FindOptionByLabel(label string) *OutcomeOption {
	for _, opt := range g.Options {
		if strings.EqualFold(opt.Label, label) {
			return opt
		}
	}
	return nil
}
