package bot

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// betArgs is a parsed /bet invocation
type betArgs struct {
	Code   string
	Option string
	Stake  decimal.Decimal
}

// roomCodeArg normalizes a room code typed by a user. Codes are case-sensitive,
// so only surrounding whitespace is removed.
func roomCodeArg(raw string) string {
	return strings.TrimSpace(raw)
}

// parseBetArgs turns the raw /bet options into a service call's arguments.
// The option label is matched case-insensitively later, against the room's game.
// Errors are worded for the invoking user.
func parseBetArgs(code, option, amount string) (betArgs, error) {
	args := betArgs{
		Code:   roomCodeArg(code),
		Option: strings.TrimSpace(option),
	}
	if args.Option == "" {
		return betArgs{}, errors.New("Choose an option, e.g. red.")
	}

	stake, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return betArgs{}, errors.New("Amount must be a number, e.g. 250 or 250.50.")
	}
	args.Stake = stake
	return args, nil
}
