package service

import (
	"errors"
)

// ErrorKind classifies a failure for the caller
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindValidation ErrorKind = "validation"
	KindBusy       ErrorKind = "busy"
	KindInternal   ErrorKind = "internal"
)

// DomainError is a failure callers can act on. Code is stable and machine readable,
// Message is safe to show to end users.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

var (
	ErrRoomNotFound     = newDomainError(KindNotFound, "room_not_found", "room not found")
	ErrUserNotFound     = newDomainError(KindNotFound, "user_not_found", "user not found")
	ErrGameTypeNotFound = newDomainError(KindNotFound, "game_type_not_found", "game type not found")

	ErrRoomClosed        = newDomainError(KindConflict, "room_closed", "room is closed to new wagers")
	ErrRoomAlreadyClosed = newDomainError(KindConflict, "room_already_closed", "room has already been closed")
	ErrDuplicateWager    = newDomainError(KindConflict, "duplicate_wager", "user already has a wager in this room")
	ErrDuplicateRoomCode = newDomainError(KindConflict, "duplicate_room_code", "room code already in use")
	ErrDuplicateNickname = newDomainError(KindConflict, "duplicate_nickname", "nickname already taken")

	ErrInvalidOption       = newDomainError(KindValidation, "invalid_option", "option does not belong to this room's game")
	ErrBelowMinimumStake   = newDomainError(KindValidation, "below_minimum_stake", "stake must be greater than the minimum")
	ErrInvalidStake        = newDomainError(KindValidation, "invalid_stake", "stake must be a positive amount with at most two decimal places")
	ErrInsufficientBalance = newDomainError(KindValidation, "insufficient_balance", "balance does not cover the stake")
	ErrInvalidNickname     = newDomainError(KindValidation, "invalid_nickname", "nickname must be between 1 and 64 characters")

	ErrRoomBusy = newDomainError(KindBusy, "room_busy", "room is busy, try again")

	ErrOutcomeUnresolvable = newDomainError(KindInternal, "outcome_unresolvable", "drawn outcome does not match any option")
)

// KindOf classifies err. Errors that are not DomainErrors are internal.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsDomainError returns the DomainError wrapped in err, if any
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
