package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. Recoverable, reported to the placing player.
var (
	ErrBentShip              = errors.New("ship is bent")
	ErrShipsTouching         = errors.New("ships are touching")
	ErrShipTooShort          = errors.New("ship is too short")
	ErrShipTooLong           = errors.New("ship is too long")
	ErrWrongFleetComposition = errors.New("wrong fleet composition")
)

// Turn errors. The rejected event leaves the session unchanged.
var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrOutOfBounds     = errors.New("coordinate out of bounds")
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrAlreadyAttacked = errors.New("cell already attacked")
	ErrUnknownPlayer   = errors.New("player is not part of this match")
	ErrSessionFull     = errors.New("match already has two players")
	ErrAlreadyJoined   = errors.New("player already joined")
	ErrUnknownEvent    = errors.New("unknown event")
)

// ValidationError describes why a grid was rejected by Validate.
// Err is one of the validation sentinels above.
type ValidationError struct {
	Err     error `json:"-"`
	At      Coord `json:"at"`
	Length  int   `json:"length,omitempty"`
	Missing []int `json:"missing,omitempty"`
	Excess  []int `json:"excess,omitempty"`
}

func (e *ValidationError) Error() string {
	switch e.Err {
	case ErrWrongFleetComposition:
		return fmt.Sprintf("%v: missing %s, excess %s", e.Err, formatLengths(e.Missing), formatLengths(e.Excess))
	case ErrShipTooShort, ErrShipTooLong:
		return fmt.Sprintf("%v: length %d at %s", e.Err, e.Length, e.At)
	default:
		return fmt.Sprintf("%v at %s", e.Err, e.At)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTurnError reports whether err rejects a single event without being a
// validation failure
func IsTurnError(err error) bool {
	for _, target := range []error{
		ErrNotYourTurn, ErrOutOfBounds, ErrWrongPhase, ErrAlreadyAttacked,
		ErrUnknownPlayer, ErrSessionFull, ErrAlreadyJoined, ErrUnknownEvent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func formatLengths(lengths []int) string {
	parts := make([]string, len(lengths))
	for i, l := range lengths {
		parts[i] = fmt.Sprint(l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
