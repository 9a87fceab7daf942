package holdem

import "errors"

var (
	// ErrInsufficientPlayers is reported when a hand is started with fewer
	// than two funded players.
	ErrInsufficientPlayers = errors.New("at least two players with chips are required to start a hand")

	// ErrUnknownAction is reported for an unrecognized action name.
	ErrUnknownAction = errors.New("unknown action")

	// ErrTableFull is reported when every seat at a table is taken.
	ErrTableFull = errors.New("table is full")
)
