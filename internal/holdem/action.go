package holdem

import "fmt"

// Action is a player or admin action, decoded once at the transport
// boundary. Each variant carries only the fields relevant to it.
type Action interface {
	// Name returns the wire name of the action.
	Name() string
}

// Check passes the action without betting.
type Check struct{}

// Call matches the current bet, going all-in for less if necessary.
type Call struct{}

// Bet opens the betting on a street with no current bet.
type Bet struct {
	Amount int
}

// RaiseTo raises the current bet to a total amount for the street.
type RaiseTo struct {
	To int
}

// Fold abandons the hand.
type Fold struct{}

// Restart resets the table and deals a new hand. Admin action, accepted at
// any street.
type Restart struct{}

// Finish force-terminates the current hand. Admin action, accepted at any
// street.
type Finish struct{}

func (Check) Name() string   { return "check" }
func (Call) Name() string    { return "call" }
func (Bet) Name() string     { return "bet" }
func (RaiseTo) Name() string { return "raise_to" }
func (Fold) Name() string    { return "fold" }
func (Restart) Name() string { return "restart" }
func (Finish) Name() string  { return "finish" }

// ActionParams carries the loose parameters of an inbound action message.
type ActionParams struct {
	Amount int `json:"amount"`
	To     int `json:"to"`
}

// ParseAction builds the typed action for a wire name and its parameters.
func ParseAction(name string, params ActionParams) (Action, error) {
	switch name {
	case "check":
		return Check{}, nil
	case "call":
		return Call{}, nil
	case "bet":
		return Bet{Amount: params.Amount}, nil
	case "raise_to":
		return RaiseTo{To: params.To}, nil
	case "fold":
		return Fold{}, nil
	case "restart":
		return Restart{}, nil
	case "finish":
		return Finish{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}
