package rules

// Package rules defines the move-legality oracle consumed by the match state
// machine. The machine is written entirely against this contract so any
// two-player perfect-information turn game can be substituted.

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	// ErrMalformed means the text cannot be parsed into a candidate move.
	ErrMalformed = staticErr("malformed move notation")
	// ErrIllegal means the candidate move is not legal in the position.
	ErrIllegal = staticErr("illegal move")
	// ErrCorruptHistory means the stored move history does not replay.
	ErrCorruptHistory = staticErr("corrupt move history")
)

// Move is a candidate move in one of the engine's accepted notations.
// Exactly one of UCI or SAN is set after Parse; both after Apply.
type Move struct {
	UCI string
	SAN string
}

// Outcome is a terminal result detected in a position, from the perspective
// of move order: First is the side that moved first.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeFirstWins  Outcome = "first"
	OutcomeSecondWins Outcome = "second"
	OutcomeDraw       Outcome = "draw"
)

// Applied is the result of applying a legal move.
type Applied struct {
	UCI     string
	SAN     string
	FEN     string
	Outcome Outcome
}

// Engine is the four-operation oracle: parse notation, test legality,
// apply a move, and serialize the position. Positions are addressed by
// their full move history; FEN is the canonical serialized form.
type Engine interface {
	// InitialFEN returns the serialized starting position.
	InitialFEN() string
	// Parse validates notation syntax only.
	Parse(text string) (Move, error)
	// Legal reports whether the candidate is legal after replaying history.
	Legal(history []string, candidate Move) bool
	// Apply replays history, applies the candidate, and returns the
	// normalized move with the resulting position.
	Apply(history []string, candidate Move) (*Applied, error)
	// FEN serializes the position reached by the history.
	FEN(history []string) (string, error)
}
