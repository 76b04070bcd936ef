package match

import (
	"errors"
	"time"

	"github.com/kapu/chess-arena/internal/rating"
	"github.com/kapu/chess-arena/internal/rules"
)

var (
	ErrNotInProgress  = errors.New("game is not in progress")
	ErrNotPending     = errors.New("game is not pending")
	ErrNotParticipant = errors.New("not a participant of this game")
	ErrOutOfTurn      = errors.New("not your turn")
	ErrInvalidWinner  = errors.New("invalid winner")
)

// Outcome tokens recorded on completed games. The creator plays first.
const (
	OutcomeCreatorWins  = "white"
	OutcomeOpponentWins = "black"
	OutcomeDraw         = "draw"
)

// Start binds the joiner as second participant and activates the game with
// the creator to move. The caller holds the per-game lock.
func Start(g *Game, joinerID string, eng rules.Engine) error {
	if g.Status != StatusPending {
		return ErrNotPending
	}
	g.OpponentID = joinerID
	g.Status = StatusInProgress
	g.State = &PositionState{
		FEN:      eng.InitialFEN(),
		Turn:     g.CreatorID,
		MovesUCI: []string{},
		MovesSAN: []string{},
	}
	g.UpdatedAt = time.Now()
	return nil
}

// Advance validates and applies one move. The game is mutated only after the
// engine accepts the move, so a rejection never leaves partial state. The
// returned Applied carries the normalized move and any terminal outcome the
// engine detected (informational; status stays in_progress).
func Advance(g *Game, mover, moveText string, eng rules.Engine) (*rules.Applied, error) {
	if g.Status != StatusInProgress || g.State == nil {
		return nil, ErrNotInProgress
	}
	if !g.Participant(mover) {
		return nil, ErrNotParticipant
	}
	if g.State.Turn != mover {
		return nil, ErrOutOfTurn
	}

	candidate, err := eng.Parse(moveText)
	if err != nil {
		return nil, err
	}
	applied, err := eng.Apply(g.State.MovesUCI, candidate)
	if err != nil {
		return nil, err
	}

	g.State.FEN = applied.FEN
	g.State.MovesUCI = append(g.State.MovesUCI, applied.UCI)
	g.State.MovesSAN = append(g.State.MovesSAN, applied.SAN)
	g.State.Turn = g.Other(mover)
	g.UpdatedAt = time.Now()
	return applied, nil
}

// Finish validates the reported result and freezes the game. A draw flag
// combined with a winner is ambiguous and rejected rather than resolved.
// Returns the outcome with the creator as player A for rating purposes.
func Finish(g *Game, winnerID string, isDraw bool) (rating.Outcome, error) {
	if g.Status != StatusInProgress {
		return 0, ErrNotInProgress
	}

	var outcome rating.Outcome
	switch {
	case isDraw && winnerID != "":
		return 0, ErrInvalidWinner
	case isDraw:
		outcome = rating.Draw
		g.Outcome = OutcomeDraw
	case winnerID == g.CreatorID:
		outcome = rating.AWins
		g.Outcome = OutcomeCreatorWins
	case winnerID == g.OpponentID:
		outcome = rating.BWins
		g.Outcome = OutcomeOpponentWins
	default:
		return 0, ErrInvalidWinner
	}

	g.Status = StatusCompleted
	g.Winner = winnerID
	g.UpdatedAt = time.Now()
	return outcome, nil
}
