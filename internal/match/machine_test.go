package match

import (
	"errors"
	"testing"
	"time"

	"github.com/kapu/chess-arena/internal/rating"
	"github.com/kapu/chess-arena/internal/rules"
)

func newStartedGame(t *testing.T, eng rules.Engine) *Game {
	t.Helper()
	g := &Game{
		ID:        "g1",
		CreatorID: "alice",
		Wager:     5,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := Start(g, "bob", eng); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

func TestStartInitializesPosition(t *testing.T) {
	eng := rules.NewChessEngine()
	g := newStartedGame(t, eng)

	if g.Status != StatusInProgress || g.OpponentID != "bob" {
		t.Fatalf("unexpected game after start: %+v", g)
	}
	if g.State == nil || g.State.Turn != "alice" {
		t.Fatalf("creator must hold the first turn: %+v", g.State)
	}
	if g.State.FEN != eng.InitialFEN() {
		t.Fatalf("position must start from the initial configuration")
	}
	if err := Start(g, "carol", eng); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second start must fail with ErrNotPending, got %v", err)
	}
}

func TestAdvanceAlternatesTurns(t *testing.T) {
	eng := rules.NewChessEngine()
	g := newStartedGame(t, eng)

	if _, err := Advance(g, "alice", "e2e4", eng); err != nil {
		t.Fatalf("Advance alice: %v", err)
	}
	if g.State.Turn != "bob" {
		t.Fatalf("turn must pass to the other participant, got %q", g.State.Turn)
	}
	if _, err := Advance(g, "bob", "e7e5", eng); err != nil {
		t.Fatalf("Advance bob: %v", err)
	}
	if g.State.Turn != "alice" {
		t.Fatalf("turn must alternate back, got %q", g.State.Turn)
	}
	if len(g.State.MovesUCI) != 2 || len(g.State.MovesSAN) != 2 {
		t.Fatalf("history length must equal accepted moves: %+v", g.State)
	}
}

func TestAdvanceRejectionsLeaveStateUntouched(t *testing.T) {
	eng := rules.NewChessEngine()
	g := newStartedGame(t, eng)

	before := *g.State

	if _, err := Advance(g, "bob", "e7e5", eng); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if _, err := Advance(g, "mallory", "e2e4", eng); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := Advance(g, "alice", "???", eng); !errors.Is(err, rules.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := Advance(g, "alice", "e2e5", eng); !errors.Is(err, rules.ErrIllegal) {
		t.Fatalf("expected ErrIllegal, got %v", err)
	}

	if g.State.FEN != before.FEN || len(g.State.MovesUCI) != 0 || g.State.Turn != before.Turn {
		t.Fatalf("rejected moves must not mutate position state: %+v", g.State)
	}
}

func TestHistoryReplayReproducesPosition(t *testing.T) {
	eng := rules.NewChessEngine()
	g := newStartedGame(t, eng)

	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}
	movers := []string{"alice", "bob", "alice", "bob", "alice"}
	for i, mv := range moves {
		if _, err := Advance(g, movers[i], mv, eng); err != nil {
			t.Fatalf("Advance %q: %v", mv, err)
		}
	}

	fen, err := eng.FEN(g.State.MovesUCI)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if fen != g.State.FEN {
		t.Fatalf("replaying history must reproduce the stored position:\n%q\n%q", fen, g.State.FEN)
	}
}

func TestFinishValidation(t *testing.T) {
	eng := rules.NewChessEngine()

	g := newStartedGame(t, eng)
	if _, err := Finish(g, "mallory", false); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner for outsider, got %v", err)
	}
	if _, err := Finish(g, "alice", true); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner for draw+winner, got %v", err)
	}
	if _, err := Finish(g, "", false); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner for no result, got %v", err)
	}
	if g.Status != StatusInProgress {
		t.Fatalf("rejected completion must not change status, got %q", g.Status)
	}

	outcome, err := Finish(g, "bob", false)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if outcome != rating.BWins || g.Status != StatusCompleted || g.Winner != "bob" || g.Outcome != OutcomeOpponentWins {
		t.Fatalf("unexpected completion: outcome=%v game=%+v", outcome, g)
	}
	if _, err := Finish(g, "bob", false); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("completed game must reject a second completion, got %v", err)
	}
}

func TestFinishDraw(t *testing.T) {
	eng := rules.NewChessEngine()
	g := newStartedGame(t, eng)

	outcome, err := Finish(g, "", true)
	if err != nil {
		t.Fatalf("Finish draw: %v", err)
	}
	if outcome != rating.Draw || g.Outcome != OutcomeDraw || g.Winner != "" {
		t.Fatalf("unexpected draw completion: outcome=%v game=%+v", outcome, g)
	}
}
