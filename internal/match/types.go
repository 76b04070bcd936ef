package match

import (
	"time"
)

// Status represents the one-directional game lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// PositionState is the authoritative board encoding for a started game.
// History is append-only; MovesUCI is the replayable form, MovesSAN the
// presentation form recorded alongside (one entry each per accepted move).
type PositionState struct {
	FEN      string   `json:"board"`
	Turn     string   `json:"turn"`
	MovesUCI []string `json:"moves_uci"`
	MovesSAN []string `json:"moves_san"`
}

// Game is the matchmaking-visible record. A pending game has no State and no
// OpponentID; a completed game is immutable.
type Game struct {
	ID         string         `json:"game_id"`
	CreatorID  string         `json:"player1_id"`
	OpponentID string         `json:"player2_id,omitempty"`
	Wager      float64        `json:"bet"`
	Status     Status         `json:"status"`
	State      *PositionState `json:"game_state,omitempty"`
	Winner     string         `json:"winner,omitempty"`
	Outcome    string         `json:"outcome,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Participant reports whether id is one of the two bound players.
func (g *Game) Participant(id string) bool {
	return id != "" && (id == g.CreatorID || id == g.OpponentID)
}

// Other returns the participant that is not id, or "" if id is not bound.
func (g *Game) Other(id string) string {
	if id == g.CreatorID {
		return g.OpponentID
	}
	if id == g.OpponentID {
		return g.CreatorID
	}
	return ""
}
