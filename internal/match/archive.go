package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Archive copies completed games into Postgres for long-term history.
// Best-effort: the live record in the game store stays authoritative.
type Archive struct {
	db *sql.DB
}

func NewArchive(databaseURL string) (*Archive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SaveResult upserts a completed game. Names are display names used in the
// PGN headers; the creator is listed as white.
func (a *Archive) SaveResult(ctx context.Context, g *Game, creatorName, opponentName string) error {
	if a == nil || a.db == nil || g == nil {
		return nil
	}
	if g.Status != StatusCompleted {
		return nil
	}

	pgnResult := mapOutcomeToPGN(g.Outcome)
	pgn := buildPGN(g, creatorName, opponentName, pgnResult)

	var movesUCIRaw, movesSANRaw []byte
	if g.State != nil {
		movesUCIRaw, _ = json.Marshal(g.State.MovesUCI)
		movesSANRaw, _ = json.Marshal(g.State.MovesSAN)
	} else {
		movesUCIRaw, movesSANRaw = []byte("[]"), []byte("[]")
	}
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	const q = `INSERT INTO arena_games (
	    game_id, creator_id, creator_name, opponent_id, opponent_name,
	    bet, result, winner_id, moves_uci, moves_san, pgn,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
	  ) ON CONFLICT (game_id) DO UPDATE SET
	    result=EXCLUDED.result,
	    winner_id=EXCLUDED.winner_id,
	    moves_uci=EXCLUDED.moves_uci,
	    moves_san=EXCLUDED.moves_san,
	    pgn=EXCLUDED.pgn,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := a.db.ExecContext(ctx, q,
		g.ID,
		g.CreatorID, creatorName,
		g.OpponentID, opponentName,
		g.Wager, g.Outcome, g.Winner,
		string(movesUCIRaw), string(movesSANRaw), pgn,
		g.CreatedAt, g.UpdatedAt, duration,
	)
	return err
}

func mapOutcomeToPGN(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case OutcomeCreatorWins:
		return "1-0"
	case OutcomeOpponentWins:
		return "0-1"
	case OutcomeDraw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

func buildPGN(g *Game, creatorName, opponentName, pgnResult string) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	date := g.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"Arena Match\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(creatorName)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(opponentName)))
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	var san []string
	if g.State != nil {
		san = g.State.MovesSAN
	}
	for i := 0; i < len(san); i += 2 {
		turn := (i / 2) + 1
		b.WriteString(fmt.Sprintf("%d. %s", turn, strings.TrimSpace(san[i])))
		if i+1 < len(san) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(san[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
