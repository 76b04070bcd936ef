package arena

import (
	"context"

	"github.com/kapu/chess-arena/internal/identity"
	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/internal/rating"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// ApplyMove validates and applies one move for the mover, then notifies the
// opponent directly and broadcasts the new state to participants and
// spectators. Validation failures never mutate the game.
func (r *Registry) ApplyMove(ctx context.Context, gameID, mover, moveText string) (*arenadto.GameState, error) {
	l := r.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	g, err := r.requireGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	applied, err := match.Advance(g, mover, moveText, r.eng)
	if err != nil {
		return nil, mapMatchErr(err)
	}
	if err := r.games.Update(ctx, g); err != nil {
		return nil, storeErr("persist move", err)
	}

	obslog.L().Info("game_move",
		zap.String("game_id", g.ID),
		zap.String("player_id", mover),
		zap.String("uci", applied.UCI),
		zap.String("san", applied.SAN),
		zap.String("outcome", string(applied.Outcome)),
	)

	if text, terr := r.cat.Render("move.made", map[string]any{"Move": applied.SAN, "PlayerID": mover}); terr == nil {
		r.hub.SendDirect(ctx, g.Other(mover), arenadto.Info(text))
	}
	r.hub.BroadcastToGame(ctx, g.ID, arenadto.Envelope{
		Type:     arenadto.MsgMoveMade,
		GameID:   g.ID,
		PlayerID: mover,
		Move:     applied.SAN,
		State:    toState(g),
		Outcome:  string(applied.Outcome),
	})
	return toState(g), nil
}

// CompleteGame records the reported result: recalculates both ratings,
// updates win/loss/draw counters and presence, freezes the game, archives
// it, and messages each participant their new rating.
//
// The two identity writes are sequential per-row updates; a failure between
// them leaves a partially-updated pair, which is surfaced as StoreFailure
// and logged for reconciliation rather than silently retried.
func (r *Registry) CompleteGame(ctx context.Context, gameID, winnerID string, isDraw bool) (*arenadto.CompleteGameResponse, error) {
	l := r.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	g, err := r.requireGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != match.StatusInProgress {
		return nil, arenadto.Errf(arenadto.KindInvalidState, "Game is not in progress")
	}

	creator, err := r.requireIdentity(ctx, g.CreatorID)
	if err != nil {
		return nil, err
	}
	opponent, err := r.requireIdentity(ctx, g.OpponentID)
	if err != nil {
		return nil, err
	}

	outcome, err := match.Finish(g, winnerID, isDraw)
	if err != nil {
		return nil, mapMatchErr(err)
	}

	// Single rating calculation for this game; truncation happens here, at
	// the persistence edge.
	res := rating.Update(float64(creator.Rating), float64(opponent.Rating), outcome, float64(r.eloK))
	creator.Rating = int(res.RatingA)
	opponent.Rating = int(res.RatingB)

	switch outcome {
	case rating.AWins:
		creator.Wins++
		opponent.Losses++
	case rating.BWins:
		creator.Losses++
		opponent.Wins++
	case rating.Draw:
		creator.Draws++
		opponent.Draws++
	}
	creator.Status = identity.StatusOnline
	opponent.Status = identity.StatusOnline

	if err := r.ids.Update(ctx, creator); err != nil {
		return nil, storeErr("update creator rating", err)
	}
	if err := r.ids.Update(ctx, opponent); err != nil {
		obslog.L().Error("rating_update_partial",
			zap.String("game_id", g.ID),
			zap.String("updated_id", creator.ID),
			zap.String("failed_id", opponent.ID),
			zap.Error(err),
		)
		return nil, storeErr("update opponent rating", err)
	}

	if err := r.games.Update(ctx, g); err != nil {
		return nil, storeErr("complete game", err)
	}

	obslog.L().Info("game_complete",
		zap.String("game_id", g.ID),
		zap.String("winner_id", g.Winner),
		zap.String("outcome", g.Outcome),
		zap.Int("creator_rating", creator.Rating),
		zap.Int("opponent_rating", opponent.Rating),
	)

	if r.arch != nil {
		if aerr := r.arch.SaveResult(ctx, g, creator.Username, opponent.Username); aerr != nil {
			obslog.L().Error("game_archive_error", zap.String("game_id", g.ID), zap.Error(aerr))
		}
	}

	for _, p := range []*identity.Identity{creator, opponent} {
		if text, terr := r.cat.Render("game.completed", map[string]any{"Rating": p.Rating}); terr == nil {
			r.hub.SendDirect(ctx, p.ID, arenadto.Info(text))
		}
	}

	return &arenadto.CompleteGameResponse{NewRatings: map[string]int{
		creator.Username:  creator.Rating,
		opponent.Username: opponent.Rating,
	}}, nil
}
