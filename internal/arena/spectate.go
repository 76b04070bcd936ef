package arena

import (
	"context"

	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// SpectateGame subscribes the observer to the game's broadcasts. Only games
// in progress can be watched. Membership is recorded durably in the game
// store and in the live roster.
func (r *Registry) SpectateGame(ctx context.Context, userID, gameID string) error {
	if _, err := r.requireIdentity(ctx, userID); err != nil {
		return err
	}
	g, err := r.requireGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != match.StatusInProgress {
		return arenadto.Errf(arenadto.KindInvalidState, "Game is not in progress")
	}

	if err := r.games.AddSpectator(ctx, gameID, userID); err != nil {
		return storeErr("add spectator", err)
	}
	r.hub.Spectate(gameID, userID)

	obslog.L().Info("spectate_join", zap.String("game_id", gameID), zap.String("user_id", userID))

	if text, terr := r.cat.Render("spectate.joined", map[string]any{"UserID": userID}); terr == nil {
		r.hub.BroadcastToGame(ctx, gameID, arenadto.Info(text))
	}
	return nil
}

// LeaveSpectate removes the observer. Unconditional: leaving a game you
// never watched is not an error.
func (r *Registry) LeaveSpectate(ctx context.Context, userID, gameID string) error {
	if err := r.games.RemoveSpectator(ctx, gameID, userID); err != nil {
		return storeErr("remove spectator", err)
	}
	r.hub.Unspectate(gameID, userID)

	obslog.L().Info("spectate_leave", zap.String("game_id", gameID), zap.String("user_id", userID))

	if text, terr := r.cat.Render("spectate.left", map[string]any{"UserID": userID}); terr == nil {
		r.hub.BroadcastToGame(ctx, gameID, arenadto.Info(text))
	}
	return nil
}
