package arena

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/chess-arena/internal/identity"
	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// CreateGame opens a new pending game for the creator and announces it to
// every other connected identity (best-effort).
func (r *Registry) CreateGame(ctx context.Context, userID string, wager float64) (*arenadto.CreateGameResponse, error) {
	creator, err := r.requireIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g := &match.Game{
		ID:        uuid.NewString(),
		CreatorID: userID,
		Wager:     wager,
		Status:    match.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.games.Create(ctx, g); err != nil {
		return nil, storeErr("create game", err)
	}
	if err := r.ids.SetStatus(ctx, userID, identity.StatusWaiting); err != nil {
		return nil, storeErr("update creator status", err)
	}

	obslog.L().Info("game_create",
		zap.String("game_id", g.ID),
		zap.String("creator_id", userID),
		zap.Float64("bet", wager),
	)

	if text, terr := r.cat.Render("game.available", map[string]any{"Wager": wager}); terr == nil {
		for _, id := range r.hub.Connected() {
			if id != userID {
				r.hub.SendDirect(ctx, id, arenadto.Info(text))
			}
		}
	}

	return &arenadto.CreateGameResponse{GameID: g.ID, Creator: creator.Username, Wager: wager}, nil
}

// ListOpenGames returns pending games from other creators whose rating is
// within the configured proximity band of the requester. Ordered by rating
// distance, then recency.
func (r *Registry) ListOpenGames(ctx context.Context, userID string) ([]arenadto.GameSummary, error) {
	requester, err := r.requireIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := r.games.ListPending(ctx)
	if err != nil {
		return nil, storeErr("list pending games", err)
	}

	out := make([]arenadto.GameSummary, 0, len(pending))
	for _, g := range pending {
		if g.CreatorID == userID {
			continue
		}
		creator, cerr := r.ids.Get(ctx, g.CreatorID)
		if cerr != nil {
			return nil, storeErr("load game creator", cerr)
		}
		if creator == nil {
			continue
		}
		dist := creator.Rating - requester.Rating
		if dist < 0 {
			dist = -dist
		}
		if dist > r.band {
			continue
		}
		out = append(out, arenadto.GameSummary{
			GameID:         g.ID,
			CreatorID:      creator.ID,
			CreatorName:    creator.Username,
			CreatorRating:  creator.Rating,
			Wager:          g.Wager,
			CreatedAt:      g.CreatedAt,
			RatingDistance: dist,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RatingDistance != out[j].RatingDistance {
			return out[i].RatingDistance < out[j].RatingDistance
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// JoinGame binds the joiner as second participant and starts the match.
// Two racing joins against the same pending game are serialized by the
// per-game lock: the first to commit wins, the other gets InvalidState.
func (r *Registry) JoinGame(ctx context.Context, userID, gameID string) error {
	joiner, err := r.requireIdentity(ctx, userID)
	if err != nil {
		return err
	}

	l := r.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	g, err := r.requireGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := match.Start(g, userID, r.eng); err != nil {
		return mapMatchErr(err)
	}
	if err := r.games.Update(ctx, g); err != nil {
		return storeErr("start game", err)
	}

	for _, id := range []string{g.CreatorID, g.OpponentID} {
		if err := r.ids.SetStatus(ctx, id, identity.StatusInGame); err != nil {
			return storeErr("update participant status", err)
		}
	}

	obslog.L().Info("game_start",
		zap.String("game_id", g.ID),
		zap.String("creator_id", g.CreatorID),
		zap.String("joiner_id", userID),
	)

	r.hub.BroadcastToGame(ctx, g.ID, arenadto.Envelope{
		Type:   arenadto.MsgGameStarted,
		GameID: g.ID,
		State:  toState(g),
	})
	if text, terr := r.cat.Render("game.joined", map[string]any{"Username": joiner.Username}); terr == nil {
		r.hub.SendDirect(ctx, g.CreatorID, arenadto.Info(text))
	}
	return nil
}
