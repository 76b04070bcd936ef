package arena

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/kapu/chess-arena/internal/identity"
	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/msgcat"
	"github.com/kapu/chess-arena/internal/notify"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/internal/rating"
	"github.com/kapu/chess-arena/internal/rules"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// Options tune matchmaking and rating behavior.
type Options struct {
	RatingBand int
	EloK       int
}

// Registry is the top-level owner of game lifecycles. All access to a game
// goes through the registry, which serializes operations per game identifier
// while leaving different games fully concurrent.
type Registry struct {
	ids   identity.Store
	games match.Store
	eng   rules.Engine
	hub   *notify.Hub
	cat   *msgcat.Catalog
	arch  *match.Archive

	band int
	eloK int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry(ids identity.Store, games match.Store, eng rules.Engine, hub *notify.Hub, cat *msgcat.Catalog, opts Options) *Registry {
	if opts.RatingBand <= 0 {
		opts.RatingBand = 100
	}
	if opts.EloK <= 0 {
		opts.EloK = rating.DefaultK
	}
	return &Registry{
		ids:   ids,
		games: games,
		eng:   eng,
		hub:   hub,
		cat:   cat,
		band:  opts.RatingBand,
		eloK:  opts.EloK,
		locks: make(map[string]*sync.Mutex),
	}
}

// AttachArchive wires the Postgres archive for completed games.
func (r *Registry) AttachArchive(a *match.Archive) {
	if r != nil {
		r.arch = a
	}
}

// lockFor returns the mutex owning the game's mutual-exclusion scope.
func (r *Registry) lockFor(gameID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[gameID] = l
	}
	return l
}

// Register creates a new identity and returns its id.
func (r *Registry) Register(ctx context.Context, username string, initialRating int) (string, error) {
	if initialRating <= 0 {
		initialRating = 1200
	}
	id := uuid.NewString()
	ident := &identity.Identity{
		ID:       id,
		Username: username,
		Rating:   initialRating,
		Status:   identity.StatusOnline,
	}
	if err := r.ids.Insert(ctx, ident); err != nil {
		return "", storeErr("register identity", err)
	}
	obslog.L().Info("identity_register", zap.String("user_id", id), zap.String("username", username))
	return id, nil
}

// GetGame returns the full game record.
func (r *Registry) GetGame(ctx context.Context, gameID string) (*arenadto.GameRecord, error) {
	g, err := r.games.Get(ctx, gameID)
	if err != nil {
		return nil, storeErr("load game", err)
	}
	if g == nil {
		return nil, arenadto.Errf(arenadto.KindNotFound, "Game not found")
	}
	return toRecord(g), nil
}

// RandomGame returns one arbitrary pending game.
func (r *Registry) RandomGame(ctx context.Context) (*arenadto.GameRecord, error) {
	pending, err := r.games.ListPending(ctx)
	if err != nil {
		return nil, storeErr("list pending games", err)
	}
	if len(pending) == 0 {
		return nil, arenadto.Errf(arenadto.KindNotFound, "No pending games found")
	}
	return toRecord(pending[0]), nil
}

// Leaderboard lists identities ordered by rating.
func (r *Registry) Leaderboard(ctx context.Context, limit int) ([]arenadto.LeaderboardEntry, error) {
	idents, err := r.ids.Leaderboard(ctx, limit)
	if err != nil {
		return nil, storeErr("load leaderboard", err)
	}
	out := make([]arenadto.LeaderboardEntry, 0, len(idents))
	for _, ident := range idents {
		total := ident.Wins + ident.Losses + ident.Draws
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(ident.Wins)/float64(total)*100*100) / 100
		}
		out = append(out, arenadto.LeaderboardEntry{
			Username:      ident.Username,
			Rating:        ident.Rating,
			Wins:          ident.Wins,
			Losses:        ident.Losses,
			Draws:         ident.Draws,
			WinPercentage: pct,
		})
	}
	return out, nil
}

// storeSource adapts the game store into the hub's participant resolver.
type storeSource struct {
	games match.Store
}

// NewGameSource exposes participant resolution for the notification hub.
func NewGameSource(games match.Store) notify.GameSource {
	return &storeSource{games: games}
}

func (s *storeSource) Participants(ctx context.Context, gameID string) (string, string, error) {
	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return "", "", err
	}
	if g == nil {
		return "", "", fmt.Errorf("game not found: %s", gameID)
	}
	return g.CreatorID, g.OpponentID, nil
}

func (r *Registry) requireIdentity(ctx context.Context, id string) (*identity.Identity, error) {
	ident, err := r.ids.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load identity", err)
	}
	if ident == nil {
		return nil, arenadto.Errf(arenadto.KindNotFound, "User not found")
	}
	return ident, nil
}

func (r *Registry) requireGame(ctx context.Context, id string) (*match.Game, error) {
	g, err := r.games.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load game", err)
	}
	if g == nil {
		return nil, arenadto.Errf(arenadto.KindNotFound, "Game not found")
	}
	return g, nil
}

func storeErr(op string, err error) error {
	return arenadto.Errf(arenadto.KindStoreFailure, fmt.Sprintf("%s: %v", op, err))
}

// mapMatchErr translates state machine and rules sentinels into the stable
// error taxonomy.
func mapMatchErr(err error) error {
	switch {
	case errors.Is(err, match.ErrNotInProgress), errors.Is(err, match.ErrNotPending):
		return arenadto.Errf(arenadto.KindInvalidState, "Game is not available")
	case errors.Is(err, match.ErrNotParticipant):
		return arenadto.Errf(arenadto.KindForbidden, "You are not a participant of this game")
	case errors.Is(err, match.ErrOutOfTurn):
		return arenadto.Errf(arenadto.KindOutOfTurn, "It is not your turn")
	case errors.Is(err, rules.ErrMalformed):
		return arenadto.Errf(arenadto.KindMalformedMove, "Invalid move notation")
	case errors.Is(err, rules.ErrIllegal):
		return arenadto.Errf(arenadto.KindIllegalMove, "Illegal move")
	case errors.Is(err, match.ErrInvalidWinner):
		return arenadto.Errf(arenadto.KindInvalidWinner, "Invalid winner id")
	default:
		return arenadto.Errf(arenadto.KindStoreFailure, err.Error())
	}
}

func toState(g *match.Game) *arenadto.GameState {
	if g == nil || g.State == nil {
		return nil
	}
	return &arenadto.GameState{
		Board:    g.State.FEN,
		Turn:     g.State.Turn,
		MovesUCI: append([]string(nil), g.State.MovesUCI...),
		MovesSAN: append([]string(nil), g.State.MovesSAN...),
	}
}

func toRecord(g *match.Game) *arenadto.GameRecord {
	return &arenadto.GameRecord{
		GameID:     g.ID,
		CreatorID:  g.CreatorID,
		OpponentID: g.OpponentID,
		Wager:      g.Wager,
		Status:     string(g.Status),
		State:      toState(g),
		Winner:     g.Winner,
		Outcome:    g.Outcome,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}
