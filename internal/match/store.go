package match

import "context"

// Store persists game records and the durable spectator membership. Get
// returns (nil, nil) for unknown ids. The session registry is the only
// writer; per-game serialization happens above the store.
type Store interface {
	Create(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Game, error)
	Update(ctx context.Context, g *Game) error
	ListPending(ctx context.Context) ([]*Game, error)

	AddSpectator(ctx context.Context, gameID, userID string) error
	RemoveSpectator(ctx context.Context, gameID, userID string) error
	Spectators(ctx context.Context, gameID string) ([]string, error)
}
