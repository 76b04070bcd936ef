package identity

import (
	"context"
	"errors"
	"time"
)

// Status is the presence state of a registered participant.
type Status string

const (
	StatusOnline  Status = "online"
	StatusWaiting Status = "waiting"
	StatusInGame  Status = "in_game"
)

// Identity is a registered participant. Never deleted; rating and counters
// are mutated only by match lifecycle events.
type Identity struct {
	ID        string
	Username  string
	Rating    int
	Wins      int
	Losses    int
	Draws     int
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

var ErrDuplicateIdentity = errors.New("identity already exists")

// Store reads and writes identities. Get returns (nil, nil) for unknown ids;
// callers decide whether that is a NotFound condition. Updates are atomic per
// row only: there is no cross-identity transaction.
type Store interface {
	Insert(ctx context.Context, ident *Identity) error
	Get(ctx context.Context, id string) (*Identity, error)
	Update(ctx context.Context, ident *Identity) error
	SetStatus(ctx context.Context, id string, status Status) error
	Leaderboard(ctx context.Context, limit int) ([]*Identity, error)
}
