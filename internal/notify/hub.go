package notify

import (
	"context"
	"sync"

	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// Conn is one live outbound notification channel.
type Conn interface {
	Send(ctx context.Context, payload arenadto.Envelope) error
	Close() error
}

// GameSource resolves a game's bound participants at broadcast time, so a
// stale roster can never cause a missed participant.
type GameSource interface {
	Participants(ctx context.Context, gameID string) (creator, opponent string, err error)
}

// Hub owns the connection table and the per-game spectator rosters. All
// mutation happens under the lock; delivery fans out on a snapshot.
// Delivery is best-effort, at-most-once: no queue, no retry.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]Conn
	rosters map[string]map[string]struct{}
	games   GameSource
}

func NewHub(games GameSource) *Hub {
	return &Hub{
		conns:   make(map[string]Conn),
		rosters: make(map[string]map[string]struct{}),
		games:   games,
	}
}

// Connect registers the identity's live channel. A reconnect before the old
// channel's disconnect is observed simply replaces it (last-writer-wins).
func (h *Hub) Connect(userID string, c Conn) {
	h.mu.Lock()
	old := h.conns[userID]
	h.conns[userID] = c
	h.mu.Unlock()
	if old != nil && old != c {
		_ = old.Close()
	}
	obslog.L().Info("notify_connect", zap.String("user_id", userID))
}

// Disconnect drops the identity's channel and removes it from every
// spectator roster: an observer who drops is implicitly un-spectating.
func (h *Hub) Disconnect(userID string) {
	h.mu.Lock()
	c := h.conns[userID]
	delete(h.conns, userID)
	for _, roster := range h.rosters {
		delete(roster, userID)
	}
	h.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
	obslog.L().Info("notify_disconnect", zap.String("user_id", userID))
}

// DisconnectConn drops the identity's channel only if c is still the
// registered one. Teardown of a channel that was already replaced by a
// reconnect is a no-op, so the replacement stays live.
func (h *Hub) DisconnectConn(userID string, c Conn) {
	h.mu.Lock()
	if h.conns[userID] != c {
		h.mu.Unlock()
		return
	}
	delete(h.conns, userID)
	for _, roster := range h.rosters {
		delete(roster, userID)
	}
	h.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
	obslog.L().Info("notify_disconnect", zap.String("user_id", userID))
}

// Connected returns the ids of every identity with a live channel.
func (h *Hub) Connected() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.conns))
	for id := range h.conns {
		out = append(out, id)
	}
	return out
}

func (h *Hub) Spectate(gameID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	roster, ok := h.rosters[gameID]
	if !ok {
		roster = make(map[string]struct{})
		h.rosters[gameID] = roster
	}
	roster[userID] = struct{}{}
}

func (h *Hub) Unspectate(gameID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if roster, ok := h.rosters[gameID]; ok {
		delete(roster, userID)
	}
}

// SendDirect delivers to one identity; silently a no-op without a live
// channel.
func (h *Hub) SendDirect(ctx context.Context, userID string, payload arenadto.Envelope) {
	h.mu.RLock()
	c := h.conns[userID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	if err := c.Send(ctx, payload); err != nil {
		obslog.L().Debug("notify_send_drop", zap.String("user_id", userID), zap.Error(err))
	}
}

// BroadcastToGame delivers to the game's spectator roster plus both bound
// participants, resolved from the game record rather than the roster.
func (h *Hub) BroadcastToGame(ctx context.Context, gameID string, payload arenadto.Envelope) {
	recipients := make(map[string]struct{})

	h.mu.RLock()
	for id := range h.rosters[gameID] {
		recipients[id] = struct{}{}
	}
	h.mu.RUnlock()

	if h.games != nil {
		creator, opponent, err := h.games.Participants(ctx, gameID)
		if err != nil {
			obslog.L().Warn("notify_broadcast_lookup", zap.String("game_id", gameID), zap.Error(err))
		} else {
			if creator != "" {
				recipients[creator] = struct{}{}
			}
			if opponent != "" {
				recipients[opponent] = struct{}{}
			}
		}
	}

	var wg sync.WaitGroup
	for id := range recipients {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			h.SendDirect(ctx, userID, payload)
		}(id)
	}
	wg.Wait()
}
