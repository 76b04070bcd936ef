package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/kapu/chess-arena/pkg/arenadto"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []arenadto.Envelope
	closed bool
}

func (c *fakeConn) Send(ctx context.Context, payload arenadto.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type fakeGames struct {
	creator, opponent string
}

func (f *fakeGames) Participants(ctx context.Context, gameID string) (string, string, error) {
	return f.creator, f.opponent, nil
}

func TestSendDirectMissingChannelIsNoop(t *testing.T) {
	h := NewHub(&fakeGames{})
	// Must not panic or block for an identity without a channel.
	h.SendDirect(context.Background(), "ghost", arenadto.Info("hello"))
}

func TestBroadcastReachesParticipantsAndSpectators(t *testing.T) {
	h := NewHub(&fakeGames{creator: "alice", opponent: "bob"})
	ctx := context.Background()

	conns := map[string]*fakeConn{}
	for _, id := range []string{"alice", "bob", "watcher", "stranger"} {
		c := &fakeConn{}
		conns[id] = c
		h.Connect(id, c)
	}
	h.Spectate("g1", "watcher")

	h.BroadcastToGame(ctx, "g1", arenadto.Envelope{Type: arenadto.MsgMoveMade, GameID: "g1"})

	for _, id := range []string{"alice", "bob", "watcher"} {
		if conns[id].count() != 1 {
			t.Fatalf("%s should have received the broadcast", id)
		}
	}
	if conns["stranger"].count() != 0 {
		t.Fatalf("non-participant non-spectator must not receive game broadcasts")
	}
}

func TestDisconnectRemovesFromRosters(t *testing.T) {
	h := NewHub(&fakeGames{creator: "alice", opponent: "bob"})
	ctx := context.Background()

	w := &fakeConn{}
	h.Connect("watcher", w)
	h.Spectate("g1", "watcher")
	h.Disconnect("watcher")

	if !w.closed {
		t.Fatalf("disconnect must close the channel")
	}

	// Reconnect without re-spectating: no broadcasts expected.
	w2 := &fakeConn{}
	h.Connect("watcher", w2)
	h.BroadcastToGame(ctx, "g1", arenadto.Info("move"))
	if w2.count() != 0 {
		t.Fatalf("disconnect must remove spectator membership")
	}
}

func TestReconnectLastWriterWins(t *testing.T) {
	h := NewHub(&fakeGames{})
	ctx := context.Background()

	old := &fakeConn{}
	h.Connect("alice", old)
	replacement := &fakeConn{}
	h.Connect("alice", replacement)

	if !old.closed {
		t.Fatalf("stale channel must be closed on reconnect")
	}
	h.SendDirect(ctx, "alice", arenadto.Info("hi"))
	if old.count() != 0 || replacement.count() != 1 {
		t.Fatalf("delivery must use the newest channel: old=%d new=%d", old.count(), replacement.count())
	}
}

func TestStaleTeardownKeepsReplacementAlive(t *testing.T) {
	h := NewHub(&fakeGames{})
	ctx := context.Background()

	// Reconnect replaces the channel; the goroutine still serving the old
	// socket then unblocks and tears down. That teardown must not touch
	// the replacement or its roster memberships.
	old := &fakeConn{}
	h.Connect("alice", old)
	replacement := &fakeConn{}
	h.Connect("alice", replacement)
	h.Spectate("g1", "alice")

	h.DisconnectConn("alice", old)

	if replacement.closed {
		t.Fatalf("stale teardown must not close the replacement channel")
	}
	h.SendDirect(ctx, "alice", arenadto.Info("hi"))
	if replacement.count() != 1 {
		t.Fatalf("replacement must stay registered after stale teardown, got %d deliveries", replacement.count())
	}
	h.BroadcastToGame(ctx, "g1", arenadto.Info("move"))
	if replacement.count() != 2 {
		t.Fatalf("spectator membership must survive stale teardown, got %d deliveries", replacement.count())
	}

	// Teardown of the current channel still removes everything.
	h.DisconnectConn("alice", replacement)
	if !replacement.closed {
		t.Fatalf("current-channel teardown must close it")
	}
	h.SendDirect(ctx, "alice", arenadto.Info("bye"))
	if replacement.count() != 2 {
		t.Fatalf("channel must be gone after its own teardown")
	}
}

func TestUnspectateStopsBroadcasts(t *testing.T) {
	h := NewHub(&fakeGames{creator: "alice", opponent: "bob"})
	ctx := context.Background()

	w := &fakeConn{}
	h.Connect("watcher", w)
	h.Spectate("g1", "watcher")
	h.BroadcastToGame(ctx, "g1", arenadto.Info("first"))
	h.Unspectate("g1", "watcher")
	h.BroadcastToGame(ctx, "g1", arenadto.Info("second"))

	if w.count() != 1 {
		t.Fatalf("expected exactly one delivery before unspectate, got %d", w.count())
	}
}
