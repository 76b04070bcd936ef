package match

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb, time.Hour)
}

func TestCreateGetRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := &Game{ID: "g1", CreatorID: "u1", Wager: 10, Status: StatusPending, CreatedAt: time.Now()}
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, "g1")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.CreatorID != "u1" || got.Status != StatusPending || got.Wager != 10 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	if missing, err := s.Get(ctx, "nope"); err != nil || missing != nil {
		t.Fatalf("unknown id must yield (nil, nil), got %v %v", missing, err)
	}
}

func TestPendingIndexFollowsStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"g1", "g2"} {
		g := &Game{ID: id, CreatorID: "u-" + id, Status: StatusPending, CreatedAt: time.Now()}
		if err := s.Create(ctx, g); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	pending, err := s.ListPending(ctx)
	if err != nil || len(pending) != 2 {
		t.Fatalf("ListPending: %v (%d)", err, len(pending))
	}

	g1, _ := s.Get(ctx, "g1")
	g1.OpponentID = "u9"
	g1.Status = StatusInProgress
	if err := s.Update(ctx, g1); err != nil {
		t.Fatalf("Update: %v", err)
	}

	pending, err = s.ListPending(ctx)
	if err != nil || len(pending) != 1 || pending[0].ID != "g2" {
		t.Fatalf("started game must leave the pending index: %v", pending)
	}
}

func TestSpectatorMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddSpectator(ctx, "g1", "w1"); err != nil {
		t.Fatalf("AddSpectator: %v", err)
	}
	if err := s.AddSpectator(ctx, "g1", "w2"); err != nil {
		t.Fatalf("AddSpectator: %v", err)
	}

	who, err := s.Spectators(ctx, "g1")
	if err != nil || len(who) != 2 {
		t.Fatalf("Spectators: %v (%v)", err, who)
	}

	if err := s.RemoveSpectator(ctx, "g1", "w1"); err != nil {
		t.Fatalf("RemoveSpectator: %v", err)
	}
	who, err = s.Spectators(ctx, "g1")
	if err != nil || len(who) != 1 || who[0] != "w2" {
		t.Fatalf("membership after removal: %v (%v)", err, who)
	}
}
