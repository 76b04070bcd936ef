package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps game records as JSON values with a set-based index of
// pending games and a durable spectator set per game, so rosters can be
// rebuilt after a restart.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func gameKey(id string) string      { return "arena:game:" + strings.TrimSpace(id) }
func spectatorKey(id string) string { return gameKey(id) + ":spectators" }
func pendingKey() string            { return "arena:pending" }

func (s *RedisStore) Create(ctx context.Context, g *Game) error {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("invalid game payload")
	}
	if err := s.save(ctx, g); err != nil {
		return err
	}
	if g.Status == StatusPending {
		if err := s.rdb.SAdd(ctx, pendingKey(), g.ID).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Game, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *RedisStore) Update(ctx context.Context, g *Game) error {
	if g == nil {
		return fmt.Errorf("invalid game payload")
	}
	if err := s.save(ctx, g); err != nil {
		return err
	}
	// Started and completed games leave the matchmaking index.
	if g.Status != StatusPending {
		return s.rdb.SRem(ctx, pendingKey(), g.ID).Err()
	}
	return nil
}

func (s *RedisStore) ListPending(ctx context.Context) ([]*Game, error) {
	ids, err := s.rdb.SMembers(ctx, pendingKey()).Result()
	if err != nil {
		return nil, err
	}
	var out []*Game
	for _, id := range ids {
		g, gerr := s.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if g == nil {
			// expired record, drop the stale index entry
			_ = s.rdb.SRem(ctx, pendingKey(), id).Err()
			continue
		}
		if g.Status != StatusPending {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *RedisStore) AddSpectator(ctx context.Context, gameID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	if err := s.rdb.SAdd(ctx, spectatorKey(gameID), userID).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, spectatorKey(gameID), s.ttl).Err()
}

func (s *RedisStore) RemoveSpectator(ctx context.Context, gameID, userID string) error {
	return s.rdb.SRem(ctx, spectatorKey(gameID), userID).Err()
}

func (s *RedisStore) Spectators(ctx context.Context, gameID string) ([]string, error) {
	return s.rdb.SMembers(ctx, spectatorKey(gameID)).Result()
}

func (s *RedisStore) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, gameKey(g.ID), raw, s.ttl).Err()
}
