package httpapi

import (
	"encoding/json"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/kapu/chess-arena/internal/arena"
	"github.com/kapu/chess-arena/internal/identity"
	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/msgcat"
	"github.com/kapu/chess-arena/internal/notify"
	"github.com/kapu/chess-arena/internal/rules"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	games := match.NewRedisStore(rdb, 0)
	hub := notify.NewHub(arena.NewGameSource(games))
	cat, err := msgcat.New()
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	reg := arena.NewRegistry(identity.NewMemoryStore(), games, rules.NewChessEngine(), hub, cat, arena.Options{})
	return NewServer(reg)
}

func doRequest(t *testing.T, s *Server, method, uri, body string) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.SetBodyString(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.handle(ctx)
	return ctx
}

func TestRegisterAndFetchGame(t *testing.T) {
	s := newTestServer(t)

	resp := doRequest(t, s, fasthttp.MethodPost, "/register", `{"username":"alice","rating":1200}`)
	if resp.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("register status = %d, body = %s", resp.Response.StatusCode(), resp.Response.Body())
	}
	var reg struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Response.Body(), &reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if reg.UserID == "" {
		t.Fatal("expected a user_id")
	}

	resp = doRequest(t, s, fasthttp.MethodPost, "/create_game", `{"user_id":"`+reg.UserID+`","bet":5}`)
	if resp.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("create_game status = %d, body = %s", resp.Response.StatusCode(), resp.Response.Body())
	}
	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(resp.Response.Body(), &created); err != nil {
		t.Fatalf("decode create_game response: %v", err)
	}

	resp = doRequest(t, s, fasthttp.MethodGet, "/games/"+created.GameID, "")
	if resp.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("get game status = %d", resp.Response.StatusCode())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)

	resp := doRequest(t, s, fasthttp.MethodGet, "/games/no-such-game", "")
	if resp.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("unknown game status = %d", resp.Response.StatusCode())
	}
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(resp.Response.Body(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Kind != "NOT_FOUND" {
		t.Fatalf("kind = %q, want NOT_FOUND", body.Kind)
	}

	resp = doRequest(t, s, fasthttp.MethodPost, "/register", `{not json`)
	if resp.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("malformed body status = %d", resp.Response.StatusCode())
	}

	resp = doRequest(t, s, fasthttp.MethodGet, "/nope", "")
	if resp.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("unknown route status = %d", resp.Response.StatusCode())
	}
}

func TestRandomGameEmpty(t *testing.T) {
	s := newTestServer(t)

	resp := doRequest(t, s, fasthttp.MethodGet, "/random_game", "")
	if resp.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("random_game with no games status = %d", resp.Response.StatusCode())
	}
}
