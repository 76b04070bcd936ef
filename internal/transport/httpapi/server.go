package httpapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kapu/chess-arena/internal/arena"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Server binds the registry's operation surface to a fasthttp JSON API.
type Server struct {
	reg *arena.Registry
	srv *fasthttp.Server
}

func NewServer(reg *arena.Registry) *Server {
	s := &Server{reg: reg}
	s.srv = &fasthttp.Server{
		Handler: s.handle,
		Name:    "chess-arena",
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case method == fasthttp.MethodPost && path == "/register":
		s.register(ctx)
	case method == fasthttp.MethodPost && path == "/create_game":
		s.createGame(ctx)
	case method == fasthttp.MethodGet && path == "/list_games":
		s.listGames(ctx)
	case method == fasthttp.MethodPost && path == "/join_game":
		s.joinGame(ctx)
	case method == fasthttp.MethodPost && path == "/make_move":
		s.makeMove(ctx)
	case method == fasthttp.MethodPost && path == "/complete_game":
		s.completeGame(ctx)
	case method == fasthttp.MethodPost && path == "/spectate_game":
		s.spectateGame(ctx)
	case method == fasthttp.MethodPost && path == "/leave_spectate":
		s.leaveSpectate(ctx)
	case method == fasthttp.MethodGet && strings.HasPrefix(path, "/games/"):
		s.getGame(ctx, strings.TrimPrefix(path, "/games/"))
	case method == fasthttp.MethodGet && path == "/random_game":
		s.randomGame(ctx)
	case method == fasthttp.MethodGet && path == "/leaderboard":
		s.leaderboard(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "unknown route")
	}
}

func (s *Server) register(ctx *fasthttp.RequestCtx) {
	var req arenadto.RegisterRequest
	if !readJSON(ctx, &req) {
		return
	}
	id, err := s.reg.Register(ctx, req.Username, req.Rating)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, arenadto.RegisterResponse{UserID: id})
}

func (s *Server) createGame(ctx *fasthttp.RequestCtx) {
	var req arenadto.CreateGameRequest
	if !readJSON(ctx, &req) {
		return
	}
	resp, err := s.reg.CreateGame(ctx, req.UserID, req.Wager)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) listGames(ctx *fasthttp.RequestCtx) {
	userID := string(ctx.QueryArgs().Peek("user_id"))
	games, err := s.reg.ListOpenGames(ctx, userID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, games)
}

func (s *Server) joinGame(ctx *fasthttp.RequestCtx) {
	var req arenadto.JoinGameRequest
	if !readJSON(ctx, &req) {
		return
	}
	if err := s.reg.JoinGame(ctx, req.UserID, req.GameID); err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{
		"message": "Game joined successfully",
		"game_id": req.GameID,
	})
}

func (s *Server) makeMove(ctx *fasthttp.RequestCtx) {
	var req arenadto.MoveRequest
	if !readJSON(ctx, &req) {
		return
	}
	state, err := s.reg.ApplyMove(ctx, req.GameID, req.PlayerID, req.Move)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"message":    "Move made successfully",
		"game_state": state,
	})
}

func (s *Server) completeGame(ctx *fasthttp.RequestCtx) {
	var req arenadto.CompleteGameRequest
	if !readJSON(ctx, &req) {
		return
	}
	resp, err := s.reg.CompleteGame(ctx, req.GameID, req.WinnerID, req.IsDraw)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) spectateGame(ctx *fasthttp.RequestCtx) {
	var req arenadto.SpectateRequest
	if !readJSON(ctx, &req) {
		return
	}
	if err := s.reg.SpectateGame(ctx, req.UserID, req.GameID); err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{
		"message": "You are now spectating the game " + req.GameID,
	})
}

func (s *Server) leaveSpectate(ctx *fasthttp.RequestCtx) {
	var req arenadto.SpectateRequest
	if !readJSON(ctx, &req) {
		return
	}
	if err := s.reg.LeaveSpectate(ctx, req.UserID, req.GameID); err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{
		"message": "You have left spectating the game " + req.GameID,
	})
}

func (s *Server) getGame(ctx *fasthttp.RequestCtx, gameID string) {
	game, err := s.reg.GetGame(ctx, gameID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, game)
}

func (s *Server) randomGame(ctx *fasthttp.RequestCtx) {
	game, err := s.reg.RandomGame(ctx)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, game)
}

func (s *Server) leaderboard(ctx *fasthttp.RequestCtx) {
	limit := 100
	if v := string(ctx.QueryArgs().Peek("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	board, err := s.reg.Leaderboard(ctx, limit)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"leaderboard": board})
}

func readJSON(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "encode response")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}

func writeError(ctx *fasthttp.RequestCtx, status int, detail string) {
	writeJSON(ctx, status, map[string]string{"detail": detail})
}

func writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	kind := arenadto.KindOf(err)
	status := fasthttp.StatusBadRequest
	switch kind {
	case arenadto.KindNotFound:
		status = fasthttp.StatusNotFound
	case arenadto.KindForbidden:
		status = fasthttp.StatusForbidden
	case arenadto.KindStoreFailure:
		status = fasthttp.StatusInternalServerError
	}
	writeJSON(ctx, status, map[string]string{
		"detail": err.Error(),
		"kind":   string(kind),
	})
}
