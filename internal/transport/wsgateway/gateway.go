package wsgateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/chess-arena/internal/notify"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/pkg/arenadto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Gateway accepts websocket connections at /ws/{user_id} and registers
// them with the notification hub. Inbound frames are read and discarded,
// the socket exists to push events out.
type Gateway struct {
	hub *notify.Hub
	srv *http.Server
}

func New(hub *notify.Hub) *Gateway {
	g := &Gateway{hub: hub}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", g.serveWS)
	g.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

func (g *Gateway) ListenAndServe(addr string) error {
	g.srv.Addr = addr
	obslog.L().Info("ws_listen", zap.String("addr", addr))
	err := g.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.srv.Shutdown(ctx)
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		obslog.L().Debug("ws_accept_failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	conn := &wsConn{c: c}
	g.hub.Connect(userID, conn)
	obslog.L().Info("ws_connected", zap.String("user_id", userID))

	// Drain inbound frames until the peer goes away.
	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			break
		}
	}

	// Keyed on the conn, not just the user: if the user already
	// reconnected, this teardown must not touch the new channel.
	g.hub.DisconnectConn(userID, conn)
	obslog.L().Info("ws_disconnected", zap.String("user_id", userID))
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Send(ctx context.Context, payload arenadto.Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(ctx, w.c, payload)
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "")
}
