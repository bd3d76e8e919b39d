// internal/handlers/watch_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/tankard-game/tankard/internal/game"
	"github.com/tankard-game/tankard/internal/middleware"
)

// watchPollInterval bounds how often a watch connection checks the state
// version.
const watchPollInterval = 200 * time.Millisecond

// handleWatch upgrades to WebSocket and pushes the player's view whenever
// the session's state version moves. The connection doubles as the player's
// presence signal: accepting it marks them connected, and closing it applies
// the session's disconnect policy.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	player, err := s.signer.PlayerFromRequest(r)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	sess, err := s.registry.SessionFor(player)
	if err != nil {
		http.Error(w, "not in a game", http.StatusNotFound)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"watch"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exit")
	middleware.LogWebSocketConnect(s.log, r.RemoteAddr, r.URL.Path)

	sess.SetConnected(player, true)
	defer func() {
		sess.SetConnected(player, false)
		middleware.LogWebSocketDisconnect(s.log, r.RemoteAddr, r.URL.Path, nil)
	}()

	ctx := r.Context()

	// Drain (and discard) client frames so pings and close frames are
	// processed.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	var lastSent uint64
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case <-ticker.C:
		}

		version := sess.Version()
		if !first && version == lastSent {
			continue
		}
		view, err := s.registry.ViewFor(player)
		if err != nil {
			// Kicked or the game was dropped; nothing left to watch.
			c.Close(websocket.StatusNormalClosure, "game over")
			return
		}
		if err := s.writeView(ctx, c, view); err != nil {
			return
		}
		lastSent = view.StateVersion
		first = false
	}
}

func (s *Server) writeView(ctx context.Context, c *websocket.Conn, view *game.GameView) error {
	data, err := json.Marshal(view)
	if err != nil {
		s.log.WithError(err).Error("marshal view")
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
