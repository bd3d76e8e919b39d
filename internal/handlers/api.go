// internal/handlers/api.go
//
// HTTP binding for the game registry. Every endpoint is GET + JSON: commands
// are parameterized through the path and query string, responses carry either
// the requested projection or {"error": {code, message}}.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tankard-game/tankard/internal/auth"
	"github.com/tankard-game/tankard/internal/game"
)

// Server binds the registry to HTTP.
type Server struct {
	registry *game.Registry
	signer   *auth.Signer
	log      *logrus.Logger
}

// NewServer wires the registry, token signer, and logger together.
func NewServer(registry *game.Registry, signer *auth.Signer, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{registry: registry, signer: signer, log: logger}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/signin", s.handleSignIn)
	mux.HandleFunc("/api/signout", s.handleSignOut)
	mux.HandleFunc("/api/createGame/", s.handleCreateGame)
	mux.HandleFunc("/api/joinGame/", s.handleJoinGame)
	mux.HandleFunc("/api/leaveGame", s.handleLeaveGame)
	mux.HandleFunc("/api/startGame", s.handleStartGame)
	mux.HandleFunc("/api/selectCharacter/", s.handleSelectCharacter)
	mux.HandleFunc("/api/playCard/", s.handlePlayCard)
	mux.HandleFunc("/api/discardCards", s.handleDiscardCards)
	mux.HandleFunc("/api/orderDrink/", s.handleOrderDrink)
	mux.HandleFunc("/api/pass", s.handlePass)
	mux.HandleFunc("/api/getGameView", s.handleGetGameView)
	mux.HandleFunc("/api/listGames", s.handleListGames)
	mux.HandleFunc("/api/watch", s.handleWatch)
	return mux
}

// statusFor maps game error codes onto HTTP statuses.
func statusFor(err error) int {
	switch game.CodeOf(err) {
	case game.CodeNotSignedIn:
		return http.StatusUnauthorized
	case game.CodeNotGameOwner, game.CodeNotYourTurn, game.CodeNotYourInterrupt:
		return http.StatusForbidden
	case game.CodeGameNotFound:
		return http.StatusNotFound
	case game.CodeGameAlreadyRunning, game.CodeAlreadyInGame,
		game.CodeCharacterTaken, game.CodeAlreadyOrdered:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

type errorBody struct {
	Code    game.ErrorCode `json:"code"`
	Message string         `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Code: game.CodeOf(err), Message: err.Error()}
	var gerr *game.Error
	if errors.As(err, &gerr) {
		body.Message = gerr.Message
	}
	s.writeJSON(w, statusFor(err), map[string]errorBody{"error": body})
}

func (s *Server) writeOK(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// player authenticates the request. A nil error means the id is valid;
// whether the player is signed in is the registry's call.
func (s *Server) player(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := s.signer.PlayerFromRequest(r)
	if err != nil {
		s.writeJSON(w, http.StatusUnauthorized, map[string]errorBody{"error": {
			Code:    game.CodeNotSignedIn,
			Message: "not signed in",
		}})
		return uuid.Nil, false
	}
	return id, true
}

// pathTail returns the path segment after prefix, e.g. the {name} in
// /api/createGame/{name}.
func pathTail(r *http.Request, prefix string) string {
	tail := strings.TrimPrefix(r.URL.Path, prefix)
	if i := strings.Index(tail, "/"); i != -1 {
		tail = tail[:i]
	}
	return tail
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w)
}

// handleSignIn mints a player id for the display name and sets the session
// cookie.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	displayName := r.URL.Query().Get("displayName")
	id, err := s.registry.SignIn(displayName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	token, err := s.signer.CreateToken(id)
	if err != nil {
		s.log.WithError(err).Error("sign token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.signer.SetCookie(w, token)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"playerUuid":  id.String(),
		"displayName": displayName,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.player(w, r); ok {
		s.registry.SignOut(id)
		auth.ClearCookie(w)
		s.writeOK(w)
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	name := pathTail(r, "/api/createGame/")
	if name == "" {
		s.writeError(w, game.NewError(game.CodeGameNotFound, "missing game name"))
		return
	}
	sess, err := s.registry.CreateGame(id, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"gameUuid": sess.ID().String()})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	gameID, err := uuid.Parse(pathTail(r, "/api/joinGame/"))
	if err != nil {
		s.writeError(w, game.NewError(game.CodeGameNotFound, "invalid game id"))
		return
	}
	if _, err := s.registry.JoinGame(id, gameID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	if err := s.registry.LeaveGame(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.Start(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleSelectCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	character, valid := game.ParseCharacter(pathTail(r, "/api/selectCharacter/"))
	if !valid {
		http.Error(w, "unknown character", http.StatusBadRequest)
		return
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SelectCharacter(id, character); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(pathTail(r, "/api/playCard/"))
	if err != nil {
		s.writeError(w, game.NewError(game.CodeIndexOutOfRange, "invalid card index"))
		return
	}
	var target *uuid.UUID
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := uuid.Parse(raw)
		if err != nil {
			s.writeError(w, game.NewError(game.CodeUnexpectedTarget, "invalid target id"))
			return
		}
		target = &t
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.PlayCard(id, index, target); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleDiscardCards(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	var indices []int
	if raw := r.URL.Query().Get("indices"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				s.writeError(w, game.NewError(game.CodeIndexOutOfRange, "invalid discard index %q", part))
				return
			}
			indices = append(indices, n)
		}
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.DiscardCards(id, indices); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleOrderDrink(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	target, err := uuid.Parse(pathTail(r, "/api/orderDrink/"))
	if err != nil {
		s.writeError(w, game.NewError(game.CodeUnexpectedTarget, "invalid target id"))
		return
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.OrderDrink(id, target); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	sess, err := s.registry.SessionFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.Pass(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleGetGameView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.player(w, r)
	if !ok {
		return
	}
	view, err := s.registry.ViewFor(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.player(w, r); !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.registry.ListGames())
}
