// internal/handlers/api_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankard-game/tankard/internal/auth"
	"github.com/tankard-game/tankard/internal/game"
)

// apiClient drives the HTTP API as one signed-in player, carrying their
// session cookie between requests.
type apiClient struct {
	t      *testing.T
	mux    *http.ServeMux
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *http.ServeMux {
	t.Helper()
	signer, err := auth.NewSigner("never")
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	registry := game.NewRegistry(game.DisconnectAutoPass, nil, logger)
	return NewServer(registry, signer, logger).Routes()
}

func (c *apiClient) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

func (c *apiClient) getJSON(path string, out interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	w := c.get(path)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

// signIn creates a client for the display name and keeps its cookie.
func signIn(t *testing.T, mux *http.ServeMux, displayName string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, mux: mux}
	w := c.get("/api/signin?displayName=" + displayName)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := w.Result()
	for _, ck := range res.Cookies() {
		if ck.Name == auth.CookieName {
			c.cookie = ck
		}
	}
	require.NotNil(t, c.cookie, "signin must set the session cookie")
	return c
}

func TestSignInRequired(t *testing.T) {
	mux := newTestServer(t)
	anon := &apiClient{t: t, mux: mux}

	assert.Equal(t, http.StatusOK, anon.get("/healthz").Code)
	assert.Equal(t, http.StatusUnauthorized, anon.get("/api/createGame/Snug").Code)
	assert.Equal(t, http.StatusUnauthorized, anon.get("/api/getGameView").Code)
	assert.Equal(t, http.StatusUnauthorized, anon.get("/api/signin").Code, "empty display name")
}

func TestFullGameOverHTTP(t *testing.T) {
	mux := newTestServer(t)
	alice := signIn(t, mux, "Alice")
	bob := signIn(t, mux, "Bob")

	var created struct {
		GameUUID string `json:"gameUuid"`
	}
	w := alice.getJSON("/api/createGame/Snug", &created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, created.GameUUID)

	assert.Equal(t, http.StatusNotFound, bob.get("/api/joinGame/not-a-uuid").Code)
	require.Equal(t, http.StatusOK, bob.get("/api/joinGame/"+created.GameUUID).Code)

	// Character picks, with a conflict on a taken character.
	require.Equal(t, http.StatusOK, alice.get("/api/selectCharacter/fiona").Code)
	assert.Equal(t, http.StatusConflict, bob.get("/api/selectCharacter/fiona").Code)
	assert.Equal(t, http.StatusBadRequest, bob.get("/api/selectCharacter/nobody").Code)
	require.Equal(t, http.StatusOK, bob.get("/api/selectCharacter/gerki").Code)

	// Only the owner starts.
	assert.Equal(t, http.StatusForbidden, bob.get("/api/startGame").Code)
	require.Equal(t, http.StatusOK, alice.get("/api/startGame").Code)

	var view game.GameView
	w = alice.getJSON("/api/getGameView", &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, view.IsRunning)
	assert.Equal(t, "Snug", view.GameName)
	assert.Len(t, view.Hand, 7)
	assert.Equal(t, "Alice", view.PlayerDisplayNames[view.SelfPlayerUUID.String()])

	// Bob acting out of turn is rejected with the engine's own code.
	w = bob.get("/api/pass")
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(game.CodeNotYourTurn), body.Error.Code)

	// Alice walks her turn: pass the action, keep the hand, order for Bob.
	require.Equal(t, http.StatusOK, alice.get("/api/pass").Code)
	require.Equal(t, http.StatusOK, alice.get("/api/discardCards").Code)
	bobID := ""
	for id := range view.PlayerDisplayNames {
		if id != view.SelfPlayerUUID.String() {
			bobID = id
		}
	}
	require.Equal(t, http.StatusOK, alice.get("/api/orderDrink/"+bobID).Code)
	assert.Equal(t, http.StatusBadRequest, alice.get("/api/orderDrink/"+bobID).Code,
		"no ordering while the drink resolves")
}

func TestListGames(t *testing.T) {
	mux := newTestServer(t)
	alice := signIn(t, mux, "Alice")
	bob := signIn(t, mux, "Bob")

	require.Equal(t, http.StatusOK, alice.get("/api/createGame/Anvil").Code)
	require.Equal(t, http.StatusOK, bob.get("/api/createGame/Zebra").Code)

	var games []game.ListedGameView
	w := alice.getJSON("/api/listGames", &games)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, games, 2)
	assert.Equal(t, "Anvil", games[0].GameName)
	assert.Equal(t, "Zebra", games[1].GameName)
	assert.Equal(t, 1, games[0].PlayerCount)

	// Leaving the last seat drops the table from the list.
	require.Equal(t, http.StatusOK, bob.get("/api/leaveGame").Code)
	w = alice.getJSON("/api/listGames", &games)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, games, 1)
	assert.Equal(t, "Anvil", games[0].GameName)
}

func TestSignOutClearsSession(t *testing.T) {
	mux := newTestServer(t)
	alice := signIn(t, mux, "Alice")
	require.Equal(t, http.StatusOK, alice.get("/api/createGame/Snug").Code)

	require.Equal(t, http.StatusOK, alice.get("/api/signout").Code)

	// The token still authenticates, but the registry no longer knows them.
	w := alice.get("/api/createGame/Another")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
