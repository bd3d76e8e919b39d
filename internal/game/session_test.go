// internal/game/session_test.go
package game

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRecorder collects action records for assertions.
type memoryRecorder struct {
	mu      sync.Mutex
	records []ActionRecord
}

func (r *memoryRecorder) RecordAction(_ context.Context, rec ActionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *memoryRecorder) all() []ActionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ActionRecord(nil), r.records...)
}

func TestLobbyJoinSelectStart(t *testing.T) {
	s := NewSession(uuid.New(), "Dragon's Rest", DisconnectAutoPass, nil, nil)
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, s.Join(p1))
	require.NoError(t, s.Join(p2))

	err := s.Join(p1)
	assert.Equal(t, CodeAlreadyInGame, CodeOf(err))

	// Nobody starts alone, and nobody starts unselected.
	require.NoError(t, s.Leave(p2))
	require.NoError(t, s.SelectCharacter(p1, CharacterFiona))
	err = s.Start(p1)
	assert.Equal(t, CodeNotReady, CodeOf(err))

	require.NoError(t, s.Join(p2))
	err = s.Start(p1)
	assert.Equal(t, CodeNotReady, CodeOf(err), "p2 has no character yet")

	// Characters are unique per table, but re-picking is fine pre-game.
	err = s.SelectCharacter(p2, CharacterFiona)
	assert.Equal(t, CodeCharacterTaken, CodeOf(err))
	require.NoError(t, s.SelectCharacter(p2, CharacterZot))
	require.NoError(t, s.SelectCharacter(p2, CharacterGerki))

	// Only the first seat may start.
	err = s.Start(p2)
	assert.Equal(t, CodeNotGameOwner, CodeOf(err))
	require.NoError(t, s.Start(p1))

	// Running games are closed.
	err = s.Join(p3)
	assert.Equal(t, CodeGameAlreadyRunning, CodeOf(err))
	err = s.Start(p1)
	assert.Equal(t, CodeGameAlreadyRunning, CodeOf(err))
	err = s.SelectCharacter(p1, CharacterDeirdre)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestCommandsRequireRunningGame(t *testing.T) {
	s := NewSession(uuid.New(), "Dragon's Rest", DisconnectAutoPass, nil, nil)
	p1, stranger := uuid.New(), uuid.New()
	require.NoError(t, s.Join(p1))

	err := s.Pass(p1)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
	err = s.PlayCard(p1, 0, nil)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
	err = s.Pass(stranger)
	assert.Equal(t, CodeGameNotFound, CodeOf(err))
}

func TestLeavingRunningGameEliminatesPlayer(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki, CharacterZot)
	p1, p2, p3 := ids[0], ids[1], ids[2]

	require.NoError(t, s.Leave(p2))
	assert.False(t, s.HasPlayer(p2))
	assert.False(t, playerOf(s, p2).Alive())
	assert.True(t, playerOf(s, p1).Alive())
	assert.True(t, playerOf(s, p3).Alive())

	// The game carries on around the empty chair.
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.DiscardCards(p1, nil))
	require.NoError(t, s.OrderDrink(p1, p3))
}

func TestActionRecorderSeesAppliedMutationsOnly(t *testing.T) {
	rec := &memoryRecorder{}
	s := NewSession(uuid.New(), "Dragon's Rest", DisconnectAutoPass, rec, nil)
	p1, p2 := uuid.New(), uuid.New()

	require.NoError(t, s.Join(p1))
	require.NoError(t, s.Join(p2))
	require.Error(t, s.Start(p2)) // rejected: not the owner
	require.NoError(t, s.SelectCharacter(p1, CharacterFiona))
	require.NoError(t, s.SelectCharacter(p2, CharacterGerki))
	require.NoError(t, s.Start(p1))

	records := rec.all()
	require.Len(t, records, 5)
	assert.Equal(t, "join", records[0].Action)
	assert.Equal(t, "selectCharacter", records[2].Action)
	assert.Equal(t, "startGame", records[4].Action)
	assert.Equal(t, p1, records[4].Actor)
	for i, r := range records {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, s.ID(), r.GameID)
	}
	assert.Equal(t, uint64(5), s.Version())
}

func TestOnGameEndFiresOncePerGame(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	var summaries []GameSummary
	s.OnGameEnd = func(g GameSummary) { summaries = append(summaries, g) }

	giveHand(s, p1, changeOtherPlayerFortitudeCard("Kill", -25))
	playerOf(s, p2).alcoholContent = 19
	playerOf(s, p2).hand = nil
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	require.NoError(t, s.Pass(p2))

	require.Len(t, summaries, 1)
	g := summaries[0]
	assert.Equal(t, s.ID(), g.GameID)
	assert.Equal(t, "Test Game", g.GameName)
	require.NotNil(t, g.Winner)
	assert.Equal(t, p1, *g.Winner)
	require.Len(t, g.Players, 2)
	assert.True(t, g.Players[0].Alive)
	assert.False(t, g.Players[1].Alive)

	// Post-game chatter never re-fires the callback.
	require.Error(t, s.Pass(p1))
	assert.Len(t, summaries, 1)

	// A fresh start re-arms it.
	require.NoError(t, s.Start(p1))
	giveHand(s, p1, changeOtherPlayerFortitudeCard("Kill", -25))
	playerOf(s, p2).alcoholContent = 19
	playerOf(s, p2).hand = nil
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	require.NoError(t, s.Pass(p2))
	assert.Len(t, summaries, 2)
}

func TestDisconnectRemovePolicyEliminates(t *testing.T) {
	s := NewSession(uuid.New(), "Test Game", DisconnectRemove, nil, nil)
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	seats := map[uuid.UUID]Character{p1: CharacterFiona, p2: CharacterGerki, p3: CharacterZot}
	for _, id := range []uuid.UUID{p1, p2, p3} {
		require.NoError(t, s.Join(id))
		require.NoError(t, s.SelectCharacter(id, seats[id]))
	}
	require.NoError(t, s.Start(p1))

	s.SetConnected(p2, false)
	assert.False(t, playerOf(s, p2).Alive())
	assert.True(t, s.HasPlayer(p2), "the seat stays")

	// Their turn is skipped entirely.
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.DiscardCards(p1, nil))
	require.NoError(t, s.OrderDrink(p1, p3))
}
