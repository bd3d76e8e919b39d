// internal/game/engine_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStartedSession joins one player per character, selects, and starts.
// The first player owns the game and holds the first turn.
func setupStartedSession(t *testing.T, characters ...Character) (*Session, []uuid.UUID) {
	t.Helper()
	s := NewSession(uuid.New(), "Test Game", DisconnectAutoPass, nil, nil)
	ids := make([]uuid.UUID, len(characters))
	for i, c := range characters {
		ids[i] = uuid.New()
		require.NoError(t, s.Join(ids[i]))
		require.NoError(t, s.SelectCharacter(ids[i], c))
	}
	require.NoError(t, s.Start(ids[0]))
	return s, ids
}

// giveHand replaces a player's hand so plays are deterministic.
func giveHand(s *Session, p uuid.UUID, cards ...Card) {
	s.eng.roster.player(p).hand = cards
}

// stackDrinkPile replaces a player's drink-me pile; cards are drawn in the
// order given.
func stackDrinkPile(s *Session, p uuid.UUID, cards ...DrinkCard) {
	reversed := make([]DrinkCard, len(cards))
	for i, c := range cards {
		reversed[len(cards)-1-i] = c
	}
	s.eng.roster.player(p).drinkMe = &Pile[DrinkCard]{draw: reversed, rng: s.rng}
}

func playerOf(s *Session, p uuid.UUID) *Player {
	return s.eng.roster.player(p)
}

func target(id uuid.UUID) *uuid.UUID { return &id }

func TestTurnPhaseCycle(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	assert.Equal(t, PhaseAction, s.eng.turn.phase)
	assert.Equal(t, p1, s.eng.turn.playerTurn)

	// Action phase passes into DiscardAndDraw.
	require.NoError(t, s.Pass(p1))
	assert.Equal(t, PhaseDiscardAndDraw, s.eng.turn.phase)

	// Discarding nothing still refills the hand and moves to OrderDrinks.
	require.NoError(t, s.DiscardCards(p1, nil))
	assert.Equal(t, PhaseOrderDrinks, s.eng.turn.phase)
	assert.Len(t, playerOf(s, p1).hand, handLimit)

	// The last order moves the turn into TurnEnd while the drink resolves.
	stackDrinkPile(s, p2, simpleDrink("Wine", 2, 0, false))
	require.NoError(t, s.OrderDrink(p1, p2))
	assert.Equal(t, PhaseTurnEnd, s.eng.turn.phase)
	require.True(t, s.eng.interrupts.inProgress())

	// The drink cycles eligibility: drinker first, then the rest of the
	// table, resolving when it comes back around.
	require.NoError(t, s.Pass(p2))
	require.NoError(t, s.Pass(p1))
	assert.Equal(t, 2, playerOf(s, p2).alcoholContent)

	// The next living player's turn begins in Action.
	assert.Equal(t, p2, s.eng.turn.playerTurn)
	assert.Equal(t, PhaseAction, s.eng.turn.phase)
}

func TestPlayCardValidation(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	attack := changeOtherPlayerFortitudeCard("You wanna arm wrestle?", -1)
	giveHand(s, p1, attack)
	giveHand(s, p2, changeOtherPlayerFortitudeCard("How did this get stuck in your back?", -2))

	// Not the turn holder.
	err := s.PlayCard(p2, 0, target(p1))
	assert.Equal(t, CodeNotYourTurn, CodeOf(err))

	// Bad index.
	err = s.PlayCard(p1, 5, target(p2))
	assert.Equal(t, CodeIndexOutOfRange, CodeOf(err))

	// Directed card without a target.
	err = s.PlayCard(p1, 0, nil)
	assert.Equal(t, CodeTargetRequired, CodeOf(err))

	// Directed card aimed at self.
	err = s.PlayCard(p1, 0, target(p1))
	assert.Equal(t, CodeUnexpectedTarget, CodeOf(err))

	// Rejected plays leave the hand untouched.
	require.Len(t, playerOf(s, p1).hand, 1)
	assert.Same(t, attack, playerOf(s, p1).hand[0].(*RootCard))

	// Wrong phase: action cards cannot be played while discarding.
	require.NoError(t, s.Pass(p1))
	err = s.PlayCard(p1, 0, target(p2))
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestRejectedCommandsAreNoOps(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	before := s.Version()
	err := s.OrderDrink(p1, p2)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
	err = s.DiscardCards(p2, []int{0})
	assert.Equal(t, CodeNotYourTurn, CodeOf(err))
	assert.Equal(t, before, s.Version(), "rejected commands must not bump the version")
}

func TestDiscardUsesStableIndexSnapshot(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1 := ids[0]
	require.NoError(t, s.Pass(p1))

	named := func(n string) Card { return gainFortitudeAnytimeCard(n, 1) }
	giveHand(s, p1, named("c0"), named("c1"), named("c2"), named("c3"), named("c4"))

	// Indices refer to the hand as it was at submission time, regardless
	// of the order they are given in.
	require.NoError(t, s.DiscardCards(p1, []int{0, 3, 2}))

	names := make([]string, 0, len(playerOf(s, p1).hand))
	for _, c := range playerOf(s, p1).hand {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "c1")
	assert.Contains(t, names, "c4")
	assert.NotContains(t, names, "c0")
	assert.NotContains(t, names, "c2")
	assert.NotContains(t, names, "c3")
	assert.Len(t, playerOf(s, p1).hand, handLimit)
}

func TestDiscardRejectsDuplicateAndOutOfRangeIndices(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1 := ids[0]
	require.NoError(t, s.Pass(p1))

	handBefore := append([]Card(nil), playerOf(s, p1).hand...)

	err := s.DiscardCards(p1, []int{0, 0})
	assert.Equal(t, CodeIndexOutOfRange, CodeOf(err))
	err = s.DiscardCards(p1, []int{99})
	assert.Equal(t, CodeIndexOutOfRange, CodeOf(err))

	assert.Equal(t, handBefore, playerOf(s, p1).hand)
	assert.Equal(t, PhaseDiscardAndDraw, s.eng.turn.phase)
}

func TestAnytimeCardDoesNotConsumeAction(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterDeirdre, CharacterGerki)
	p1 := ids[0]

	pl := playerOf(s, p1)
	pl.fortitude = 15
	giveHand(s, p1, gainFortitudeAnytimeCard("My Goddess heals me.", 2))

	require.NoError(t, s.PlayCard(p1, 0, nil))
	assert.Equal(t, 17, pl.fortitude)
	assert.Equal(t, PhaseAction, s.eng.turn.phase, "healing is not the turn's action")
}

func TestWenchCardAddsDrinksToOrder(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki, CharacterZot)
	p1 := ids[0]

	giveHand(s, p1, wenchBringSomeDrinksForMyFriendsCard())
	require.NoError(t, s.PlayCard(p1, 0, nil))

	assert.Equal(t, 3, s.eng.turn.drinksToOrder)
	assert.Equal(t, PhaseDiscardAndDraw, s.eng.turn.phase, "the wench card is the turn's action")
}

func TestDeathAndWinner(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	playerOf(s, p2).fortitude = 2
	giveHand(s, p1, changeOtherPlayerFortitudeCard("So then I got the ogre in a headlock like this!", -3))

	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	require.NoError(t, s.Pass(p2)) // declines to react

	assert.False(t, playerOf(s, p2).Alive())
	assert.True(t, s.eng.finished)
	require.True(t, s.eng.hasWinner)
	assert.Equal(t, p1, s.eng.winner)

	// No further transitions.
	err := s.Pass(p1)
	assert.Equal(t, CodeInvalidPhase, CodeOf(err))
}

func TestRestartAfterWinner(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	playerOf(s, p2).fortitude = 1
	giveHand(s, p1, changeOtherPlayerFortitudeCard("Who says I'm not a lady?", -2))
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	require.NoError(t, s.Pass(p2))
	require.True(t, s.eng.finished)

	// Seats may re-pick and the owner may deal again.
	require.NoError(t, s.SelectCharacter(p2, CharacterZot))
	require.NoError(t, s.Start(p1))
	assert.True(t, s.isRunning())
	assert.True(t, playerOf(s, p2).Alive())
	assert.Equal(t, CharacterZot, playerOf(s, p2).character)
}

func TestGoldDepletionEliminates(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	playerOf(s, p2).gold = 1
	giveHand(s, p1, ohIGuessTheWenchThoughtThatWasHerTipCard())
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	require.NoError(t, s.Pass(p2))

	assert.False(t, playerOf(s, p2).Alive())
	assert.True(t, s.eng.finished)
}

func TestCanPass(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki, CharacterZot)
	p1, p2 := ids[0], ids[1]

	assert.True(t, s.eng.canPass(p1), "own Action phase")
	assert.False(t, s.eng.canPass(p2))

	require.NoError(t, s.Pass(p1))
	assert.False(t, s.eng.canPass(p1), "DiscardAndDraw cannot be passed")

	require.NoError(t, s.DiscardCards(p1, nil))
	assert.False(t, s.eng.canPass(p1), "eligible drink targets remain")

	// Once every living player has been served, the rest of the drink
	// allowance is passable.
	s.eng.turn.drinksToOrder = 3
	stackDrinkPile(s, p2, simpleDrink("Water", 0, 0, false))
	stackDrinkPile(s, ids[2], simpleDrink("Water", 0, 0, false))
	require.NoError(t, s.OrderDrink(p1, p2))
	require.NoError(t, s.Pass(p2))
	require.NoError(t, s.Pass(ids[2]))
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.OrderDrink(p1, ids[2]))
	require.NoError(t, s.Pass(ids[2]))
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.Pass(p2))

	assert.Equal(t, PhaseOrderDrinks, s.eng.turn.phase)
	assert.True(t, s.eng.canPass(p1), "drinks left but nobody eligible")
	require.NoError(t, s.Pass(p1))
	assert.Equal(t, p2, s.eng.turn.playerTurn)
}

func TestDisconnectedPlayerIsAutoPassed(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki)
	p1, p2 := ids[0], ids[1]

	s.SetConnected(p2, false)
	giveHand(s, p1, changeOtherPlayerFortitudeCard("You wanna arm wrestle?", -1))

	// The pending interrupt resolves without p2's input.
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	assert.False(t, s.eng.interrupts.inProgress())
	assert.Equal(t, 19, playerOf(s, p2).fortitude)
}

func TestDisconnectedPlayerSkippedForTurns(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki, CharacterZot)
	p1, p2, p3 := ids[0], ids[1], ids[2]

	s.SetConnected(p2, false)
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.DiscardCards(p1, nil))
	stackDrinkPile(s, p3, simpleDrink("Water", 0, 0, false))
	require.NoError(t, s.OrderDrink(p1, p3))
	require.NoError(t, s.Pass(p3))
	require.NoError(t, s.Pass(p1))

	assert.Equal(t, p3, s.eng.turn.playerTurn, "disconnected player's turn is skipped")

	s.SetConnected(p2, true)
	require.NoError(t, s.Pass(p3))
	require.NoError(t, s.DiscardCards(p3, nil))
	stackDrinkPile(s, p1, simpleDrink("Water", 0, 0, false))
	require.NoError(t, s.OrderDrink(p3, p1))
	require.NoError(t, s.Pass(p1))
	require.NoError(t, s.Pass(p2))
	require.NoError(t, s.Pass(p3))
	assert.Equal(t, p1, s.eng.turn.playerTurn, "the rotation continues past the reconnected seat")
	assert.False(t, s.eng.roster.skipped[p2], "reconnected player rejoins the rotation")
}

func TestInterruptResolvesWhenRootOwnerDisconnects(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterFiona, CharacterGerki, CharacterZot)
	p1, p2, p3 := ids[0], ids[1], ids[2]

	giveHand(s, p1, changeOtherPlayerFortitudeCard("So then I got the ogre in a headlock like this!", -3))
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	s.SetConnected(p1, false)

	// The cycle must close over the remaining players instead of waiting
	// for the disconnected owner forever.
	require.NoError(t, s.Pass(p2))
	require.NoError(t, s.Pass(p3))

	assert.False(t, s.eng.interrupts.inProgress())
	assert.Equal(t, 17, playerOf(s, p2).fortitude)
	assert.Equal(t, p2, s.eng.turn.playerTurn, "the owner's spent turn is auto-passed")
}

func TestInterruptResolvesWhenOwnerAndTargetDisconnect(t *testing.T) {
	s, ids := setupStartedSession(t, CharacterZot, CharacterGerki, CharacterFiona)
	p1, p2 := ids[0], ids[1]

	giveHand(s, p1, changeOtherPlayerFortitudeCard("Down Pooky!", -1))
	require.NoError(t, s.PlayCard(p1, 0, target(p2)))
	s.SetConnected(p1, false)
	s.SetConnected(p2, false)

	assert.False(t, s.eng.interrupts.inProgress(), "nobody left to wait for")
	assert.Equal(t, 19, playerOf(s, p2).fortitude)
}
