// internal/game/gambling.go
package game

import "github.com/google/uuid"

// gamblingRound is one open round of gambling during somebody's Action
// phase. The round ends when eligibility comes back to the player currently
// holding the winning hand.
type gamblingRound struct {
	// active players still in the round, in seating order.
	active []uuid.UUID
	// turn is whose gambling move it is.
	turn uuid.UUID
	// winning is who takes the pot if everybody else folds.
	winning uuid.UUID
	pot     int
	// cheatRequired is set by "Winning hand!"; from then on only a cheat
	// card can take control of the round.
	cheatRequired bool
}

type gamblingState struct {
	roster *roster
	round  *gamblingRound
}

func (g *gamblingState) inProgress() bool { return g.round != nil }

func (g *gamblingState) isTurn(id uuid.UUID) bool {
	return g.round != nil && g.round.turn == id
}

func (g *gamblingState) isActive(id uuid.UUID) bool {
	if g.round == nil {
		return false
	}
	for _, p := range g.round.active {
		if p == id {
			return true
		}
	}
	return false
}

// activeFrom returns the active players rotated so that `from` comes first.
func (g *gamblingState) activeFrom(from uuid.UUID) []uuid.UUID {
	out := append([]uuid.UUID(nil), g.round.active...)
	for i, id := range out {
		if id == from {
			return append(out[i:], out[:i]...)
		}
	}
	return out
}

// start opens a round with every living player, initiator first.
func (g *gamblingState) start(initiator uuid.UUID, players []uuid.UUID) {
	g.round = &gamblingRound{
		active:  players,
		turn:    initiator,
		winning: initiator,
	}
}

// takeControl makes the player the round's current winner and moves the
// gambling turn along.
func (g *gamblingState) takeControl(id uuid.UUID, cheatRequired bool) {
	g.round.winning = id
	g.round.cheatRequired = cheatRequired
	g.round.turn = id
	g.advanceTurn()
}

// anteUp antes the player and moves the gambling turn along. Used for the
// round initiator; everyone else antes through an interrupt session.
func (g *gamblingState) anteUp(id uuid.UUID) {
	g.ante(id)
	g.advanceTurn()
}

// ante moves one gold from the player into the pot without touching the
// gambling turn.
func (g *gamblingState) ante(id uuid.UUID) {
	if !g.isActive(id) {
		return
	}
	g.roster.player(id).changeGold(-1)
	g.round.pot++
}

// leave drops a player from the round without anteing.
func (g *gamblingState) leave(id uuid.UUID) {
	if g.round == nil {
		return
	}
	if g.round.turn == id {
		g.advanceTurn()
	}
	kept := g.round.active[:0]
	for _, p := range g.round.active {
		if p != id {
			kept = append(kept, p)
		}
	}
	g.round.active = kept
}

// pass folds the current gambling turn holder. Reports true when the round
// ended with a payout to the winning player.
func (g *gamblingState) pass() (won bool) {
	g.advanceTurn()
	if g.round.turn == g.round.winning {
		g.roster.player(g.round.winning).changeGold(g.round.pot)
		g.round = nil
		return true
	}
	return false
}

// advanceTurn moves the gambling turn to the next active living player.
func (g *gamblingState) advanceTurn() {
	round := g.round
	if round == nil {
		return
	}
	eligible := make([]uuid.UUID, 0, len(round.active))
	for _, p := range round.active {
		if g.roster.player(p).Alive() {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return
	}
	cur := -1
	for i, p := range eligible {
		if p == round.turn {
			cur = i
			break
		}
	}
	round.turn = eligible[(cur+1)%len(eligible)]
}
