// internal/game/roster.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// roster is the set of in-game players in seating order.
type roster struct {
	order   []uuid.UUID
	players map[uuid.UUID]*Player
	// skipped players keep their seat but are passed over whenever they
	// would gain eligibility (the auto_pass disconnect policy).
	skipped map[uuid.UUID]bool
}

func newRoster(seats []Seat, rng *rand.Rand) *roster {
	r := &roster{
		players: make(map[uuid.UUID]*Player, len(seats)),
		skipped: make(map[uuid.UUID]bool),
	}
	gold := startingGold(len(seats))
	for _, seat := range seats {
		r.order = append(r.order, seat.PlayerID)
		r.players[seat.PlayerID] = newPlayer(*seat.Character, gold, rng)
	}
	return r
}

func (r *roster) player(id uuid.UUID) *Player {
	return r.players[id]
}

// reachable reports whether an eligibility cycle can still return to the
// player: they are alive and not skipped.
func (r *roster) reachable(id uuid.UUID) bool {
	p := r.players[id]
	return p != nil && p.Alive() && !r.skipped[id]
}

// alive returns living players in seating order.
func (r *roster) alive() []uuid.UUID {
	var out []uuid.UUID
	for _, id := range r.order {
		if r.players[id].Alive() {
			out = append(out, id)
		}
	}
	return out
}

// aliveFrom returns living players in seating order rotated so that `from`
// (or the first living player after it) comes first.
func (r *roster) aliveFrom(from uuid.UUID) []uuid.UUID {
	alive := r.alive()
	for i, id := range alive {
		if id == from {
			return append(alive[i:], alive[:i]...)
		}
	}
	return alive
}

// nextAlive returns the next living, non-skipped player after the given one
// in seating order. Reports false when nobody else qualifies.
func (r *roster) nextAlive(after uuid.UUID) (uuid.UUID, bool) {
	start := -1
	for i, id := range r.order {
		if id == after {
			start = i
			break
		}
	}
	if start == -1 {
		return uuid.Nil, false
	}
	for step := 1; step < len(r.order); step++ {
		id := r.order[(start+step)%len(r.order)]
		p := r.players[id]
		if p.Alive() && !r.skipped[id] {
			return id, true
		}
	}
	return uuid.Nil, false
}
