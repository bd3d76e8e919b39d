// internal/game/turn.go
package game

import "github.com/google/uuid"

// TurnPhase is the coarse state of a session. The first two phases exist
// before any engine is running; the remaining four cycle per turn:
// Action -> DiscardAndDraw -> OrderDrinks -> TurnEnd -> Action (next player).
type TurnPhase string

const (
	PhaseCharacterSelection TurnPhase = "characterSelection"
	PhaseAwaitingTurnStart  TurnPhase = "awaitingTurnStart"
	PhaseAction             TurnPhase = "action"
	PhaseDiscardAndDraw     TurnPhase = "discardAndDraw"
	PhaseOrderDrinks        TurnPhase = "orderDrinks"
	PhaseTurnEnd            TurnPhase = "turnEnd"
)

// turnInfo tracks whose turn it is and how far through it they are.
type turnInfo struct {
	playerTurn    uuid.UUID
	phase         TurnPhase
	drinksToOrder int
	// ordered records who already received a drink this turn; at most one
	// order per target per turn.
	ordered map[uuid.UUID]bool
}

func newTurn(player uuid.UUID) *turnInfo {
	return &turnInfo{
		playerTurn:    player,
		phase:         PhaseAction,
		drinksToOrder: 1,
		ordered:       make(map[uuid.UUID]bool),
	}
}

func (t *turnInfo) isPlayerTurn(id uuid.UUID) bool { return t.playerTurn == id }
