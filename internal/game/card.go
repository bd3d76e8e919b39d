// internal/game/card.go
package game

import "github.com/google/uuid"

// TargetStyle describes who a root card affects when played.
type TargetStyle int

const (
	// TargetSelf applies to the owner only.
	TargetSelf TargetStyle = iota
	// TargetSingleOther requires an explicit target, never the owner.
	TargetSingleOther
	// TargetAllOthers hits every other living player in seating order.
	TargetAllOthers
	// TargetAllGamblers hits every active gambler starting with the owner.
	TargetAllGamblers
	// TargetOtherGamblers hits every active gambler except the owner.
	TargetOtherGamblers
)

// InterruptKind classifies what a pending item is, so reaction cards can
// state what they are able to answer.
type InterruptKind int

const (
	// InterruptAnte precedes a forced gambling ante.
	InterruptAnte InterruptKind = iota
	// InterruptDirectedCard precedes a root card aimed at a single player.
	InterruptDirectedCard
	// InterruptReaction precedes an already-played reaction card.
	InterruptReaction
	// InterruptDrink precedes a served drink being consumed.
	InterruptDrink
)

// InterruptSignal is what the player holding interrupt eligibility sees on
// top of the current session: the thing their reaction would answer.
type InterruptSignal struct {
	Kind             InterruptKind
	AffectsFortitude bool
	IsNegation       bool
}

// CancelOutcome is the effect a resolved reaction has on the card beneath it.
type CancelOutcome int

const (
	// CancelNone lets the card beneath take effect.
	CancelNone CancelOutcome = iota
	// CancelNegate voids the card beneath entirely; against a root card this
	// voids the whole play, every remaining session included.
	CancelNegate
	// CancelIgnore voids the root's effect for the current session only.
	CancelIgnore
)

// Card is either a *RootCard or an *InterruptCard. Definitions are immutable
// and shared by reference between decks, hands and the interrupt stack.
type Card interface {
	Name() string
	Description() string
	IsDirected() bool
}

// RootCard initiates an action: straight effects, gambling moves, and
// anything another player may want to interrupt.
type RootCard struct {
	name        string
	description string
	targets     TargetStyle

	// actionCard cards consume the owner's Action phase when they resolve.
	actionCard bool
	// gamblingCard cards follow gambling-round eligibility instead.
	gamblingCard bool
	// anytime cards may be played whenever the owner is alive, even while
	// an interrupt is pending.
	anytime bool

	// signal, when non-nil, makes the play interruptible and is what gets
	// presented to eligible reactors.
	signal *InterruptSignal

	// canPlayFn adds a card-specific precondition on top of the standard
	// phase/turn checks.
	canPlayFn func(owner uuid.UUID, e *engine) bool
	// prePlay runs before targeting; returning false means the play is
	// already fully handled (no sessions, no apply).
	prePlay func(owner uuid.UUID, e *engine) bool
	// apply is the card's effect on one target.
	apply func(owner, target uuid.UUID, e *engine)
}

func (c *RootCard) Name() string        { return c.name }
func (c *RootCard) Description() string { return c.description }
func (c *RootCard) IsDirected() bool    { return c.targets == TargetSingleOther }

// InterruptCard reacts to a pending item on the interrupt stack.
type InterruptCard struct {
	name        string
	description string

	// answers reports whether this card can legally interrupt the given
	// pending item.
	answers func(sig InterruptSignal) bool
	// outcome is applied to the card beneath when this card resolves.
	outcome CancelOutcome
	// signal is what this card presents to the next eligible reactor.
	signal InterruptSignal
	// onResolve runs when the card resolves uncancelled. rootSig is the
	// signal of the session's root item.
	onResolve func(owner uuid.UUID, rootSig InterruptSignal, e *engine)
}

func (c *InterruptCard) Name() string        { return c.name }
func (c *InterruptCard) Description() string { return c.description }
func (c *InterruptCard) IsDirected() bool    { return false }
