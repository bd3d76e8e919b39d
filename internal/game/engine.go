// internal/game/engine.go
//
// engine is the running-game state machine. It is not safe for concurrent
// use; Session serializes access to it.
package game

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// drinkEventState tracks an in-flight drink event between interrupt drains.
type drinkEventState struct {
	name DrinkEvent
	// remaining holds the players still in a drinking contest.
	remaining []uuid.UUID
}

type engine struct {
	roster     *roster
	gambling   *gamblingState
	interrupts *interruptStack
	turn       *turnInfo
	drinkEvent *drinkEventState
	rng        *rand.Rand

	finished  bool
	hasWinner bool
	winner    uuid.UUID
}

func newEngine(seats []Seat, rng *rand.Rand) *engine {
	r := newRoster(seats, rng)
	return &engine{
		roster:     r,
		gambling:   &gamblingState{roster: r},
		interrupts: &interruptStack{},
		turn:       newTurn(r.order[0]),
		rng:        rng,
	}
}

func (e *engine) running() bool { return !e.finished }

// canPlayActionCard is the standard action-card precondition: the player's
// own Action phase with nothing else pending.
func (e *engine) canPlayActionCard(p uuid.UUID) bool {
	return e.running() &&
		!e.interrupts.inProgress() &&
		!e.gambling.inProgress() &&
		e.turn.isPlayerTurn(p) &&
		e.turn.phase == PhaseAction
}

// checkGameEnd finishes the game once at most one player is left standing.
func (e *engine) checkGameEnd() {
	if e.finished {
		return
	}
	alive := e.roster.alive()
	if len(alive) > 1 {
		return
	}
	e.finished = true
	if len(alive) == 1 {
		e.hasWinner = true
		e.winner = alive[0]
	}
	e.interrupts.clear()
	e.gambling.round = nil
	e.drinkEvent = nil
}

// --- card play ---

func (e *engine) playCard(p uuid.UUID, idx int, target *uuid.UUID) error {
	if !e.running() {
		return NewError(CodeInvalidPhase, "game is not running")
	}
	pl := e.roster.player(p)
	if pl == nil || !pl.Alive() {
		return NewError(CodeCardNotPlayable, "player is out of the game")
	}
	card, ok := pl.popHand(idx)
	if !ok {
		return NewError(CodeIndexOutOfRange, "no card in hand at index %d", idx)
	}
	if err := e.processCard(card, p, target); err != nil {
		pl.returnToHand(card, idx)
		return err
	}
	return nil
}

func (e *engine) processCard(card Card, p uuid.UUID, target *uuid.UUID) error {
	switch c := card.(type) {
	case *InterruptCard:
		if target != nil {
			return NewError(CodeUnexpectedTarget, "reaction cards are never targeted")
		}
		if !e.interrupts.inProgress() {
			return NewError(CodeCardNotPlayable, "nothing is pending to react to")
		}
		if !e.interrupts.isTurnToInterrupt(p) {
			return NewError(CodeNotYourInterrupt, "not holding interrupt eligibility")
		}
		en := e.interrupts.top()
		if !c.answers(en.currentSignal()) {
			return NewError(CodeCardNotInterrupt, "card cannot answer the pending item")
		}
		s := en.currentSession()
		s.reactions = append(s.reactions, playedInterrupt{card: c, owner: p})
		e.advanceInterrupt()
		e.afterStackDrained()
		return nil
	case *RootCard:
		return e.processRootCard(c, p, target)
	}
	return NewError(CodeCardNotPlayable, "unknown card kind")
}

func (e *engine) processRootCard(c *RootCard, p uuid.UUID, target *uuid.UUID) error {
	if c.targets == TargetSingleOther {
		if target == nil {
			return NewError(CodeTargetRequired, "card requires a target player")
		}
		if *target == p {
			return NewError(CodeUnexpectedTarget, "cannot target yourself")
		}
		t := e.roster.player(*target)
		if t == nil || !t.Alive() {
			return NewError(CodeCardNotPlayable, "target is not a living player in this game")
		}
	} else if target != nil {
		return NewError(CodeUnexpectedTarget, "card does not take a target")
	}

	switch {
	case c.anytime:
		// Playable whenever the owner is alive, interrupts included.
	case e.interrupts.inProgress():
		return NewError(CodeCardNotPlayable, "an interrupt is being resolved")
	case c.gamblingCard:
		if c.canPlayFn != nil && !c.canPlayFn(p, e) {
			return NewError(CodeCardNotPlayable, "gambling move is not available")
		}
	default:
		if e.gambling.inProgress() {
			return NewError(CodeCardNotPlayable, "a gambling round is in progress")
		}
		if !e.turn.isPlayerTurn(p) {
			return NewError(CodeNotYourTurn, "not this player's turn")
		}
		if e.turn.phase != PhaseAction {
			return NewError(CodeInvalidPhase, "action cards require the Action phase")
		}
		if c.canPlayFn != nil && !c.canPlayFn(p, e) {
			return NewError(CodeCardNotPlayable, "card cannot be played now")
		}
	}

	if c.prePlay != nil && !c.prePlay(p, e) {
		// The play was fully handled before targeting.
		e.roster.player(p).discardCard(c)
		e.checkGameEnd()
		return nil
	}

	targets := e.computeTargets(c, p, target)
	if c.signal != nil && len(targets) > 0 {
		e.interrupts.push(newCardEntry(c, p, targets))
		return nil
	}

	for _, t := range targets {
		if c.apply != nil {
			c.apply(p, t, e)
		}
	}
	e.roster.player(p).discardCard(c)
	if c.actionCard && e.turn.phase == PhaseAction && e.turn.isPlayerTurn(p) {
		e.endActionPhase()
	}
	e.checkGameEnd()
	return nil
}

func (e *engine) computeTargets(c *RootCard, p uuid.UUID, target *uuid.UUID) []uuid.UUID {
	switch c.targets {
	case TargetSingleOther:
		return []uuid.UUID{*target}
	case TargetAllOthers:
		return e.roster.aliveFrom(p)[1:]
	case TargetAllGamblers:
		return e.gambling.activeFrom(p)
	case TargetOtherGamblers:
		out := e.gambling.activeFrom(p)
		if len(out) > 0 && out[0] == p {
			out = out[1:]
		}
		return out
	default:
		return []uuid.UUID{p}
	}
}

// --- interrupt resolution ---

// advanceInterrupt moves eligibility along after a pass or a played
// reaction, resolving the current session when it has gone all the way
// around (or immediately for exclusive sessions).
func (e *engine) advanceInterrupt() {
	en := e.interrupts.top()
	s := en.currentSession()
	if s.exclusive {
		e.resolveCurrentSession()
		return
	}
	// The cycle ends where the last actor sits; if they have died or been
	// skipped mid-entry it falls back to the session target, and if the
	// target is gone too there is nobody left to wait for.
	stop := en.lastActor()
	if !e.roster.reachable(stop) {
		stop = s.target
	}
	next, ok := e.roster.nextAlive(en.turn)
	if !ok || !e.roster.reachable(stop) || next == stop || next == en.turn {
		e.resolveCurrentSession()
		return
	}
	en.turn = next
}

// resolveCurrentSession unwinds the current session's reactions last-pushed
// first, then applies (or cancels) the root for this session's target.
func (e *engine) resolveCurrentSession() {
	en := e.interrupts.pop()
	s := en.currentSession()
	en.sessions = en.sessions[1:]
	rootSig := en.rootSignal()

	cancel := CancelNone
	for len(s.reactions) > 0 {
		r := s.reactions[len(s.reactions)-1]
		s.reactions = s.reactions[:len(s.reactions)-1]
		if r.card.onResolve != nil {
			r.card.onResolve(r.owner, rootSig, e)
		}
		e.roster.player(r.owner).discardCard(r.card)
		if r.card.outcome == CancelNone {
			continue
		}
		if len(s.reactions) > 0 {
			// The reaction beneath is cancelled: discard it unresolved.
			victim := s.reactions[len(s.reactions)-1]
			s.reactions = s.reactions[:len(s.reactions)-1]
			e.roster.player(victim.owner).discardCard(victim.card)
		} else {
			cancel = r.card.outcome
		}
	}

	switch cancel {
	case CancelNegate:
		// The whole root play is voided, remaining sessions included.
		e.finishEntry(en)
	case CancelIgnore:
		e.skipOrContinueEntry(en)
	default:
		if en.rootCard != nil {
			if en.rootCard.apply != nil {
				en.rootCard.apply(en.rootOwner, s.target, e)
			}
		} else if en.rootDrink != nil {
			en.rootDrink.consume(e.roster.player(s.target))
		}
		e.skipOrContinueEntry(en)
	}
	e.checkGameEnd()
}

// skipOrContinueEntry pushes the entry back for its next session, or
// finishes it when every session has been resolved.
func (e *engine) skipOrContinueEntry(en *interruptEntry) {
	if len(en.sessions) > 0 {
		en.turn = en.sessions[0].target
		e.interrupts.push(en)
		return
	}
	e.finishEntry(en)
}

// finishEntry discards the root and, for action cards, consumes the
// owner's Action phase.
func (e *engine) finishEntry(en *interruptEntry) {
	if en.rootCard != nil {
		e.roster.player(en.rootOwner).discardCard(en.rootCard)
		if en.rootCard.actionCard && e.turn.phase == PhaseAction && e.turn.isPlayerTurn(en.rootOwner) {
			e.endActionPhase()
		}
		return
	}
	en.rootDrink.discardInto(e.roster.player(en.rootOwner).drinkMe)
}

// afterStackDrained runs the deferred work that waits for an empty stack:
// drinking-contest rounds and turn hand-off.
func (e *engine) afterStackDrained() {
	for e.running() && !e.interrupts.inProgress() {
		if e.drinkEvent != nil && e.drinkEvent.name == DrinkEventDrinkingContest {
			e.pruneContestRemaining()
			if len(e.drinkEvent.remaining) > 1 {
				e.runContestRound()
				continue
			}
			e.payoutContest()
			e.checkGameEnd()
			if e.finished {
				return
			}
		}
		e.drinkEvent = nil
		if !e.roster.player(e.turn.playerTurn).Alive() {
			e.startNextPlayerTurn()
		} else if e.turn.phase == PhaseTurnEnd {
			e.startNextPlayerTurn()
		}
		return
	}
}

// --- phases & turns ---

func (e *engine) endActionPhase() {
	e.turn.phase = PhaseDiscardAndDraw
}

func (e *engine) startNextPlayerTurn() {
	e.checkGameEnd()
	if e.finished {
		return
	}
	next, ok := e.roster.nextAlive(e.turn.playerTurn)
	if !ok {
		next = e.turn.playerTurn
	}
	e.turn = newTurn(next)
}

// eligibleDrinkTargets are living players the turn owner has not yet served
// this turn.
func (e *engine) eligibleDrinkTargets(p uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range e.roster.alive() {
		if id != p && !e.turn.ordered[id] {
			out = append(out, id)
		}
	}
	return out
}

// --- discard & draw ---

func (e *engine) discardCardsAndDraw(p uuid.UUID, indices []int) error {
	if !e.running() {
		return NewError(CodeInvalidPhase, "game is not running")
	}
	if e.interrupts.inProgress() {
		return NewError(CodeInvalidPhase, "an interrupt is being resolved")
	}
	if !e.turn.isPlayerTurn(p) {
		return NewError(CodeNotYourTurn, "not this player's turn")
	}
	if e.turn.phase != PhaseDiscardAndDraw {
		return NewError(CodeInvalidPhase, "discarding requires the DiscardAndDraw phase")
	}
	pl := e.roster.player(p)
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(pl.hand) || seen[i] {
			return NewError(CodeIndexOutOfRange, "bad discard index %d", i)
		}
		seen[i] = true
	}
	// Indices refer to the hand as it was when the command was issued, so
	// remove from the highest index down.
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, i := range sorted {
		card, _ := pl.popHand(i)
		pl.discardCard(card)
	}
	pl.drawToFull()
	e.turn.phase = PhaseOrderDrinks
	if len(e.eligibleDrinkTargets(p)) == 0 {
		e.turn.phase = PhaseTurnEnd
		e.startNextPlayerTurn()
	}
	return nil
}

// --- drinks ---

func (e *engine) orderDrink(p, target uuid.UUID) error {
	if !e.running() {
		return NewError(CodeInvalidPhase, "game is not running")
	}
	if e.interrupts.inProgress() {
		return NewError(CodeInvalidPhase, "an interrupt is being resolved")
	}
	if !e.turn.isPlayerTurn(p) {
		return NewError(CodeNotYourTurn, "not this player's turn")
	}
	if e.turn.phase != PhaseOrderDrinks {
		return NewError(CodeInvalidPhase, "drinks are ordered in the OrderDrinks phase")
	}
	if target == p {
		return NewError(CodeUnexpectedTarget, "cannot order a drink for yourself")
	}
	t := e.roster.player(target)
	if t == nil || !t.Alive() {
		return NewError(CodeUnexpectedTarget, "target is not a living player in this game")
	}
	if e.turn.ordered[target] {
		return NewError(CodeAlreadyOrdered, "already ordered a drink for this player this turn")
	}

	e.turn.ordered[target] = true
	e.turn.drinksToOrder--
	if e.turn.drinksToOrder <= 0 {
		// All of this turn's orders are in; the turn ends once service
		// finishes resolving. Running out of eligible targets with drinks
		// to spare is handled by pass instead.
		e.turn.phase = PhaseTurnEnd
	}

	served, event, ok := revealDrink(t.drinkMe)
	switch {
	case !ok:
		// Every drink card the target owns is out in front of somebody.
	case served != nil:
		e.interrupts.push(newDrinkEntry(served, target))
	case event == DrinkEventDrinkingContest:
		t.drinkMe.Discard(event)
		e.drinkEvent = &drinkEventState{
			name:      DrinkEventDrinkingContest,
			remaining: e.roster.alive(),
		}
		e.runContestRound()
	case event == DrinkEventRoundOnTheHouse:
		t.drinkMe.Discard(event)
		e.drinkEvent = &drinkEventState{name: DrinkEventRoundOnTheHouse}
		e.serveRoundOnTheHouse(target)
	}

	e.afterStackDrained()
	return nil
}

// serveRoundOnTheHouse serves the drawer's next plain drink to every other
// living player at once.
func (e *engine) serveRoundOnTheHouse(drawer uuid.UUID) {
	served, ok := revealDrinkSkippingEvents(e.roster.player(drawer).drinkMe)
	if !ok {
		return
	}
	targets := e.roster.aliveFrom(drawer)
	if len(targets) > 0 && targets[0] == drawer {
		targets = targets[1:]
	}
	if len(targets) == 0 {
		served.discardInto(e.roster.player(drawer).drinkMe)
		return
	}
	e.interrupts.push(newSharedDrinkEntry(served, drawer, targets))
}

// runContestRound deals one contest drink to every remaining player. The
// drawn alcohol totals decide who stays in; the servings themselves still
// resolve (and may be reacted to) through the interrupt stack.
func (e *engine) runContestRound() {
	remaining := e.drinkEvent.remaining
	var entries []*interruptEntry
	totals := make(map[uuid.UUID]int, len(remaining))
	maxTotal := 0
	for i, id := range remaining {
		pl := e.roster.player(id)
		served, ok := revealDrinkEventAsEmpty(pl.drinkMe)
		if !ok {
			served = &ServedDrink{}
		}
		total := served.alcoholModifier(pl)
		totals[id] = total
		if i == 0 || total > maxTotal {
			maxTotal = total
		}
		entries = append(entries, newContestDrinkEntry(served, id))
	}
	var stillIn []uuid.UUID
	for _, id := range remaining {
		if totals[id] == maxTotal {
			stillIn = append(stillIn, id)
		}
	}
	e.drinkEvent.remaining = stillIn
	// Push in reverse seat order so the first player's serving resolves
	// first.
	for i := len(entries) - 1; i >= 0; i-- {
		e.interrupts.push(entries[i])
	}
}

func (e *engine) pruneContestRemaining() {
	kept := e.drinkEvent.remaining[:0]
	for _, id := range e.drinkEvent.remaining {
		if e.roster.player(id).Alive() {
			kept = append(kept, id)
		}
	}
	e.drinkEvent.remaining = kept
}

// payoutContest pays the last player standing 1 gold from every other
// living player.
func (e *engine) payoutContest() {
	if len(e.drinkEvent.remaining) != 1 {
		return
	}
	winner := e.drinkEvent.remaining[0]
	w := e.roster.player(winner)
	if !w.Alive() {
		return
	}
	collected := 0
	for _, id := range e.roster.alive() {
		if id == winner {
			continue
		}
		e.roster.player(id).changeGold(-1)
		collected++
	}
	w.changeGold(collected)
}

// --- pass ---

func (e *engine) pass(p uuid.UUID) error {
	if !e.running() {
		return NewError(CodeInvalidPhase, "game is not running")
	}
	pl := e.roster.player(p)
	if pl == nil || !pl.Alive() {
		return NewError(CodeNotYourTurn, "player is out of the game")
	}
	if e.interrupts.inProgress() {
		if !e.interrupts.isTurnToInterrupt(p) {
			return NewError(CodeNotYourInterrupt, "not holding interrupt eligibility")
		}
		e.advanceInterrupt()
		e.afterStackDrained()
		return nil
	}
	if e.gambling.inProgress() {
		if !e.gambling.isTurn(p) {
			return NewError(CodeNotYourTurn, "not this player's gambling turn")
		}
		if e.gambling.pass() {
			e.endGamblingRound()
		}
		return nil
	}
	if e.turn.isPlayerTurn(p) && e.turn.phase == PhaseAction {
		e.endActionPhase()
		return nil
	}
	if e.turn.isPlayerTurn(p) && e.turn.phase == PhaseOrderDrinks &&
		len(e.eligibleDrinkTargets(p)) == 0 {
		e.turn.phase = PhaseTurnEnd
		e.startNextPlayerTurn()
		return nil
	}
	return NewError(CodeNotYourTurn, "nothing to pass on")
}

// endGamblingRound consumes the initiator's Action phase once the pot has
// been paid out.
func (e *engine) endGamblingRound() {
	e.checkGameEnd()
	if e.finished {
		return
	}
	if !e.roster.player(e.turn.playerTurn).Alive() {
		e.startNextPlayerTurn()
		return
	}
	if e.turn.phase == PhaseAction {
		e.endActionPhase()
	}
}

// canPass is the read-only mirror of pass.
func (e *engine) canPass(p uuid.UUID) bool {
	if !e.running() {
		return false
	}
	pl := e.roster.player(p)
	if pl == nil || !pl.Alive() {
		return false
	}
	if e.interrupts.inProgress() {
		return e.interrupts.isTurnToInterrupt(p)
	}
	if e.gambling.inProgress() {
		return e.gambling.isTurn(p)
	}
	if !e.turn.isPlayerTurn(p) {
		return false
	}
	switch e.turn.phase {
	case PhaseAction:
		return true
	case PhaseOrderDrinks:
		return len(e.eligibleDrinkTargets(p)) == 0
	}
	return false
}

// isCardPlayable is the read-only precondition used by view projection.
func (e *engine) isCardPlayable(card Card, p uuid.UUID) bool {
	if !e.running() {
		return false
	}
	pl := e.roster.player(p)
	if pl == nil || !pl.Alive() {
		return false
	}
	switch c := card.(type) {
	case *InterruptCard:
		return e.interrupts.inProgress() &&
			e.interrupts.isTurnToInterrupt(p) &&
			c.answers(e.interrupts.top().currentSignal())
	case *RootCard:
		if c.anytime {
			return true
		}
		if e.interrupts.inProgress() {
			return false
		}
		if c.gamblingCard {
			return c.canPlayFn == nil || c.canPlayFn(p, e)
		}
		return e.canPlayActionCard(p) && (c.canPlayFn == nil || c.canPlayFn(p, e))
	}
	return false
}

// --- disconnect handling ---

// autoPassSkipped passes on behalf of skipped (disconnected) players until
// nobody skipped holds eligibility. The guard bounds pathological cycles.
func (e *engine) autoPassSkipped() {
	for guard := 0; guard < 512 && e.running(); guard++ {
		switch {
		case e.interrupts.inProgress():
			t := e.interrupts.top().turn
			if !e.roster.skipped[t] {
				return
			}
			e.advanceInterrupt()
			e.afterStackDrained()
		case e.gambling.inProgress():
			t := e.gambling.round.turn
			if !e.roster.skipped[t] {
				return
			}
			if e.gambling.pass() {
				e.endGamblingRound()
			}
		case e.roster.skipped[e.turn.playerTurn]:
			next, ok := e.roster.nextAlive(e.turn.playerTurn)
			if !ok {
				return
			}
			e.turn = newTurn(next)
		default:
			return
		}
	}
}

// removePlayer eliminates a player who left the table mid-game.
func (e *engine) removePlayer(id uuid.UUID) {
	pl := e.roster.player(id)
	if pl == nil || e.finished {
		return
	}
	pl.dead = true
	for guard := 0; guard < 64 && e.interrupts.inProgress() && e.interrupts.top().turn == id; guard++ {
		e.advanceInterrupt()
		e.afterStackDrained()
	}
	if e.gambling.inProgress() {
		if e.gambling.round.winning == id {
			// The pot has no owner left; the round fizzles.
			e.gambling.round = nil
			e.endGamblingRound()
		} else {
			e.gambling.leave(id)
		}
	}
	if e.running() && !e.interrupts.inProgress() && e.turn.isPlayerTurn(id) {
		e.startNextPlayerTurn()
	}
	e.checkGameEnd()
}
