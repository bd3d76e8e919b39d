// internal/game/interrupt.go
package game

import "github.com/google/uuid"

// playedInterrupt is a reaction card sitting on a session, waiting to
// resolve, together with who played it.
type playedInterrupt struct {
	card  *InterruptCard
	owner uuid.UUID
}

// interruptSession is the root's pending effect on one target, plus the
// reactions stacked on top of it.
type interruptSession struct {
	target    uuid.UUID
	reactions []playedInterrupt
	// exclusive sessions only ever offer eligibility to the target; one
	// pass or play resolves them.
	exclusive bool
}

// interruptEntry is one item on the interrupt stack: a root (a played root
// card or a served drink) and its target sessions, resolved in order.
type interruptEntry struct {
	// Exactly one of rootCard / rootDrink is set.
	rootCard  *RootCard
	rootDrink *ServedDrink
	rootOwner uuid.UUID // card player, or the drink's drinker
	sessions  []*interruptSession
	// turn is who currently holds interrupt eligibility.
	turn uuid.UUID
}

// currentSession is always the first remaining session.
func (en *interruptEntry) currentSession() *interruptSession {
	return en.sessions[0]
}

// currentSignal is what a reaction played right now would answer: the top
// reaction of the current session, or the root itself.
func (en *interruptEntry) currentSignal() InterruptSignal {
	s := en.currentSession()
	if n := len(s.reactions); n > 0 {
		return s.reactions[n-1].card.signal
	}
	return en.rootSignal()
}

func (en *interruptEntry) rootSignal() InterruptSignal {
	if en.rootCard != nil {
		return *en.rootCard.signal
	}
	return InterruptSignal{Kind: InterruptDrink}
}

// lastActor is the player whose play is currently on top: eligibility
// cycling back to them resolves the session.
func (en *interruptEntry) lastActor() uuid.UUID {
	s := en.currentSession()
	if n := len(s.reactions); n > 0 {
		return s.reactions[n-1].owner
	}
	return en.rootOwner
}

// interruptStack is a LIFO of entries. Entries pushed while another is
// resolving drain depth-first before the outer entry resumes.
type interruptStack struct {
	entries []*interruptEntry
}

func (st *interruptStack) inProgress() bool { return len(st.entries) > 0 }

func (st *interruptStack) top() *interruptEntry {
	if len(st.entries) == 0 {
		return nil
	}
	return st.entries[len(st.entries)-1]
}

func (st *interruptStack) push(en *interruptEntry) {
	st.entries = append(st.entries, en)
}

func (st *interruptStack) pop() *interruptEntry {
	en := st.top()
	st.entries = st.entries[:len(st.entries)-1]
	return en
}

func (st *interruptStack) clear() { st.entries = nil }

// isTurnToInterrupt reports whether the player holds eligibility on the
// current (top) entry.
func (st *interruptStack) isTurnToInterrupt(id uuid.UUID) bool {
	en := st.top()
	return en != nil && en.turn == id
}

// newCardEntry builds an entry for an interruptible root card, one session
// per target. Multi-target sessions are exclusive: only the targeted player
// may react to their own session.
func newCardEntry(card *RootCard, owner uuid.UUID, targets []uuid.UUID) *interruptEntry {
	en := &interruptEntry{rootCard: card, rootOwner: owner}
	// Ante sessions are always exclusive: only the gambler being asked to
	// ante can answer, however many of them there are.
	exclusive := len(targets) > 1 || card.gamblingCard
	for _, t := range targets {
		en.sessions = append(en.sessions, &interruptSession{target: t, exclusive: exclusive})
	}
	en.turn = targets[0]
	return en
}

// newDrinkEntry builds an entry for a served drink about to be consumed by
// its drinker. Eligibility starts with the drinker and cycles the table.
func newDrinkEntry(drink *ServedDrink, drinker uuid.UUID) *interruptEntry {
	return &interruptEntry{
		rootDrink: drink,
		rootOwner: drinker,
		sessions:  []*interruptSession{{target: drinker}},
		turn:      drinker,
	}
}

// newContestDrinkEntry is a drinking-contest draw: only the drinker may
// react before the serving is knocked back.
func newContestDrinkEntry(drink *ServedDrink, drinker uuid.UUID) *interruptEntry {
	return &interruptEntry{
		rootDrink: drink,
		rootOwner: drinker,
		sessions:  []*interruptSession{{target: drinker, exclusive: true}},
		turn:      drinker,
	}
}

// newSharedDrinkEntry serves one drink to several players at once, each
// behind their own exclusive session. The drawer owns the drink cards.
func newSharedDrinkEntry(drink *ServedDrink, drawer uuid.UUID, targets []uuid.UUID) *interruptEntry {
	en := &interruptEntry{rootDrink: drink, rootOwner: drawer}
	for _, t := range targets {
		en.sessions = append(en.sessions, &interruptSession{target: t, exclusive: true})
	}
	en.turn = targets[0]
	return en
}
