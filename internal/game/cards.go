// internal/game/cards.go
//
// Card definitions. Card content is data: each factory returns an immutable
// definition wired to the engine through the hooks on RootCard/InterruptCard.
package game

import "github.com/google/uuid"

func gamblingImInCard() *RootCard {
	return &RootCard{
		name:         "Gambling? I'm in!",
		targets:      TargetOtherGamblers,
		gamblingCard: true,
		signal:       &InterruptSignal{Kind: InterruptAnte},
		canPlayFn: func(owner uuid.UUID, e *engine) bool {
			if e.gambling.inProgress() {
				return e.gambling.isTurn(owner) && !e.gambling.round.cheatRequired
			}
			return e.canPlayActionCard(owner)
		},
		prePlay: func(owner uuid.UUID, e *engine) bool {
			if e.gambling.inProgress() {
				// Taking back control of a running round. No new antes.
				e.gambling.takeControl(owner, false)
				return false
			}
			e.gambling.start(owner, e.roster.aliveFrom(owner))
			e.gambling.anteUp(owner)
			return true
		},
		apply: func(owner, target uuid.UUID, e *engine) {
			e.gambling.ante(target)
		},
	}
}

func iRaiseCard() *RootCard {
	return &RootCard{
		name:         "I raise!",
		targets:      TargetAllGamblers,
		gamblingCard: true,
		signal:       &InterruptSignal{Kind: InterruptAnte},
		canPlayFn: func(owner uuid.UUID, e *engine) bool {
			return e.gambling.inProgress() &&
				e.gambling.isTurn(owner) &&
				!e.gambling.round.cheatRequired
		},
		prePlay: func(owner uuid.UUID, e *engine) bool {
			e.gambling.takeControl(owner, false)
			return true
		},
		apply: func(owner, target uuid.UUID, e *engine) {
			e.gambling.ante(target)
		},
	}
}

func winningHandCard() *RootCard {
	return &RootCard{
		name:         "Winning hand!",
		targets:      TargetSelf,
		gamblingCard: true,
		canPlayFn: func(owner uuid.UUID, e *engine) bool {
			return e.gambling.inProgress() &&
				e.gambling.isTurn(owner) &&
				!e.gambling.round.cheatRequired
		},
		prePlay: func(owner uuid.UUID, e *engine) bool {
			// Control can now only be wrestled back with a cheat card.
			e.gambling.takeControl(owner, true)
			return false
		},
	}
}

func gamblingCheatCard(description string) *RootCard {
	return &RootCard{
		name:         "Cheating!",
		description:  description,
		targets:      TargetSelf,
		gamblingCard: true,
		canPlayFn: func(owner uuid.UUID, e *engine) bool {
			return e.gambling.inProgress() && e.gambling.isTurn(owner)
		},
		prePlay: func(owner uuid.UUID, e *engine) bool {
			e.gambling.takeControl(owner, false)
			return false
		},
	}
}

func changeOtherPlayerFortitudeCard(description string, amount int) *RootCard {
	return &RootCard{
		name:       description,
		targets:    TargetSingleOther,
		actionCard: true,
		signal:     &InterruptSignal{Kind: InterruptDirectedCard, AffectsFortitude: true},
		apply: func(owner, target uuid.UUID, e *engine) {
			e.roster.player(target).changeFortitude(amount)
		},
	}
}

func changeAllOtherPlayerFortitudeCard(description string, amount int) *RootCard {
	return &RootCard{
		name:       description,
		targets:    TargetAllOthers,
		actionCard: true,
		signal:     &InterruptSignal{Kind: InterruptDirectedCard, AffectsFortitude: true},
		apply: func(owner, target uuid.UUID, e *engine) {
			e.roster.player(target).changeFortitude(amount)
		},
	}
}

func gainFortitudeAnytimeCard(description string, amount int) *RootCard {
	return &RootCard{
		name:    description,
		targets: TargetSelf,
		anytime: true,
		apply: func(owner, target uuid.UUID, e *engine) {
			e.roster.player(owner).changeFortitude(amount)
		},
	}
}

func wenchBringSomeDrinksForMyFriendsCard() *RootCard {
	return &RootCard{
		name:       "Wench, bring some drinks for my friends!",
		targets:    TargetSelf,
		actionCard: true,
		apply: func(owner, target uuid.UUID, e *engine) {
			e.turn.drinksToOrder += 2
		},
	}
}

func ohIGuessTheWenchThoughtThatWasHerTipCard() *RootCard {
	return &RootCard{
		name:       "Oh, I guess the wench thought that was her tip...",
		targets:    TargetSingleOther,
		actionCard: true,
		signal:     &InterruptSignal{Kind: InterruptDirectedCard},
		apply: func(owner, target uuid.UUID, e *engine) {
			e.roster.player(target).changeGold(-1)
		},
	}
}

func ignoreRootCardAffectingFortitudeCard(description string) *InterruptCard {
	return &InterruptCard{
		name: description,
		answers: func(sig InterruptSignal) bool {
			return sig.AffectsFortitude && !sig.IsNegation &&
				(sig.Kind == InterruptDirectedCard || sig.Kind == InterruptReaction)
		},
		outcome: CancelIgnore,
		signal:  InterruptSignal{Kind: InterruptReaction, AffectsFortitude: true},
	}
}

func iDontThinkSoCard() *InterruptCard {
	return &InterruptCard{
		name: "I don't think so!",
		answers: func(sig InterruptSignal) bool {
			return sig.Kind == InterruptReaction && !sig.IsNegation
		},
		outcome: CancelNegate,
		signal:  InterruptSignal{Kind: InterruptReaction, IsNegation: true},
	}
}

func ignoreDrinkCard(description string) *InterruptCard {
	return &InterruptCard{
		name: description,
		answers: func(sig InterruptSignal) bool {
			return sig.Kind == InterruptDrink
		},
		outcome: CancelIgnore,
		signal:  InterruptSignal{Kind: InterruptReaction},
	}
}

func leaveGamblingRoundInsteadOfAnteingCard(description string) *InterruptCard {
	return &InterruptCard{
		name: description,
		answers: func(sig InterruptSignal) bool {
			return sig.Kind == InterruptAnte
		},
		outcome: CancelIgnore,
		signal:  InterruptSignal{Kind: InterruptReaction},
		onResolve: func(owner uuid.UUID, rootSig InterruptSignal, e *engine) {
			e.gambling.leave(owner)
		},
	}
}

// combinedInterruptCard merges two reactions into one card; whichever half
// answers the pending item is the half that takes effect.
func combinedInterruptCard(name string, a, b *InterruptCard) *InterruptCard {
	return &InterruptCard{
		name: name,
		answers: func(sig InterruptSignal) bool {
			return a.answers(sig) || b.answers(sig)
		},
		// Both halves of every combined card in the box are Ignore-style.
		outcome: CancelIgnore,
		signal:  InterruptSignal{Kind: InterruptReaction},
		onResolve: func(owner uuid.UUID, rootSig InterruptSignal, e *engine) {
			half := b
			if a.answers(rootSig) {
				half = a
			}
			if half.onResolve != nil {
				half.onResolve(owner, rootSig, e)
			}
		},
	}
}
