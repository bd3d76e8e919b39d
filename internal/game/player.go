// internal/game/player.go
package game

import "math/rand"

const (
	handLimit    = 7
	fortitudeMax = 20
	alcoholMax   = 20
)

// Player is one seat's in-game state. It owns the character deck piles,
// the hand, and the player's personal drink-me pile.
type Player struct {
	character      Character
	gold           int
	fortitude      int
	alcoholContent int
	dead           bool

	hand    []Card
	deck    *Pile[Card]
	drinkMe *Pile[DrinkCard]
}

func newPlayer(character Character, gold int, rng *rand.Rand) *Player {
	p := &Player{
		character: character,
		gold:      gold,
		fortitude: fortitudeMax,
		deck:      NewPile(character.createDeck(), rng),
		drinkMe:   newDrinkDeck(rng),
	}
	p.drawToFull()
	return p
}

func (p *Player) Alive() bool { return !p.dead }

// drawToFull refills the hand up to the hand limit.
func (p *Player) drawToFull() {
	for len(p.hand) < handLimit {
		card, ok := p.deck.Draw()
		if !ok {
			return
		}
		p.hand = append(p.hand, card)
	}
}

// popHand removes and returns the card at the given hand index.
func (p *Player) popHand(i int) (Card, bool) {
	if i < 0 || i >= len(p.hand) {
		return nil, false
	}
	card := p.hand[i]
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	return card, true
}

// returnToHand reinserts a card at its original index after a rejected play.
func (p *Player) returnToHand(card Card, i int) {
	if i < 0 || i > len(p.hand) {
		i = len(p.hand)
	}
	p.hand = append(p.hand[:i], append([]Card{card}, p.hand[i:]...)...)
}

// discardCard puts a spent card on the player's own discard pile.
func (p *Player) discardCard(card Card) {
	p.deck.Discard(card)
}

func (p *Player) changeFortitude(amount int) {
	p.fortitude = clampStat(p.fortitude + amount)
	p.refreshVitals()
}

func (p *Player) changeAlcoholContent(amount int) {
	p.alcoholContent = clampStat(p.alcoholContent + amount)
	p.refreshVitals()
}

func (p *Player) changeGold(amount int) {
	p.gold += amount
	p.refreshVitals()
}

// refreshVitals marks the player out of the game when they pass out (alcohol
// content reaches fortitude, which covers fortitude hitting zero) or run out
// of gold. Death is one-way.
func (p *Player) refreshVitals() {
	if p.dead {
		return
	}
	if p.alcoholContent >= p.fortitude || p.gold <= 0 {
		p.dead = true
	}
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > fortitudeMax {
		return fortitudeMax
	}
	return v
}

// startingGold scales with table size.
func startingGold(playerCount int) int {
	switch {
	case playerCount <= 2:
		return 8
	case playerCount <= 6:
		return 10
	default:
		return 12
	}
}
