// internal/game/drink.go
package game

import (
	"math/rand"
	"strings"
)

// DrinkCard is either a *Drink or a DrinkEvent.
type DrinkCard interface {
	drinkCardName() string
}

// Drink modifies the consumer's alcohol content and fortitude. Modifiers
// are functions of the consumer, since some brews treat orcs and trolls
// differently.
type Drink struct {
	displayName string
	alcoholFn   func(p *Player) int
	fortitudeFn func(p *Player) int
	hasChaser   bool
}

func (d *Drink) drinkCardName() string { return d.displayName }

func (d *Drink) alcoholModifier(p *Player) int   { return d.alcoholFn(p) }
func (d *Drink) fortitudeModifier(p *Player) int { return d.fortitudeFn(p) }

func simpleDrink(displayName string, alcohol, fortitude int, hasChaser bool) *Drink {
	return &Drink{
		displayName: displayName,
		alcoholFn:   func(*Player) int { return alcohol },
		fortitudeFn: func(*Player) int { return fortitude },
		hasChaser:   hasChaser,
	}
}

func orcishRotgut() *Drink {
	return &Drink{
		displayName: "Orcish Rotgut",
		alcoholFn: func(p *Player) int {
			if p.character.isOrc() {
				return 2
			}
			return 0
		},
		fortitudeFn: func(p *Player) int {
			if p.character.isOrc() {
				return 0
			}
			return -2
		},
	}
}

func trollSwill() *Drink {
	return &Drink{
		displayName: "Troll Swill",
		alcoholFn: func(p *Player) int {
			if p.character.isTroll() {
				return 2
			}
			return 1
		},
		fortitudeFn: func(p *Player) int {
			if p.character.isTroll() {
				return 0
			}
			return -1
		},
	}
}

// DrinkEvent interrupts normal drink service for everyone at the table.
type DrinkEvent string

const (
	DrinkEventDrinkingContest DrinkEvent = "drinkingContest"
	DrinkEventRoundOnTheHouse DrinkEvent = "roundOnTheHouse"
)

func (e DrinkEvent) drinkCardName() string { return string(e) }

// newDrinkDeck builds one full shuffled drink-me pile.
func newDrinkDeck(rng *rand.Rand) *Pile[DrinkCard] {
	return NewPile([]DrinkCard{
		simpleDrink("Dark Ale", 1, 0, false),
		simpleDrink("Dark Ale", 1, 0, false),
		simpleDrink("Dark Ale", 1, 0, false),
		simpleDrink("Dark Ale with a Chaser", 1, 0, true),
		simpleDrink("Dirty Dishwater", 0, -1, false),
		simpleDrink("Dragon Breath Ale", 4, 0, false),
		simpleDrink("Dragon Breath Ale", 4, 0, false),
		simpleDrink("Dragon Breath Ale", 4, 0, false),
		simpleDrink("Elven Wine", 3, 0, false),
		simpleDrink("Elven Wine", 3, 0, false),
		simpleDrink("Elven Wine with a Chaser", 3, 0, true),
		simpleDrink("Holy Water", 0, 2, false),
		simpleDrink("Light Ale", 1, 0, false),
		simpleDrink("Light Ale", 1, 0, false),
		simpleDrink("Light Ale", 1, 0, false),
		simpleDrink("Light Ale with a Chaser", 1, 0, true),
		simpleDrink("Light Ale with a Chaser", 1, 0, true),
		simpleDrink("Wine", 2, 0, false),
		simpleDrink("Wine", 2, 0, false),
		simpleDrink("Wine", 2, 0, false),
		simpleDrink("Wine with a Chaser", 2, 0, true),
		simpleDrink("Wizard's Brew", 2, 2, false),
		simpleDrink("Water", 0, 0, false),
		simpleDrink("We're Cutting You Off!", -1, 0, false),
		orcishRotgut(),
		trollSwill(),
		DrinkEventDrinkingContest,
		DrinkEventDrinkingContest,
		DrinkEventRoundOnTheHouse,
		DrinkEventRoundOnTheHouse,
	}, rng)
}

// ServedDrink is one serving: a drink plus any chasers pulled with it, and
// any cards revealed along the way that go straight to discard unconsumed.
type ServedDrink struct {
	drinks  []*Drink
	skipped []DrinkCard
}

func (s *ServedDrink) displayName() string {
	names := make([]string, len(s.drinks))
	for i, d := range s.drinks {
		names[i] = d.displayName
	}
	return strings.Join(names, " + ")
}

func (s *ServedDrink) alcoholModifier(p *Player) int {
	total := 0
	for _, d := range s.drinks {
		total += d.alcoholModifier(p)
	}
	return total
}

func (s *ServedDrink) fortitudeModifier(p *Player) int {
	total := 0
	for _, d := range s.drinks {
		total += d.fortitudeModifier(p)
	}
	return total
}

// consume applies the whole serving to the player at once.
func (s *ServedDrink) consume(p *Player) {
	p.changeAlcoholContent(s.alcoholModifier(p))
	p.changeFortitude(s.fortitudeModifier(p))
}

// discardInto returns every card in the serving to a drink discard pile.
func (s *ServedDrink) discardInto(pile *Pile[DrinkCard]) {
	for _, d := range s.drinks {
		pile.Discard(d)
	}
	for _, c := range s.skipped {
		pile.Discard(c)
	}
}

// revealDrink draws the next drink card. A chaser keeps pulling until the
// serving ends in a chaser-free drink; an event revealed mid-chaser is set
// aside for discard. Reports a DrinkEvent when one is drawn first, and
// ok=false when the pile is completely empty.
func revealDrink(pile *Pile[DrinkCard]) (served *ServedDrink, event DrinkEvent, ok bool) {
	card, drawn := pile.Draw()
	if !drawn {
		return nil, "", false
	}
	if ev, isEvent := card.(DrinkEvent); isEvent {
		return nil, ev, true
	}
	served = &ServedDrink{drinks: []*Drink{card.(*Drink)}}
	for served.drinks[len(served.drinks)-1].hasChaser {
		next, drawn := pile.Draw()
		if !drawn {
			break
		}
		if ev, isEvent := next.(DrinkEvent); isEvent {
			served.skipped = append(served.skipped, ev)
			break
		}
		served.drinks = append(served.drinks, next.(*Drink))
	}
	return served, "", true
}

// revealDrinkSkippingEvents keeps revealing until a drink comes up; events
// in the way join the serving's discard set.
func revealDrinkSkippingEvents(pile *Pile[DrinkCard]) (*ServedDrink, bool) {
	var skipped []DrinkCard
	for {
		served, event, ok := revealDrink(pile)
		if !ok {
			return nil, false
		}
		if served != nil {
			served.skipped = append(served.skipped, skipped...)
			return served, true
		}
		skipped = append(skipped, event)
	}
}

// revealDrinkEventAsEmpty is the drinking-contest draw: an event counts as
// an empty serving (zero alcohol) that still must be put down in front of
// the player.
func revealDrinkEventAsEmpty(pile *Pile[DrinkCard]) (*ServedDrink, bool) {
	served, event, ok := revealDrink(pile)
	if !ok {
		return nil, false
	}
	if served == nil {
		return &ServedDrink{skipped: []DrinkCard{event}}, true
	}
	return served, true
}
