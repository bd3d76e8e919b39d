// internal/game/pile.go
package game

import "math/rand"

// Pile is a draw pile paired with its discard pile. Drawing from an empty
// draw side shuffles the discard side back in first, so a pile only runs
// dry when every card in it is held elsewhere.
type Pile[T any] struct {
	draw    []T
	discard []T
	rng     *rand.Rand
}

// NewPile shuffles items into a fresh draw pile.
func NewPile[T any](items []T, rng *rand.Rand) *Pile[T] {
	p := &Pile[T]{draw: append([]T(nil), items...), rng: rng}
	p.shuffle()
	return p
}

func (p *Pile[T]) shuffle() {
	p.rng.Shuffle(len(p.draw), func(i, j int) {
		p.draw[i], p.draw[j] = p.draw[j], p.draw[i]
	})
}

// Draw returns the top card. It reports false only when both sides are empty.
func (p *Pile[T]) Draw() (T, bool) {
	if len(p.draw) == 0 && len(p.discard) > 0 {
		p.draw = p.discard
		p.discard = nil
		p.shuffle()
	}
	if len(p.draw) == 0 {
		var zero T
		return zero, false
	}
	top := p.draw[len(p.draw)-1]
	p.draw = p.draw[:len(p.draw)-1]
	return top, true
}

// Discard places a card on the discard side.
func (p *Pile[T]) Discard(item T) {
	p.discard = append(p.discard, item)
}

func (p *Pile[T]) DrawSize() int    { return len(p.draw) }
func (p *Pile[T]) DiscardSize() int { return len(p.discard) }
