// internal/game/pile_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPileDrawsEveryCardOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPile([]int{1, 2, 3, 4, 5}, rng)

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		v, ok := p.Draw()
		require.True(t, ok)
		seen[v] = true
	}
	assert.Len(t, seen, 5)
	_, ok := p.Draw()
	assert.False(t, ok, "both sides empty")
}

func TestPileReshufflesDiscardWhenDrawRunsDry(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPile([]int{1, 2}, rng)

	a, _ := p.Draw()
	b, _ := p.Draw()
	p.Discard(a)
	p.Discard(b)

	assert.Equal(t, 0, p.DrawSize())
	assert.Equal(t, 2, p.DiscardSize())

	v, ok := p.Draw()
	require.True(t, ok)
	assert.Contains(t, []int{a, b}, v)
	assert.Equal(t, 1, p.DrawSize())
	assert.Equal(t, 0, p.DiscardSize())
}

func TestPileOnlyRunsDryWhenAllCardsAreHeld(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewPile([]string{"only"}, rng)

	v, ok := p.Draw()
	require.True(t, ok)
	assert.Equal(t, "only", v)

	// Held elsewhere: nothing to reshuffle.
	_, ok = p.Draw()
	assert.False(t, ok)

	p.Discard(v)
	v, ok = p.Draw()
	require.True(t, ok)
	assert.Equal(t, "only", v)
}
