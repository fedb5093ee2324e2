package words

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testList = []string{
	"apple", "mountain", "river", "spaceship", "library",
	"puzzle", "dragon", "forest", "guitar", "umbrella",
}

func TestBank_Draw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		wantLen int
	}{
		{name: "three", n: 3, wantLen: 3},
		{name: "one", n: 1, wantLen: 1},
		{name: "exact size", n: len(testList), wantLen: len(testList)},
		{name: "more than size", n: 50, wantLen: len(testList)},
		{name: "zero", n: 0, wantLen: 0},
		{name: "negative", n: -2, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bank := NewBank(testList)
			got := bank.Draw(tt.n)

			assert.Len(t, got, tt.wantLen)
			seen := make(map[string]bool)
			for _, w := range got {
				assert.False(t, seen[w], "duplicate word %q", w)
				seen[w] = true
				assert.Contains(t, testList, w)
			}
		})
	}
}

func TestBank_DrawIsRandomButSeedable(t *testing.T) {
	t.Parallel()

	a := NewBankWithRand(testList, rand.New(rand.NewPCG(1, 2)))
	b := NewBankWithRand(testList, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a.Draw(5), b.Draw(5))

	// Over many draws every word should show up at least once.
	bank := NewBankWithRand(testList, rand.New(rand.NewPCG(3, 4)))
	counts := make(map[string]int)
	for range 500 {
		for _, w := range bank.Draw(3) {
			counts[w]++
		}
	}
	assert.Len(t, counts, len(testList))
}

func TestNewBank_DropsBlankAndDuplicates(t *testing.T) {
	t.Parallel()

	bank := NewBank([]string{"  Apple ", "apple", "", "   ", "river"})
	assert.Equal(t, 2, bank.Len())
	assert.Equal(t, "Apple", bank.Default())
	assert.ElementsMatch(t, []string{"Apple", "river"}, bank.Draw(10))
}

func TestBank_Empty(t *testing.T) {
	t.Parallel()

	bank := NewBank(nil)
	assert.Empty(t, bank.Draw(3))
	assert.Equal(t, "apple", bank.Default())
}
