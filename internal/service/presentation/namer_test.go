package presentation

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameGenerator_ProjectName(t *testing.T) {
	components := DefaultNameComponents()
	prefixes := append(append([]string(nil), components.AIPrefixes...), components.SolanaPrefixes...)

	g := NewNameGenerator(components, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 50; i++ {
		name, ticker := g.ProjectName()

		assert.True(t, slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(name, p) }), name)
		assert.True(t, slices.ContainsFunc(components.Suffixes, func(s string) bool { return strings.HasSuffix(name, s) }), name)
		assert.Equal(t, "$"+strings.ToUpper(name[:3]), ticker)
	}
}

func TestNameGenerator_SameSeedSameNames(t *testing.T) {
	a := NewNameGenerator(DefaultNameComponents(), rand.New(rand.NewPCG(7, 7)))
	b := NewNameGenerator(DefaultNameComponents(), rand.New(rand.NewPCG(7, 7)))

	for i := 0; i < 10; i++ {
		nameA, tickerA := a.ProjectName()
		nameB, tickerB := b.ProjectName()
		assert.Equal(t, nameA, nameB)
		assert.Equal(t, tickerA, tickerB)
	}
}

func TestNameGenerator_ShortNames(t *testing.T) {
	g := NewNameGenerator(NameComponents{
		AIPrefixes:     []string{"x"},
		SolanaPrefixes: []string{"y"},
		Suffixes:       []string{"z"},
	}, nil)

	name, ticker := g.ProjectName()
	assert.Len(t, name, 2)
	assert.Equal(t, "$"+strings.ToUpper(name), ticker)
}

func TestNameGenerator_UsesBothPools(t *testing.T) {
	g := NewNameGenerator(NameComponents{
		AIPrefixes:     []string{"Neural"},
		SolanaPrefixes: []string{"Sol"},
		Suffixes:       []string{"Labs"},
	}, rand.New(rand.NewPCG(3, 4)))

	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		name, _ := g.ProjectName()
		seen[name] = true
	}
	assert.Equal(t, map[string]bool{"NeuralLabs": true, "SolLabs": true}, seen)
}
