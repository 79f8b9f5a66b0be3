// internal/service/presentation/namer.go

package presentation

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// NameComponents are the word pools a project name is drawn from
type NameComponents struct {
	AIPrefixes     []string
	SolanaPrefixes []string
	Suffixes       []string
}

// DefaultNameComponents returns the stock word pools
func DefaultNameComponents() NameComponents {
	return NameComponents{
		AIPrefixes:     []string{"Neural", "Quantum", "Cyber", "Meta", "Synth", "Auto"},
		SolanaPrefixes: []string{"Sol", "Saga", "Nova", "Luna", "Star"},
		Suffixes:       []string{"AI", "Labs", "Protocol", "Network", "Agents", "Chain"},
	}
}

// NameGenerator produces cosmetic project names and tickers
type NameGenerator struct {
	components NameComponents
	rnd        *rand.Rand
	mu         sync.Mutex
}

// NewNameGenerator creates a generator. A nil rnd uses a randomly seeded source.
func NewNameGenerator(components NameComponents, rnd *rand.Rand) *NameGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &NameGenerator{
		components: components,
		rnd:        rnd,
	}
}

// ProjectName picks a prefix pool by coin flip, then a prefix and a suffix.
// The ticker is "$" plus the first three letters of the name, upper-cased.
func (g *NameGenerator) ProjectName() (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prefixes := g.components.AIPrefixes
	if g.rnd.IntN(2) == 1 {
		prefixes = g.components.SolanaPrefixes
	}

	name := g.pick(prefixes) + g.pick(g.components.Suffixes)

	short := []rune(name)
	if len(short) > 3 {
		short = short[:3]
	}
	return name, "$" + strings.ToUpper(string(short))
}

func (g *NameGenerator) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[g.rnd.IntN(len(pool))]
}
