package generator

import (
	"encoding/binary"
	"io"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

// Fragments supplies the descriptive text entities are named from.
//
// [*gofakeit.Faker] satisfies it.
type Fragments interface {
	Word() string
	Company() string
	Color() string
	DomainName() string
}

// Source holds every random stream of a run. All of them
// are derived from one seed, so a seed replays the whole dataset.
//
// A Source is not safe for concurrent use.
type Source struct {
	seed uint64
	rnd  *rand.Rand
	fake Fragments
	ids  io.Reader
}

const (
	pcgStream  = 0x9e3779b97f4a7c15
	fakeStream = 0xbf58476d1ce4e5b9
)

// NewSource builds every stream from seed. Zero is a seed like any other.
func NewSource(seed uint64) *Source {
	fake := gofakeit.NewFaker(rand.NewPCG(seed^fakeStream, seed), false)
	return NewSourceWith(seed, fake)
}

// NewSourceWith is like [NewSource] with a custom fragments supplier.
func NewSourceWith(seed uint64, fake Fragments) *Source {
	return &Source{
		seed: seed,
		rnd:  rand.New(rand.NewPCG(seed, seed^pcgStream)),
		fake: fake,
		ids:  rand.NewChaCha8(chachaKey(seed)),
	}
}

// RandomSeed draws a fresh seed for runs that were not given one.
func RandomSeed() uint64 {
	return rand.Uint64()
}

func (s *Source) Seed() uint64 {
	return s.seed
}

func chachaKey(seed uint64) (key [32]byte) {
	for i := range 4 {
		binary.LittleEndian.PutUint64(key[i*8:], seed+uint64(i))
	}
	return key
}
