package application

import (
	"math/rand/v2"

	"github.com/bnema/reaction-tally/internal/ports"
)

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

func (globalRandom) Uint64() uint64 { return rand.Uint64() }

func orGlobalRandom(rng ports.Random) ports.Random {
	if rng == nil {
		return globalRandom{}
	}
	return rng
}
