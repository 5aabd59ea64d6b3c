package engine

import (
	"math/rand/v2"
	"testing"
)

func TestRandomFleet_AlwaysValid(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31+7))
		g := RandomFleet(rng)

		if g.CountOccupied() != FleetCells {
			t.Fatalf("seed %d: expected %d cells, got %d", seed, FleetCells, g.CountOccupied())
		}
		if _, err := Validate(g); err != nil {
			t.Fatalf("seed %d: random fleet rejected: %v\n%v", seed, err, g.Rows())
		}
	}
}

func TestRandomFleet_Seeded(t *testing.T) {
	a := RandomFleet(rand.New(rand.NewPCG(42, 1)))
	b := RandomFleet(rand.New(rand.NewPCG(42, 1)))
	if a != b {
		t.Error("Expected the same seed to produce the same fleet")
	}
}
