package main

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// HuntStrategy picks attack cells from a player's target grid. It hunts on
// a checkerboard until it scores a hit, then follows the ship.
//
// Ships never touch, not even diagonally, so every cell diagonal to a hit
// is water and so is every cell beside a run of two or more hits.
type HuntStrategy struct {
	rng *rand.Rand
}

// NewHuntStrategy creates a strategy that breaks ties with rng
func NewHuntStrategy(rng *rand.Rand) *HuntStrategy {
	return &HuntStrategy{rng: rng}
}

type targetGrid [engine.GridSize][engine.GridSize]byte

func parseTarget(rows []string) targetGrid {
	var g targetGrid
	for r := 0; r < engine.GridSize; r++ {
		for c := 0; c < engine.GridSize; c++ {
			g[r][c] = '.'
			if r < len(rows) && c < len(rows[r]) {
				g[r][c] = rows[r][c]
			}
		}
	}
	return g
}

func (g *targetGrid) at(r, c int) byte {
	if r < 0 || r >= engine.GridSize || c < 0 || c >= engine.GridSize {
		return 0
	}
	return g[r][c]
}

func (g *targetGrid) hit(r, c int) bool {
	return g.at(r, c) == 'X'
}

// water marks the unknown cells that cannot hold a ship
func (g *targetGrid) water() [engine.GridSize][engine.GridSize]bool {
	var w [engine.GridSize][engine.GridSize]bool
	mark := func(r, c int) {
		if g.at(r, c) == '.' {
			w[r][c] = true
		}
	}
	for r := 0; r < engine.GridSize; r++ {
		for c := 0; c < engine.GridSize; c++ {
			if !g.hit(r, c) {
				continue
			}
			mark(r-1, c-1)
			mark(r-1, c+1)
			mark(r+1, c-1)
			mark(r+1, c+1)
			if g.hit(r, c-1) || g.hit(r, c+1) {
				mark(r-1, c)
				mark(r+1, c)
			}
			if g.hit(r-1, c) || g.hit(r+1, c) {
				mark(r, c-1)
				mark(r, c+1)
			}
		}
	}
	return w
}

// Next returns the local cell to attack next. It reports false when every
// cell has been attacked.
func (s *HuntStrategy) Next(target []string) (engine.Coord, bool) {
	g := parseTarget(target)
	water := g.water()
	open := func(r, c int) bool {
		return g.at(r, c) == '.' && !water[r][c]
	}

	// cells extending a run of hits come first, then neighbors of lone hits
	var follow, around []engine.Coord
	for r := 0; r < engine.GridSize; r++ {
		for c := 0; c < engine.GridSize; c++ {
			if !g.hit(r, c) {
				continue
			}
			horizontal := g.hit(r, c-1) || g.hit(r, c+1)
			vertical := g.hit(r-1, c) || g.hit(r+1, c)
			for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nr, nc := r+d[0], c+d[1]
				if !open(nr, nc) {
					continue
				}
				cell := engine.Coord{Row: nr, Col: nc}
				switch {
				case horizontal && d[0] == 0, vertical && d[1] == 0:
					follow = append(follow, cell)
				case !horizontal && !vertical:
					around = append(around, cell)
				}
			}
		}
	}
	if len(follow) > 0 {
		return s.pick(follow), true
	}
	if len(around) > 0 {
		return s.pick(around), true
	}

	var parity, rest, unknown []engine.Coord
	for r := 0; r < engine.GridSize; r++ {
		for c := 0; c < engine.GridSize; c++ {
			if g[r][c] != '.' {
				continue
			}
			cell := engine.Coord{Row: r, Col: c}
			unknown = append(unknown, cell)
			if water[r][c] {
				continue
			}
			if (r+c)%2 == 0 {
				parity = append(parity, cell)
			} else {
				rest = append(rest, cell)
			}
		}
	}
	for _, cells := range [][]engine.Coord{parity, rest, unknown} {
		if len(cells) > 0 {
			return s.pick(cells), true
		}
	}
	return engine.Coord{}, false
}

func (s *HuntStrategy) pick(cells []engine.Coord) engine.Coord {
	return cells[s.rng.IntN(len(cells))]
}
