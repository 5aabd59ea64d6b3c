package engine

import "math/rand/v2"

const maxPlacementAttempts = 200

// RandomFleet returns a grid holding the required fleet at random straight,
// non-touching positions
func RandomFleet(rng *rand.Rand) Grid {
	for {
		if g, ok := tryRandomFleet(rng); ok {
			if _, err := Validate(g); err == nil {
				return g
			}
		}
	}
}

func tryRandomFleet(rng *rand.Rand) (Grid, bool) {
	var g Grid
	for _, length := range RequiredFleet {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			horizontal := rng.IntN(2) == 0
			row, col := rng.IntN(GridSize), rng.IntN(GridSize)
			placed = placeShip(&g, row, col, length, horizontal)
		}
		if !placed {
			return g, false
		}
	}
	return g, true
}

// placeShip writes a ship only if it fits and every surrounding cell is water
func placeShip(g *Grid, row, col, length int, horizontal bool) bool {
	dr, dc := 0, 1
	if !horizontal {
		dr, dc = 1, 0
	}
	endRow, endCol := row+dr*(length-1), col+dc*(length-1)
	if !(Coord{Row: endRow, Col: endCol}).InBounds() {
		return false
	}
	for r := row - 1; r <= endRow+1; r++ {
		for c := col - 1; c <= endCol+1; c++ {
			if g.occupied(r, c) {
				return false
			}
		}
	}
	for i := 0; i < length; i++ {
		g[row+dr*i][col+dc*i] = Occupied
	}
	return true
}

// Cells lists the occupied coordinates of g in row-major order
func (g *Grid) Cells() []Coord {
	var cells []Coord
	for r := range g {
		for c, cell := range g[r] {
			if cell == Occupied {
				cells = append(cells, Coord{Row: r, Col: c})
			}
		}
	}
	return cells
}
