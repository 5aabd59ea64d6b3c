package engine

import (
	"fmt"
	"strings"
)

// Grid is a player's private ship layout. It enforces bounds only; shape
// rules live in Validate.
type Grid [GridSize][GridSize]CellState

// SetCell stores state at c
func (g *Grid) SetCell(c Coord, state CellState) error {
	if !c.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	g[c.Row][c.Col] = state
	return nil
}

// GetCell returns the state at c
func (g *Grid) GetCell(c Coord) (CellState, error) {
	if !c.InBounds() {
		return Empty, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	return g[c.Row][c.Col], nil
}

// CountOccupied counts occupied cells
func (g *Grid) CountOccupied() int {
	count := 0
	for _, row := range g {
		for _, cell := range row {
			if cell == Occupied {
				count++
			}
		}
	}
	return count
}

// occupied is an unchecked lookup that treats out-of-range cells as empty
func (g *Grid) occupied(row, col int) bool {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return false
	}
	return g[row][col] == Occupied
}

// Rows renders the grid as text rows of '#' (occupied) and '.' (empty)
func (g *Grid) Rows() []string {
	rows := make([]string, GridSize)
	for r := range g {
		var b strings.Builder
		for _, cell := range g[r] {
			if cell == Occupied {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[r] = b.String()
	}
	return rows
}

// ParseGrid builds a Grid from text rows of '#'/'X' (occupied) and '.'/'~'
// (empty). Surrounding whitespace on each row is ignored.
func ParseGrid(rows []string) (Grid, error) {
	var g Grid
	if len(rows) != GridSize {
		return g, fmt.Errorf("layout must have %d rows, got %d", GridSize, len(rows))
	}
	for r, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) != GridSize {
			return g, fmt.Errorf("row %d must have %d characters, got %d", r+1, GridSize, len(row))
		}
		for c, char := range row {
			switch char {
			case '#', 'X':
				g[r][c] = Occupied
			case '.', '~':
			default:
				return g, fmt.Errorf("invalid character '%c' at row %d, col %d", char, r+1, c+1)
			}
		}
	}
	return g, nil
}

// Marks is the attack overlay of a grid: the public grid itself, or the
// shots received on a private grid
type Marks [GridSize][GridSize]Mark

// Get returns the mark at c, Unknown when out of range
func (m *Marks) Get(c Coord) Mark {
	if !c.InBounds() {
		return Unknown
	}
	return m[c.Row][c.Col]
}

// Count returns how many cells carry mark
func (m *Marks) Count(mark Mark) int {
	count := 0
	for _, row := range m {
		for _, cell := range row {
			if cell == mark {
				count++
			}
		}
	}
	return count
}
