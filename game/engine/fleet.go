package engine

import "sort"

// Segment is one straight ship derived from a grid
type Segment struct {
	Cells []Coord `json:"cells"`
}

// Len returns the segment length
func (s Segment) Len() int {
	return len(s.Cells)
}

// Fleet is the set of segments found on a valid grid, in scan order
type Fleet struct {
	Segments []Segment `json:"segments"`
}

// Lengths returns the segment lengths in scan order
func (f Fleet) Lengths() []int {
	lengths := make([]int, len(f.Segments))
	for i, s := range f.Segments {
		lengths[i] = s.Len()
	}
	return lengths
}

// SortedLengths returns the lengths longest first
func (f Fleet) SortedLengths() []int {
	lengths := f.Lengths()
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	return lengths
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Validate extracts the fleet from g and checks it against the fleet rules.
// Shape, adjacency and length violations fail on the first one found in
// row-major order; the composition check reports the full difference.
func Validate(g Grid) (Fleet, error) {
	var visited [GridSize][GridSize]bool
	var fleet Fleet
	found := make([]int, 0, len(RequiredFleet))

	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if visited[r][c] || g[r][c] != Occupied {
				continue
			}

			horizontal := 1
			for g.occupied(r, c+horizontal) {
				horizontal++
			}
			vertical := 1
			for g.occupied(r+vertical, c) {
				vertical++
			}
			// only an L cornered at its scan origin is caught here; other
			// L orientations fail below as touching
			if horizontal > 1 && vertical > 1 {
				return Fleet{}, &ValidationError{Err: ErrBentShip, At: Coord{Row: r, Col: c}}
			}

			var seg Segment
			if horizontal >= vertical {
				for i := 0; i < horizontal; i++ {
					seg.Cells = append(seg.Cells, Coord{Row: r, Col: c + i})
				}
			} else {
				for i := 0; i < vertical; i++ {
					seg.Cells = append(seg.Cells, Coord{Row: r + i, Col: c})
				}
			}
			for _, cell := range seg.Cells {
				visited[cell.Row][cell.Col] = true
			}

			for _, cell := range seg.Cells {
				for _, off := range neighborOffsets {
					nr, nc := cell.Row+off[0], cell.Col+off[1]
					if g.occupied(nr, nc) && !visited[nr][nc] {
						return Fleet{}, &ValidationError{Err: ErrShipsTouching, At: Coord{Row: nr, Col: nc}}
					}
				}
			}

			origin := Coord{Row: r, Col: c}
			if seg.Len() < MinShipLength {
				return Fleet{}, &ValidationError{Err: ErrShipTooShort, At: origin, Length: seg.Len()}
			}
			if seg.Len() > MaxShipLength {
				return Fleet{}, &ValidationError{Err: ErrShipTooLong, At: origin, Length: seg.Len()}
			}

			fleet.Segments = append(fleet.Segments, seg)
			found = append(found, seg.Len())
			if horizontal > 1 {
				c += horizontal - 1
			}
		}
	}

	missing, excess := compositionDiff(RequiredFleet, found)
	if len(missing) > 0 || len(excess) > 0 {
		return Fleet{}, &ValidationError{Err: ErrWrongFleetComposition, Missing: missing, Excess: excess}
	}
	return fleet, nil
}

// compositionDiff removes matched lengths pairwise from copies of both lists.
// What remains of required is missing; what remains of found is excess.
func compositionDiff(required, found []int) (missing, excess []int) {
	missing = append([]int{}, required...)
	excess = []int{}
	for _, length := range found {
		idx := -1
		for i, want := range missing {
			if want == length {
				idx = i
				break
			}
		}
		if idx < 0 {
			excess = append(excess, length)
			continue
		}
		missing = append(missing[:idx], missing[idx+1:]...)
	}
	return missing, excess
}
