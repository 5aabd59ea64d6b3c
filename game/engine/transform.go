package engine

import "fmt"

func mirror(x int) int {
	return GridSize - 1 - x
}

// swapsAxes reports whether the local row/column axes map onto the
// public column/row axes
func swapsAxes(o Orientation) bool {
	return o == East || o == West
}

// flips returns which public axes are mirrored for a slot. The second
// player always faces the opposite edge and is mirrored on both axes; the
// first player is mirrored on the axis the orientation names.
func flips(slot PlayerSlot, o Orientation) (rows, cols bool) {
	if slot == Second {
		return true, true
	}
	switch o {
	case North, East:
		return true, false
	default:
		return false, true
	}
}

// ToPublic maps a coordinate in slot's private frame onto the public grid
func ToPublic(local Coord, slot PlayerSlot, o Orientation) (Coord, error) {
	if err := checkFrame(local, slot, o); err != nil {
		return Coord{}, err
	}
	r, c := local.Row, local.Col
	if swapsAxes(o) {
		r, c = c, r
	}
	flipRows, flipCols := flips(slot, o)
	if flipRows {
		r = mirror(r)
	}
	if flipCols {
		c = mirror(c)
	}
	return Coord{Row: r, Col: c}, nil
}

// ToLocal maps a public coordinate into slot's private frame. It is the
// exact inverse of ToPublic.
func ToLocal(public Coord, slot PlayerSlot, o Orientation) (Coord, error) {
	if err := checkFrame(public, slot, o); err != nil {
		return Coord{}, err
	}
	r, c := public.Row, public.Col
	flipRows, flipCols := flips(slot, o)
	if flipRows {
		r = mirror(r)
	}
	if flipCols {
		c = mirror(c)
	}
	if swapsAxes(o) {
		r, c = c, r
	}
	return Coord{Row: r, Col: c}, nil
}

// MirrorForOpponent maps a coordinate in slot's private frame to the cell of
// the opponent's private grid that shares the same public cell
func MirrorForOpponent(local Coord, slot PlayerSlot, o Orientation) (Coord, error) {
	public, err := ToPublic(local, slot, o)
	if err != nil {
		return Coord{}, err
	}
	return ToLocal(public, slot.Other(), o)
}

func checkFrame(c Coord, slot PlayerSlot, o Orientation) error {
	if !c.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	if !slot.Valid() {
		return fmt.Errorf("invalid player slot %d", int(slot))
	}
	if !o.Valid() {
		return fmt.Errorf("invalid orientation %q", o)
	}
	return nil
}
