package engine

// Scoreboard holds per-player hit counters
type Scoreboard struct {
	Hits [2]int `json:"hits"`
}

// Record counts one hit for slot and returns the new total
func (s *Scoreboard) Record(slot PlayerSlot) int {
	if s.Hits[slot] < FleetCells {
		s.Hits[slot]++
	}
	return s.Hits[slot]
}

// HitsFor returns slot's counter
func (s Scoreboard) HitsFor(slot PlayerSlot) int {
	return s.Hits[slot]
}

// Winner returns the slot that reached FleetCells hits, if any. Only one
// attack resolves per turn so both counters cannot reach it together.
func (s Scoreboard) Winner() (PlayerSlot, bool) {
	for _, slot := range []PlayerSlot{First, Second} {
		if s.Hits[slot] >= FleetCells {
			return slot, true
		}
	}
	return First, false
}

// Reset zeroes both counters
func (s *Scoreboard) Reset() {
	s.Hits = [2]int{}
}
