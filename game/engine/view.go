package engine

import "strings"

// PlayerView is what one player is allowed to see of a match
type PlayerView struct {
	Slot        PlayerSlot  `json:"slot"`
	Phase       Phase       `json:"phase"`
	Turn        PlayerSlot  `json:"turn"`
	YourTurn    bool        `json:"your_turn"`
	Ready       bool        `json:"ready"`
	Orientation Orientation `json:"orientation"`
	Countdown   int         `json:"countdown,omitempty"`
	Hits        int         `json:"hits"`
	HitsTaken   int         `json:"hits_taken"`
	Occupied    int         `json:"occupied"`
	Winner      *PlayerSlot `json:"winner,omitempty"`

	// Own is the player's grid with received shots: '#' ship, '.' water,
	// 'X' hit ship, 'o' miss.
	Own []string `json:"own"`
	// Target holds the player's own shots at the opponent, drawn in the
	// player's frame.
	Target []string `json:"target"`
	// Public is the shared display in its fixed frame, showing the latest
	// mark written to each cell.
	Public []string `json:"public"`
}

// ViewFor builds slot's view of s
func ViewFor(s MatchSession, slot PlayerSlot) PlayerView {
	p := s.Players[slot]
	opponent := s.Players[slot.Other()]
	v := PlayerView{
		Slot:        slot,
		Phase:       s.Phase,
		Turn:        s.Turn,
		YourTurn:    s.Phase == PhaseCombat && s.Turn == slot,
		Ready:       p.Ready,
		Orientation: s.Orientation,
		Countdown:   s.Countdown,
		Hits:        s.Score.HitsFor(slot),
		HitsTaken:   s.Score.HitsFor(slot.Other()),
		Occupied:    p.Grid.CountOccupied(),
		Own:         make([]string, GridSize),
		Target:      make([]string, GridSize),
		Public:      PublicRows(s.Public),
	}
	if winner, ok := s.Winner(); ok {
		v.Winner = &winner
	}

	for r := 0; r < GridSize; r++ {
		var own, target strings.Builder
		for c := 0; c < GridSize; c++ {
			switch {
			case p.Shots[r][c] == Hit:
				own.WriteByte('X')
			case p.Shots[r][c] == Miss:
				own.WriteByte('o')
			case p.Grid[r][c] == Occupied:
				own.WriteByte('#')
			default:
				own.WriteByte('.')
			}

			theirs, err := MirrorForOpponent(Coord{Row: r, Col: c}, slot, s.Orientation)
			if err != nil {
				target.WriteByte('?')
				continue
			}
			target.WriteByte(markChar(opponent.Shots.Get(theirs)))
		}
		v.Own[r] = own.String()
		v.Target[r] = target.String()
	}
	return v
}

// PublicRows renders a marks grid: 'X' hit, 'o' miss, '.' unknown
func PublicRows(m Marks) []string {
	rows := make([]string, GridSize)
	for r := range m {
		var b strings.Builder
		for _, mark := range m[r] {
			b.WriteByte(markChar(mark))
		}
		rows[r] = b.String()
	}
	return rows
}

func markChar(m Mark) byte {
	switch m {
	case Hit:
		return 'X'
	case Miss:
		return 'o'
	default:
		return '.'
	}
}
