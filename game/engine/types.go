package engine

import "fmt"

const (
	// GridSize is the side length of every private and public grid.
	GridSize = 7

	MinShipLength = 2
	MaxShipLength = 5

	// FleetCells is the number of occupied cells in a complete fleet and the
	// number of hits needed to win.
	FleetCells = 16

	MinCountdownTicks     = 1
	MaxCountdownTicks     = 600
	DefaultCountdownTicks = 5
)

// RequiredFleet is the multiset of ship lengths every player must place.
var RequiredFleet = []int{5, 4, 3, 2, 2}

// Coord addresses a single grid cell
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether c lies inside an N×N grid
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < GridSize && c.Col >= 0 && c.Col < GridSize
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CellState is the content of a private grid cell
type CellState uint8

const (
	Empty CellState = iota
	Occupied
)

func (s CellState) String() string {
	if s == Occupied {
		return "occupied"
	}
	return "empty"
}

// Mark is the attack result recorded on the public grid and on the
// defender's shot overlay
type Mark uint8

const (
	Unknown Mark = iota
	Hit
	Miss
)

func (m Mark) String() string {
	switch m {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return "unknown"
	}
}

// Orientation describes which edge of the public grid faces which player
type Orientation string

const (
	North Orientation = "north"
	South Orientation = "south"
	East  Orientation = "east"
	West  Orientation = "west"
)

// Valid reports whether o is one of the four cardinal orientations
func (o Orientation) Valid() bool {
	switch o {
	case North, South, East, West:
		return true
	}
	return false
}

// PlayerSlot is the fixed join position of a player
type PlayerSlot int

const (
	First PlayerSlot = iota
	Second
)

// Other returns the opposing slot
func (s PlayerSlot) Other() PlayerSlot {
	if s == First {
		return Second
	}
	return First
}

// Valid reports whether s is First or Second
func (s PlayerSlot) Valid() bool {
	return s == First || s == Second
}

func (s PlayerSlot) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// MarshalText encodes the slot by name
func (s PlayerSlot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid player slot %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes "first" or "second"
func (s *PlayerSlot) UnmarshalText(text []byte) error {
	switch string(text) {
	case "first":
		*s = First
	case "second":
		*s = Second
	default:
		return fmt.Errorf("invalid player slot %q", string(text))
	}
	return nil
}

// Phase is the match state machine tag
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseCountdown Phase = "countdown"
	PhaseCombat    Phase = "combat"
	PhaseResolved  Phase = "resolved"
)

// GameConfig represents a match configuration loaded from JSON
type GameConfig struct {
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Orientation    Orientation `json:"orientation"`
	CountdownTicks int         `json:"countdown_ticks"`
	Messages       Messages    `json:"messages"`
}

// Messages are the player-facing texts the host renders from notifications.
// Format verbs are checked by ValidateGameConfig.
type Messages struct {
	Welcome     string `json:"welcome"`
	Ready       string `json:"ready"`        // %s player
	Unready     string `json:"unready"`      // %s player
	Invalid     string `json:"invalid"`      // %s player, %s reason
	Countdown   string `json:"countdown"`    // %d ticks remaining
	Cancelled   string `json:"cancelled"`
	CombatStart string `json:"combat_start"`
	YourTurn    string `json:"your_turn"`    // %s player
	Hit         string `json:"hit"`          // %s attacker, %d hits
	Miss        string `json:"miss"`         // %s attacker
	Victory     string `json:"victory"`      // %s winner
	Forfeit     string `json:"forfeit"`      // %s remaining player
}
