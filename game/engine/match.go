package engine

import (
	"errors"
	"fmt"
)

// PlayerState is one side of a match
type PlayerState struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Ready bool   `json:"ready"`
	Grid  Grid   `json:"grid"`
	// Shots are the attack results received on this player's grid, in the
	// player's own frame.
	Shots Marks `json:"shots"`
}

// Present reports whether a player occupies the slot
func (p PlayerState) Present() bool {
	return p.ID != ""
}

// MatchSession is the complete state of one match. It is a value type:
// copying it copies every grid.
type MatchSession struct {
	Orientation    Orientation    `json:"orientation"`
	CountdownTicks int            `json:"countdown_ticks"`
	Players        [2]PlayerState `json:"players"`
	Public         Marks          `json:"public"`
	Phase          Phase          `json:"phase"`
	Turn           PlayerSlot     `json:"turn"`
	Countdown      int            `json:"countdown"`
	Score          Scoreboard     `json:"score"`
	WinnerSlot     PlayerSlot     `json:"winner"`
}

// NewMatchSession returns a session in Setup for the given config
func NewMatchSession(config *GameConfig) MatchSession {
	s := MatchSession{
		Orientation:    North,
		CountdownTicks: DefaultCountdownTicks,
		Phase:          PhaseSetup,
		Turn:           First,
	}
	if config != nil {
		if config.Orientation.Valid() {
			s.Orientation = config.Orientation
		}
		if config.CountdownTicks > 0 {
			s.CountdownTicks = config.CountdownTicks
		}
	}
	return s
}

// SlotOf returns the slot held by player
func (s MatchSession) SlotOf(player string) (PlayerSlot, bool) {
	if player == "" {
		return First, false
	}
	for _, slot := range []PlayerSlot{First, Second} {
		if s.Players[slot].ID == player {
			return slot, true
		}
	}
	return First, false
}

// Winner returns the winning slot once the match is resolved
func (s MatchSession) Winner() (PlayerSlot, bool) {
	if s.Phase != PhaseResolved {
		return First, false
	}
	return s.WinnerSlot, true
}

// BothReady reports whether both slots are occupied and ready
func (s MatchSession) BothReady() bool {
	for _, p := range s.Players {
		if !p.Present() || !p.Ready {
			return false
		}
	}
	return true
}

// EventType names an inbound event
type EventType string

const (
	EventJoin   EventType = "join"
	EventLeave  EventType = "leave"
	EventPlace  EventType = "place"
	EventAttack EventType = "attack"
	EventTick   EventType = "tick"
)

// Event is the single inbound message type of the state machine
type Event struct {
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`
	Name   string    `json:"name,omitempty"`
	Coord  Coord     `json:"coord"`
	Place  bool      `json:"place,omitempty"`
}

func JoinEvent(player, name string) Event {
	return Event{Type: EventJoin, Player: player, Name: name}
}

func LeaveEvent(player string) Event {
	return Event{Type: EventLeave, Player: player}
}

// PlaceEvent places (place=true) or removes a ship cell in the player's frame
func PlaceEvent(player string, c Coord, place bool) Event {
	return Event{Type: EventPlace, Player: player, Coord: c, Place: place}
}

// AttackEvent targets a public-grid coordinate
func AttackEvent(player string, c Coord) Event {
	return Event{Type: EventAttack, Player: player, Coord: c}
}

func TickEvent() Event {
	return Event{Type: EventTick}
}

// Apply runs one event through the state machine. On error the returned
// session is s unchanged and no notifications are produced.
func Apply(s MatchSession, ev Event) (MatchSession, []Notification, error) {
	next := s
	var notes []Notification
	var err error

	switch ev.Type {
	case EventJoin:
		notes, err = next.join(ev)
	case EventLeave:
		notes, err = next.leave(ev)
	case EventPlace:
		notes, err = next.place(ev)
	case EventAttack:
		notes, err = next.attack(ev)
	case EventTick:
		notes = next.tick()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	if err != nil {
		return s, nil, err
	}
	return next, notes, nil
}

func (s *MatchSession) playerSlot(player string) (PlayerSlot, error) {
	slot, ok := s.SlotOf(player)
	if !ok {
		return First, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}
	return slot, nil
}

func (s *MatchSession) join(ev Event) ([]Notification, error) {
	if ev.Player == "" {
		return nil, fmt.Errorf("%w: empty player id", ErrUnknownPlayer)
	}
	if s.Phase != PhaseSetup {
		return nil, fmt.Errorf("%w: cannot join during %s", ErrWrongPhase, s.Phase)
	}
	if _, ok := s.SlotOf(ev.Player); ok {
		return nil, ErrAlreadyJoined
	}
	for _, slot := range []PlayerSlot{First, Second} {
		if !s.Players[slot].Present() {
			s.Players[slot] = PlayerState{ID: ev.Player, Name: ev.Name}
			notes := []Notification{{Type: NotifyPlayerJoined, Slot: slot, Player: ev.Player}}
			if n, ok := s.rearm(slot.Other()); ok {
				notes = append(notes, n)
			}
			return notes, nil
		}
	}
	return nil, ErrSessionFull
}

// rearm marks slot ready again when it still holds a valid fleet. A leave
// clears the remaining player's ready flag but keeps their grid.
func (s *MatchSession) rearm(slot PlayerSlot) (Notification, bool) {
	p := &s.Players[slot]
	if !p.Present() || p.Ready || p.Grid.CountOccupied() != FleetCells {
		return Notification{}, false
	}
	fleet, err := Validate(p.Grid)
	if err != nil {
		return Notification{}, false
	}
	p.Ready = true
	return Notification{Type: NotifyPlayerReady, Slot: slot, Fleet: fleet.SortedLengths()}, true
}

func (s *MatchSession) leave(ev Event) ([]Notification, error) {
	slot, err := s.playerSlot(ev.Player)
	if err != nil {
		return nil, err
	}
	notes := []Notification{{Type: NotifyPlayerLeft, Slot: slot, Player: ev.Player}}

	if s.Phase == PhaseResolved {
		s.Players[slot].ID = ""
		s.Players[slot].Name = ""
		return notes, nil
	}

	other := slot.Other()
	if s.Phase == PhaseCombat && s.Players[other].Present() {
		notes = append(notes, Notification{Type: NotifyForfeit, Slot: other, Player: s.Players[other].ID})
	}

	s.Players[slot] = PlayerState{}
	if s.Players[other].Ready {
		s.Players[other].Ready = false
		notes = append(notes, Notification{Type: NotifyPlayerUnready, Slot: other})
	}
	s.Players[other].Shots = Marks{}
	s.Public = Marks{}
	s.Score.Reset()
	s.Turn = First
	s.Countdown = 0

	if s.Phase != PhaseSetup {
		notes = append(notes, phaseChanged(s.Phase, PhaseSetup))
		s.Phase = PhaseSetup
	}
	return notes, nil
}

func (s *MatchSession) place(ev Event) ([]Notification, error) {
	slot, err := s.playerSlot(ev.Player)
	if err != nil {
		return nil, err
	}
	if s.Phase != PhaseSetup && s.Phase != PhaseCountdown {
		return nil, fmt.Errorf("%w: cannot place ships during %s", ErrWrongPhase, s.Phase)
	}

	p := &s.Players[slot]
	current, err := p.Grid.GetCell(ev.Coord)
	if err != nil {
		return nil, err
	}
	want := Empty
	if ev.Place {
		want = Occupied
	}
	if current == want {
		return nil, nil
	}
	if err := p.Grid.SetCell(ev.Coord, want); err != nil {
		return nil, err
	}

	notes := []Notification{privateCell(slot, ev.Coord, want.String())}
	wasReady := p.Ready
	p.Ready = false

	if p.Grid.CountOccupied() == FleetCells {
		fleet, err := Validate(p.Grid)
		if err == nil {
			p.Ready = true
			notes = append(notes, Notification{Type: NotifyPlayerReady, Slot: slot, Fleet: fleet.SortedLengths()})
		} else {
			n := Notification{Type: NotifyValidationFailed, Slot: slot, Private: true, Reason: err.Error()}
			var verr *ValidationError
			if errors.As(err, &verr) {
				n.Validation = verr
			}
			notes = append(notes, n)
		}
	}

	if wasReady && !p.Ready {
		notes = append(notes, Notification{Type: NotifyPlayerUnready, Slot: slot})
		if s.Phase == PhaseCountdown {
			s.Countdown = 0
			s.Phase = PhaseSetup
			notes = append(notes, phaseChanged(PhaseCountdown, PhaseSetup))
		}
	}

	if s.Phase == PhaseSetup && s.BothReady() {
		s.Phase = PhaseCountdown
		s.Countdown = s.CountdownTicks
		notes = append(notes,
			phaseChanged(PhaseSetup, PhaseCountdown),
			Notification{Type: NotifyCountdown, Remaining: s.Countdown},
		)
	}
	return notes, nil
}

func (s *MatchSession) tick() []Notification {
	if s.Phase != PhaseCountdown {
		return nil
	}
	s.Countdown--
	if s.Countdown > 0 {
		return []Notification{{Type: NotifyCountdown, Remaining: s.Countdown}}
	}
	s.Countdown = 0

	if s.BothReady() {
		s.Phase = PhaseCombat
		s.Turn = First
		return []Notification{
			phaseChanged(PhaseCountdown, PhaseCombat),
			{Type: NotifyTurnChanged, Slot: First},
		}
	}

	s.Phase = PhaseSetup
	notes := []Notification{phaseChanged(PhaseCountdown, PhaseSetup)}
	for _, slot := range []PlayerSlot{First, Second} {
		if !s.Players[slot].Present() || !s.Players[slot].Ready {
			notes = append(notes, Notification{Type: NotifyBoardInvalid, Slot: slot})
		}
	}
	return notes
}

func (s *MatchSession) attack(ev Event) ([]Notification, error) {
	slot, err := s.playerSlot(ev.Player)
	if err != nil {
		return nil, err
	}
	if s.Phase != PhaseCombat {
		return nil, fmt.Errorf("%w: cannot attack during %s", ErrWrongPhase, s.Phase)
	}
	if slot != s.Turn {
		return nil, ErrNotYourTurn
	}
	target := ev.Coord
	if !target.InBounds() {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, target)
	}

	attackerLocal, err := ToLocal(target, slot, s.Orientation)
	if err != nil {
		return nil, err
	}
	defenderLocal, err := MirrorForOpponent(attackerLocal, slot, s.Orientation)
	if err != nil {
		return nil, err
	}

	opponent := slot.Other()
	defender := &s.Players[opponent]
	if defender.Shots.Get(defenderLocal) != Unknown {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAttacked, target)
	}
	mark := Miss
	if defender.Grid[defenderLocal.Row][defenderLocal.Col] == Occupied {
		mark = Hit
	}
	s.Public[target.Row][target.Col] = mark
	defender.Shots[defenderLocal.Row][defenderLocal.Col] = mark

	hits := s.Score.HitsFor(slot)
	if mark == Hit {
		hits = s.Score.Record(slot)
	}

	notes := []Notification{
		publicCell(slot, target, mark.String()),
		privateCell(opponent, defenderLocal, mark.String()),
		{Type: NotifyAttackResolved, Slot: slot, Coord: &target, Hit: mark == Hit, Hits: hits},
	}

	if winner, ok := s.Score.Winner(); ok {
		s.WinnerSlot = winner
		s.Phase = PhaseResolved
		return append(notes,
			phaseChanged(PhaseCombat, PhaseResolved),
			Notification{Type: NotifyWinner, Slot: winner, Player: s.Players[winner].ID},
		), nil
	}

	s.Turn = opponent
	return append(notes, Notification{Type: NotifyTurnChanged, Slot: opponent}), nil
}
