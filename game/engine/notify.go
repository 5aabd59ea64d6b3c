package engine

// NotificationType names an outbound notification for the host
type NotificationType string

const (
	NotifyPlayerJoined     NotificationType = "player_joined"
	NotifyPlayerLeft       NotificationType = "player_left"
	NotifyCellChanged      NotificationType = "cell_changed"
	NotifyPlayerReady      NotificationType = "player_ready"
	NotifyPlayerUnready    NotificationType = "player_unready"
	NotifyValidationFailed NotificationType = "validation_failed"
	NotifyBoardInvalid     NotificationType = "board_invalid"
	NotifyPhaseChanged     NotificationType = "phase_changed"
	NotifyCountdown        NotificationType = "countdown"
	NotifyAttackResolved   NotificationType = "attack_resolved"
	NotifyTurnChanged      NotificationType = "turn_changed"
	NotifyWinner           NotificationType = "winner"
	NotifyForfeit          NotificationType = "forfeit"
)

// GridKind tells which grid a cell_changed notification refers to
type GridKind string

const (
	PrivateGrid GridKind = "private"
	PublicGrid  GridKind = "public"
)

// Notification is a presentation command emitted by Apply. Private
// notifications concern only Slot's own board and must not be shown to the
// opponent.
type Notification struct {
	Type    NotificationType `json:"type"`
	Slot    PlayerSlot       `json:"slot"`
	Private bool             `json:"private,omitempty"`

	Player string   `json:"player,omitempty"`
	Grid   GridKind `json:"grid,omitempty"`
	Coord  *Coord   `json:"coord,omitempty"`
	State  string   `json:"state,omitempty"`

	From      Phase `json:"from,omitempty"`
	To        Phase `json:"to,omitempty"`
	Remaining int   `json:"remaining,omitempty"`

	Hit   bool  `json:"hit,omitempty"`
	Hits  int   `json:"hits,omitempty"`
	Fleet []int `json:"fleet,omitempty"`

	Validation *ValidationError `json:"validation,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// VisibleTo reports whether a viewer in slot may see n. Spectators pass
// ok=false.
func (n Notification) VisibleTo(slot PlayerSlot, ok bool) bool {
	if !n.Private {
		return true
	}
	return ok && slot == n.Slot
}

func phaseChanged(from, to Phase) Notification {
	return Notification{Type: NotifyPhaseChanged, From: from, To: to}
}

func privateCell(slot PlayerSlot, c Coord, state string) Notification {
	return Notification{Type: NotifyCellChanged, Slot: slot, Private: true, Grid: PrivateGrid, Coord: &c, State: state}
}

func publicCell(attacker PlayerSlot, c Coord, state string) Notification {
	return Notification{Type: NotifyCellChanged, Slot: attacker, Grid: PublicGrid, Coord: &c, State: state}
}
