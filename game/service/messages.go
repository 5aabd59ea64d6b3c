package service

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// renderEvents turns engine notifications into timestamped events with the
// config's player-facing texts. Names are looked up in the match after the
// event, falling back to the match before it so a leaver is still named.
func renderEvents(msgs engine.Messages, before, after engine.MatchSession, notes []engine.Notification) []GameEvent {
	now := time.Now()
	name := func(slot engine.PlayerSlot) string {
		if !slot.Valid() {
			return slot.String()
		}
		if n := after.Players[slot].Name; n != "" {
			return n
		}
		if n := before.Players[slot].Name; n != "" {
			return n
		}
		return slot.String() + " player"
	}

	events := make([]GameEvent, 0, len(notes))
	for _, n := range notes {
		events = append(events, GameEvent{
			Type:         n.Type,
			Message:      renderMessage(msgs, n, name),
			Timestamp:    now,
			Notification: n,
		})
	}
	return events
}

func renderMessage(msgs engine.Messages, n engine.Notification, name func(engine.PlayerSlot) string) string {
	switch n.Type {
	case engine.NotifyPlayerJoined:
		return fmt.Sprintf("%s joined as %s player", name(n.Slot), n.Slot)
	case engine.NotifyPlayerLeft:
		return fmt.Sprintf("%s left the match", name(n.Slot))
	case engine.NotifyPlayerReady:
		return fmt.Sprintf(msgs.Ready, name(n.Slot))
	case engine.NotifyPlayerUnready:
		return fmt.Sprintf(msgs.Unready, name(n.Slot))
	case engine.NotifyValidationFailed:
		return fmt.Sprintf(msgs.Invalid, name(n.Slot), n.Reason)
	case engine.NotifyBoardInvalid:
		return fmt.Sprintf(msgs.Invalid, name(n.Slot), "fleet not ready when the countdown ended")
	case engine.NotifyPhaseChanged:
		switch {
		case n.To == engine.PhaseCombat:
			return msgs.CombatStart
		case n.From == engine.PhaseCountdown && n.To == engine.PhaseSetup:
			return msgs.Cancelled
		}
	case engine.NotifyCountdown:
		return fmt.Sprintf(msgs.Countdown, n.Remaining)
	case engine.NotifyTurnChanged:
		return fmt.Sprintf(msgs.YourTurn, name(n.Slot))
	case engine.NotifyAttackResolved:
		if n.Hit {
			return fmt.Sprintf(msgs.Hit, name(n.Slot), n.Hits)
		}
		return fmt.Sprintf(msgs.Miss, name(n.Slot))
	case engine.NotifyWinner:
		return fmt.Sprintf(msgs.Victory, name(n.Slot))
	case engine.NotifyForfeit:
		return fmt.Sprintf(msgs.Forfeit, name(n.Slot))
	}
	return ""
}
