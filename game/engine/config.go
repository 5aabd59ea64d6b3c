package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ValidateGameConfig validates a match configuration
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if !config.Orientation.Valid() {
		return fmt.Errorf("config validation: orientation must be one of north, south, east, west, got %q", config.Orientation)
	}
	if config.CountdownTicks < MinCountdownTicks || config.CountdownTicks > MaxCountdownTicks {
		return fmt.Errorf("config validation: countdown_ticks must be between %d and %d, got %d",
			MinCountdownTicks, MaxCountdownTicks, config.CountdownTicks)
	}

	verbs := []struct {
		field string
		value string
		verbs []string
	}{
		{"ready", config.Messages.Ready, []string{"%s"}},
		{"unready", config.Messages.Unready, []string{"%s"}},
		{"invalid", config.Messages.Invalid, []string{"%s", "%s"}},
		{"countdown", config.Messages.Countdown, []string{"%d"}},
		{"your_turn", config.Messages.YourTurn, []string{"%s"}},
		{"hit", config.Messages.Hit, []string{"%s", "%d"}},
		{"miss", config.Messages.Miss, []string{"%s"}},
		{"victory", config.Messages.Victory, []string{"%s"}},
		{"forfeit", config.Messages.Forfeit, []string{"%s"}},
	}
	for _, v := range verbs {
		if v.value == "" {
			continue
		}
		for _, verb := range v.verbs {
			if strings.Count(v.value, verb) < countOf(v.verbs, verb) {
				return fmt.Errorf("config validation: messages.%s must contain %s", v.field, strings.Join(v.verbs, " and "))
			}
		}
	}
	return nil
}

func countOf(list []string, s string) int {
	n := 0
	for _, item := range list {
		if item == s {
			n++
		}
	}
	return n
}

// DefaultMessages are used for any message a config leaves empty
func DefaultMessages() Messages {
	return Messages{
		Welcome:     "Place your fleet: one ship of 5, 4 and 3 cells and two of 2. Ships may not touch.",
		Ready:       "%s is ready!",
		Unready:     "%s is no longer ready.",
		Invalid:     "%s: invalid fleet (%s)",
		Countdown:   "Battle starts in %d...",
		Cancelled:   "Countdown cancelled.",
		CombatStart: "Battle stations! First player fires first.",
		YourTurn:    "%s, your turn to fire.",
		Hit:         "%s scored a hit! (%d/16)",
		Miss:        "%s missed.",
		Victory:     "%s sank the whole fleet and wins!",
		Forfeit:     "%s wins by forfeit.",
	}
}

// ResolvedMessages returns the config messages with empty fields filled in
func (c *GameConfig) ResolvedMessages() Messages {
	m := c.Messages
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Ready, d.Ready)
	fill(&m.Unready, d.Unready)
	fill(&m.Invalid, d.Invalid)
	fill(&m.Countdown, d.Countdown)
	fill(&m.Cancelled, d.Cancelled)
	fill(&m.CombatStart, d.CombatStart)
	fill(&m.YourTurn, d.YourTurn)
	fill(&m.Hit, d.Hit)
	fill(&m.Miss, d.Miss)
	fill(&m.Victory, d.Victory)
	fill(&m.Forfeit, d.Forfeit)
	return m
}

// DefaultConfig is the built-in classic match
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic 7x7 match, boards facing north",
		Orientation:    North,
		CountdownTicks: DefaultCountdownTicks,
		Messages:       DefaultMessages(),
	}
}

// LoadGameConfig loads and validates a configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}
	return &config, nil
}
