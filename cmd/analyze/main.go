// Command analyze prints how each configuration's orientation maps the
// players' private boards onto the public grid. For every slot it shows
// where the four local corners land and draws the local origin and axes
// on a public grid, which makes a new orientation easy to eyeball.
//
// With no arguments it analyzes configs/*.json.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// CornerMapping records where one local corner lands on the public grid
type CornerMapping struct {
	Slot   engine.PlayerSlot
	Local  engine.Coord
	Public engine.Coord
}

var corners = []engine.Coord{
	{Row: 0, Col: 0},
	{Row: 0, Col: engine.GridSize - 1},
	{Row: engine.GridSize - 1, Col: 0},
	{Row: engine.GridSize - 1, Col: engine.GridSize - 1},
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join("configs", "*.json"))
		if err != nil || len(files) == 0 {
			fmt.Println("No configuration files found in configs/")
			os.Exit(1)
		}
	}

	failed := false
	for _, configFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(configFile))
		if err := analyzeConfig(configFile, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func analyzeConfig(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return err
	}

	fmt.Fprintf(out, "Name: %s\n", config.Name)
	fmt.Fprintf(out, "Orientation: %s\n", config.Orientation)
	fmt.Fprintf(out, "Countdown: %d ticks\n", config.CountdownTicks)

	mappings, err := cornerMap(config.Orientation)
	if err != nil {
		return err
	}
	for _, slot := range []engine.PlayerSlot{engine.First, engine.Second} {
		fmt.Fprintf(out, "\n%s player:\n", slot)
		for _, m := range mappings {
			if m.Slot == slot {
				fmt.Fprintf(out, "  local %s -> public %s\n", m.Local, m.Public)
			}
		}
		diagram, err := frameDiagram(slot, config.Orientation)
		if err != nil {
			return err
		}
		for _, row := range diagram {
			fmt.Fprintf(out, "  %s\n", row)
		}
	}
	return nil
}

// cornerMap maps every local corner of both slots to the public grid
func cornerMap(o engine.Orientation) ([]CornerMapping, error) {
	var mappings []CornerMapping
	for _, slot := range []engine.PlayerSlot{engine.First, engine.Second} {
		for _, local := range corners {
			public, err := engine.ToPublic(local, slot, o)
			if err != nil {
				return nil, err
			}
			mappings = append(mappings, CornerMapping{Slot: slot, Local: local, Public: public})
		}
	}
	return mappings, nil
}

// frameDiagram draws slot's local frame on the public grid: 'O' is the
// local origin, '-' the rest of local row 0 and '|' the rest of local
// column 0
func frameDiagram(slot engine.PlayerSlot, o engine.Orientation) ([]string, error) {
	var grid [engine.GridSize][engine.GridSize]byte
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = '.'
		}
	}
	for i := 1; i < engine.GridSize; i++ {
		for _, cell := range []struct {
			local engine.Coord
			mark  byte
		}{
			{engine.Coord{Row: 0, Col: i}, '-'},
			{engine.Coord{Row: i, Col: 0}, '|'},
		} {
			p, err := engine.ToPublic(cell.local, slot, o)
			if err != nil {
				return nil, err
			}
			grid[p.Row][p.Col] = cell.mark
		}
	}
	origin, err := engine.ToPublic(engine.Coord{}, slot, o)
	if err != nil {
		return nil, err
	}
	grid[origin.Row][origin.Col] = 'O'

	rows := make([]string, engine.GridSize)
	for r := range grid {
		rows[r] = string(grid[r][:])
	}
	return rows, nil
}
