// Command validate checks match configuration files and fleet layouts.
//
//	validate configs [dir]     validate every *.json configuration (default ./configs)
//	validate fleet <file>      validate a 7-row fleet layout ('#' ship, '.' water)
//	validate random [--seed N] print a random valid fleet
//
// A configuration is checked for:
//   - JSON structure and required fields
//   - A known orientation and a countdown inside the allowed range
//   - Message templates carrying the format verbs the server fills in
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Orientation: %s", config.Orientation),
		fmt.Sprintf("✓ Countdown: %d ticks", config.CountdownTicks))

	defaults := engine.DefaultMessages()
	resolved := config.ResolvedMessages()
	custom := 0
	for _, pair := range [][2]string{
		{resolved.Welcome, defaults.Welcome},
		{resolved.Ready, defaults.Ready},
		{resolved.Unready, defaults.Unready},
		{resolved.Invalid, defaults.Invalid},
		{resolved.Countdown, defaults.Countdown},
		{resolved.Cancelled, defaults.Cancelled},
		{resolved.CombatStart, defaults.CombatStart},
		{resolved.YourTurn, defaults.YourTurn},
		{resolved.Hit, defaults.Hit},
		{resolved.Miss, defaults.Miss},
		{resolved.Victory, defaults.Victory},
		{resolved.Forfeit, defaults.Forfeit},
	} {
		if pair[0] != pair[1] {
			custom++
		}
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Custom messages: %d", custom))
	return result
}

// readLayout returns the non-blank lines of r, skipping // comments
func readLayout(r io.Reader) ([]string, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		rows = append(rows, line)
	}
	return rows, scanner.Err()
}

// validateFleet parses and validates a layout. The returned fleet is only
// meaningful when err is nil.
func validateFleet(rows []string) (engine.Fleet, error) {
	grid, err := engine.ParseGrid(rows)
	if err != nil {
		return engine.Fleet{}, err
	}
	if n := grid.CountOccupied(); n != engine.FleetCells {
		return engine.Fleet{}, fmt.Errorf("fleet has %d occupied cells, want %d", n, engine.FleetCells)
	}
	return engine.Validate(grid)
}

func runConfigs(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	configDir := cmd.Args().First()
	if configDir == "" {
		configDir = "configs"
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no configuration files in %s", configDir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return errors.New("❌ Some configurations have errors")
	}
	fmt.Fprintln(out, "✅ All configurations are valid!")
	return nil
}

func runFleet(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("layout file required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := readLayout(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fleet, err := validateFleet(rows)
	if err != nil {
		return fmt.Errorf("❌ %s: %w", filepath.Base(path), err)
	}
	fmt.Fprintf(out, "✅ %s: valid fleet\n", filepath.Base(path))
	for _, seg := range fleet.Segments {
		fmt.Fprintf(out, "  length %d from %s to %s\n", seg.Len(), seg.Cells[0], seg.Cells[len(seg.Cells)-1])
	}
	return nil
}

func runRandom(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	seed := rand.Uint64()
	if s := cmd.String("seed"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", s, err)
		}
		seed = n
	}

	grid := engine.RandomFleet(rand.New(rand.NewPCG(seed, seed)))
	if !cmd.Bool("quiet") {
		fmt.Fprintf(out, "// seed %d\n", seed)
	}
	for _, row := range grid.Rows() {
		fmt.Fprintln(out, row)
	}
	return nil
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "check match configurations and fleet layouts",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:      "configs",
				Usage:     "validate every configuration in a directory",
				ArgsUsage: "[dir]",
				Action:    runConfigs,
			},
			{
				Name:      "fleet",
				Usage:     "validate a fleet layout file",
				ArgsUsage: "<file>",
				Action:    runFleet,
			},
			{
				Name:  "random",
				Usage: "print a random valid fleet layout",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seed", Usage: "PCG seed for a reproducible fleet"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "omit the seed comment"},
				},
				Action: runRandom,
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
