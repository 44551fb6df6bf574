// Command import_units converts a spreadsheet export of unit types into a
// catalog roster file.
//
//	go run ./scripts data/units.csv internal/game/catalog/units.yaml
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/elementarclash/clash-server-go/internal/game/catalog"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// columns is the header the export must carry, in order.
var columns = []string{
	"type", "name", "faction", "description",
	"max_health", "attack", "defense", "movement", "range",
	"attack_style", "mobility", "ignores_forest_cover", "ice_walker", "revives",
	"ability", "ability_amount", "ability_range", "ability_cooldown",
}

type roster struct {
	Units []catalog.Entry `yaml:"units"`
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	csvPath := "data/units.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := ""
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	in, err := os.Open(csvPath)
	if err != nil {
		logger.Fatal("failed to open export", zap.String("path", csvPath), zap.Error(err))
	}
	defer in.Close()

	entries, skipped, err := readEntries(in)
	if err != nil {
		logger.Fatal("failed to read export", zap.Error(err))
	}
	for _, s := range skipped {
		logger.Warn("skipped row", zap.String("reason", s))
	}

	data, err := encode(entries)
	if err != nil {
		logger.Fatal("roster is invalid", zap.Error(err))
	}

	if outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Fatal("failed to write roster", zap.String("path", outPath), zap.Error(err))
	}
	logger.Info("roster written",
		zap.String("path", outPath),
		zap.Int("unit_types", len(entries)),
		zap.Int("skipped", len(skipped)))
}

// readEntries parses every data row. Rows that do not describe a unit are
// reported in skipped rather than failing the import.
func readEntries(r io.Reader) (entries []catalog.Entry, skipped []string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("export has no data rows")
	}
	if got := strings.Join(records[0], ","); got != strings.Join(columns, ",") {
		return nil, nil, fmt.Errorf("unexpected header %q", got)
	}

	for i, record := range records[1:] {
		e, err := parseRow(record)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func parseRow(record []string) (catalog.Entry, error) {
	f, err := faction.Parse(record[2])
	if err != nil {
		return catalog.Entry{}, err
	}
	ints, err := parseInts(record, 4, 5, 6, 7, 8, 15, 16, 17)
	if err != nil {
		return catalog.Entry{}, err
	}

	e := catalog.Entry{
		Type:        record[0],
		Name:        record[1],
		Faction:     f,
		Description: record[3],
		Stats: units.Stats{
			MaxHealth: ints[4],
			Attack:    ints[5],
			Defense:   ints[6],
			Movement:  ints[7],
			Range:     ints[8],
		},
		Traits: units.Traits{
			AttackStyle:        units.AttackStyle(strings.ToLower(record[9])),
			Mobility:           units.Mobility(strings.ToLower(record[10])),
			IgnoresForestCover: parseBool(record[11]),
			IceWalker:          parseBool(record[12]),
			Revives:            parseBool(record[13]),
		},
		Ability: units.AbilitySpec{
			Kind:     units.AbilityKind(strings.ToLower(record[14])),
			Amount:   ints[15],
			Range:    ints[16],
			Cooldown: ints[17],
		},
	}
	if err := e.Stats.Validate(); err != nil {
		return catalog.Entry{}, err
	}
	return e, nil
}

// parseInts converts the listed columns; empty cells read as zero.
func parseInts(record []string, cols ...int) (map[int]int, error) {
	out := make(map[int]int, len(cols))
	for _, c := range cols {
		if record[c] == "" {
			continue
		}
		n, err := strconv.Atoi(record[c])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", columns[c], err)
		}
		out[c] = n
	}
	return out, nil
}

// encode renders the roster and checks the catalog accepts it.
func encode(entries []catalog.Entry) ([]byte, error) {
	data, err := yaml.Marshal(roster{Units: entries})
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	if _, err := catalog.Parse(data); err != nil {
		return nil, err
	}
	return append([]byte("# Generated by scripts/import_units.go\n"), data...), nil
}

func parseBool(s string) bool {
	return strings.ToLower(s) == "true" || s == "1"
}
