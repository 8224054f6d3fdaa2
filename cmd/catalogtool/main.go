// catalogtool checks the combat catalog and writes balance reports.
//
// Usage:
//
//	go run ./cmd/catalogtool <command> [-datadir path] [-scripts path] [-out file]
//
// Commands: check, report
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/combatcore/internal/config"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/scripting"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: catalogtool <command> [flags]

Commands:
  check    load the catalog and validate cross references
  report   write a time-to-kill table for every monster template

Flags:
  -datadir  directory holding abilities/status_effects/monsters/spawns yaml
  -scripts  Lua scripts directory ("" uses built-in formulas)
  -out      report destination ("" writes to stdout)
  -damage   attacker damage per hit
  -speed    attacker seconds between hits
  -armor    attacker armor`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	dataDir := fs.String("datadir", filepath.Join("data", "yaml"), "catalog directory")
	scripts := fs.String("scripts", "", "Lua scripts directory")
	out := fs.String("out", "", "report output file")
	damage := fs.Float64("damage", 10, "attacker damage per hit")
	speed := fs.Float64("speed", 2, "attacker seconds between hits")
	armor := fs.Float64("armor", 0, "attacker armor")
	_ = fs.Parse(os.Args[2:])

	commands := map[string]func() error{
		"check": func() error {
			cat, err := loadCatalog(*dataDir)
			if err != nil {
				return err
			}
			fmt.Printf("abilities: %d\n", cat.Abilities.Count())
			fmt.Printf("status effects: %d\n", cat.Statuses.Count())
			fmt.Printf("monsters: %d\n", cat.Monsters.Count())
			fmt.Printf("spawn points: %d\n", len(cat.Spawns))
			return nil
		},
		"report": func() error {
			cat, err := loadCatalog(*dataDir)
			if err != nil {
				return err
			}
			formula, closeFn, err := loadFormula(*scripts)
			if err != nil {
				return err
			}
			defer closeFn()
			r := BuildReport(cat, formula, Attacker{
				Damage:      *damage,
				AttackSpeed: *speed,
				Armor:       *armor,
			}, config.DefaultCombat().MitigationFactor)
			return writeReport(r, *out)
		},
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err := fn(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalog(dir string) (*data.Catalog, error) {
	cat, err := data.LoadCatalog(data.Paths{
		Abilities:     filepath.Join(dir, "abilities.yaml"),
		StatusEffects: filepath.Join(dir, "status_effects.yaml"),
		Monsters:      filepath.Join(dir, "monsters.yaml"),
		Spawns:        filepath.Join(dir, "spawns.yaml"),
	})
	if err != nil {
		return nil, err
	}
	if err := creature.ValidateCatalog(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func loadFormula(dir string) (creature.Formula, func(), error) {
	if dir == "" {
		return creature.DefaultFormula{}, func() {}, nil
	}
	e, err := scripting.NewEngine(dir, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	return e, e.Close, nil
}

func writeReport(r Report, path string) error {
	raw, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if path == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  wrote %d monsters → %s\n", len(r.Monsters), path)
	return nil
}
