package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StatusEffect configures how a keyed status behaves when added, re-added,
// ticked and removed.
type StatusEffect struct {
	ID        string
	Temporary bool     // duration counts down each tick
	Reset     bool     // re-adding resets the duration instead of extending it
	Stackable bool     // re-adding increments the stack count
	Hidden    bool     // never shown in presentation lists
	Kinds     []string // ordered effect-kind tags
	Particle  string   // presentation particle id ("" = none)
	Category  DamageCategory
}

type statusEntry struct {
	ID        string         `yaml:"id"`
	Temporary bool           `yaml:"temporary"`
	Reset     bool           `yaml:"reset"`
	Stackable bool           `yaml:"stackable"`
	Hidden    bool           `yaml:"hidden"`
	Kinds     []string       `yaml:"kinds"`
	Particle  string         `yaml:"particle"`
	Category  DamageCategory `yaml:"damage_category"`
}

type statusListFile struct {
	StatusEffects []statusEntry `yaml:"status_effects"`
}

// StatusTable holds all status effect configs indexed by normalized id.
type StatusTable struct {
	effects map[string]*StatusEffect
}

func (t *StatusTable) Get(id string) *StatusEffect {
	return t.effects[NormalizeID(id)]
}

func (t *StatusTable) Each(fn func(*StatusEffect)) {
	for _, e := range t.effects {
		fn(e)
	}
}

func (t *StatusTable) Count() int {
	return len(t.effects)
}

// LoadStatusTable loads status effect definitions from YAML.
func LoadStatusTable(path string) (*StatusTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read status effects: %w", err)
	}
	return ParseStatusTable(raw)
}

func ParseStatusTable(raw []byte) (*StatusTable, error) {
	var f statusListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse status effects: %w", err)
	}
	t := &StatusTable{effects: make(map[string]*StatusEffect, len(f.StatusEffects))}
	for i := range f.StatusEffects {
		e := &f.StatusEffects[i]
		id := NormalizeID(e.ID)
		if id == "" {
			return nil, fmt.Errorf("parse status effects: entry %d has no id", i)
		}
		kinds := make([]string, 0, len(e.Kinds))
		for _, k := range e.Kinds {
			kinds = append(kinds, NormalizeID(k))
		}
		t.effects[id] = &StatusEffect{
			ID:        id,
			Temporary: e.Temporary,
			Reset:     e.Reset,
			Stackable: e.Stackable,
			Hidden:    e.Hidden,
			Kinds:     kinds,
			Particle:  e.Particle,
			Category:  e.Category,
		}
	}
	return t, nil
}
