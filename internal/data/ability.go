package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Ability holds a single ability template.
type Ability struct {
	ID            string
	Name          string
	Behavior      string        // behaviour table key: slam, reflect, boom, apply_status
	Cooldown      time.Duration // per-slot cooldown
	SkillType     string
	RequiredLevel int
	Passive       bool
	StatusID      string  // status applied by the behaviour ("" = none)
	Magnitude     float64 // status magnitude
	Duration      int     // status duration in seconds
	Damage        float64 // direct damage dealt by the behaviour
	Category      DamageCategory
	ImpactDelay   time.Duration // delay between cast cue and effect
}

type abilityEntry struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Behavior      string         `yaml:"behavior"`
	Cooldown      float64        `yaml:"cooldown"` // seconds
	SkillType     string         `yaml:"skill_type"`
	RequiredLevel int            `yaml:"required_level"`
	Passive       bool           `yaml:"passive"`
	Status        string         `yaml:"status"`
	Magnitude     float64        `yaml:"magnitude"`
	Duration      int            `yaml:"duration"`
	Damage        float64        `yaml:"damage"`
	Category      DamageCategory `yaml:"damage_category"`
	ImpactDelay   float64        `yaml:"impact_delay"` // seconds
}

type abilityListFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

// AbilityTable holds all abilities indexed by normalized id.
type AbilityTable struct {
	abilities map[string]*Ability
}

// Get returns an ability by id (normalized), or nil if not found.
func (t *AbilityTable) Get(id string) *Ability {
	return t.abilities[NormalizeID(id)]
}

// Each visits every ability.
func (t *AbilityTable) Each(fn func(*Ability)) {
	for _, a := range t.abilities {
		fn(a)
	}
}

// Count returns total loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.abilities)
}

// LoadAbilityTable loads ability definitions from YAML.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	return ParseAbilityTable(raw)
}

func ParseAbilityTable(raw []byte) (*AbilityTable, error) {
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	t := &AbilityTable{abilities: make(map[string]*Ability, len(f.Abilities))}
	for i := range f.Abilities {
		e := &f.Abilities[i]
		id := NormalizeID(e.ID)
		if id == "" {
			return nil, fmt.Errorf("parse abilities: entry %d has no id", i)
		}
		if _, dup := t.abilities[id]; dup {
			return nil, fmt.Errorf("parse abilities: duplicate id %q", id)
		}
		t.abilities[id] = &Ability{
			ID:            id,
			Name:          e.Name,
			Behavior:      NormalizeID(e.Behavior),
			Cooldown:      seconds(e.Cooldown),
			SkillType:     e.SkillType,
			RequiredLevel: e.RequiredLevel,
			Passive:       e.Passive,
			StatusID:      NormalizeID(e.Status),
			Magnitude:     e.Magnitude,
			Duration:      e.Duration,
			Damage:        e.Damage,
			Category:      e.Category,
			ImpactDelay:   seconds(e.ImpactDelay),
		}
	}
	return t, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
