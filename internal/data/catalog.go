package data

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Configuration errors. Any of these means a data asset is missing or corrupt.
var (
	ErrUnknownAbility = errors.New("unknown ability")
	ErrUnknownStatus  = errors.New("unknown status effect")
	ErrUnknownMonster = errors.New("unknown monster")
)

var idCaser = cases.Lower(language.Und)

// NormalizeID lower-cases an id and replaces spaces with underscores so
// "Frost Nova" and "frost_nova" name the same record.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	return strings.ReplaceAll(idCaser.String(id), " ", "_")
}

// Catalog resolves ability, status and monster records by id. It is built once
// at boot and shared read-only.
type Catalog struct {
	Abilities *AbilityTable
	Statuses  *StatusTable
	Monsters  *MonsterTable
	Spawns    []Spawn
}

// Paths lists the catalog sources.
type Paths struct {
	Abilities     string
	StatusEffects string
	Monsters      string
	Spawns        string // optional
}

// LoadCatalog loads every table and validates cross references.
func LoadCatalog(p Paths) (*Catalog, error) {
	abilities, err := LoadAbilityTable(p.Abilities)
	if err != nil {
		return nil, err
	}
	statuses, err := LoadStatusTable(p.StatusEffects)
	if err != nil {
		return nil, err
	}
	monsters, err := LoadMonsterTable(p.Monsters)
	if err != nil {
		return nil, err
	}
	c := &Catalog{Abilities: abilities, Statuses: statuses, Monsters: monsters}
	if p.Spawns != "" {
		if c.Spawns, err = LoadSpawnList(p.Spawns); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Ability resolves an ability id.
func (c *Catalog) Ability(id string) (*Ability, error) {
	if a := c.Abilities.Get(id); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAbility, id)
}

// Status resolves a status effect id.
func (c *Catalog) Status(id string) (*StatusEffect, error) {
	if s := c.Statuses.Get(id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, id)
}

// Monster resolves a monster id.
func (c *Catalog) Monster(id string) (*Monster, error) {
	if m := c.Monsters.Get(id); m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMonster, id)
}

// Validate checks every id referenced between tables resolves.
func (c *Catalog) Validate() error {
	for _, a := range c.Abilities.abilities {
		if a.StatusID == "" {
			continue
		}
		if _, err := c.Status(a.StatusID); err != nil {
			return fmt.Errorf("ability %q: %w", a.ID, err)
		}
	}
	for _, m := range c.Monsters.monsters {
		for _, id := range m.Abilities {
			if _, err := c.Ability(id); err != nil {
				return fmt.Errorf("monster %q: %w", m.ID, err)
			}
		}
	}
	for i, s := range c.Spawns {
		if _, err := c.Monster(s.Monster); err != nil {
			return fmt.Errorf("spawn %d: %w", i, err)
		}
	}
	return nil
}
