package data

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Monster holds static combat data for a monster type.
type Monster struct {
	ID                 string
	Name               string
	WalkingSpeed       float64
	TimeBetweenActions time.Duration
	Wanders            bool
	WanderingRadius    float64
	Attackable         bool
	Size               float64
	Height             float64
	Health             float64
	Damage             float64
	Category           DamageCategory
	AttackRange        float64
	AttackSpeed        time.Duration
	Armor              float64
	Experience         int
	RegenPer5s         float64
	ForwardOffset      float64
	Abilities          []string // ability ids, assigned to slots in order
}

type monsterEntry struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	WalkingSpeed       float64        `yaml:"walking_speed"`
	TimeBetweenActions float64        `yaml:"time_between_actions"`
	Wanders            *bool          `yaml:"wanders"`
	WanderingRadius    float64        `yaml:"wandering_radius"`
	Attackable         bool           `yaml:"attackable"`
	Size               float64        `yaml:"size"`
	Height             float64        `yaml:"height"`
	Health             float64        `yaml:"health"`
	Damage             float64        `yaml:"damage"`
	Category           DamageCategory `yaml:"damage_category"`
	AttackRange        float64        `yaml:"attack_range"`
	AttackSpeed        float64        `yaml:"attack_speed"`
	Armor              float64        `yaml:"armor"`
	Experience         int            `yaml:"experience"`
	RegenPer5s         float64        `yaml:"regen_per_5s"`
	ForwardOffset      float64        `yaml:"forward_offset"`
	Abilities          []string       `yaml:"abilities"`
}

// Spawn places Count monsters of a type around a point.
type Spawn struct {
	Monster string  `yaml:"monster"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Count   int     `yaml:"count"`
	Spread  float64 `yaml:"spread"`  // random offset radius
	Respawn float64 `yaml:"respawn"` // seconds after death; 0 never respawns
}

type monsterListFile struct {
	Monsters []monsterEntry `yaml:"monsters"`
}

type spawnListFile struct {
	Spawns []Spawn `yaml:"spawns"`
}

// MonsterTable holds all monster templates indexed by normalized id.
type MonsterTable struct {
	monsters map[string]*Monster
}

func (t *MonsterTable) Get(id string) *Monster {
	return t.monsters[NormalizeID(id)]
}

func (t *MonsterTable) Count() int {
	return len(t.monsters)
}

// Each visits every template in id order.
func (t *MonsterTable) Each(fn func(*Monster)) {
	ids := make([]string, 0, len(t.monsters))
	for id := range t.monsters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fn(t.monsters[id])
	}
}

// LoadMonsterTable loads monster templates from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monsters: %w", err)
	}
	return ParseMonsterTable(raw)
}

func ParseMonsterTable(raw []byte) (*MonsterTable, error) {
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monsters: %w", err)
	}
	t := &MonsterTable{monsters: make(map[string]*Monster, len(f.Monsters))}
	for i := range f.Monsters {
		e := &f.Monsters[i]
		id := NormalizeID(e.ID)
		if id == "" {
			return nil, fmt.Errorf("parse monsters: entry %d has no id", i)
		}
		m := &Monster{
			ID:                 id,
			Name:               e.Name,
			WalkingSpeed:       orDefault(e.WalkingSpeed, 1),
			TimeBetweenActions: seconds(orDefault(e.TimeBetweenActions, 2)),
			Wanders:            e.Wanders == nil || *e.Wanders,
			WanderingRadius:    e.WanderingRadius,
			Attackable:         e.Attackable,
			Size:               orDefault(e.Size, 1),
			Height:             orDefault(e.Height, 2),
			Health:             orDefault(e.Health, 100),
			Damage:             orDefault(e.Damage, 1),
			Category:           e.Category,
			AttackRange:        orDefault(e.AttackRange, 1),
			AttackSpeed:        seconds(orDefault(e.AttackSpeed, 1)),
			Armor:              e.Armor,
			Experience:         e.Experience,
			RegenPer5s:         e.RegenPer5s,
			ForwardOffset:      e.ForwardOffset,
		}
		for _, a := range e.Abilities {
			m.Abilities = append(m.Abilities, NormalizeID(a))
		}
		t.monsters[id] = m
	}
	return t, nil
}

// LoadSpawnList loads spawn points from a YAML file.
func LoadSpawnList(path string) ([]Spawn, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawns: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawns: %w", err)
	}
	for i := range f.Spawns {
		f.Spawns[i].Monster = NormalizeID(f.Spawns[i].Monster)
		if f.Spawns[i].Count <= 0 {
			f.Spawns[i].Count = 1
		}
	}
	return f.Spawns, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
