package main

import (
	"math"
	"time"

	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/data"
)

// Attacker describes the player side of a report.
type Attacker struct {
	Damage      float64 `yaml:"damage"`
	AttackSpeed float64 `yaml:"attack_speed"` // seconds
	Armor       float64 `yaml:"armor"`
}

type Report struct {
	Attacker Attacker        `yaml:"attacker"`
	Monsters []MonsterReport `yaml:"monsters"`
}

type MonsterReport struct {
	ID          string   `yaml:"id"`
	Health      float64  `yaml:"health"`
	Armor       float64  `yaml:"armor"`
	HitDamage   float64  `yaml:"hit_damage"`             // attacker damage after mitigation
	HitsToKill  int      `yaml:"hits_to_kill,omitempty"` // 0 when immune
	TimeToKill  float64  `yaml:"time_to_kill,omitempty"` // seconds, first hit lands immediately
	Immune      bool     `yaml:"immune,omitempty"`
	ThreatDPS   float64  `yaml:"threat_dps"` // monster basic attack damage per second
	Experience  int      `yaml:"experience"`
	Abilities   []string `yaml:"abilities,omitempty"`
	SpawnPoints int      `yaml:"spawn_points"`
}

// BuildReport evaluates every monster template against a. Rolls use the
// mean multiplier.
func BuildReport(cat *data.Catalog, f creature.Formula, a Attacker, mitigationFactor float64) Report {
	spawns := make(map[string]int)
	for _, sp := range cat.Spawns {
		spawns[data.NormalizeID(sp.Monster)] += sp.Count
	}

	r := Report{Attacker: a}
	cat.Monsters.Each(func(m *data.Monster) {
		hit := math.Max(f.HitDamage(a.Damage, 1)-f.Mitigation(m.Armor, mitigationFactor), 0)
		mr := MonsterReport{
			ID:          m.ID,
			Health:      m.Health,
			Armor:       m.Armor,
			HitDamage:   hit,
			Experience:  m.Experience,
			Abilities:   m.Abilities,
			SpawnPoints: spawns[m.ID],
		}
		if hit > 0 {
			mr.HitsToKill = int(math.Ceil(m.Health / hit))
			mr.TimeToKill = float64(mr.HitsToKill-1) * a.AttackSpeed
		} else {
			mr.Immune = true
		}
		if m.AttackSpeed > 0 {
			threat := math.Max(f.HitDamage(m.Damage, 1)-f.Mitigation(a.Armor, mitigationFactor), 0)
			mr.ThreatDPS = round2(threat / (float64(m.AttackSpeed) / float64(time.Second)))
		}
		r.Monsters = append(r.Monsters, mr)
	})
	return r
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
