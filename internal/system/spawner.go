package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
)

type pendingRespawn struct {
	spawn *data.Spawn
	due   time.Duration
}

// SpawnSystem populates the world from the spawn list and brings dead
// monsters back after their spawn's respawn delay. Phase 4 (PostUpdate).
type SpawnSystem struct {
	svc     *creature.Services
	pending []pendingRespawn
	log     *zap.Logger
}

func NewSpawnSystem(svc *creature.Services) *SpawnSystem {
	return &SpawnSystem{svc: svc, log: svc.Log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Populate spawns every entry of the catalog's spawn list. Returns the number
// of monsters placed.
func (s *SpawnSystem) Populate() (int, error) {
	n := 0
	for i := range s.svc.Catalog.Spawns {
		sp := &s.svc.Catalog.Spawns[i]
		for j := 0; j < sp.Count; j++ {
			if _, err := s.spawnOne(sp); err != nil {
				return n, err
			}
			n++
		}
	}
	s.log.Info("world populated", zap.Int("monsters", n))
	return n, nil
}

// Pending returns the number of queued respawns.
func (s *SpawnSystem) Pending() int { return len(s.pending) }

func (s *SpawnSystem) Update(_ time.Duration) {
	if len(s.pending) == 0 {
		return
	}
	now := s.svc.Timers.Now()
	keep := s.pending[:0]
	for _, p := range s.pending {
		if now < p.due {
			keep = append(keep, p)
			continue
		}
		if _, err := s.spawnOne(p.spawn); err != nil {
			s.log.Error("respawn failed", zap.String("monster", p.spawn.Monster), zap.Error(err))
		}
	}
	s.pending = keep
}

func (s *SpawnSystem) spawnOne(sp *data.Spawn) (*creature.Creature, error) {
	m, err := s.svc.Catalog.Monster(sp.Monster)
	if err != nil {
		return nil, err
	}
	c, err := creature.Spawn(s.svc, m, s.scatter(sp))
	if err != nil {
		return nil, err
	}
	if sp.Respawn > 0 {
		delay := time.Duration(sp.Respawn * float64(time.Second))
		c.OnDeath(func(*creature.Creature) {
			s.pending = append(s.pending, pendingRespawn{spawn: sp, due: s.svc.Timers.Now() + delay})
		})
	}
	return c, nil
}

// scatter picks a uniform point in the spawn disc.
func (s *SpawnSystem) scatter(sp *data.Spawn) geo.Vec2 {
	center := geo.V(sp.X, sp.Y)
	if sp.Spread <= 0 {
		return center
	}
	r := sp.Spread * math.Sqrt(s.svc.Rand.Float64())
	return center.Add(geo.FromHeading(s.svc.Rand.Float64() * 360).Scale(r))
}
