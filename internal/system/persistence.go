package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/persist"
)

// SnapshotStore is the storage side of player persistence; *persist.SnapshotRepo
// implements it.
type SnapshotStore interface {
	Load(ctx context.Context, name string) (*persist.SnapshotRow, error)
	SaveBatch(ctx context.Context, rows []persist.SnapshotRow) error
}

// ToRow flattens a snapshot for storage.
func ToRow(s creature.Snapshot) persist.SnapshotRow {
	ids := make([]string, creature.SlotCount)
	copy(ids, s.Abilities[:])
	return persist.SnapshotRow{
		Name:       s.Name,
		MaxHealth:  s.MaxHealth,
		Health:     s.Health,
		Damage:     s.Damage,
		AbilityIDs: ids,
	}
}

// FromRow rebuilds a snapshot. Extra ability ids beyond the slot count are
// dropped.
func FromRow(r *persist.SnapshotRow) creature.Snapshot {
	s := creature.Snapshot{
		Name:      r.Name,
		MaxHealth: r.MaxHealth,
		Health:    r.Health,
		Damage:    r.Damage,
	}
	copy(s.Abilities[:], r.AbilityIDs)
	return s
}

// PersistenceSystem periodically saves dirty players. Phase 6 (Persist).
type PersistenceSystem struct {
	players   *Roster
	store     SnapshotStore
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

func NewPersistenceSystem(players *Roster, store SnapshotStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		players:  players,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
}

// SaveAllPlayers persists all online players immediately, ignoring dirty flags.
// Called for graceful shutdown.
func (s *PersistenceSystem) SaveAllPlayers() {
	s.savePlayers(false)
}

// savePlayers writes one batch. Dirty flags are only cleared when the batch
// commits, so a failed save is retried next interval.
func (s *PersistenceSystem) savePlayers(dirtyOnly bool) {
	var (
		rows  []persist.SnapshotRow
		saved []*creature.Creature
	)
	s.players.Each(func(c *creature.Creature) {
		if dirtyOnly && !c.Dirty() {
			return // no state change since last save
		}
		rows = append(rows, ToRow(c.Snapshot()))
		saved = append(saved, c)
	})
	if len(rows) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveBatch(ctx, rows); err != nil {
		s.log.Error("auto-save failed", zap.Int("players", len(rows)), zap.Error(err))
		return
	}
	for _, c := range saved {
		c.ClearDirty()
	}
	s.log.Debug("auto-save", zap.Int("players", len(rows)))
}
