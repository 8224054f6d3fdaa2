package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SnapshotRow is the persisted shape of a creature. AbilityIDs has one entry
// per slot; empty strings are empty slots.
type SnapshotRow struct {
	Name       string
	MaxHealth  float64
	Health     float64
	Damage     float64
	AbilityIDs []string
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

const upsertSnapshot = `INSERT INTO creature_snapshots (name, max_health, health, damage, ability_ids, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (name) DO UPDATE SET
		max_health = EXCLUDED.max_health,
		health = EXCLUDED.health,
		damage = EXCLUDED.damage,
		ability_ids = EXCLUDED.ability_ids,
		updated_at = NOW()`

// Load returns the snapshot for name. A missing row returns (nil, nil).
func (r *SnapshotRepo) Load(ctx context.Context, name string) (*SnapshotRow, error) {
	row := &SnapshotRow{Name: name}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT max_health, health, damage, ability_ids
		 FROM creature_snapshots WHERE name = $1`, name,
	).Scan(&row.MaxHealth, &row.Health, &row.Damage, &row.AbilityIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return row, nil
}

// Save upserts one snapshot.
func (r *SnapshotRepo) Save(ctx context.Context, s *SnapshotRow) error {
	if _, err := r.db.Pool.Exec(ctx, upsertSnapshot,
		s.Name, s.MaxHealth, s.Health, s.Damage, s.AbilityIDs,
	); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.Name, err)
	}
	return nil
}

// SaveBatch upserts every snapshot in a single transaction. Either all rows
// are written or none are.
func (r *SnapshotRepo) SaveBatch(ctx context.Context, rows []SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, s := range rows {
		batch.Queue(upsertSnapshot, s.Name, s.MaxHealth, s.Health, s.Damage, s.AbilityIDs)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("snapshot batch: %w", err)
	}
	return tx.Commit(ctx)
}

// Delete removes the snapshot for name.
func (r *SnapshotRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM creature_snapshots WHERE name = $1`, name)
	return err
}
