package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Loop     LoopConfig     `toml:"loop"`
	Combat   CombatConfig   `toml:"combat"`
	Feed     FeedConfig     `toml:"feed"`
	Data     DataConfig     `toml:"data"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name        string     `toml:"name"`
	ID          int        `toml:"id"`
	Seed        int64      `toml:"seed"`         // 0 = seed from boot time
	PlayerSpawn [2]float64 `toml:"player_spawn"` // where joining players appear
	StartTime   int64      // set at boot, not from config
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoopConfig struct {
	TickRate           time.Duration `toml:"tick_rate"`
	SaveInterval       int           `toml:"save_interval"`         // ticks between dirty snapshot saves
	MaxCommandsPerTick int           `toml:"max_commands_per_tick"` // per session
}

// Global cooldown policies.
const (
	GCDCappedHalf  = "capped_half"  // min(1s, attackSpeed/2)
	GCDAttackSpeed = "attack_speed" // attackSpeed
)

type CombatConfig struct {
	DamageJitter      float64       `toml:"damage_jitter"`       // ± fraction applied to base damage
	MitigationFactor  float64       `toml:"mitigation_factor"`   // armor → flat reduction
	CombatTimeout     time.Duration `toml:"combat_timeout"`      // inactivity before auto exit
	MonitorInterval   time.Duration `toml:"monitor_interval"`    // combat monitor period
	StatusTick        time.Duration `toml:"status_tick"`         // status effect tick period
	GlobalCooldown    string        `toml:"global_cooldown"`     // capped_half | attack_speed
	PivotAngle        float64       `toml:"pivot_angle"`         // degrees; larger heading deltas turn in place first
	PursuitRepath     time.Duration `toml:"pursuit_repath"`      // attack pursuit re-targeting period
	CorpseLinger      time.Duration `toml:"corpse_linger"`       // dead monsters removed after this
	RegenInterval     time.Duration `toml:"regen_interval"`      // out of combat regeneration period
	ActionJitter      float64       `toml:"action_jitter"`       // ± fraction on monster think interval
	DefaultMoveRadius float64       `toml:"default_move_radius"` // arrival radius for move commands
}

type FeedConfig struct {
	Enabled      bool   `toml:"enabled"`
	BindAddress  string `toml:"bind_address"`
	InQueueSize  int    `toml:"in_queue_size"`
	OutQueueSize int    `toml:"out_queue_size"`
}

type DataConfig struct {
	Abilities     string `toml:"abilities"`
	StatusEffects string `toml:"status_effects"`
	Monsters      string `toml:"monsters"`
	Spawns        string `toml:"spawns"`
	Scripts       string `toml:"scripts"`

	// StarterAbilities fill the slots of a player with no saved snapshot.
	StarterAbilities []string `toml:"starter_abilities"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Combat.GlobalCooldown {
	case GCDCappedHalf, GCDAttackSpeed:
	default:
		return fmt.Errorf("combat.global_cooldown: unknown policy %q", c.Combat.GlobalCooldown)
	}
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("loop.tick_rate must be positive")
	}
	if c.Combat.MonitorInterval <= 0 || c.Combat.StatusTick <= 0 {
		return fmt.Errorf("combat intervals must be positive")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "combatd",
			ID:   1,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Loop: LoopConfig{
			TickRate:           100 * time.Millisecond,
			SaveInterval:       3000, // 5 minutes at 100ms
			MaxCommandsPerTick: 8,
		},
		Combat: DefaultCombat(),
		Feed: FeedConfig{
			Enabled:      true,
			BindAddress:  "127.0.0.1:7100",
			InQueueSize:  64,
			OutQueueSize: 512,
		},
		Data: DataConfig{
			Abilities:     "data/yaml/abilities.yaml",
			StatusEffects: "data/yaml/status_effects.yaml",
			Monsters:      "data/yaml/monsters.yaml",
			Spawns:        "data/yaml/spawns.yaml",
			Scripts:       "scripts",

			StarterAbilities: []string{"boom", "reflect"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultCombat returns the stock combat tuning.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		DamageJitter:      0.1,
		MitigationFactor:  0.5,
		CombatTimeout:     15 * time.Second,
		MonitorInterval:   time.Second,
		StatusTick:        time.Second,
		GlobalCooldown:    GCDCappedHalf,
		PivotAngle:        160,
		PursuitRepath:     500 * time.Millisecond,
		CorpseLinger:      2 * time.Second,
		RegenInterval:     5 * time.Second,
		ActionJitter:      0.25,
		DefaultMoveRadius: 0.5,
	}
}
