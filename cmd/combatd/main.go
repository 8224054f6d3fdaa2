package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/combatcore/internal/config"
	coresys "github.com/l1jgo/combatcore/internal/core/system"
	"github.com/l1jgo/combatcore/internal/creature"
	"github.com/l1jgo/combatcore/internal/data"
	"github.com/l1jgo/combatcore/internal/geo"
	"github.com/l1jgo/combatcore/internal/net/feed"
	"github.com/l1jgo/combatcore/internal/persist"
	"github.com/l1jgo/combatcore/internal/scripting"
	"github.com/l1jgo/combatcore/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             combatd  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        real-time combat simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("COMBATD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load the catalog
	printSection("data")
	catalog, err := data.LoadCatalog(data.Paths{
		Abilities:     cfg.Data.Abilities,
		StatusEffects: cfg.Data.StatusEffects,
		Monsters:      cfg.Data.Monsters,
		Spawns:        cfg.Data.Spawns,
	})
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := creature.ValidateCatalog(catalog); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	printStat("abilities", catalog.Abilities.Count())
	printStat("status effects", catalog.Statuses.Count())
	printStat("monster templates", catalog.Monsters.Count())
	printStat("spawn points", len(catalog.Spawns))

	// 4. Services and formulas
	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	svc := creature.NewServices(catalog, cfg.Combat, log, seed)

	var regenFormula system.RegenFormula
	if cfg.Data.Scripts != "" {
		engine, err := scripting.NewEngine(cfg.Data.Scripts, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		svc.Formula = engine
		regenFormula = engine
		printOK(fmt.Sprintf("combat scripts loaded from %s", filepath.Clean(cfg.Data.Scripts)))
	}
	fmt.Println()

	// 5. Optional PostgreSQL persistence
	var snapshots system.SnapshotStore
	printSection("database")
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		snapshots = persist.NewSnapshotRepo(db)
	} else {
		printOK("persistence disabled (no dsn)")
	}
	fmt.Println()

	// 6. Systems
	roster := system.NewRoster()
	store := feed.NewSessionStore()
	hub := feed.NewHub(cfg.Feed, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(
		hub, store, svc, roster, snapshots,
		geo.V(cfg.Server.PlayerSpawn[0], cfg.Server.PlayerSpawn[1]),
		cfg.Data.StarterAbilities,
		cfg.Loop.MaxCommandsPerTick,
	))
	runner.Register(system.NewTimerSystem(svc))
	runner.Register(system.NewMovementSystem(svc))
	runner.Register(system.NewTriggerSystem(svc))
	runner.Register(system.NewRegenSystem(svc, regenFormula))
	spawner := system.NewSpawnSystem(svc)
	runner.Register(spawner)
	runner.Register(system.NewOutputSystem(svc.Events, store, log))
	var persistSys *system.PersistenceSystem
	if snapshots != nil {
		persistSys = system.NewPersistenceSystem(roster, snapshots, log, cfg.Loop.SaveInterval)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(svc.Entities))

	printSection("world")
	spawned, err := spawner.Populate()
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	printStat("monsters spawned", spawned)
	fmt.Println()

	// 7. Feed
	if cfg.Feed.Enabled {
		if err := hub.Listen(cfg.Feed.BindAddress); err != nil {
			return fmt.Errorf("feed: %w", err)
		}
	}

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("ready")
	if addr := hub.Addr(); addr != nil {
		printReady(fmt.Sprintf("feed listening on ws://%s/ws", addr.String()))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Loop.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if persistSys != nil {
				persistSys.SaveAllPlayers()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := hub.Shutdown(ctx); err != nil {
				log.Warn("feed shutdown", zap.Error(err))
			}
			cancel()
			log.Info("server stopped", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
