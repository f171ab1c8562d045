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
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/battlecore/internal/combat"
	"github.com/l1jgo/battlecore/internal/config"
	"github.com/l1jgo/battlecore/internal/core/event"
	coresys "github.com/l1jgo/battlecore/internal/core/system"
	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/handler"
	gonet "github.com/l1jgo/battlecore/internal/net"
	"github.com/l1jgo/battlecore/internal/net/packet"
	"github.com/l1jgo/battlecore/internal/persist"
	"github.com/l1jgo/battlecore/internal/scripting"
	"github.com/l1jgo/battlecore/internal/system"
	"github.com/l1jgo/battlecore/internal/world"
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
	fmt.Println("\033[36;1m  │\033[0m             battlecore  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          戰鬥核心 · Go 遊戲伺服器         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Static data ───────────────────────────────────────────────────

type tables struct {
	skills   *data.SkillTable
	monsters *data.MonsterTable
	maps     *data.MapTable
	weapons  *data.WeaponSkillTable
	contest  *data.ContestTable
	spawns   *data.SpawnList
}

func loadTables(dir string) (*tables, error) {
	var (
		t   tables
		err error
	)
	if t.skills, err = data.LoadSkillTable(filepath.Join(dir, "skill_list.yaml")); err != nil {
		return nil, fmt.Errorf("load skill table: %w", err)
	}
	if t.monsters, err = data.LoadMonsterTable(filepath.Join(dir, "monster_list.yaml")); err != nil {
		return nil, fmt.Errorf("load monster table: %w", err)
	}
	if t.maps, err = data.LoadMapTable(filepath.Join(dir, "map_list.yaml")); err != nil {
		return nil, fmt.Errorf("load map table: %w", err)
	}
	if t.weapons, err = data.LoadWeaponSkillTable(filepath.Join(dir, "weapon_skill_list.yaml")); err != nil {
		return nil, fmt.Errorf("load weapon skill table: %w", err)
	}
	if t.contest, err = data.LoadContestTable(filepath.Join(dir, "contest_list.yaml")); err != nil {
		return nil, fmt.Errorf("load contest table: %w", err)
	}
	if t.spawns, err = data.LoadSpawnList(filepath.Join(dir, "spawn_list.yaml"), t.monsters); err != nil {
		return nil, fmt.Errorf("load spawn list: %w", err)
	}
	return &t, nil
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("BATTLECORE_CONFIG"); p != "" {
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

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	fmt.Println()

	// 4. Static data and formula scripts
	printSection("遊戲資料")
	tbl, err := loadTables(cfg.Data.YAMLDir)
	if err != nil {
		return err
	}
	tbl.maps.MarkContest(cfg.Combat.ContestMapIDs)
	printStat("技能定義", tbl.skills.Count())
	printStat("怪物模板", tbl.monsters.Count())
	printStat("地圖", tbl.maps.Count())

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("Lua 公式載入完成")
	fmt.Println()

	// 5. Repositories and async writer
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)
	itemRepo := persist.NewItemRepo(db)
	writer := persist.NewWriter(cfg.Database.WriteQueueSize, log)
	store := persist.NewStore(tbl.skills, tbl.monsters,
		persist.NewSkillRepo(db), persist.NewProficiencyRepo(db), itemRepo, writer)

	// 6. World, combat core and packet handlers
	worldState := world.NewState(tbl.maps, cfg.Combat.ScreenRange)
	clock := world.NewClock(time.Now())
	bus := event.NewBus()
	hub := handler.NewHub(worldState, log)

	combatMgr := combat.NewManager(&combat.Deps{
		Clock:        clock,
		World:        worldState,
		Repo:         store,
		Damage:       engine,
		Notify:       hub,
		Observer:     system.NewBusObserver(bus),
		Dice:         combat.RandomDice{},
		WeaponSkills: tbl.weapons,
		Contest:      tbl.contest,
		Config:       cfg.Combat,
		Log:          log,
	})

	deps := &handler.Deps{
		Accounts:   accountRepo,
		Characters: charRepo,
		Items:      itemRepo,
		Writer:     writer,
		Config:     cfg,
		Log:        log,
		World:      worldState,
		Clock:      clock,
		Combat:     combatMgr,
		Hub:        hub,
		Bus:        bus,
		Skills:     tbl.skills,
	}
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)

	// 7. Spawns
	spawnSys := system.NewSpawnSystem(worldState, clock, tbl.monsters, hub, combat.RandomDice{}, log)
	spawnSys.Subscribe(bus)
	system.RegisterAnnouncements(bus, worldState, hub, log)
	monsters, statics := spawnSys.Populate(tbl.spawns)
	printStat("怪物", monsters)
	printStat("建築", statics)
	fmt.Println()

	// 8. Network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.PacketsPerSecond,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}

	// 9. Systems
	sessions := gonet.NewSessionStore()
	persistSys := system.NewPersistenceSystem(deps, cfg.Combat.SaveInterval)
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer.NewSessions(), pktReg, sessions, deps, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewCombatSystem(clock, combatMgr))
	runner.Register(system.NewEffectSystem(worldState, clock, hub, log))
	runner.Register(spawnSys)
	runner.Register(system.NewOutputSystem(sessions))
	runner.Register(persistSys)

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	// 10. Run: game loop, accept loop and the save writer
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 存檔佇列要等遊戲迴圈送出最後一批存檔後才停
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(writerCtx)
	})
	g.Go(func() error {
		return netServer.AcceptLoop()
	})
	g.Go(func() error {
		defer stopWriter()
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runner.Tick(cfg.Network.TickRate)
			case <-gctx.Done():
				log.Info("收到關閉信號，儲存所有玩家")
				netServer.Shutdown()
				sessions.ForEach(func(sess *gonet.Session) {
					handler.Logout(sess, deps)
					sess.Close()
				})
				persistSys.SaveAllPlayers()
				return nil
			}
		}
	})

	err = g.Wait()
	log.Info("伺服器已停止",
		zap.Uint64("saves", writer.Done()),
		zap.Uint64("dropped", writer.Dropped()),
	)
	return err
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
