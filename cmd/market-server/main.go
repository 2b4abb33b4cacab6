// Package main is the entry point for the crypto market simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cryptotycoon/internal/engine"
	"cryptotycoon/internal/game"
	"cryptotycoon/internal/infra/ai"
	"cryptotycoon/internal/infra/storage"
	"cryptotycoon/internal/network"
	"cryptotycoon/internal/platform/config"
	"cryptotycoon/internal/platform/logger"
	"cryptotycoon/internal/platform/metrics"
)

// slotStoreAdapter translates engine slot records to storage slot records.
type slotStoreAdapter struct {
	repo *storage.SQLiteSlotRepository
}

func (a *slotStoreAdapter) Load(ctx context.Context) ([]engine.SlotRecord, error) {
	records, err := a.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]engine.SlotRecord, len(records))
	for i, rec := range records {
		out[i] = engine.SlotRecord{
			Index:     rec.Index,
			State:     rec.State,
			LastSaved: rec.LastSaved,
		}
	}
	return out, nil
}

func (a *slotStoreAdapter) Save(ctx context.Context, index int, state []byte, savedAt time.Time) error {
	return a.repo.Save(ctx, index, state, savedAt)
}

func (a *slotStoreAdapter) Clear(ctx context.Context, index int) error {
	return a.repo.Clear(ctx, index)
}

// dispatch routes a parsed player command to the matching engine method.
func dispatch(ctx context.Context, eng *engine.Engine, log *zap.Logger) func(network.Command) {
	return func(cmd network.Command) {
		var err error
		switch cmd.Type {
		case network.CmdSelectCoin:
			eng.SelectCoin(cmd.CoinID)
		case network.CmdBuy:
			eng.Buy(cmd.Amount)
		case network.CmdSell:
			eng.Sell(cmd.Amount)
		case network.CmdSellAll:
			eng.SellAll()
		case network.CmdPromote:
			eng.Promote()
		case network.CmdBribe:
			eng.Bribe()
		case network.CmdReadNews:
			eng.ReadNews()
		case network.CmdRequestAdvice:
			eng.RequestAdvice(ctx)
		case network.CmdBuyRig:
			eng.BuyOrUpgradeRig(cmd.RigID)
		case network.CmdBuyGPU:
			eng.BuyGPU(cmd.RigID)
		case network.CmdSetMiningCoin:
			eng.SetMiningCoin(cmd.RigID, cmd.CoinID)
		case network.CmdSetTimeSpeed:
			eng.SetTimeSpeed(cmd.Speed)
		case network.CmdToggleSandbox:
			eng.ToggleSandbox(cmd.Confirm)
		case network.CmdFullReset:
			eng.FullReset(cmd.Confirm)
		case network.CmdNewGame:
			err = eng.NewGame(ctx, cmd.Slot)
		case network.CmdLoadGame:
			err = eng.LoadGame(ctx, cmd.Slot)
		case network.CmdSaveGame:
			err = eng.SaveGame(ctx)
		case network.CmdDeleteSlot:
			err = eng.DeleteSlot(ctx, cmd.Slot, cmd.Confirm)
		case network.CmdQuit:
			eng.QuitToMenu()
		default:
			log.Warn("unknown command", zap.String("type", cmd.Type))
		}
		if err != nil {
			log.Warn("command rejected", zap.String("type", cmd.Type), zap.Error(err))
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)
	defer log.Sync()
	log.Info("initializing crypto market simulation server")

	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize sqlite", zap.Error(err))
	}
	defer db.Close()
	slotRepo := storage.NewSQLiteSlotRepository(db, game.MaxSaveSlots)

	provider := ai.NewOpenAIProvider(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	if !provider.IsAvailable() {
		log.Warn("AI provider not configured; news and advice degrade to procedural only")
	}

	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info("simulation RNG seeded", zap.Int64("seed", seed))

	eng := engine.New(log, rng, provider, &slotStoreAdapter{repo: slotRepo}, cfg.NewsCooldown)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := network.NewHub(log, dispatch(ctx, eng, log))
	go hub.Run(ctx)

	// Every committed transition is pushed to all clients.
	eng.SetOnCommit(func(snap engine.Snapshot) {
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Error("failed to serialize snapshot", zap.Error(err))
			return
		}
		hub.Broadcast(payload)
	})

	sched := engine.NewScheduler(log)
	sched.Every("simulation-tick", cfg.TickInterval, eng.Tick)
	sched.Every("news-poll", cfg.NewsPollInterval, func() { eng.PollNews(ctx) })
	sched.Every("autosave", cfg.AutosaveInterval, func() { eng.Autosave(ctx) })
	sched.Start(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hello, err := json.Marshal(eng.Snapshot())
		if err != nil {
			hello = nil
		}
		hub.ServeWS(w, r, hello)
	})
	mux.HandleFunc("/metrics", metrics.Get().Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("server listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}
