package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/markblundeberg/miningsim/app/services/simd/handlers"
	"github.com/markblundeberg/miningsim/foundation/events"
	"github.com/markblundeberg/miningsim/foundation/logger"
	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/runner"
	"github.com/markblundeberg/miningsim/foundation/mining/scenario"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIMD")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7280"`
			PublicHost      string        `conf:"default:0.0.0.0:8280"`
		}
		Sim struct {
			ScenarioPath string  `conf:"default:zarea/scenarios/switching.json"`
			RunSeconds   float64 `conf:"default:0,help:simulated seconds to mine at startup, 0 waits for a run request"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work mining simulator",
		},
	}

	const prefix = "SIMD"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Simulation Support

	// The events broker fans per-block events out to the websocket viewers.
	evts := events.New()
	defer evts.Shutdown()

	scn, err := scenario.Load(cfg.Sim.ScenarioPath)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	log.Infow("startup", "scenario", scn.Name, "seed", scn.Seed, "miners", len(scn.Miners))

	// Narration from the engine and the runner goes straight to the logs.
	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	onBlock := func(now float64, minerName string, block blocktree.Block) {
		evts.Send(events.Block{
			Time:       now,
			Miner:      minerName,
			BlockID:    int(block.ID),
			Height:     block.Height,
			Difficulty: block.Difficulty,
			Chainwork:  block.Chainwork,
		})
	}

	sim, err := scn.Build(ev, onBlock)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	run := runner.Run(sim, ev)
	defer run.Shutdown()

	if cfg.Sim.RunSeconds > 0 {
		run.SignalRun(cfg.Sim.RunSeconds)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, log)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	// Make a channel to listen for an interrupt or terminate signal from the
	// OS. Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Runner:   run,
		Evts:     evts,
	})

	api := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      mux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Infow("startup", "status", "public api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
