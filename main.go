package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tomato/internal/audio"
	"tomato/internal/clock"
	"tomato/internal/config"
	"tomato/internal/history"
	"tomato/internal/local"
	"tomato/internal/logging"
	"tomato/internal/remote"
	"tomato/internal/stats"
	"tomato/internal/task"
	"tomato/internal/timer"
	"tomato/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TOMATO_CONFIG"))
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	dbPath := cfg.Local.Path
	if dbPath == "" {
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			return err
		}
	}
	ls, err := local.New(dbPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer ls.Close()

	// An unreachable or unconfigured remote degrades to the local fallback;
	// it never blocks startup.
	var rc remote.Commander = remote.Unavailable{}
	if cfg.Remote.DSN != "" {
		pg, err := remote.NewPostgres(context.Background(), cfg.Remote.DSN, cfg.Remote.Timeout)
		if err != nil {
			log.Warn().Err(err).Msg("remote store unreachable, running on local fallback")
		} else {
			rc = pg
			defer pg.Close()
		}
	}

	var cues audio.Sink = audio.Nop{}
	if cfg.Sound.Enabled {
		cues = audio.Bell{W: io.Writer(os.Stderr)}
	}

	clk := clock.Real{}
	ledger := task.NewLedger(log, rc, ls, clk, cues)
	if err := ledger.Load(context.Background()); err != nil {
		log.Warn().Err(err).Msg("task load failed, starting empty")
	}
	aggregator := history.NewAggregator(log, rc, ls, clk)
	statsSvc := stats.NewService(log, rc, clk)

	engine := timer.NewEngine(log, timer.Config{
		WorkMinutes:      cfg.Timer.WorkMinutes,
		BreakMinutes:     cfg.Timer.BreakMinutes,
		LongBreakMinutes: cfg.Timer.LongBreakMinutes,
		CycleLength:      cfg.Timer.CycleLength,
	}, clk, rc, ledger, aggregator, cues)

	engine.SetOnSessionEnd(func() {
		log.Debug().Msg("session transition completed")
	})

	app := tui.NewApp(tui.Deps{
		Log:              log,
		Engine:           engine,
		Ledger:           ledger,
		Aggregator:       aggregator,
		Stats:            statsSvc,
		WorkMinutes:      cfg.Timer.WorkMinutes,
		BreakMinutes:     cfg.Timer.BreakMinutes,
		LongBreakMinutes: cfg.Timer.LongBreakMinutes,
		CycleLength:      cfg.Timer.CycleLength,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
