// Package app wires the dashboard together: config, stores, snapshot
// client, event feed, scheduler, journal and the terminal UI.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-dashboard/internal/actions"
	"github.com/rovshanmuradov/solana-dashboard/internal/candles"
	"github.com/rovshanmuradov/solana-dashboard/internal/config"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"github.com/rovshanmuradov/solana-dashboard/internal/feed"
	"github.com/rovshanmuradov/solana-dashboard/internal/logger"
	"github.com/rovshanmuradov/solana-dashboard/internal/reconcile"
	"github.com/rovshanmuradov/solana-dashboard/internal/sched"
	"github.com/rovshanmuradov/solana-dashboard/internal/snapshot"
	"github.com/rovshanmuradov/solana-dashboard/internal/storage"
	"github.com/rovshanmuradov/solana-dashboard/internal/storage/postgres"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui"
)

const refreshTaskName = "snapshot-refresh"

// App owns every long-lived component of the dashboard.
type App struct {
	cfg  *config.Config
	log  *logger.Logger
	ring *logger.Ring

	positions *reconcile.Store
	tokens    *reconcile.TokenStore
	snap      *snapshot.Client
	trader    *actions.Client
	listener  *feed.Listener
	scheduler *sched.Scheduler
	journal   storage.Journal
	bus       *ui.Bus
	program   *tea.Program
}

// New builds the application from configuration. Nothing starts running
// until Run.
func New(cfg *config.Config) (*App, error) {
	ring := logger.NewRing(256)
	log, err := logger.NewForUI(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      7,
		Compress:    true,
		Development: cfg.DebugLogging,
	}, ring)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	// every component logger below inherits the session tag
	log.Logger = log.WithSession(uuid.New().String())

	a := &App{
		cfg:  cfg,
		log:  log,
		ring: ring,
		bus:  ui.NewBus(),
	}

	a.snap = snapshot.NewClient(cfg.APIBaseURL, log.WithComponent("snapshot"))
	a.trader = actions.NewClient(cfg.APIBaseURL, log.WithComponent("actions"))
	a.positions = reconcile.NewStore(a.requestRefresh, log.WithComponent("positions"))
	a.tokens = reconcile.NewTokenStore(a.requestRefresh, log.WithComponent("tokens"))
	a.listener = feed.NewListener(cfg.WebSocketURL, uint(cfg.FeedRetries), a.handleEvent,
		log.WithComponent("feed"))
	a.scheduler = sched.New(log.WithComponent("sched"))

	if cfg.PostgresURL != "" {
		journal, err := postgres.NewJournal(cfg.PostgresURL, log.WithComponent("journal"))
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		if err := journal.RunMigrations(); err != nil {
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
		a.journal = journal
	} else {
		a.journal = storage.Noop{}
	}

	dashboard := ui.NewDashboard(a.positions, a.tokens, a.trader, a.loadChart,
		ring, a.bus, log.WithComponent("ui"))
	dashboard.SetRefresh(func() { a.refresh(context.Background()) })
	a.program = tea.NewProgram(dashboard, tea.WithAltScreen())

	return a, nil
}

// Run starts every component and blocks until ctx is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	defer a.scheduler.Stop()
	defer a.journal.Close()
	defer func() { _ = a.log.Sync() }()

	// first snapshot before the UI draws, so the table is never empty on a
	// working backend
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	a.refresh(loadCtx)
	cancel()

	interval := time.Duration(a.cfg.RefreshInterval) * time.Second
	a.scheduler.Every(ctx, refreshTaskName, interval, func(taskCtx context.Context) {
		a.refresh(taskCtx)
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.bus.Publish(ui.FeedStateMsg{Connected: true})
		err := a.listener.Run(ctx)
		a.bus.Publish(ui.FeedStateMsg{Connected: false})
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		_, err := a.program.Run()
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		a.listener.Close()
		a.program.Quit()
		return nil
	})

	return g.Wait()
}

// Quit asks the UI to exit, which unwinds Run.
func (a *App) Quit() {
	a.program.Quit()
}

// handleEvent is the feed callback: merge into the stores, journal
// settlements, nudge the UI.
func (a *App) handleEvent(ev domain.Event) {
	res := a.positions.ApplyEvent(ev)
	a.tokens.ApplyEvent(ev)

	if res == reconcile.Applied {
		a.journalSettlement(ev)
	}

	a.bus.Publish(ui.EventAppliedMsg{Event: ev})
}

// journalSettlement records trade executions and closes in the journal.
// Failures are logged and never block the merge path.
func (a *App) journalSettlement(ev domain.Event) {
	if ev.Kind != domain.EventTradeExecuted && ev.Kind != domain.EventClosed {
		return
	}
	p, ok := a.positions.Get(string(ev.ID))
	if !ok {
		return
	}

	op := a.log.WithOperation("journal-settlement")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.journal.RecordTrade(ctx, storage.TradeFromEvent(ev, p)); err != nil {
			op.Warn("journal trade write failed", zap.Error(err))
		}
		if p.Status.Terminal() {
			if err := a.journal.ArchivePosition(ctx, storage.ArchiveFromPosition(p)); err != nil {
				op.Warn("journal archive write failed", zap.Error(err))
			}
		}
	}()
}

// requestRefresh is handed to the stores for deferred created events.
func (a *App) requestRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.refresh(ctx)
}

// refresh replaces both stores with fresh snapshots. Each run carries its
// own correlation ID so a failed fetch and its retries line up in the log.
func (a *App) refresh(ctx context.Context) {
	op := a.log.WithOperation("snapshot-refresh")

	positions, err := a.snap.Positions(ctx)
	if err != nil {
		op.Warn("position snapshot failed", zap.Error(err))
		a.bus.Publish(ui.ErrorMsg{Err: err, Title: "snapshot"})
		return
	}
	tokens, err := a.snap.Tokens(ctx)
	if err != nil {
		op.Warn("token snapshot failed", zap.Error(err))
		a.bus.Publish(ui.ErrorMsg{Err: err, Title: "snapshot"})
		return
	}

	a.positions.LoadSnapshot(positions)
	a.tokens.LoadSnapshot(tokens)
	a.bus.Publish(ui.SnapshotLoadedMsg{Positions: len(positions), Tokens: len(tokens)})
}

// loadChart fetches raw candles and normalizes them for the chart pane.
func (a *App) loadChart(ctx context.Context, mint string) (*candles.Series, error) {
	if err := domain.ValidateMint(mint); err != nil {
		return nil, err
	}
	raw, err := a.snap.Candles(ctx, mint, a.cfg.CandleLimit)
	if err != nil {
		return nil, err
	}
	return candles.Normalize(raw), nil
}
