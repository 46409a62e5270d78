package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"evtd/src-server/model"
	"evtd/src-server/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB

	// the event store and the bus it reports mutations to
	Store   *store.EventStore
	Bus     *store.Bus
	Journal *model.Journal

	Registry    *prometheus.Registry
	MetricChans *Metric

	AppCloseSignalChan chan os.Signal

	startTime        time.Time
	shutdownMu       sync.Mutex
	shutdownChans    []chan struct{}
	shutdownComplete bool
}

// NewAppState builds everything from env and exits the process on failure.
func NewAppState() *AppState {
	as, err := BuildAppState(context.Background(), NewConfig())
	if err != nil {
		slog.Error("can't build app state", "error", err)
		os.Exit(1)
	}
	return as
}

func BuildAppState(ctx context.Context, config *Config) (*AppState, error) {
	as := &AppState{
		Config:             config,
		Bus:                store.NewBus(),
		Registry:           prometheus.NewRegistry(),
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		startTime:          time.Now(),
	}
	as.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// database
	databasePath := config.GetDatabasePath()
	if config.GetStoreBackend() == STORE_BACKEND_MEMORY && databasePath != ":memory:" {
		// in-memory ids restart at 0 on every launch, so the journal must not outlive them
		slog.Info("memory backend keeps the journal in memory", "ignored_database_path", databasePath)
		databasePath = ":memory:"
	}
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, databasePath)
	if err != nil {
		return nil, fmt.Errorf("BuildAppState: can't open sqlite database: %w", err)
	}
	// one connection: ":memory:" is per connection, and a file database
	// only takes one writer at a time anyway
	as.RawDB.SetMaxOpenConns(1)
	as.RawDB.SetMaxIdleConns(1)
	if databasePath != ":memory:" {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
		} {
			if _, err := as.RawDB.ExecContext(ctx, pragma); err != nil {
				as.RawDB.Close()
				return nil, fmt.Errorf("BuildAppState: can't run %q: %w", pragma, err)
			}
		}
	}

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		as.BunDB.Close()
		return nil, fmt.Errorf("BuildAppState: %w", err)
	}

	// notification observers
	as.Journal = model.NewJournal(as.BunDB)
	as.Bus.Subscribe(func(ctx context.Context, n store.Notification) {
		slog.Info("event mutated",
			"kind", n.Kind,
			"id", n.EventID,
			"name", n.Name,
			"max_attendance", n.MaxAttendance,
			"owner", n.Owner)
	})

	// event store
	var backend store.Backend
	switch config.GetStoreBackend() {
	case STORE_BACKEND_MEMORY:
		backend = store.NewMemoryBackend()
		as.Bus.SubscribeNotifier(as.Journal)
	default:
		// journal rows are written in the event row's transaction
		backend = model.NewJournaledEventRepo(as.BunDB)
	}
	as.Store, err = store.New(ctx, backend, as.Bus, store.Options{
		EnforceOwner: config.GetEnforceOwner(),
	})
	if err != nil {
		as.BunDB.Close()
		return nil, fmt.Errorf("BuildAppState: %w", err)
	}
	slog.Debug("event store ready", "backend", config.GetStoreBackend(), "next_id", as.Store.Count())

	return as, nil
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime).Round(time.Second)
}

// CreateGracefulShutdownChan returns a channel that's closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()

	ch := make(chan struct{})
	if as.shutdownComplete {
		close(ch)
		return ch
	}
	as.shutdownChans = append(as.shutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	if as.shutdownComplete {
		return
	}
	as.shutdownComplete = true

	for _, ch := range as.shutdownChans {
		close(ch)
	}
	as.shutdownChans = nil

	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
