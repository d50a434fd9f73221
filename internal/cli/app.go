package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"github.com/kapturehq/kapture/internal/config"
	"github.com/kapturehq/kapture/internal/logging"
	"github.com/kapturehq/kapture/internal/models"
	"github.com/kapturehq/kapture/internal/netx"
	"github.com/kapturehq/kapture/internal/notion"
	"github.com/kapturehq/kapture/internal/repositories/entries"
	"github.com/kapturehq/kapture/internal/repositories/preferences"
	"github.com/kapturehq/kapture/internal/services"
	"github.com/kapturehq/kapture/internal/storage"

	_ "modernc.org/sqlite"
)

// syncEngine is the slice of the sync service the shell uses.
type syncEngine interface {
	QueueEntryForSync(ctx context.Context, e *models.Entry) error
	SyncPending(ctx context.Context) error
}

// suggester is the slice of the router service the shell uses.
type suggester interface {
	Suggest(ctx context.Context, forTime time.Time) (*models.Destination, error)
	RecordCapture(ctx context.Context, destinationID string)
	Suggestions(ctx context.Context, limit int) ([]models.Destination, error)
}

type destinationLister interface {
	List(ctx context.Context, forceRefresh bool) ([]models.Destination, error)
	Invalidate()
}

type tokenStore interface {
	Token(ctx context.Context) (string, error)
	Save(token string) error
}

type App struct {
	config  *config.Config
	db      *sql.DB
	entries entries.Repository
	prefs   preferences.Repository
	tokens  tokenStore
	dests   destinationLister
	monitor *netx.Monitor
	engine  syncEngine
	router  suggester
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	entriesRepo := entries.NewSQLiteRepository(db)
	prefsRepo := preferences.NewSQLiteRepository(db)

	tokens := notion.NewFileTokenSource(cfg.TokenPath)
	client := notion.NewClient(cfg.APIBaseURL, cfg.NotionVersion, tokens, log)
	dests := notion.NewDestinations(client)
	monitor := netx.NewMonitor(cfg.OnlineProbeAddr)

	engine := services.NewSyncService(entriesRepo, client, monitor, cfg.MaxSyncAttempts, log)
	router := services.NewRouterService(prefsRepo, dests, log)

	return &App{
		config:  cfg,
		db:      db,
		entries: entriesRepo,
		prefs:   prefsRepo,
		tokens:  tokens,
		dests:   dests,
		monitor: monitor,
		engine:  engine,
		router:  router,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// StartOnlineStatusWatcher keeps the reachability sample fresh and kicks a
// dispatch pass whenever connectivity comes back.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	online := a.monitor.CheckNow(ctx)
	if online {
		a.kickSync(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			was := online
			online = a.monitor.CheckNow(ctx)
			if online && !was {
				a.log.Info(ctx, "connectivity regained")
				a.kickSync(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) kickSync(ctx context.Context) {
	if err := a.engine.SyncPending(ctx); err != nil {
		a.log.Error(ctx, "dispatch pass failed", "error", err)
	}
}
