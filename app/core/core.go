package core

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rowdybard/banterbox/app/core/srv"
	"github.com/rowdybard/banterbox/app/store"
	"github.com/rowdybard/banterbox/app/store/memstore"
	"github.com/rowdybard/banterbox/app/store/sqlstore"
)

// Stores is the backend-neutral store surface. Backed by postgres when a DSN
// is configured, by the in-memory store otherwise. The engine treats its
// storage as disposable either way.
type Stores interface {
	ContextEventStore() store.ContextEventStore
	PriorResponseStore() store.PriorResponseStore
}

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     Stores
	httpClient *http.Client
	httpEngine *gin.Engine

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("banterbox", "core"),
		httpEngine: gin.New(),
	}

	setupStores(core)

	core.srv = srv.SetupSrvs(
		srv.ApplyClassifier(cfg.AI),
		srv.ApplyCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix),
	)

	return core
}

func setupStores(core *Core) {
	if core.cfg.Postgres.DSN == "" {
		slog.Warn("no postgres dsn configured, memory engine runs on the in-process store")
		core.stores = memstore.NewProvider()
		return
	}

	provider := sqlstore.MustSetup(core.cfg.Postgres)()
	if err := provider.Install(); err != nil {
		panic(err)
	}
	core.stores = provider
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() Stores {
	return s.stores
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}
