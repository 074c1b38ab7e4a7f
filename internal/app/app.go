// Package app wires configuration, storage, sessions and the Telegram
// handlers into a runnable process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kuafsurvey/core/bootstrap"
	"github.com/m3rciful/kuafsurvey/core/buildinfo"
	"github.com/m3rciful/kuafsurvey/core/cmd"
	"github.com/m3rciful/kuafsurvey/core/logger"
	tg "github.com/m3rciful/kuafsurvey/core/telegram"
	"github.com/m3rciful/kuafsurvey/core/telegram/middleware"
	"github.com/m3rciful/kuafsurvey/core/telegram/router"
	"github.com/m3rciful/kuafsurvey/core/telegram/sender"
	"github.com/m3rciful/kuafsurvey/core/telegram/state"
	"github.com/m3rciful/kuafsurvey/internal/access"
	"github.com/m3rciful/kuafsurvey/internal/bot"
	"github.com/m3rciful/kuafsurvey/internal/config"
	"github.com/m3rciful/kuafsurvey/internal/metrics"
	"github.com/m3rciful/kuafsurvey/internal/ops"
	"github.com/m3rciful/kuafsurvey/internal/store"
	"github.com/m3rciful/kuafsurvey/internal/survey"
)

const postgresWait = 30 * time.Second

// App is the running bot process.
type App struct {
	cfg        *config.Config
	db         *sqlx.DB
	redis      *redis.Client
	store      *store.Store
	telegram   *tele.Bot
	registry   *tg.Registry
	dispatcher *sender.Dispatcher
	routes     []tg.Route
	middleware []tg.Middleware
	ops        *ops.Server
}

// Bootstrap adapts New to the command runner.
func Bootstrap(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.App, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(ctx, cfg)
}

// New connects every dependency and binds the handlers. Nothing is served
// until Run.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:      cfg.CoreConfig(),
		Database:    cfg.Database,
		WaitTimeout: postgresWait,
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{rosterSeeder(cfg.Exchange.SeedFile)},
		},
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	policy := survey.DuplicatePolicy(cfg.Survey.DuplicatePolicy)
	a.store = store.New(res.DB, store.Options{
		RejectDuplicates: policy == survey.DuplicatesReject,
		Observe:          metrics.RecordStoreQuery,
	})

	sessions, err := a.sessions(ctx)
	if err != nil {
		return nil, err
	}

	a.telegram, err = tg.NewBot(cfg.CoreConfig())
	if err != nil {
		return nil, err
	}

	a.dispatcher = sender.NewDispatcher(sender.Options{
		QueueSize:  cfg.Sender.QueueSize,
		Workers:    cfg.Sender.Workers,
		MaxRetries: 2,
		PerSecond:  cfg.Sender.PerSecond,
		Burst:      1,
	})

	gate := access.NewGate(access.Options{
		SuperAdmins: cfg.Access.SuperAdminIDs,
		Staff:       a.store,
		Channel:     cfg.Access.Channel,
		Members:     a.telegram,
		Observe:     metrics.RecordSubscriptionCheck,
	})

	handlers, err := bot.New(bot.Options{
		Engine:   survey.NewEngine(),
		Sessions: sessions,
		Records:  a.store,
		Gate:     gate,
		Completer: &survey.Completer{
			Records:  a.store,
			Sessions: sessions,
			Policy:   policy,
			Observe:  func(s survey.Status) { metrics.RecordCompletion(string(s)) },
		},
		API:            a.telegram,
		Dispatcher:     a.dispatcher,
		TempDir:        cfg.Exchange.TempDir,
		MaxImportBytes: cfg.Exchange.MaxImportBytes,
	})
	if err != nil {
		return nil, err
	}

	a.registry = tg.NewRegistry()
	fsm := state.NewRouter(sessions)
	if err := handlers.Register(a.registry, fsm); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	a.routes = buildRoutes(a.registry, fsm, handlers)
	a.middleware = append(tg.DefaultMiddlewares(cfg.CoreConfig(), onLimited),
		tg.Middleware{Name: "update_metrics", Use: countUpdates},
	)

	if !cfg.Ops.Disabled {
		checks := map[string]ops.Check{"postgres": a.store.Ping}
		if a.redis != nil {
			checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
		}
		a.ops = ops.NewServer(ops.Options{Listen: cfg.Ops.Listen, Checks: checks})
	}
	return a, nil
}

func (a *App) sessions(ctx context.Context) (state.Manager, error) {
	if a.cfg.Session.Backend != config.SessionRedis {
		logger.Info(ctx, logger.CompSession, "backend", slog.String("backend", config.SessionMemory))
		return state.NewMemoryManager(), nil
	}
	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("app: redis ping %s: %w", a.cfg.Redis.Addr, err)
	}
	logger.Info(ctx, logger.CompSession, "backend",
		slog.String("backend", config.SessionRedis),
		slog.String("addr", a.cfg.Redis.Addr),
		slog.Duration("duration", logger.RoundMS(logger.Took(start))),
	)
	return state.NewRedisManager(a.redis, state.RedisOptions{
		Prefix:  a.cfg.Redis.Prefix,
		TTL:     a.cfg.Redis.SessionTTL,
		Observe: metrics.RecordSessionOp,
	}), nil
}

// buildRoutes binds commands, callbacks and free-form updates. Unknown input
// falls through to the bot's fallback handlers.
func buildRoutes(reg *tg.Registry, fsm router.FSM, h *bot.Bot) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AllowAdmin:    h.AllowAdmin,
		OnAdminReject: h.DenyAccess,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: h.UnknownCallback()}))
	return append(routes, router.TextRoutes(fsm, reg, router.TextOptions{
		UnknownText:     h.UnknownText(),
		UnknownLocation: h.UnknownLocation(),
		UnknownDocument: h.UnknownDocument(),
	})...)
}

// onLimited silently drops throttled updates; callbacks still get an answer
// so the client stops spinning.
func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

func countUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		metrics.RecordUpdate(middleware.UpdateKind(c.Update()))
		return next(c)
	}
}

// Run serves Telegram updates and the ops endpoints until ctx is done or
// either of them fails.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	metrics.SetBuildInfo(buildinfo.Version, buildinfo.Commit)

	g, gctx := errgroup.WithContext(ctx)
	opsCtx, stopOps := context.WithCancel(gctx)
	g.Go(func() error {
		defer stopOps()
		return tg.Run(gctx, a.telegram, tg.RunOptions{
			Config:      a.cfg.CoreConfig(),
			Registry:    a.registry,
			Dispatcher:  a.dispatcher,
			Middlewares: a.middleware,
			Routes:      a.routes,
			OnStart:     a.onStart,
			OnStop:      a.onStop,
		})
	})
	if a.ops != nil {
		g.Go(func() error { return a.ops.Run(opsCtx) })
	}
	return g.Wait()
}

func (a *App) onStart(ctx context.Context, _ tg.Runtime) error {
	st, err := a.store.Stats(ctx)
	if err != nil {
		logger.Warn(ctx, logger.CompApp, "stats", logger.Err(err))
		return nil
	}
	logger.Info(ctx, logger.CompApp, "stats",
		slog.Int("students", st.Students),
		slog.Int("surveys", st.Surveys),
		slog.Int("staff", st.Staff),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, rt tg.Runtime) error {
	logger.Info(ctx, logger.CompSender, "queue.drain",
		slog.Int("pending", rt.Dispatcher.Pending()),
		slog.Uint64("failed", rt.Dispatcher.ErrorCount()),
	)
	return nil
}

func (a *App) close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn(context.Background(), logger.CompSession, "close", logger.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warn(context.Background(), logger.CompDB, "close", logger.Err(err))
		}
	}
}
