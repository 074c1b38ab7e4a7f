package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tg "github.com/m3rciful/kuafsurvey/core/telegram"
	"github.com/m3rciful/kuafsurvey/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// AllowAdmin decides who may run AdminOnly commands.
	AllowAdmin    func(c tele.Context) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers with a handler summary log and the
// admin guard for AdminOnly commands.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		h := def.Handler
		if def.AdminOnly {
			h = middleware.Guard(middleware.AccessOptions{
				Name:     name,
				Allow:    opts.AllowAdmin,
				OnReject: opts.OnAdminReject,
			}, h)
		}
		inner := h
		wrapped := func(c tele.Context) error {
			return handleWithSummary(c, name, time.Now(), "", "", func() error { return inner(c) })
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: wrapped})
		for _, alias := range def.Aliases {
			if alias == "" {
				continue
			}
			if alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: wrapped})
		}
	}

	logger.Info(context.Background(), logger.CompWire, "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
