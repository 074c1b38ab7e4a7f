package state

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Router dispatches free-form updates (text, location, document) to the
// handler registered for the sender's current state.
type Router struct {
	mgr Manager

	mu       sync.RWMutex
	handlers map[State]tele.HandlerFunc
}

// NewRouter builds a Router over mgr.
func NewRouter(mgr Manager) *Router {
	return &Router{mgr: mgr, handlers: make(map[State]tele.HandlerFunc)}
}

// Manager returns the session manager the router reads from.
func (r *Router) Manager() Manager { return r.mgr }

// Handle associates states with a handler. A nil handler is ignored.
func (r *Router) Handle(h tele.HandlerFunc, states ...State) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range states {
		r.handlers[st] = h
	}
}

func (r *Router) lookup(st State) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[st]
	return h, ok
}

// InProgress reports whether the sender has an active state with a handler.
// Store errors count as not in progress and are logged.
func (r *Router) InProgress(c tele.Context) bool {
	if c.Sender() == nil {
		return false
	}
	ctx := tghelpers.BuildContext(c)
	sess, err := Load(c, r.mgr)
	if err != nil {
		logger.Warn(ctx, logger.CompSession, "fsm.lookup_failed",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return false
	}
	if sess.Idle() {
		return false
	}
	_, ok := r.lookup(sess.State)
	return ok
}

// ManagerHandler executes the handler registered for the sender's state.
func (r *Router) ManagerHandler(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	sess, err := Load(c, r.mgr)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, logger.CompSession, "fsm.dispatch",
		slog.Int64("user_id", c.Sender().ID),
		slog.String("state", string(sess.State)),
	)
	if handler, ok := r.lookup(sess.State); ok {
		return handler(c)
	}
	return nil
}
