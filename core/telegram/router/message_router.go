package router

import (
	"time"

	tg "github.com/m3rciful/kuafsurvey/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM dispatches free-form updates to the handler of the sender's state.
type FSM interface {
	InProgress(c tele.Context) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text, location and document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownLocation tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds the routes for free-form updates. An update goes to the
// FSM when the sender is in a routed state, then to a matching command alias
// and finally to the Unknown* handlers.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		if fsm != nil && fsm.InProgress(c) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsm.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}
		return unknown(c, "unknown_text", start, opts.UnknownText)
	}

	stateOnly := func(name string, fallback tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if fsm != nil && fsm.InProgress(c) {
				return handleWithSummary(c, "fsm_"+name, start, "", "", func() error {
					return fsm.ManagerHandler(c)
				})
			}
			return unknown(c, "unexpected_"+name, start, fallback)
		}
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler},
		{Endpoint: tele.OnLocation, Handler: stateOnly("location", opts.UnknownLocation)},
		{Endpoint: tele.OnDocument, Handler: stateOnly("document", opts.UnknownDocument)},
	}
}

func unknown(c tele.Context, name string, start time.Time, h tele.HandlerFunc) error {
	if h == nil {
		logHandlerSummary(c, name, start, "skip", "ok", nil)
		return nil
	}
	return handleWithSummary(c, name, start, "", "", func() error { return h(c) })
}
