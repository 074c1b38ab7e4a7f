package middleware

import (
	"log/slog"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions defines how restricted handlers are guarded.
type AccessOptions struct {
	// Allow decides per update; a nil Allow lets everything through.
	Allow    func(c tele.Context) bool
	OnReject tele.HandlerFunc
	// Name is logged with rejections.
	Name string
}

// Guard wraps h so that it runs only when opts.Allow accepts the update.
func Guard(opts AccessOptions, h tele.HandlerFunc) tele.HandlerFunc {
	if opts.Allow == nil || h == nil {
		return h
	}
	return func(c tele.Context) error {
		if opts.Allow(c) {
			return h(c)
		}
		var userID int64
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		logger.Info(tghelpers.BuildContext(c), logger.CompAccess, "access.denied",
			slog.String("handler", opts.Name),
			slog.Int64("user_id", userID),
		)
		if opts.OnReject != nil {
			return opts.OnReject(c)
		}
		return nil
	}
}
