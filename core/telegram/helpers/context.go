package helpers

import (
	"context"

	"github.com/m3rciful/kuafsurvey/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys under which per-update values live in tele.Context.
const (
	ctxKey = "kuaf.ctx"
	ridKey = "rid"
)

// StoreContext attaches ctx to the update so later helpers reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(ctxKey, ctx)
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// UpdateMeta returns the update, sender and chat ids; missing parts are zero.
func UpdateMeta(c tele.Context) (updateID int, userID, chatID int64) {
	updateID = c.Update().ID
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return updateID, userID, chatID
}

// NewContext builds a fresh logging context for the update, records its rid
// and stores both on c.
func NewContext(c tele.Context) context.Context {
	updateID, userID, chatID := UpdateMeta(c)
	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
		c.Set(ridKey, rid)
	}

	ctx := logger.WithRID(logger.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component(logger.CompTG))
	StoreContext(c, ctx)
	return ctx
}

// BuildContext returns the update's stored context, creating it on first use.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return logger.Background()
	}
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	return NewContext(c)
}

// WithHandler tags the stored context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || c == nil {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

// RID returns the request id assigned to the update, if any.
func RID(c tele.Context) string {
	if c == nil {
		return ""
	}
	rid, _ := c.Get(ridKey).(string)
	return rid
}
