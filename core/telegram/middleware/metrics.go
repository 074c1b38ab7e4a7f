package middleware

import tele "gopkg.in/telebot.v4"

const repliesKey = "replies"

// replyStats counts what a handler sent back for one update.
type replyStats struct {
	messages int
	keyboard bool
}

// countingContext records successful replies into stats.
type countingContext struct {
	tele.Context
	stats *replyStats
}

func (m countingContext) count(err error, opts []any) error {
	if err == nil {
		m.stats.messages++
		m.stats.keyboard = m.stats.keyboard || hasKeyboard(opts)
	}
	return err
}

func (m countingContext) Send(what any, opts ...any) error {
	return m.count(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what any, opts ...any) error {
	return m.count(m.Context.Reply(what, opts...), opts)
}

// Edit counts an edited prompt as a reply.
func (m countingContext) Edit(what any, opts ...any) error {
	return m.count(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what any, opts ...any) error {
	return m.count(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) EditOrReply(what any, opts ...any) error {
	return m.count(m.Context.EditOrReply(what, opts...), opts)
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil && (len(v.InlineKeyboard) > 0 || len(v.ReplyKeyboard) > 0) {
				return true
			}
		}
	}
	return false
}

// MessageMetricsMiddleware counts the replies of each update for the handler
// summary line.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &replyStats{}
		c.Set(repliesKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// Replies reports how many messages were sent for the update and whether any
// of them carried a keyboard.
func Replies(c tele.Context) (messages int, keyboard bool) {
	if stats, ok := c.Get(repliesKey).(*replyStats); ok && stats != nil {
		return stats.messages, stats.keyboard
	}
	return 0, false
}
