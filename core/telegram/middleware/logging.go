package middleware

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const receivedKey = "update_logged"

// LoggerMiddleware assigns the update its logging context and writes one
// sampled receipt line. Typed answers are logged by length only because they
// carry phone and passport numbers.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.NewContext(c)
		if logged, _ := c.Get(receivedKey).(bool); !logged && logger.ShouldSampleDebug() {
			c.Set(receivedKey, true)
			attrs := append([]slog.Attr{slog.String("status", "ok")}, describeUpdate(c)...)
			logger.LogEvent(ctx, logger.Component(logger.CompTG), slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}

// describeUpdate lists the receipt attributes of c beyond the context fields.
func describeUpdate(c tele.Context) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{slog.String("kind", UpdateKind(upd))}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}

	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil && upd.Message.Document != nil:
		attrs = append(attrs,
			slog.String("file", logger.SanitizeLimit(upd.Message.Document.FileName, 128)),
			slog.Int64("size", upd.Message.Document.FileSize),
		)
	case upd.Message != nil && upd.Message.Text != "":
		text := upd.Message.Text
		if strings.HasPrefix(text, "/") {
			cmd, _, _ := strings.Cut(text, " ")
			attrs = append(attrs, slog.String("command", logger.SanitizeLimit(cmd, 64)))
		} else {
			attrs = append(attrs, slog.Int("text_len", len([]rune(text))))
		}
	}
	return attrs
}
