package bot

import (
	"github.com/m3rciful/kuafsurvey/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

var _ ui.FallbackProvider = (*Bot)(nil)

// UnknownText answers text outside any flow.
func (b *Bot) UnknownText() tele.HandlerFunc { return b.sendUnknown }

// UnknownLocation answers a location shared outside a location step.
func (b *Bot) UnknownLocation() tele.HandlerFunc { return b.sendUnknown }

// UnknownDocument answers a file sent outside the import flow.
func (b *Bot) UnknownDocument() tele.HandlerFunc { return b.sendUnknown }

// UnknownCallback answers buttons whose handler no longer exists.
func (b *Bot) UnknownCallback() tele.HandlerFunc { return b.onStaleCallback }

func (b *Bot) sendUnknown(c tele.Context) error {
	return c.Send(textUnknown)
}
