// Package ui declares the pieces of user-facing behaviour the generic
// routing layer delegates to the application.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or the sender's state.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownLocation() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
