// Package commands describes the slash commands a bot registers.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command handler and its menu entry.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run for privileged users only and stay out of the menu.
	AdminOnly bool
	Hidden    bool
	// Aliases may be written with or without the leading slash.
	Aliases []string
}

// Listed reports whether the command belongs in the public command menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}

// HasAlias reports whether name, with or without a slash, is an alias of c.
func (c Command) HasAlias(name string) bool {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return false
	}
	for _, alias := range c.Aliases {
		if strings.TrimPrefix(alias, "/") == name {
			return true
		}
	}
	return false
}
