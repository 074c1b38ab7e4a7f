// Package access decides who may use the bot and the admin panel.
package access

import (
	"context"
	"log/slog"

	"github.com/m3rciful/kuafsurvey/core/logger"

	tele "gopkg.in/telebot.v4"
)

// StaffChecker looks up the staff table.
type StaffChecker interface {
	IsStaff(ctx context.Context, telegramID int64) (bool, error)
}

// MemberLookup resolves a user's membership in a chat. *tele.Bot satisfies it.
type MemberLookup interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Channel is a public channel addressed by username.
type Channel string

// Recipient renders the "@name" form accepted by the Bot API.
func (c Channel) Recipient() string { return "@" + string(c) }

// Options configure a Gate.
type Options struct {
	SuperAdmins []int64
	Staff       StaffChecker
	Channel     string
	Members     MemberLookup
	// Observe, when set, receives the result of every subscription check:
	// "member", "not_member", "skipped" or "error".
	Observe func(result string)
}

// Gate answers the access questions of the bot.
type Gate struct {
	super   map[int64]struct{}
	staff   StaffChecker
	channel Channel
	members MemberLookup
	observe func(string)
}

// NewGate builds a Gate.
func NewGate(opts Options) *Gate {
	g := &Gate{
		super:   make(map[int64]struct{}, len(opts.SuperAdmins)),
		staff:   opts.Staff,
		channel: Channel(opts.Channel),
		members: opts.Members,
		observe: opts.Observe,
	}
	for _, id := range opts.SuperAdmins {
		g.super[id] = struct{}{}
	}
	return g
}

// IsSuperAdmin reports whether id may manage staff, imports and announcements.
func (g *Gate) IsSuperAdmin(id int64) bool {
	_, ok := g.super[id]
	return ok
}

// IsPrivileged reports whether id is a super admin or a staff member.
// A failed staff lookup denies access.
func (g *Gate) IsPrivileged(ctx context.Context, id int64) bool {
	if g.IsSuperAdmin(id) {
		return true
	}
	if g.staff == nil {
		return false
	}
	ok, err := g.staff.IsStaff(ctx, id)
	if err != nil {
		logger.Warn(ctx, logger.CompAccess, "staff.lookup",
			slog.Int64("user_id", id),
			slog.String("status", "error"),
			logger.Err(err),
		)
		return false
	}
	return ok
}

// HasSubscription reports whether id follows the configured channel. It is
// true when no channel is configured and when the lookup itself fails.
func (g *Gate) HasSubscription(ctx context.Context, id int64) bool {
	if g.channel == "" || g.members == nil {
		g.report("skipped")
		return true
	}
	m, err := g.members.ChatMemberOf(g.channel, tele.ChatID(id))
	if err != nil {
		logger.Warn(ctx, logger.CompAccess, "subscription.lookup",
			slog.Int64("user_id", id),
			slog.String("channel", string(g.channel)),
			slog.String("status", "error"),
			logger.Err(err),
		)
		g.report("error")
		return true
	}
	if m == nil {
		g.report("not_member")
		return false
	}
	switch m.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		g.report("member")
		return true
	}
	g.report("not_member")
	return false
}

// Channel returns the configured channel username, empty when unset.
func (g *Gate) Channel() string { return string(g.channel) }

func (g *Gate) report(result string) {
	if g.observe != nil {
		g.observe(result)
	}
}
