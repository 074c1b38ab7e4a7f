package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

type staffStub struct {
	ids map[int64]bool
	err error
}

func (s staffStub) IsStaff(_ context.Context, id int64) (bool, error) {
	return s.ids[id], s.err
}

type membersStub struct {
	role  tele.MemberStatus
	err   error
	chat  string
	calls int
}

func (m *membersStub) ChatMemberOf(chat, _ tele.Recipient) (*tele.ChatMember, error) {
	m.calls++
	m.chat = chat.Recipient()
	if m.err != nil {
		return nil, m.err
	}
	return &tele.ChatMember{Role: m.role}, nil
}

func TestPrivileges(t *testing.T) {
	g := NewGate(Options{
		SuperAdmins: []int64{1},
		Staff:       staffStub{ids: map[int64]bool{2: true}},
	})
	ctx := context.Background()

	assert.True(t, g.IsSuperAdmin(1))
	assert.False(t, g.IsSuperAdmin(2))
	assert.True(t, g.IsPrivileged(ctx, 1))
	assert.True(t, g.IsPrivileged(ctx, 2))
	assert.False(t, g.IsPrivileged(ctx, 3))

	failing := NewGate(Options{Staff: staffStub{err: errors.New("db down")}})
	assert.False(t, failing.IsPrivileged(ctx, 2), "staff lookup errors deny")
}

func TestHasSubscription(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		role tele.MemberStatus
		err  error
		want string
		ok   bool
	}{
		{name: "creator", role: tele.Creator, want: "member", ok: true},
		{name: "admin", role: tele.Administrator, want: "member", ok: true},
		{name: "member", role: tele.Member, want: "member", ok: true},
		{name: "left", role: tele.Left, want: "not_member", ok: false},
		{name: "kicked", role: tele.Kicked, want: "not_member", ok: false},
		{name: "restricted", role: tele.Restricted, want: "not_member", ok: false},
		{name: "lookup error fails open", err: errors.New("chat not found"), want: "error", ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			m := &membersStub{role: tc.role, err: tc.err}
			g := NewGate(Options{
				Channel: "kuaf_uz",
				Members: m,
				Observe: func(r string) { got = append(got, r) },
			})
			assert.Equal(t, tc.ok, g.HasSubscription(ctx, 42))
			assert.Equal(t, []string{tc.want}, got)
			assert.Equal(t, "@kuaf_uz", m.chat)
		})
	}
}

func TestHasSubscriptionWithoutChannel(t *testing.T) {
	m := &membersStub{role: tele.Left}
	g := NewGate(Options{Members: m})
	assert.True(t, g.HasSubscription(context.Background(), 42))
	assert.Zero(t, m.calls)
	assert.Equal(t, "", g.Channel())
}
