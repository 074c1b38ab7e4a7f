package state

import (
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const sessionKey = "fsm_session"

// Load returns the session cached on the update, reading it from mgr on
// first use. The returned session is a copy; persist changes through mgr.
func Load(c tele.Context, mgr Manager) (*Session, error) {
	if s, ok := c.Get(sessionKey).(*Session); ok && s != nil {
		return s, nil
	}
	s, err := mgr.Get(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return nil, err
	}
	c.Set(sessionKey, s)
	return s, nil
}

// Forget drops the cached session so the next Load reads the store again.
func Forget(c tele.Context) {
	c.Set(sessionKey, nil)
}
