package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func cbContext(cb *tele.Callback) tele.Context {
	cb.Sender = &tele.User{ID: 1}
	return tele.NewContext(nil, tele.Update{Callback: cb})
}

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb            *tele.Callback
		key, payload string
	}{
		{&tele.Callback{Data: "\fans|q6_achievements|yes"}, "ans", "q6_achievements|yes"},
		{&tele.Callback{Data: "\fadmin_stats"}, "admin_stats", ""},
		{&tele.Callback{Unique: "back", Data: "q2_address"}, "back", "q2_address"},
		{&tele.Callback{Data: "plain"}, "plain", ""},
		{nil, "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(tc.cb)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("ParseCallbackData(%+v) = %q, %q; want %q, %q", tc.cb, key, payload, tc.key, tc.payload)
		}
	}
}

func TestPayloadPair(t *testing.T) {
	c := cbContext(&tele.Callback{Data: Data("ans", "q18_living_type", "rent")})
	step, code, err := PayloadPair(c, "|")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step != "q18_living_type" || code != "rent" {
		t.Fatalf("unexpected pair %q %q", step, code)
	}
	if CallbackKey(c) != "ans" {
		t.Fatalf("unexpected key %q", CallbackKey(c))
	}

	if _, _, err := PayloadPair(cbContext(&tele.Callback{Data: Data("ans", "only")}), "|"); err == nil {
		t.Fatalf("expected syntax error for single part payload")
	}
	if _, _, err := PayloadPair(cbContext(&tele.Callback{Data: Data("ans")}), "|"); err == nil {
		t.Fatalf("expected syntax error for empty payload")
	}
}

func TestDataEncoding(t *testing.T) {
	if got := Data("check_subscription"); got != "\fcheck_subscription" {
		t.Fatalf("unexpected data %q", got)
	}
	if got := Data("clear", "yes"); got != "\fclear|yes" {
		t.Fatalf("unexpected data %q", got)
	}
}
