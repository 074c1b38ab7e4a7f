package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadParts splits the callback payload into parts using the given separator.
func PayloadParts(c tele.Context, sep string) ([]string, error) {
	p := CallbackPayload(c)
	if p == "" {
		return nil, strconv.ErrSyntax
	}
	return strings.Split(p, sep), nil
}

// PayloadPair parses a payload like "q6_achievements|yes" into its two halves.
func PayloadPair(c tele.Context, sep string) (string, string, error) {
	parts, err := PayloadParts(c, sep)
	if err != nil {
		return "", "", err
	}
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", strconv.ErrSyntax
	}
	return parts[0], parts[1], nil
}

// Data encodes unique and payload parts the way telebot routes them.
func Data(unique string, parts ...string) string {
	if len(parts) == 0 {
		return "\f" + unique
	}
	return "\f" + unique + "|" + strings.Join(parts, "|")
}
