package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		in      string
		version int
		want    string
	}{
		{"Karimov_Ali *A*", MarkdownV1, `Karimov\_Ali \*A\*`},
		{"[KI-21]", MarkdownV1, `\[KI-21]`},
		{"O'g'li (2003).", MarkdownV2, `O'g'li \(2003\)\.`},
		{"a-b_c", MarkdownV2, `a\-b\_c`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("EscapeMarkdown(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("EscapeMarkdown(%q, %d) = %q, want %q", tc.in, tc.version, got, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
	if MD("a_b") != `a\_b` {
		t.Fatalf("MD did not escape underscore")
	}
}
