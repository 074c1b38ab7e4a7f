package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	e := NewEngine()
	skippable := &Node{Step: StepIronBook, Kind: KindYesNoSkippable, Field: FieldIronBook}

	cases := []struct {
		name   string
		node   *Node
		in     Input
		want   Outcome
		reject bool
	}{
		{"free text trimmed", e.Node(StepPhone), Text("  +99890  "), Outcome{Value: "+99890"}, false},
		{"free text empty", e.Node(StepPhone), Text("   "), Outcome{Value: ""}, false},
		{"free text rejects button", e.Node(StepPhone), Pick(CodeYes), Outcome{}, true},
		{"yes", e.Node(StepGrant), Pick(CodeYes), Outcome{Value: YesValue}, false},
		{"no", e.Node(StepGrant), Pick(CodeNo), Outcome{Value: NoValue}, false},
		{"yes_no rejects text", e.Node(StepGrant), Text("Ha"), Outcome{}, true},
		{"yes_no rejects skip", e.Node(StepGrant), Pick(CodeSkip), Outcome{}, true},
		{"skippable skip", skippable, Pick(CodeSkip), Outcome{Value: SkippedValue}, false},
		{"choice label", e.Node(StepCertificateType), Pick("toefl_ibt"), Outcome{Value: "TOEFL iBT"}, false},
		{"choice unknown", e.Node(StepCertificateType), Pick("sat"), Outcome{}, true},
		{"choice rejects text", e.Node(StepLivingType), Text("TTJ"), Outcome{}, true},
		{"location coords", e.Node(StepLocation), Location(41.31108, 69.24056), Outcome{Value: "41.31108,69.24056"}, false},
		{"location keeps short coords", e.Node(StepLocation), Location(41.2995, 69.2401), Outcome{Value: "41.2995,69.2401"}, false},
		{"location typed", e.Node(StepLocation), Text(" Chilonzor 9 "), Outcome{Value: "Chilonzor 9"}, false},
		{"location skip label", e.Node(StepLocation), Text(SkipLabel), Outcome{Value: ""}, false},
		{"location skip button", e.Node(StepRentLocation), Pick(CodeSkip), Outcome{Value: ""}, false},
		{"location back", e.Node(StepRentLocation), Text(BackLabel), Outcome{Back: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(tc.node, tc.in)
			if tc.reject {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyQuery(t *testing.T) {
	cases := []struct {
		raw  string
		kind QueryKind
		val  string
	}{
		{"12345678901234", QueryNationalID, "12345678901234"},
		{" 123456789012 ", QueryStudentID, "123456789012"},
		{"42", QueryIDOrStudentID, "42"},
		{"1234567890123", QueryIDOrStudentID, "1234567890123"},
		{"ab1234567", QueryPassport, "AB1234567"},
		{"12-34", QueryPassport, "12-34"},
	}
	for _, tc := range cases {
		q := ClassifyQuery(tc.raw)
		if q.Kind != tc.kind || q.Value != tc.val {
			t.Fatalf("ClassifyQuery(%q) = %v %q, want %v %q", tc.raw, q.Kind, q.Value, tc.kind, tc.val)
		}
	}
	if !ClassifyQuery("   ").Empty() {
		t.Fatalf("blank query should be empty")
	}
}

func TestStepNamesRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Steps() {
		name := s.String()
		if name == "" || seen[name] {
			t.Fatalf("step %d has empty or duplicate name %q", s, name)
		}
		seen[name] = true
		back, ok := ParseStep(name)
		if !ok || back != s {
			t.Fatalf("ParseStep(%q) = %v %v", name, back, ok)
		}
	}
	if _, ok := ParseStep("q8_unknown"); ok {
		t.Fatalf("unknown step parsed")
	}
	if !StepPhone.Question() || StepSearch.Question() || StepCompleted.Question() {
		t.Fatalf("Question() classification is wrong")
	}
}
