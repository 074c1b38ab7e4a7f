package survey

// AnswerKind selects how raw input is normalized for a node.
type AnswerKind uint8

const (
	KindNone AnswerKind = iota
	KindFreeText
	KindChoiceSet
	KindYesNo
	KindYesNoSkippable
	KindLocation
)

func (k AnswerKind) String() string {
	switch k {
	case KindFreeText:
		return "free_text"
	case KindChoiceSet:
		return "choice_set"
	case KindYesNo:
		return "yes_no"
	case KindYesNoSkippable:
		return "yes_no_skippable"
	case KindLocation:
		return "location_or_text_or_skip"
	default:
		return "none"
	}
}

// Canonical answer values.
const (
	YesValue     = "Ha"
	NoValue      = "Yo'q"
	SkippedValue = "-"
)

// Choice codes shared by yes/no prompts.
const (
	CodeYes  = "yes"
	CodeNo   = "no"
	CodeSkip = "skip"
)

// Choice is one option of a choice_set node.
type Choice struct {
	Code   string
	Label  string
	Button string
}

// Guard is a predicate over the answers merged so far, including the
// answer being accepted.
type Guard func(Answers) bool

// Rule is a guarded forward transition. Clear lists the fields of the
// branch that the rule elides.
type Rule struct {
	Guard Guard
	To    Step
	Clear []string
}

// BackRule is a guarded backward transition.
type BackRule struct {
	Guard Guard
	To    Step
}

// Node is one question of the graph. Rules are evaluated in order and the
// first rule whose guard passes (or has none) wins.
type Node struct {
	Step    Step
	Kind    AnswerKind
	Field   string
	Choices []Choice
	Forward []Rule
	Back    []BackRule
}

// Choice resolves a choice code of the node.
func (n *Node) Choice(code string) (Choice, bool) {
	for _, c := range n.Choices {
		if c.Code == code {
			return c, true
		}
	}
	return Choice{}, false
}

// LocationCapable reports whether the node is prompted with the location keyboard.
func (n *Node) LocationCapable() bool { return n.Kind == KindLocation }

func is(field, value string) Guard {
	return func(a Answers) bool { return a.Get(field) == value }
}

func yes(field string) Guard { return is(field, YesValue) }

func no(field string) Guard { return is(field, NoValue) }

func all(guards ...Guard) Guard {
	return func(a Answers) bool {
		for _, g := range guards {
			if !g(a) {
				return false
			}
		}
		return true
	}
}

func next(to Step, clear ...string) Rule { return Rule{To: to, Clear: clear} }

func when(g Guard, to Step, clear ...string) Rule { return Rule{Guard: g, To: to, Clear: clear} }

func back(to Step) BackRule { return BackRule{To: to} }

func backWhen(g Guard, to Step) BackRule { return BackRule{Guard: g, To: to} }
