package survey

import "fmt"

// RenderHint tells the gateway how the next prompt should reach the user.
type RenderHint uint8

const (
	// HintSend posts a new message.
	HintSend RenderHint = iota
	// HintEdit replaces the message the user interacted with.
	HintEdit
	// HintResend deletes the interacted message and posts a new one. Used when
	// the target needs a reply keyboard, which an edit cannot attach.
	HintResend
)

func (h RenderHint) String() string {
	switch h {
	case HintEdit:
		return "edit"
	case HintResend:
		return "resend"
	default:
		return "send"
	}
}

// EventKind is the kind of inbound event for a step.
type EventKind uint8

const (
	EventAnswer EventKind = iota + 1
	EventBack
)

func (k EventKind) String() string {
	switch k {
	case EventAnswer:
		return "answer"
	case EventBack:
		return "back"
	default:
		return "unknown"
	}
}

// Event is one inbound interaction. Target is only read for EventBack; when
// it is StepNone the conditional predecessor of the current step is used.
type Event struct {
	Kind   EventKind
	Input  Input
	Target Step
}

// Answer wraps input into an answer event.
func Answer(in Input) Event { return Event{Kind: EventAnswer, Input: in} }

// Back builds a back event to target.
func Back(target Step) Event { return Event{Kind: EventBack, Target: target} }

// Result is the outcome of one transition. Merge is nil for back navigation.
type Result struct {
	From      Step
	Step      Step
	Merge     map[string]string
	Hint      RenderHint
	Back      bool
	Completed bool
}

// Engine evaluates the questionnaire graph. It holds no per-session state and
// is safe for concurrent use.
type Engine struct {
	nodes [stepCount]*Node
}

// NewEngine builds an engine over the default graph.
func NewEngine() *Engine {
	e, err := NewEngineFrom(Graph())
	if err != nil {
		panic(err)
	}
	return e
}

// NewEngineFrom builds an engine over nodes after validating them.
func NewEngineFrom(nodes []*Node) (*Engine, error) {
	e := &Engine{}
	for _, n := range nodes {
		if n == nil || !n.Step.Valid() {
			return nil, fmt.Errorf("survey: invalid node %v", n)
		}
		if e.nodes[n.Step] != nil {
			return nil, fmt.Errorf("survey: duplicate node %s", n.Step)
		}
		e.nodes[n.Step] = n
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Node returns the node of step or nil.
func (e *Engine) Node(step Step) *Node {
	if !step.Valid() {
		return nil
	}
	return e.nodes[step]
}

// Validate checks the table: every step has a node, every non-terminal node
// ends its forward rules with an unguarded default, every node but search
// ends its back rules with one, and all targets exist.
func (e *Engine) Validate() error {
	for s := StepSearch; s < stepCount; s++ {
		n := e.nodes[s]
		if n == nil {
			return fmt.Errorf("survey: missing node %s", s)
		}
		if s != StepCompleted {
			if len(n.Forward) == 0 || n.Forward[len(n.Forward)-1].Guard != nil {
				return fmt.Errorf("survey: node %s has no default forward rule", s)
			}
			if n.Kind == KindNone {
				return fmt.Errorf("survey: node %s has no answer kind", s)
			}
			if n.Kind == KindChoiceSet && len(n.Choices) == 0 {
				return fmt.Errorf("survey: choice node %s has no choices", s)
			}
		}
		for _, r := range n.Forward {
			if !r.To.Valid() || r.To == StepSearch {
				return fmt.Errorf("survey: node %s forwards to invalid step %s", s, r.To)
			}
		}
		if s == StepSearch {
			continue
		}
		if len(n.Back) == 0 || n.Back[len(n.Back)-1].Guard != nil {
			return fmt.Errorf("survey: node %s has no default back rule", s)
		}
		for _, r := range n.Back {
			if !r.To.Valid() || r.To == StepCompleted {
				return fmt.Errorf("survey: node %s goes back to invalid step %s", s, r.To)
			}
		}
	}
	return nil
}

// Advance accepts an already normalized value for step and returns the next
// step with the fields to merge: the node field plus every field elided by
// the chosen branch, always as "".
func (e *Engine) Advance(step Step, value string, answers Answers) (Step, map[string]string, error) {
	n := e.Node(step)
	if n == nil {
		return StepNone, nil, newError(CodeUnknownStep, step, nil)
	}
	if step == StepCompleted {
		return StepNone, nil, newError(CodeTerminal, step, nil)
	}
	if step == StepSearch {
		return StepNone, nil, newError(CodeNeedsLookup, step, nil)
	}
	view := answers.Clone()
	view[n.Field] = value
	for _, r := range n.Forward {
		if r.Guard != nil && !r.Guard(view) {
			continue
		}
		merge := make(map[string]string, len(r.Clear)+1)
		for _, f := range r.Clear {
			merge[f] = ""
		}
		merge[n.Field] = value
		return r.To, merge, nil
	}
	return StepNone, nil, newError(CodeNoRoute, step, nil)
}

// BackTarget resolves the conditional predecessor of step. It returns StepNone
// for search and unknown steps.
func (e *Engine) BackTarget(step Step, answers Answers) Step {
	n := e.Node(step)
	if n == nil {
		return StepNone
	}
	for _, r := range n.Back {
		if r.Guard == nil || r.Guard(answers) {
			return r.To
		}
	}
	return StepNone
}

// GoBack repositions to target. Answers are never touched; re-answering
// overwrites fields on the way forward.
func (e *Engine) GoBack(target Step, answers Answers) (Step, RenderHint, error) {
	n := e.Node(target)
	if n == nil {
		return StepNone, HintEdit, newError(CodeBadTarget, target, nil)
	}
	if target == StepCompleted {
		return StepNone, HintEdit, newError(CodeBadTarget, target, nil)
	}
	if n.LocationCapable() {
		return target, HintResend, nil
	}
	return target, HintEdit, nil
}

// Bind starts the questionnaire for a resolved subject.
func (e *Engine) Bind(subject Subject) Result {
	return Result{From: StepSearch, Step: StepPhone, Merge: subject.Fields(), Hint: HintSend}
}

// Handle is the single dispatch over step and event kind.
func (e *Engine) Handle(step Step, answers Answers, ev Event) (Result, error) {
	n := e.Node(step)
	if n == nil {
		return Result{}, newError(CodeUnknownStep, step, nil)
	}
	switch ev.Kind {
	case EventBack:
		target := ev.Target
		if target == StepNone {
			target = e.BackTarget(step, answers)
		}
		return e.back(step, target, answers)

	case EventAnswer:
		if step == StepCompleted {
			return Result{}, newError(CodeTerminal, step, nil)
		}
		if step == StepSearch {
			return Result{}, newError(CodeNeedsLookup, step, nil)
		}
		out, err := Collect(n, ev.Input)
		if err != nil {
			return Result{}, err
		}
		if out.Back {
			res, err := e.back(step, e.BackTarget(step, answers), answers)
			if err == nil && res.Hint == HintEdit {
				// typed back label: there is no bot message to edit
				res.Hint = HintSend
			}
			return res, err
		}
		to, merge, err := e.Advance(step, out.Value, answers)
		if err != nil {
			return Result{}, err
		}
		hint := HintSend
		if ev.Input.Kind == InputChoice {
			hint = HintEdit
		}
		return Result{From: step, Step: to, Merge: merge, Hint: hint, Completed: to == StepCompleted}, nil
	}
	return Result{}, newError(CodeUnknownStep, step, fmt.Errorf("event %s", ev.Kind))
}

func (e *Engine) back(from, target Step, answers Answers) (Result, error) {
	to, hint, err := e.GoBack(target, answers)
	if err != nil {
		return Result{}, err
	}
	return Result{From: from, Step: to, Hint: hint, Back: true}, nil
}
