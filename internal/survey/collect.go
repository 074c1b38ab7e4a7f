package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// Reply keyboard labels recognised on location steps.
const (
	BackLabel = "⬅️ Orqaga"
	SkipLabel = "⏭ O'tkazib yuborish"
)

// InputKind is the shape of raw user input.
type InputKind uint8

const (
	InputText InputKind = iota + 1
	InputChoice
	InputLocation
)

// Input is raw user input for one step.
type Input struct {
	Kind InputKind
	Text string
	Code string
	Lat  float32
	Lon  float32
}

// Text builds a text input.
func Text(s string) Input { return Input{Kind: InputText, Text: s} }

// Pick builds a button input.
func Pick(code string) Input { return Input{Kind: InputChoice, Code: code} }

// Location builds a shared-location input.
func Location(lat, lon float32) Input { return Input{Kind: InputLocation, Lat: lat, Lon: lon} }

// Outcome is normalized input. Back is set when a location step received the
// back label and the caller must navigate instead of storing Value.
type Outcome struct {
	Value string
	Back  bool
}

// Collect normalizes in for node n. Nothing is written anywhere; a rejected
// input leaves the session untouched.
func Collect(n *Node, in Input) (Outcome, error) {
	if n == nil {
		return Outcome{}, newError(CodeUnknownStep, StepNone, nil)
	}
	switch n.Kind {
	case KindFreeText:
		if in.Kind != InputText {
			return reject(n, in)
		}
		return Outcome{Value: strings.TrimSpace(in.Text)}, nil

	case KindYesNo, KindYesNoSkippable:
		if in.Kind != InputChoice {
			return reject(n, in)
		}
		switch in.Code {
		case CodeYes:
			return Outcome{Value: YesValue}, nil
		case CodeNo:
			return Outcome{Value: NoValue}, nil
		case CodeSkip:
			if n.Kind == KindYesNoSkippable {
				return Outcome{Value: SkippedValue}, nil
			}
		}
		return reject(n, in)

	case KindChoiceSet:
		if in.Kind != InputChoice {
			return reject(n, in)
		}
		c, ok := n.Choice(in.Code)
		if !ok {
			return reject(n, in)
		}
		return Outcome{Value: c.Label}, nil

	case KindLocation:
		switch in.Kind {
		case InputLocation:
			return Outcome{Value: FormatLocation(in.Lat, in.Lon)}, nil
		case InputChoice:
			if in.Code == CodeSkip {
				return Outcome{}, nil
			}
			return reject(n, in)
		case InputText:
			text := strings.TrimSpace(in.Text)
			switch text {
			case BackLabel:
				return Outcome{Back: true}, nil
			case SkipLabel:
				return Outcome{}, nil
			}
			return Outcome{Value: text}, nil
		}
		return reject(n, in)
	}
	return reject(n, in)
}

// FormatLocation renders a coordinate pair the way it is stored. Telegram
// sends single-precision coordinates, so they are printed at that precision.
func FormatLocation(lat, lon float32) string {
	return strconv.FormatFloat(float64(lat), 'f', -1, 32) + "," + strconv.FormatFloat(float64(lon), 'f', -1, 32)
}

func reject(n *Node, in Input) (Outcome, error) {
	return Outcome{}, newError(CodeRejected, n.Step, fmt.Errorf("%w: %s input for %s", ErrRejected, in.Kind, n.Kind))
}

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputChoice:
		return "choice"
	case InputLocation:
		return "location"
	default:
		return "unknown"
	}
}
