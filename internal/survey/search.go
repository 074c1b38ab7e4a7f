package survey

import "strings"

// QueryKind selects the lookup column(s) for a search query.
type QueryKind uint8

const (
	QueryPassport QueryKind = iota + 1
	QueryNationalID
	QueryStudentID
	QueryIDOrStudentID
)

func (k QueryKind) String() string {
	switch k {
	case QueryPassport:
		return "passport"
	case QueryNationalID:
		return "national_id"
	case QueryStudentID:
		return "student_id"
	case QueryIDOrStudentID:
		return "id_or_student_id"
	default:
		return "unknown"
	}
}

// Query is a classified subject search.
type Query struct {
	Kind  QueryKind
	Value string
}

// ClassifyQuery routes raw search text by its shape: 14 digits is a national
// id (JSHSHIR), 12 digits a student id, other digits a unique id or student
// id, anything else an uppercased passport code.
func ClassifyQuery(raw string) Query {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if !allDigits(v) {
		return Query{Kind: QueryPassport, Value: v}
	}
	switch len(v) {
	case 14:
		return Query{Kind: QueryNationalID, Value: v}
	case 12:
		return Query{Kind: QueryStudentID, Value: v}
	default:
		return Query{Kind: QueryIDOrStudentID, Value: v}
	}
}

// Empty reports whether there is nothing to search for.
func (q Query) Empty() bool { return q.Value == "" }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
