package typestring

import "strings"

// Error describes why a cast type could not be built. The planner reports it as a
// typecasting failure.
type Error struct {
	Collection   string
	Column       string
	Relationship string
	Aggregate    string
	Message      string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("typecasting")
	if e.Collection != "" {
		b.WriteString(" collection " + quote(e.Collection))
	}
	if e.Relationship != "" {
		b.WriteString(" relationship " + quote(e.Relationship))
	}
	if e.Column != "" {
		b.WriteString(" column " + quote(e.Column))
	}
	if e.Aggregate != "" {
		b.WriteString(" aggregate " + quote(e.Aggregate))
	}
	b.WriteString(": " + e.Message)

	return b.String()
}

func quote(s string) string {
	return `"` + s + `"`
}
