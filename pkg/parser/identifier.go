package parser

import (
	"strings"

	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
)

// Quoting describes how an identifier was written.
type Quoting int

const (
	// Unquoted identifiers match [A-Za-z_][A-Za-z0-9_]*.
	Unquoted Quoting = iota
	// DoubleQuoted identifiers are wrapped in "...".
	DoubleQuoted
	// BacktickQuoted identifiers are wrapped in `...`.
	BacktickQuoted
)

// Identifier is a name together with the quoting style it was written in, so it
// can be printed back exactly.
type Identifier struct {
	Value   string
	Quoting Quoting
}

// Capture implements participle.Capture.
func (i *Identifier) Capture(values []string) error {
	raw := strings.Join(values, "")
	switch {
	case strings.HasPrefix(raw, `"`):
		i.Quoting = DoubleQuoted
		i.Value = utils.Unquote(raw)
	case strings.HasPrefix(raw, "`"):
		i.Quoting = BacktickQuoted
		i.Value = utils.Unquote(raw)
	default:
		i.Quoting = Unquoted
		i.Value = raw
	}

	return nil
}

func (i Identifier) String() string {
	switch i.Quoting {
	case DoubleQuoted:
		return utils.QuoteIdentifier(i.Value)
	case BacktickQuoted:
		return utils.BacktickIdentifier(i.Value)
	default:
		return i.Value
	}
}
