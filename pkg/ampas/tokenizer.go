package ampas

import (
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCommentMarker starts an inline or whole-line comment.
const DefaultCommentMarker = "#"

const byteOrderMark = "\uFEFF"

// minColumnLabels is the smallest label count accepted as a column definition:
// a wavelength column plus at least one series.
const minColumnLabels = 2

// LineKind classifies a tokenized line.
type LineKind int

// Line kinds.
const (
	KindBlank LineKind = iota
	KindComment
	KindHeader
	KindColumnDef
	KindData
	KindUnknown
)

var lineKindNames = [...]string{
	KindBlank:     "blank",
	KindComment:   "comment",
	KindHeader:    "header",
	KindColumnDef: "column-def",
	KindData:      "data",
	KindUnknown:   "unknown",
}

func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineKindNames) {
		return "LineKind(" + strconv.Itoa(int(k)) + ")"
	}

	return lineKindNames[k]
}

// RawLine is one classified input line.
type RawLine struct {
	// Number is the 1-based line number in the source.
	Number int
	// Text is the line with comments and surrounding whitespace removed.
	Text string
	// Raw is the original line without its line terminator.
	Raw  string
	Kind LineKind
}

// TokenizerOptions configures [Tokenize].
type TokenizerOptions struct {
	// CommentMarker starts a comment. Empty means DefaultCommentMarker.
	CommentMarker string
}

// Tokenize splits text into classified lines. The sequence is lazy and every
// range over it starts again from the first line. It never fails: lines that
// fit no pattern come out as [KindUnknown].
func Tokenize(text string, opts TokenizerOptions) iter.Seq[RawLine] {
	marker := opts.CommentMarker
	if marker == "" {
		marker = DefaultCommentMarker
	}

	return func(yield func(RawLine) bool) {
		number := 0
		seenData := false

		for line := range strings.Lines(text) {
			number++

			raw := strings.TrimRight(line, "\r\n")
			if number == 1 {
				raw = strings.TrimPrefix(raw, byteOrderMark)
			}

			rl := classify(number, raw, marker, seenData)
			if rl.Kind == KindData {
				seenData = true
			}

			if !yield(rl) {
				return
			}
		}
	}
}

// Lines collects the whole token stream.
func Lines(text string, opts TokenizerOptions) []RawLine {
	var out []RawLine

	for rl := range Tokenize(text, opts) {
		out = append(out, rl)
	}

	return out
}

func classify(number int, raw, marker string, seenData bool) RawLine {
	rl := RawLine{Number: number, Raw: raw}

	body, _, commented := strings.Cut(raw, marker)
	rl.Text = strings.TrimSpace(body)

	switch {
	case rl.Text == "" && commented:
		rl.Kind = KindComment
	case rl.Text == "":
		rl.Kind = KindBlank
	case isHeader(rl.Text):
		rl.Kind = KindHeader
	case looksNumeric(firstField(rl.Text)):
		rl.Kind = KindData
	case !seenData && isColumnDef(rl.Text):
		rl.Kind = KindColumnDef
	default:
		rl.Kind = KindUnknown
	}

	return rl
}

func firstField(text string) string {
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return text
	}

	return text[:end]
}

// looksNumeric accepts a number or a field that starts like one, so rows such
// as "420 abc" or "4x0 1" are routed to the table parser and reported there.
// Separator lines such as "-----" or "..." are not numeric.
func looksNumeric(field string) bool {
	if _, err := strconv.ParseFloat(field, 64); err == nil {
		return true
	}

	field = strings.TrimLeft(field, "+-")
	field = strings.TrimPrefix(field, ".")

	r, _ := utf8.DecodeRuneInString(field)

	return unicode.IsDigit(r)
}

// splitHeader splits on the first '=' or ':' and trims both sides.
func splitHeader(text string) (key, value string, ok bool) {
	idx := strings.IndexAny(text, "=:")
	if idx <= 0 {
		return "", "", false
	}

	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:]), true
}

// isHeader accepts "key = value" and "key: value" where the key is word-like:
// it holds a letter, starts with a letter, digit or underscore, and is not
// itself a number. Keys such as "2nd_operator" are headers; "380: 1" is not.
func isHeader(text string) bool {
	key, _, ok := splitHeader(text)
	if !ok || key == "" {
		return false
	}

	if _, err := strconv.ParseFloat(firstField(key), 64); err == nil {
		return false
	}

	r, _ := utf8.DecodeRuneInString(key)
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
		return false
	}

	return strings.IndexFunc(key, unicode.IsLetter) >= 0
}

func isColumnDef(text string) bool {
	fields := strings.Fields(text)
	if len(fields) < minColumnLabels {
		return false
	}

	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}

	return true
}
