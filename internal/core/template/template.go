// Package template parses and renders the "{name}" placeholder syntax used
// by instrument path templates. There is no escape mechanism: a template
// that needs a literal "{" or "}" cannot express one. Every "{" opens a
// placeholder, and a "}" encountered outside of an open placeholder is an
// unbalanced-braces parse error, not literal text.
package template

import (
	"strconv"
	"strings"

	"github.com/example/numtracker/internal/errs"
)

// Segment is one piece of a parsed template: either literal text or a
// placeholder field name.
type Segment struct {
	Literal string
	Field   string
	IsField bool
}

// Template is a parsed sequence of literal and field segments.
type Template struct {
	segments []Segment
	raw      string
}

// Raw returns the original template text.
func (t *Template) Raw() string { return t.raw }

// Fields returns the distinct placeholder names referenced by the
// template, in first-occurrence order.
func (t *Template) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.segments {
		if s.IsField && !seen[s.Field] {
			seen[s.Field] = true
			out = append(out, s.Field)
		}
	}
	return out
}

// Segments returns the parsed segments in order.
func (t *Template) Segments() []Segment { return t.segments }

func invalid(reason string) error {
	return errs.New(errs.KindInvalidTemplate, reason)
}

// Parse parses raw into a Template, validating placeholder syntax. It does
// not know about roles (required/allowed fields, absolute/relative
// discipline) — that validation lives in package pathrole.
func Parse(raw string) (*Template, error) {
	var segments []Segment
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			segments = append(segments, Segment{Literal: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch c {
		case '{':
			flushLiteral()
			end := strings.IndexByte(raw[i+1:], '}')
			if end == -1 {
				return nil, invalid("unterminated placeholder starting at byte " + strconv.Itoa(i))
			}
			key := raw[i+1 : i+1+end]
			if key == "" {
				return nil, invalid("empty placeholder at byte " + strconv.Itoa(i))
			}
			if strings.ContainsRune(key, '{') {
				return nil, invalid("nested placeholder at byte " + strconv.Itoa(i))
			}
			if !isValidFieldName(key) {
				return nil, invalid("unrecognised field name " + strconv.Quote(key))
			}
			segments = append(segments, Segment{Field: key, IsField: true})
			i = i + 1 + end + 1
		case '}':
			return nil, invalid("unmatched '}' at byte " + strconv.Itoa(i))
		default:
			literal.WriteByte(c)
			i++
		}
	}
	flushLiteral()

	return &Template{segments: segments, raw: raw}, nil
}

func isValidFieldName(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// Render substitutes every field segment with its value from values.
// A referenced field absent from values is a MissingFields error.
func (t *Template) Render(values map[string]string) (string, error) {
	var missing []string
	var out strings.Builder
	for _, s := range t.segments {
		if !s.IsField {
			out.WriteString(s.Literal)
			continue
		}
		v, ok := values[s.Field]
		if !ok {
			missing = append(missing, s.Field)
			continue
		}
		out.WriteString(v)
	}
	if len(missing) > 0 {
		return "", errs.New(errs.KindMissingFields, "missing values for: "+strings.Join(missing, ", "))
	}
	return out.String(), nil
}
