// Package session parses visit identifiers of the form
// "<proposal-code><proposal-number>-<session-number>" (e.g. "cm12345-6")
// into their proposal and session parts.
package session

import (
	"regexp"
	"strings"

	"github.com/example/numtracker/internal/errs"
)

// Session is a parsed visit identifier.
type Session struct {
	Raw     string
	Code    string
	Number  string
	Session string
}

// Proposal returns the proposal identifier: everything before the final
// "-" in the raw visit string (code + proposal number, no session suffix).
func (s Session) Proposal() string { return s.Code + s.Number }

var proposalPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)
var sessionPattern = regexp.MustCompile(`^[0-9]+$`)

// Parse parses raw into a Session, splitting at the final "-". Malformed
// input (no dash, empty proposal or session part, non-numeric session, or
// a proposal that isn't letters followed by digits) is an InvalidSession
// error.
func Parse(raw string) (Session, error) {
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return Session{}, errs.New(errs.KindInvalidSession, "visit identifier must be <code><proposal>-<session>: "+raw)
	}

	proposal := raw[:idx]
	sessionPart := raw[idx+1:]

	m := proposalPattern.FindStringSubmatch(proposal)
	if m == nil {
		return Session{}, errs.New(errs.KindInvalidSession, "invalid proposal identifier: "+proposal)
	}
	if !sessionPattern.MatchString(sessionPart) {
		return Session{}, errs.New(errs.KindInvalidSession, "invalid session number: "+sessionPart)
	}

	return Session{Raw: raw, Code: m[1], Number: m[2], Session: sessionPart}, nil
}
