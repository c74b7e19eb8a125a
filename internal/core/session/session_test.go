package session

import (
	"errors"
	"testing"

	"github.com/example/numtracker/internal/errs"
)

func TestParseWellFormedVisit(t *testing.T) {
	s, err := Parse("cm12345-6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Proposal() != "cm12345" {
		t.Fatalf("got proposal %q", s.Proposal())
	}
	if s.Session != "6" {
		t.Fatalf("got session %q", s.Session)
	}
}

func TestParseRejectsMultiDashProposal(t *testing.T) {
	// Splitting at the final "-" leaves "cm12345-6" as the proposal, which
	// is not <letters><digits> and so is rejected rather than silently
	// accepted.
	_, err := Parse("cm12345-6-2")
	if !errors.Is(err, errs.ErrInvalidSession) {
		t.Fatalf("expected InvalidSession, got %v", err)
	}
}

func TestParseRejectsMissingDash(t *testing.T) {
	_, err := Parse("cm123456")
	if !errors.Is(err, errs.ErrInvalidSession) {
		t.Fatalf("expected InvalidSession, got %v", err)
	}
}

func TestParseRejectsNonNumericSession(t *testing.T) {
	_, err := Parse("cm12345-abc")
	if !errors.Is(err, errs.ErrInvalidSession) {
		t.Fatalf("expected InvalidSession, got %v", err)
	}
}

func TestParseRejectsMalformedProposal(t *testing.T) {
	_, err := Parse("12345-6")
	if !errors.Is(err, errs.ErrInvalidSession) {
		t.Fatalf("expected InvalidSession, got %v", err)
	}
}
