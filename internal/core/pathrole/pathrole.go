// Package pathrole defines the three template roles a numtracker template
// can be configured for — visit, scan and detector — and the
// required/allowed placeholder sets and absolute/relative discipline each
// one enforces.
package pathrole

import (
	"sort"
	"strings"

	"github.com/example/numtracker/internal/core/template"
	"github.com/example/numtracker/internal/errs"
)

// Role identifies which of the three template slots a template fills.
type Role int

const (
	RoleVisit Role = iota
	RoleScan
	RoleDetector
)

func (r Role) String() string {
	switch r {
	case RoleVisit:
		return "visit"
	case RoleScan:
		return "scan"
	case RoleDetector:
		return "detector"
	default:
		return "unknown"
	}
}

// Field names, matching the placeholder vocabulary accepted by Parse.
const (
	FieldYear         = "year"
	FieldVisit        = "visit"
	FieldProposal     = "proposal"
	FieldInstrument   = "instrument"
	FieldSubdirectory = "subdirectory"
	FieldScanNumber   = "scan_number"
	FieldDetector     = "detector"
)

var beamlineFields = []string{FieldYear, FieldVisit, FieldProposal, FieldInstrument}
var scanFields = append(append([]string{}, beamlineFields...), FieldSubdirectory, FieldScanNumber)
var detectorFields = append(append([]string{}, scanFields...), FieldDetector)

type spec struct {
	required []string
	allowed  []string
	absolute bool
}

var specs = map[Role]spec{
	RoleVisit: {
		required: []string{FieldInstrument, FieldVisit},
		allowed:  beamlineFields,
		absolute: true,
	},
	RoleScan: {
		required: []string{FieldScanNumber},
		allowed:  scanFields,
		absolute: false,
	},
	RoleDetector: {
		required: []string{FieldDetector, FieldScanNumber},
		allowed:  detectorFields,
		absolute: false,
	},
}

// IsAbsolute reports whether role is a directory (absolute) or segment
// (relative, joined onto a directory) template.
func (r Role) IsAbsolute() bool { return specs[r].absolute }

// Required returns the placeholder names that must appear in a template
// configured for role.
func (r Role) Required() []string { return append([]string{}, specs[r].required...) }

// Allowed returns the full set of placeholder names a template configured
// for role may reference.
func (r Role) Allowed() []string { return append([]string{}, specs[r].allowed...) }

// Validate checks tmpl against role's required/allowed placeholder sets and
// its absolute/relative discipline, given whether the raw template text
// looked like an absolute path (callers decide that by inspecting the
// leading separator before calling Validate).
func (r Role) Validate(tmpl *template.Template, looksAbsolute bool) error {
	s, ok := specs[r]
	if !ok {
		return errs.New(errs.KindInternal, "unknown template role")
	}

	if looksAbsolute != s.absolute {
		if s.absolute {
			return errs.New(errs.KindInvalidTemplate, r.String()+" template must be absolute")
		}
		return errs.New(errs.KindInvalidTemplate, r.String()+" template must be relative")
	}

	allowed := make(map[string]bool, len(s.allowed))
	for _, f := range s.allowed {
		allowed[f] = true
	}
	var unrecognised []string
	for _, f := range tmpl.Fields() {
		if !allowed[f] {
			unrecognised = append(unrecognised, f)
		}
	}
	if len(unrecognised) > 0 {
		sort.Strings(unrecognised)
		return errs.New(errs.KindInvalidTemplate, r.String()+" template uses fields not permitted for this role: "+strings.Join(unrecognised, ", "))
	}

	present := make(map[string]bool)
	for _, f := range tmpl.Fields() {
		present[f] = true
	}
	var missing []string
	for _, f := range s.required {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return errs.New(errs.KindInvalidTemplate, r.String()+" template is missing required fields: "+strings.Join(missing, ", "))
	}

	return nil
}
