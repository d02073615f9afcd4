// Package schema declares the column contracts uploads are checked against.
// A Contract is the single source for both the validator and the blank
// template offered for download.
package schema

import "strings"

// Requirement is a mandatory column, or a group of interchangeable
// alternatives of which at least one must be present.
type Requirement struct {
	alternatives []string
}

// Column requires exactly one column name.
func Column(name string) Requirement {
	return Requirement{alternatives: []string{name}}
}

// AnyOf is satisfied when at least one of names is present.
func AnyOf(names ...string) Requirement {
	return Requirement{alternatives: append([]string(nil), names...)}
}

// Columns is shorthand for a list of single-name requirements.
func Columns(names ...string) []Requirement {
	out := make([]Requirement, len(names))
	for i, n := range names {
		out[i] = Column(n)
	}
	return out
}

// Label renders the requirement for error messages: "Dept" or
// "Job Vertical or Job Vertical (IT, CORE, BDE)".
func (r Requirement) Label() string {
	return strings.Join(r.alternatives, " or ")
}

// Preferred is the name written into generated templates.
func (r Requirement) Preferred() string {
	if len(r.alternatives) == 0 {
		return ""
	}
	return r.alternatives[0]
}

// Resolve returns the first alternative present in the observed columns.
func (r Requirement) Resolve(observed map[string]struct{}) (string, bool) {
	for _, name := range r.alternatives {
		if _, ok := observed[name]; ok {
			return name, true
		}
	}
	return "", false
}

// RequiredColumnSpec is the ordered set of requirements of one view.
type RequiredColumnSpec struct {
	requirements []Requirement
}

// Require builds a spec from requirement groups, flattened in order.
func Require(groups ...[]Requirement) RequiredColumnSpec {
	var reqs []Requirement
	for _, g := range groups {
		reqs = append(reqs, g...)
	}
	return RequiredColumnSpec{requirements: reqs}
}

// Requirements returns a copy of the requirements in declaration order.
func (s RequiredColumnSpec) Requirements() []Requirement {
	return append([]Requirement(nil), s.requirements...)
}

// Len returns the number of requirements.
func (s RequiredColumnSpec) Len() int { return len(s.requirements) }

// Names lists every column name the spec mentions, alternatives included.
func (s RequiredColumnSpec) Names() []string {
	var out []string
	for _, r := range s.requirements {
		out = append(out, r.alternatives...)
	}
	return out
}
