package command

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tags is an opaque label set attached to a handle for external
// classification. Processors carry tags but never inspect them.
type Tags []string

// NewTags builds a label set. Labels are NFC normalized so that visually
// identical labels compare equal; empty labels are dropped and the result is
// sorted and deduplicated.
func NewTags(labels ...string) Tags {
	if len(labels) == 0 {
		return nil
	}
	out := make(Tags, 0, len(labels))
	for _, l := range labels {
		l = norm.NFC.String(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether label is in the set.
func (t Tags) Has(label string) bool {
	return slices.Contains(t, norm.NFC.String(label))
}

// String renders the set as {a,b,c}.
func (t Tags) String() string {
	return "{" + strings.Join(t, ",") + "}"
}
