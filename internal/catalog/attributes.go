package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ColorAttribute is the attribute name that carries a variation's color.
const ColorAttribute = "color"

// fold builds a fresh Caser on every call: a Caser keeps state and must not be
// shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

type Attribute struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func (a Attribute) isColor() bool {
	return fold(a.Name) == ColorAttribute
}

// AttributeSet is the ordered list of name/value pairs describing a variation.
type AttributeSet []Attribute

// Color returns the value of the color attribute, if the set has one.
func (s AttributeSet) Color() (string, bool) {
	for _, a := range s {
		if a.isColor() {
			return strings.TrimSpace(a.Value), true
		}
	}

	return "", false
}

// Key is the order and case independent fingerprint used to recognise the same
// variation across submissions that do not carry its id.
func (s AttributeSet) Key() string {
	return joinPairs(s, false)
}

// GroupKey fingerprints the non-color attributes only. Variations sharing a
// group key differ at most by color. The empty string is the default group.
func (s AttributeSet) GroupKey() string {
	return joinPairs(s, true)
}

func joinPairs(s AttributeSet, skipColor bool) string {
	pairs := make([]string, 0, len(s))

	for _, a := range s {
		if skipColor && a.isColor() {
			continue
		}
		pairs = append(pairs, fold(a.Name)+":"+fold(a.Value))
	}

	sort.Strings(pairs)

	return strings.Join(pairs, "|")
}

// Validate rejects blank pairs, repeated names and more than one color.
func (s AttributeSet) Validate() error {
	seen := make(map[string]bool, len(s))
	colors := 0

	for _, a := range s {
		name := fold(a.Name)

		switch {
		case name == "":
			return attributeError(ErrMissingField, "attribute name must be provided")
		case strings.TrimSpace(a.Value) == "":
			return attributeError(ErrMissingField, "value for attribute %q must be provided", a.Name)
		}

		if name == ColorAttribute {
			colors++
			if colors > 1 {
				return attributeError(ErrMultipleColorValues, "a variation can only have one color")
			}
		}

		if seen[name] {
			return attributeError(ErrDuplicateAttribute, "attribute %q is repeated", a.Name)
		}
		seen[name] = true
	}

	return nil
}

func (s AttributeSet) clone() AttributeSet {
	if s == nil {
		return nil
	}

	out := make(AttributeSet, len(s))
	copy(out, s)

	return out
}

// nonColor yields the name/value pairs other than color, in submission order.
func (s AttributeSet) nonColor() []Attribute {
	out := make([]Attribute, 0, len(s))

	for _, a := range s {
		if !a.isColor() {
			out = append(out, a)
		}
	}

	return out
}

func sameColor(a, b string) bool {
	return fold(a) == fold(b)
}
