package fm

// constraint.go — cross-tree constraints.
//
// A cross-tree constraint is a propositional clause (a disjunction of
// feature literals), disjoint from the tree relationships. Classification
// into requires/excludes is purely structural: a pattern match on the clause
// shape, never a solver query.

import "strings"

// Literal is one disjunct of a cross-tree constraint: a feature identifier,
// possibly negated.
type Literal struct {
	Feature string
	Negated bool
}

// CTConstraint is a clause over feature identifiers. The Name is the label
// from the source file, if the format carries one.
type CTConstraint struct {
	Name     string
	Literals []Literal
}

// ConstraintKind classifies the structural shape of a cross-tree constraint.
type ConstraintKind int

const (
	// KindOther is the residual bucket: any clause that is neither a
	// requires nor an excludes shape.
	KindOther ConstraintKind = iota
	// KindRequires is a binary clause equivalent to A implies B.
	KindRequires
	// KindExcludes is a binary clause equivalent to A implies not B.
	KindExcludes
)

// Kind classifies the clause. A two-literal clause with exactly one negated
// literal is a requires (¬A ∨ B ≡ A → B); with both literals negated it is an
// excludes (¬A ∨ ¬B ≡ A → ¬B). Everything else, including unit clauses and
// wider disjunctions, is other.
func (c CTConstraint) Kind() ConstraintKind {
	if len(c.Literals) != 2 {
		return KindOther
	}
	a, b := c.Literals[0], c.Literals[1]
	switch {
	case a.Negated && b.Negated:
		return KindExcludes
	case a.Negated != b.Negated:
		return KindRequires
	}
	return KindOther
}

// String renders the clause in the usual "~a or b" notation.
func (c CTConstraint) String() string {
	parts := make([]string, len(c.Literals))
	for i, lit := range c.Literals {
		if lit.Negated {
			parts[i] = "~" + lit.Feature
		} else {
			parts[i] = lit.Feature
		}
	}
	return strings.Join(parts, " or ")
}

// Requires builds the clause for "a requires b".
func Requires(name, a, b string) CTConstraint {
	return CTConstraint{Name: name, Literals: []Literal{{Feature: a, Negated: true}, {Feature: b}}}
}

// Excludes builds the clause for "a excludes b".
func Excludes(name, a, b string) CTConstraint {
	return CTConstraint{Name: name, Literals: []Literal{{Feature: a, Negated: true}, {Feature: b, Negated: true}}}
}
