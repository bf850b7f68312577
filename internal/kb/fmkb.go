package kb

// fmkb.go — feature model to knowledge base translation.
//
// Each feature becomes a boolean variable; each tree relationship and each
// cross-tree constraint becomes one declared constraint, so the declared
// constraint count is relationships + CTCs. The root is an assertion, not a
// declared constraint.

import (
	"fmt"

	"kbstats/internal/fm"
)

const (
	featureTrue  = "true"
	featureFalse = "false"
)

// FromFeatureModel translates m into a knowledge base. The source string is
// a provenance label, typically the file the model was read from.
func FromFeatureModel(m *fm.FeatureModel, source string) (*KB, error) {
	root := m.Root()
	if root == nil {
		return nil, fmt.Errorf("feature model %q has no root", m.Name)
	}

	k := &KB{Name: m.Name, Source: source}
	for _, f := range m.Features() {
		k.Variables = append(k.Variables, Variable{
			Name:   f.ID,
			Domain: []string{featureTrue, featureFalse},
		})
	}

	for _, r := range m.Relationships() {
		k.Constraints = append(k.Constraints, relationshipConstraint(r))
	}
	for _, c := range m.Constraints() {
		k.Constraints = append(k.Constraints, clauseConstraint(c))
	}

	k.Assertions = []Assignment{selected(root.ID)}
	return k, nil
}

func selected(id string) Assignment   { return Assignment{Var: id, Value: featureTrue} }
func deselected(id string) Assignment { return Assignment{Var: id, Value: featureFalse} }

// relationshipConstraint encodes one tree relationship as forbidden
// combinations. The dispatch over the relationship type is exhaustive.
func relationshipConstraint(r fm.Relationship) Constraint {
	p := r.Parent.ID
	c := Constraint{Name: fmt.Sprintf("%s(%s)", r.Type, p)}

	switch r.Type {
	case fm.Mandatory:
		// parent ↔ child
		child := r.Children[0].ID
		c.Forbidden = [][]Assignment{
			{selected(p), deselected(child)},
			{deselected(p), selected(child)},
		}

	case fm.Optional:
		// child → parent
		child := r.Children[0].ID
		c.Forbidden = [][]Assignment{
			{selected(child), deselected(p)},
		}

	case fm.Or:
		c.Forbidden = groupForbidden(p, r.Children)

	case fm.Alternative:
		c.Forbidden = groupForbidden(p, r.Children)
		// Group members are pairwise exclusive.
		for i := 0; i < len(r.Children); i++ {
			for j := i + 1; j < len(r.Children); j++ {
				c.Forbidden = append(c.Forbidden, []Assignment{
					selected(r.Children[i].ID),
					selected(r.Children[j].ID),
				})
			}
		}
	}
	return c
}

// groupForbidden encodes the shared or/alternative core: every member
// implies the parent, and a selected parent implies at least one member.
func groupForbidden(parent string, children []*fm.Feature) [][]Assignment {
	var out [][]Assignment
	for _, child := range children {
		out = append(out, []Assignment{selected(child.ID), deselected(parent)})
	}
	allOff := make([]Assignment, 0, len(children)+1)
	allOff = append(allOff, selected(parent))
	for _, child := range children {
		allOff = append(allOff, deselected(child.ID))
	}
	return append(out, allOff)
}

// clauseConstraint encodes a cross-tree clause: the single forbidden
// combination is the one falsifying every literal.
func clauseConstraint(c fm.CTConstraint) Constraint {
	name := c.Name
	if name == "" {
		name = c.String()
	}
	combo := make([]Assignment, len(c.Literals))
	for i, lit := range c.Literals {
		if lit.Negated {
			combo[i] = selected(lit.Feature)
		} else {
			combo[i] = deselected(lit.Feature)
		}
	}
	return Constraint{Name: name, Forbidden: [][]Assignment{combo}}
}
