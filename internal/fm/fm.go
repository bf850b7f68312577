// Package fm holds the canonical in-memory representation of a feature model:
// a tree of features rooted at one mandatory root, the tree-structural
// relationships between them, and the cross-tree constraints layered on top.
// The representation is independent of the serialization format it was read
// from; parsers in fm/parser produce it, and the statistics engine consumes it.
package fm

import (
	"fmt"
)

// Feature is one node of the feature tree. Parent and Children mirror the
// relationship set: AddRelationship wires them, callers never set them
// directly.
type Feature struct {
	ID       string // stable identifier, referenced by constraints
	Name     string // display name from the source file
	Parent   *Feature
	Children []*Feature
}

// IsLeaf reports whether the feature has no child features.
func (f *Feature) IsLeaf() bool { return len(f.Children) == 0 }

// IsRoot reports whether the feature is the tree root.
func (f *Feature) IsRoot() bool { return f.Parent == nil }

// FeatureModel is the canonical model. Features keep insertion order, which
// parsers derive from document order, so traversals are deterministic.
type FeatureModel struct {
	Name string

	features      []*Feature
	byID          map[string]*Feature
	relationships []Relationship
	constraints   []CTConstraint
}

// New returns an empty feature model with the given name.
func New(name string) *FeatureModel {
	return &FeatureModel{
		Name: name,
		byID: make(map[string]*Feature),
	}
}

// AddFeature appends a feature to the model. The first feature added becomes
// the root. Duplicate identifiers are rejected.
func (m *FeatureModel) AddFeature(id, name string) (*Feature, error) {
	if id == "" {
		return nil, fmt.Errorf("feature with empty identifier")
	}
	if _, ok := m.byID[id]; ok {
		return nil, fmt.Errorf("duplicate feature identifier %q", id)
	}
	f := &Feature{ID: id, Name: name}
	m.features = append(m.features, f)
	m.byID[id] = f
	return f, nil
}

// Feature looks up a feature by identifier.
func (m *FeatureModel) Feature(id string) (*Feature, bool) {
	f, ok := m.byID[id]
	return f, ok
}

// Root returns the root feature, or nil for an empty model.
func (m *FeatureModel) Root() *Feature {
	if len(m.features) == 0 {
		return nil
	}
	return m.features[0]
}

// AddRelationship records a tree relationship and wires the parent/child
// pointers of the involved features. Mandatory and Optional take exactly one
// child; Alternative and Or take one or more.
func (m *FeatureModel) AddRelationship(t RelType, parent *Feature, children ...*Feature) error {
	switch t {
	case Mandatory, Optional:
		if len(children) != 1 {
			return fmt.Errorf("%s relationship under %q needs exactly one child, got %d", t, parent.ID, len(children))
		}
	case Alternative, Or:
		if len(children) == 0 {
			return fmt.Errorf("%s group under %q has no children", t, parent.ID)
		}
	default:
		return fmt.Errorf("unknown relationship type %d", int(t))
	}
	for _, c := range children {
		if c.Parent != nil {
			return fmt.Errorf("feature %q already has parent %q", c.ID, c.Parent.ID)
		}
		if c == parent {
			return fmt.Errorf("feature %q cannot be its own parent", c.ID)
		}
	}
	for _, c := range children {
		c.Parent = parent
		parent.Children = append(parent.Children, c)
	}
	m.relationships = append(m.relationships, Relationship{Type: t, Parent: parent, Children: children})
	return nil
}

// AddConstraint records a cross-tree constraint. Every literal must reference
// a known feature.
func (m *FeatureModel) AddConstraint(c CTConstraint) error {
	if len(c.Literals) == 0 {
		return fmt.Errorf("constraint %q has no literals", c.Name)
	}
	for _, lit := range c.Literals {
		if _, ok := m.byID[lit.Feature]; !ok {
			return fmt.Errorf("constraint %q references unknown feature %q", c.Name, lit.Feature)
		}
	}
	m.constraints = append(m.constraints, c)
	return nil
}

// Features returns all features in insertion order. The returned slice is
// shared with the model and must not be mutated.
func (m *FeatureModel) Features() []*Feature { return m.features }

// Relationships returns all tree relationships in insertion order.
func (m *FeatureModel) Relationships() []Relationship { return m.relationships }

// Constraints returns all cross-tree constraints in insertion order.
func (m *FeatureModel) Constraints() []CTConstraint { return m.constraints }

// ---------------------------------------------------------------------------
// Aggregations
// ---------------------------------------------------------------------------
//
// All counts are pure traversals over the tree and the relationship set; no
// solver is involved.

// NumFeatures returns the total number of features, root included.
func (m *FeatureModel) NumFeatures() int { return len(m.features) }

// NumLeafFeatures returns the number of features without children.
func (m *FeatureModel) NumLeafFeatures() int {
	n := 0
	for _, f := range m.features {
		if f.IsLeaf() {
			n++
		}
	}
	return n
}

// NumRelationships returns the total number of tree relationships. Always
// equal to the sum of the four per-type counts.
func (m *FeatureModel) NumRelationships() int { return len(m.relationships) }

// NumConstraints returns the number of cross-tree constraints. Tree
// relationships are not included.
func (m *FeatureModel) NumConstraints() int { return len(m.constraints) }

// CountRelationships returns the number of relationships of one type.
func (m *FeatureModel) CountRelationships(t RelType) int {
	n := 0
	for _, r := range m.relationships {
		if r.Type == t {
			n++
		}
	}
	return n
}

// NumRequires returns the number of cross-tree constraints classified as
// requires (A implies B).
func (m *FeatureModel) NumRequires() int { return m.countConstraints(KindRequires) }

// NumExcludes returns the number of cross-tree constraints classified as
// excludes (A implies not B).
func (m *FeatureModel) NumExcludes() int { return m.countConstraints(KindExcludes) }

func (m *FeatureModel) countConstraints(k ConstraintKind) int {
	n := 0
	for _, c := range m.constraints {
		if c.Kind() == k {
			n++
		}
	}
	return n
}
