package fm

// relationship.go — the closed set of tree relationship types.
//
// Relationship dispatch is a tagged enum with exhaustive switches in the
// consumers (metric derivation, solver translation), not a type hierarchy.

// RelType tags a tree relationship. The set is closed: every switch over it
// handles all four values.
type RelType int

const (
	Mandatory RelType = iota
	Optional
	Alternative
	Or
)

// String returns the conventional upper-case tag used in reports.
func (t RelType) String() string {
	switch t {
	case Mandatory:
		return "MANDATORY"
	case Optional:
		return "OPTIONAL"
	case Alternative:
		return "ALTERNATIVE"
	case Or:
		return "OR"
	}
	return "UNKNOWN"
}

// Relationship is one tree edge set: a parent and the children it governs.
// Mandatory and Optional carry exactly one child; Alternative and Or carry
// the whole group.
type Relationship struct {
	Type     RelType
	Parent   *Feature
	Children []*Feature
}
