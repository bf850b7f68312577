// Package stats is the statistics engine: it derives the reported metrics
// from a built knowledge base (and, for feature models, from the canonical
// tree), sequences the batch of inputs, and appends one fixed-layout record
// per input to the report.
package stats

import (
	"kbstats/internal/fm"
	"kbstats/internal/kb"
)

// Record is the statistics of one processed input. It is created once,
// written once, and never mutated afterwards.
type Record struct {
	// Index is 1-based and strictly increasing across the whole run,
	// regardless of which input category produced the record.
	Index int

	Name   string
	Source string

	Variables         int
	Constraints       int
	SolverVariables   int
	SolverConstraints int
	Consistent        bool

	// FM carries the feature-model metrics; nil for plain knowledge bases.
	FM *FMStats
}

// FMStats are the feature-model-only metrics.
type FMStats struct {
	// CTCRatio is the share of cross-tree constraints in the knowledge
	// base's declared constraint count. CTCDefined is false when that count
	// is zero; the ratio is then reported as undefined instead of dividing.
	CTCRatio   float64
	CTCDefined bool

	Features      int
	LeafFeatures  int
	Relationships int
	Constraints   int // cross-tree constraints only

	Mandatory   int
	Optional    int
	Alternative int
	Or          int

	Requires int
	Excludes int
}

// Base computes the statistics common to every knowledge base. The solver is
// consulted exactly once, for a bare satisfiability verdict.
func Base(b *kb.Built) (Record, error) {
	consistent, err := b.Solve()
	if err != nil {
		return Record{}, err
	}
	k := b.KB()
	return Record{
		Name:              k.Name,
		Source:            k.Source,
		Variables:         b.NumVariables(),
		Constraints:       b.NumConstraints(),
		SolverVariables:   b.NumSolverVariables(),
		SolverConstraints: b.NumSolverConstraints(),
		Consistent:        consistent,
	}, nil
}

// ForFeatureModel computes the base statistics of the model's knowledge base
// plus the structural feature-model metrics. All structural counts are pure
// traversals; only Base touches the solver.
func ForFeatureModel(m *fm.FeatureModel, b *kb.Built) (Record, error) {
	rec, err := Base(b)
	if err != nil {
		return Record{}, err
	}

	s := &FMStats{
		Features:      m.NumFeatures(),
		LeafFeatures:  m.NumLeafFeatures(),
		Relationships: m.NumRelationships(),
		Constraints:   m.NumConstraints(),
		Mandatory:     m.CountRelationships(fm.Mandatory),
		Optional:      m.CountRelationships(fm.Optional),
		Alternative:   m.CountRelationships(fm.Alternative),
		Or:            m.CountRelationships(fm.Or),
		Requires:      m.NumRequires(),
		Excludes:      m.NumExcludes(),
	}
	if b.NumConstraints() > 0 {
		s.CTCRatio = float64(m.NumConstraints()) / float64(b.NumConstraints())
		s.CTCDefined = true
	}
	rec.FM = s
	return rec, nil
}
