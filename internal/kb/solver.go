package kb

// solver.go — CNF encoding and satisfiability.
//
// Direct encoding: one boolean per (variable, value) pair; per variable one
// at-least-one clause and pairwise at-most-one clauses; one clause per
// forbidden combination (the negation of its assignments); one unit clause
// per assertion. The encoding always yields at least as many solver
// variables and clauses as the KB declares.

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
)

// Built is a knowledge base in its solver-backed form. Solver-side counts
// exist only here, never on the bare KB.
type Built struct {
	kb      *KB
	lits    map[Assignment]int
	clauses [][]int
}

// Build validates the KB and encodes it into CNF.
func (k *KB) Build() (*Built, error) {
	if err := k.validate(); err != nil {
		return nil, fmt.Errorf("build %s: %w", k.Name, err)
	}

	b := &Built{kb: k, lits: make(map[Assignment]int)}
	next := 1
	for _, v := range k.Variables {
		for _, val := range v.Domain {
			b.lits[Assignment{Var: v.Name, Value: val}] = next
			next++
		}
	}

	// Exactly-one clauses per variable.
	for _, v := range k.Variables {
		atLeastOne := make([]int, len(v.Domain))
		for i, val := range v.Domain {
			atLeastOne[i] = b.lits[Assignment{Var: v.Name, Value: val}]
		}
		b.clauses = append(b.clauses, atLeastOne)
		for i := 0; i < len(v.Domain); i++ {
			for j := i + 1; j < len(v.Domain); j++ {
				b.clauses = append(b.clauses, []int{-atLeastOne[i], -atLeastOne[j]})
			}
		}
	}

	// One clause per forbidden combination.
	for _, c := range k.Constraints {
		for _, combo := range c.Forbidden {
			clause := make([]int, len(combo))
			for i, a := range combo {
				clause[i] = -b.lits[a]
			}
			b.clauses = append(b.clauses, clause)
		}
	}

	for _, a := range k.Assertions {
		b.clauses = append(b.clauses, []int{b.lits[a]})
	}
	return b, nil
}

// KB returns the knowledge base this form was built from.
func (b *Built) KB() *KB { return b.kb }

// NumVariables returns the declared variable count.
func (b *Built) NumVariables() int { return b.kb.NumVariables() }

// NumConstraints returns the declared constraint count.
func (b *Built) NumConstraints() int { return b.kb.NumConstraints() }

// NumSolverVariables returns the boolean variable count of the encoding.
func (b *Built) NumSolverVariables() int { return len(b.lits) }

// NumSolverConstraints returns the clause count of the encoding.
func (b *Built) NumSolverConstraints() int { return len(b.clauses) }

// Solve runs a single satisfiability query. The verdict is the only output;
// no model is retained.
func (b *Built) Solve() (bool, error) {
	if len(b.clauses) == 0 {
		return true, nil
	}
	pb := solver.ParseSlice(b.clauses)
	return solver.New(pb).Solve() == solver.Sat, nil
}
