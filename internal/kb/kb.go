// Package kb holds knowledge bases: declarative constraint models whose
// consistency and size the statistics engine measures. A KB is a set of
// variables over finite domains plus constraints expressed as forbidden
// value combinations. The same representation backs the fixed benchmark
// models and feature models translated via FromFeatureModel; Build encodes
// either into CNF and answers satisfiability through gophersat.
package kb

import (
	"fmt"
)

// Variable is one declared variable with its finite domain.
type Variable struct {
	Name   string
	Domain []string
}

// Assignment binds one variable to one of its domain values.
type Assignment struct {
	Var   string
	Value string
}

// Constraint rules out value combinations. Each entry of Forbidden is one
// complete combination that no solution may contain. A constraint must
// forbid at least one combination.
type Constraint struct {
	Name      string
	Forbidden [][]Assignment
}

// KB is a knowledge base before solver encoding. Constructed once per input,
// read-only afterwards.
type KB struct {
	Name   string
	Source string

	Variables   []Variable
	Constraints []Constraint

	// Assertions are variable bindings that always hold (a feature model's
	// root, for instance). They become unit clauses in the encoding and are
	// not counted among the declared constraints.
	Assertions []Assignment
}

// NumVariables returns the declared variable count.
func (k *KB) NumVariables() int { return len(k.Variables) }

// NumConstraints returns the declared constraint count.
func (k *KB) NumConstraints() int { return len(k.Constraints) }

// validate checks internal references before encoding: every constraint and
// assertion must bind declared variables to values inside their domains.
func (k *KB) validate() error {
	domains := make(map[string]map[string]bool, len(k.Variables))
	for _, v := range k.Variables {
		if len(v.Domain) == 0 {
			return fmt.Errorf("variable %q has an empty domain", v.Name)
		}
		if _, ok := domains[v.Name]; ok {
			return fmt.Errorf("duplicate variable %q", v.Name)
		}
		values := make(map[string]bool, len(v.Domain))
		for _, val := range v.Domain {
			if values[val] {
				return fmt.Errorf("variable %q repeats domain value %q", v.Name, val)
			}
			values[val] = true
		}
		domains[v.Name] = values
	}

	check := func(where string, a Assignment) error {
		values, ok := domains[a.Var]
		if !ok {
			return fmt.Errorf("%s references unknown variable %q", where, a.Var)
		}
		if !values[a.Value] {
			return fmt.Errorf("%s binds %q to %q, not in its domain", where, a.Var, a.Value)
		}
		return nil
	}

	for _, c := range k.Constraints {
		if len(c.Forbidden) == 0 {
			return fmt.Errorf("constraint %q forbids nothing", c.Name)
		}
		for _, combo := range c.Forbidden {
			if len(combo) == 0 {
				return fmt.Errorf("constraint %q has an empty combination", c.Name)
			}
			for _, a := range combo {
				if err := check(fmt.Sprintf("constraint %q", c.Name), a); err != nil {
					return err
				}
			}
		}
	}
	for _, a := range k.Assertions {
		if err := check("assertion", a); err != nil {
			return err
		}
	}
	return nil
}
