package parser

// glencoe.go — Glencoe JSON reader.
//
// The document keys every feature by identifier and names the root. A
// feature's type states how its children are grouped: "FEATURE" children
// attach individually (mandatory unless the child is flagged optional),
// "OR" and "XOR" children form or/alternative groups. Constraints are either
// requires/excludes pairs or free clauses of "~id" literals.

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"kbstats/internal/fm"
)

type glencoeDoc struct {
	Name        string                    `json:"name"`
	Root        string                    `json:"root"`
	Features    map[string]glencoeFeature `json:"features"`
	Constraints []glencoeConstraint       `json:"constraints"`
}

type glencoeFeature struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // FEATURE, OR, XOR
	Optional bool     `json:"optional"`
	Children []string `json:"children"`
}

type glencoeConstraint struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // requires, excludes, clause
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Literals []string `json:"literals"`
}

func parseGlencoe(path string, data []byte) (*fm.FeatureModel, error) {
	var doc glencoeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Reason: "malformed Glencoe document", Err: err}
	}
	p := &glencoeParser{path: path, doc: &doc}
	return p.build()
}

type glencoeParser struct {
	path string
	doc  *glencoeDoc
}

func (p *glencoeParser) fail(reason string) error {
	return &ParseError{Path: p.path, Reason: reason}
}

func (p *glencoeParser) build() (*fm.FeatureModel, error) {
	doc := p.doc
	if doc.Root == "" {
		return nil, p.fail("missing root feature")
	}
	if _, ok := doc.Features[doc.Root]; !ok {
		return nil, p.fail(fmt.Sprintf("root %q not in feature map", doc.Root))
	}

	name := doc.Name
	if name == "" {
		name = doc.Features[doc.Root].Name
	}
	m := fm.New(name)

	seen := make(map[string]bool, len(doc.Features))
	if _, err := p.addSubtree(m, doc.Root, seen); err != nil {
		return nil, err
	}

	// A well-formed document has every feature in the tree.
	if len(seen) != len(doc.Features) {
		var orphans []string
		for id := range doc.Features {
			if !seen[id] {
				orphans = append(orphans, id)
			}
		}
		sort.Strings(orphans)
		return nil, p.fail(fmt.Sprintf("features not reachable from root: %s", strings.Join(orphans, ", ")))
	}

	for i, gc := range doc.Constraints {
		c, err := p.constraint(i, gc)
		if err != nil {
			return nil, err
		}
		if err := m.AddConstraint(c); err != nil {
			return nil, p.fail(err.Error())
		}
	}
	return m, nil
}

func (p *glencoeParser) addSubtree(m *fm.FeatureModel, id string, seen map[string]bool) (*fm.Feature, error) {
	if seen[id] {
		return nil, p.fail(fmt.Sprintf("feature %q appears in more than one place", id))
	}
	seen[id] = true

	gf, ok := p.doc.Features[id]
	if !ok {
		return nil, p.fail(fmt.Sprintf("child %q not in feature map", id))
	}
	fname := gf.Name
	if fname == "" {
		fname = id
	}
	f, err := m.AddFeature(id, fname)
	if err != nil {
		return nil, p.fail(err.Error())
	}

	switch gf.Type {
	case "", "FEATURE":
		for _, childID := range gf.Children {
			cf, err := p.addSubtree(m, childID, seen)
			if err != nil {
				return nil, err
			}
			typ := fm.Mandatory
			if p.doc.Features[childID].Optional {
				typ = fm.Optional
			}
			if err := m.AddRelationship(typ, f, cf); err != nil {
				return nil, p.fail(err.Error())
			}
		}

	case "OR", "XOR":
		if len(gf.Children) == 0 {
			return nil, p.fail(fmt.Sprintf("group %q has no children", id))
		}
		group := make([]*fm.Feature, 0, len(gf.Children))
		for _, childID := range gf.Children {
			cf, err := p.addSubtree(m, childID, seen)
			if err != nil {
				return nil, err
			}
			group = append(group, cf)
		}
		typ := fm.Or
		if gf.Type == "XOR" {
			typ = fm.Alternative
		}
		if err := m.AddRelationship(typ, f, group...); err != nil {
			return nil, p.fail(err.Error())
		}

	default:
		return nil, p.fail(fmt.Sprintf("feature %q has unsupported type %q", id, gf.Type))
	}
	return f, nil
}

func (p *glencoeParser) constraint(i int, gc glencoeConstraint) (fm.CTConstraint, error) {
	name := gc.Name
	if name == "" {
		name = fmt.Sprintf("constraint%d", i+1)
	}
	switch gc.Type {
	case "requires":
		if gc.Source == "" || gc.Target == "" {
			return fm.CTConstraint{}, p.fail(fmt.Sprintf("constraint %s: requires needs source and target", name))
		}
		return fm.Requires(name, gc.Source, gc.Target), nil
	case "excludes":
		if gc.Source == "" || gc.Target == "" {
			return fm.CTConstraint{}, p.fail(fmt.Sprintf("constraint %s: excludes needs source and target", name))
		}
		return fm.Excludes(name, gc.Source, gc.Target), nil
	case "clause":
		var lits []fm.Literal
		for _, tok := range gc.Literals {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				return fm.CTConstraint{}, p.fail(fmt.Sprintf("constraint %s: empty literal", name))
			}
			lit := fm.Literal{Feature: tok}
			if strings.HasPrefix(tok, "~") {
				lit = fm.Literal{Feature: strings.TrimSpace(tok[1:]), Negated: true}
			}
			lits = append(lits, lit)
		}
		if len(lits) == 0 {
			return fm.CTConstraint{}, p.fail(fmt.Sprintf("constraint %s: empty clause", name))
		}
		return fm.CTConstraint{Name: name, Literals: lits}, nil
	}
	return fm.CTConstraint{}, p.fail(fmt.Sprintf("constraint %s: unsupported type %q", name, gc.Type))
}
