package parser

// sxfm.go — SPLOT SXFM reader.
//
// SXFM wraps two text blocks in XML: a tab-indented feature tree and a list
// of named CNF clauses.
//
//	<feature_model name="Example">
//	<feature_tree>
//	:r Root(root)
//		:m Connectivity(conn)
//		:g (g1) [1,*]
//			: Bluetooth(bt)
//			: WiFi(wifi)
//	</feature_tree>
//	<constraints>
//	c1: ~bt or wifi
//	</constraints>
//	</feature_model>
//
// Tree line tags: ":r" root, ":m" mandatory, ":o" optional, ":g" group with
// a [min,max] cardinality ([1,1] alternative, anything wider an or-group),
// ":" a grouped feature. Indentation is one tab per level.

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"kbstats/internal/fm"
)

type sxfmDoc struct {
	XMLName     xml.Name `xml:"feature_model"`
	Name        string   `xml:"name,attr"`
	Tree        string   `xml:"feature_tree"`
	Constraints string   `xml:"constraints"`
}

// sxfmEntry is one open node on the indentation stack: either a feature or a
// pending group collecting its members.
type sxfmEntry struct {
	depth int
	feat  *fm.Feature
	group *sxfmGroup
}

type sxfmGroup struct {
	parent   *fm.Feature
	typ      fm.RelType
	children []*fm.Feature
}

var sxfmCardinality = regexp.MustCompile(`\[(\d+),(\d+|\*)\]`)

func parseSXFM(path string, data []byte) (*fm.FeatureModel, error) {
	var doc sxfmDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Reason: "malformed SXFM document", Err: err}
	}

	p := &sxfmParser{path: path, ids: make(map[string]bool)}
	m, err := p.parseTree(doc.Name, doc.Tree)
	if err != nil {
		return nil, err
	}
	if err := p.parseConstraints(m, doc.Constraints); err != nil {
		return nil, err
	}
	return m, nil
}

type sxfmParser struct {
	path  string
	ids   map[string]bool
	stack []sxfmEntry
}

func (p *sxfmParser) fail(reason string) error {
	return &ParseError{Path: p.path, Reason: reason}
}

func (p *sxfmParser) parseTree(name, tree string) (*fm.FeatureModel, error) {
	m := fm.New(name)

	for _, raw := range strings.Split(tree, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		rest := strings.TrimSpace(line[depth:])

		// Close every node at this depth or deeper before attaching.
		if err := p.popTo(m, depth); err != nil {
			return nil, err
		}

		switch {
		case strings.HasPrefix(rest, ":r "):
			if m.Root() != nil {
				return nil, p.fail("multiple root features")
			}
			f, err := p.addFeature(m, rest[3:])
			if err != nil {
				return nil, err
			}
			p.stack = append(p.stack, sxfmEntry{depth: depth, feat: f})

		case strings.HasPrefix(rest, ":m "), strings.HasPrefix(rest, ":o "):
			parent, err := p.parentFeature()
			if err != nil {
				return nil, err
			}
			f, err := p.addFeature(m, rest[3:])
			if err != nil {
				return nil, err
			}
			typ := fm.Mandatory
			if rest[1] == 'o' {
				typ = fm.Optional
			}
			if err := m.AddRelationship(typ, parent, f); err != nil {
				return nil, p.fail(err.Error())
			}
			p.stack = append(p.stack, sxfmEntry{depth: depth, feat: f})

		case strings.HasPrefix(rest, ":g"):
			parent, err := p.parentFeature()
			if err != nil {
				return nil, err
			}
			card := sxfmCardinality.FindStringSubmatch(rest)
			if card == nil {
				return nil, p.fail(fmt.Sprintf("group without cardinality: %q", rest))
			}
			typ := fm.Or
			if card[1] == "1" && card[2] == "1" {
				typ = fm.Alternative
			}
			p.stack = append(p.stack, sxfmEntry{depth: depth, group: &sxfmGroup{parent: parent, typ: typ}})

		case strings.HasPrefix(rest, ": "):
			top := p.top()
			if top == nil || top.group == nil {
				return nil, p.fail(fmt.Sprintf("grouped feature outside a group: %q", rest))
			}
			f, err := p.addFeature(m, rest[2:])
			if err != nil {
				return nil, err
			}
			top.group.children = append(top.group.children, f)
			p.stack = append(p.stack, sxfmEntry{depth: depth, feat: f})

		default:
			return nil, p.fail(fmt.Sprintf("unrecognized feature tree line: %q", rest))
		}
	}

	if err := p.popTo(m, 0); err != nil {
		return nil, err
	}
	if m.Root() == nil {
		return nil, p.fail("feature tree has no root")
	}
	if m.Name == "" {
		m.Name = m.Root().Name
	}
	return m, nil
}

// popTo finalizes every stack entry at depth or deeper. Groups emit their
// relationship when closed.
func (p *sxfmParser) popTo(m *fm.FeatureModel, depth int) error {
	for len(p.stack) > 0 {
		top := p.top()
		if top.depth < depth {
			return nil
		}
		if top.group != nil {
			g := top.group
			if len(g.children) == 0 {
				return p.fail("group with no members")
			}
			if err := m.AddRelationship(g.typ, g.parent, g.children...); err != nil {
				return p.fail(err.Error())
			}
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
	return nil
}

func (p *sxfmParser) top() *sxfmEntry {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// parentFeature returns the feature the next :m/:o/:g line attaches to.
func (p *sxfmParser) parentFeature() (*fm.Feature, error) {
	top := p.top()
	if top == nil || top.feat == nil {
		return nil, p.fail("feature line without a parent feature")
	}
	return top.feat, nil
}

// addFeature parses "Name(id)" and registers the feature. Files may omit the
// id, in which case one is derived from the name.
func (p *sxfmParser) addFeature(m *fm.FeatureModel, text string) (*fm.Feature, error) {
	name := strings.TrimSpace(text)
	id := ""
	if open := strings.LastIndex(name, "("); open >= 0 && strings.HasSuffix(name, ")") {
		id = strings.TrimSpace(name[open+1 : len(name)-1])
		name = strings.TrimSpace(name[:open])
	}
	if name == "" {
		return nil, p.fail(fmt.Sprintf("feature without a name: %q", text))
	}
	if id == "" {
		id = p.generateID(name)
	}
	f, err := m.AddFeature(id, name)
	if err != nil {
		return nil, p.fail(err.Error())
	}
	p.ids[id] = true
	return f, nil
}

// generateID derives a unique identifier from a feature name for files that
// do not assign one.
func (p *sxfmParser) generateID(name string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	id := base
	for n := 2; p.ids[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	return id
}

// parseConstraints reads the "name: ~a or b" clause lines.
func (p *sxfmParser) parseConstraints(m *fm.FeatureModel, block string) error {
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		name := ""
		if i := strings.Index(line, ":"); i >= 0 {
			name = strings.TrimSpace(line[:i])
			line = strings.TrimSpace(line[i+1:])
		}
		var lits []fm.Literal
		for _, tok := range strings.Split(line, " or ") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				return p.fail(fmt.Sprintf("constraint %q has an empty literal", name))
			}
			lit := fm.Literal{Feature: tok}
			if strings.HasPrefix(tok, "~") {
				lit = fm.Literal{Feature: strings.TrimSpace(tok[1:]), Negated: true}
			}
			lits = append(lits, lit)
		}
		if err := m.AddConstraint(fm.CTConstraint{Name: name, Literals: lits}); err != nil {
			return p.fail(err.Error())
		}
	}
	return nil
}
