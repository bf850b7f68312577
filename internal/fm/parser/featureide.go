package parser

// featureide.go — FeatureIDE XML reader.
//
// The tree lives under <struct>: compound features are <and>, <or> or <alt>
// elements whose tag states how their children are grouped, leaves are
// <feature> elements. An "and" parent attaches each child individually,
// mandatory or optional per the child's mandatory attribute; "or" and "alt"
// parents group all their children.
//
// Cross-tree constraints are <rule> trees. Only clause-shaped rules are
// accepted: imp over literals, disj over literals, or a single literal. The
// statistics only need clause CTCs, so wider rule nesting is rejected with a
// parse error naming the offending element.

import (
	"encoding/xml"
	"fmt"
	"strings"

	"kbstats/internal/fm"
)

type fideDoc struct {
	XMLName xml.Name `xml:"featureModel"`
	Struct  struct {
		Nodes []fideNode `xml:",any"`
	} `xml:"struct"`
	Constraints struct {
		Rules []fideExpr `xml:"rule"`
	} `xml:"constraints"`
}

type fideNode struct {
	XMLName   xml.Name
	Name      string     `xml:"name,attr"`
	Mandatory string     `xml:"mandatory,attr"`
	Children  []fideNode `xml:",any"`
}

type fideExpr struct {
	XMLName xml.Name
	Text    string     `xml:",chardata"`
	Kids    []fideExpr `xml:",any"`
}

// fideSkip lists struct/rule child elements that carry presentation or
// documentation and take no part in the model.
var fideSkip = map[string]bool{"description": true, "graphics": true, "tags": true}

func parseFeatureIDE(path string, data []byte) (*fm.FeatureModel, error) {
	var doc fideDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Reason: "malformed FeatureIDE document", Err: err}
	}

	p := &fideParser{path: path}

	var rootNode *fideNode
	for i := range doc.Struct.Nodes {
		n := &doc.Struct.Nodes[i]
		if fideSkip[n.XMLName.Local] {
			continue
		}
		if rootNode != nil {
			return nil, p.fail("multiple root features")
		}
		rootNode = n
	}
	if rootNode == nil {
		return nil, p.fail("empty struct element")
	}

	m := fm.New(rootNode.Name)
	if _, err := p.addSubtree(m, rootNode); err != nil {
		return nil, err
	}

	for i, rule := range doc.Constraints.Rules {
		expr, err := p.ruleBody(rule)
		if err != nil {
			return nil, err
		}
		lits, err := p.clause(expr)
		if err != nil {
			return nil, err
		}
		c := fm.CTConstraint{Name: fmt.Sprintf("rule%d", i+1), Literals: lits}
		if err := m.AddConstraint(c); err != nil {
			return nil, p.fail(err.Error())
		}
	}
	return m, nil
}

type fideParser struct {
	path string
}

func (p *fideParser) fail(reason string) error {
	return &ParseError{Path: p.path, Reason: reason}
}

// addSubtree registers node and its descendants, attaching children per the
// node's grouping tag. FeatureIDE identifies features by name, so the name
// doubles as the identifier.
func (p *fideParser) addSubtree(m *fm.FeatureModel, node *fideNode) (*fm.Feature, error) {
	if node.Name == "" {
		return nil, p.fail(fmt.Sprintf("<%s> element without a name", node.XMLName.Local))
	}
	f, err := m.AddFeature(node.Name, node.Name)
	if err != nil {
		return nil, p.fail(err.Error())
	}

	kids := make([]*fideNode, 0, len(node.Children))
	for i := range node.Children {
		c := &node.Children[i]
		if fideSkip[c.XMLName.Local] {
			continue
		}
		kids = append(kids, c)
	}

	switch node.XMLName.Local {
	case "feature":
		if len(kids) > 0 {
			return nil, p.fail(fmt.Sprintf("leaf feature %q has children", node.Name))
		}

	case "and":
		for _, c := range kids {
			cf, err := p.addSubtree(m, c)
			if err != nil {
				return nil, err
			}
			typ := fm.Optional
			if c.Mandatory == "true" {
				typ = fm.Mandatory
			}
			if err := m.AddRelationship(typ, f, cf); err != nil {
				return nil, p.fail(err.Error())
			}
		}

	case "or", "alt":
		if len(kids) == 0 {
			return nil, p.fail(fmt.Sprintf("group %q has no children", node.Name))
		}
		group := make([]*fm.Feature, 0, len(kids))
		for _, c := range kids {
			cf, err := p.addSubtree(m, c)
			if err != nil {
				return nil, err
			}
			group = append(group, cf)
		}
		typ := fm.Or
		if node.XMLName.Local == "alt" {
			typ = fm.Alternative
		}
		if err := m.AddRelationship(typ, f, group...); err != nil {
			return nil, p.fail(err.Error())
		}

	default:
		return nil, p.fail(fmt.Sprintf("unsupported struct element <%s>", node.XMLName.Local))
	}
	return f, nil
}

// ruleBody extracts the single expression inside a <rule> element.
func (p *fideParser) ruleBody(rule fideExpr) (fideExpr, error) {
	var body *fideExpr
	for i := range rule.Kids {
		k := &rule.Kids[i]
		if fideSkip[k.XMLName.Local] {
			continue
		}
		if body != nil {
			return fideExpr{}, p.fail("rule with more than one expression")
		}
		body = k
	}
	if body == nil {
		return fideExpr{}, p.fail("empty rule")
	}
	return *body, nil
}

// clause converts a rule expression into clause literals.
func (p *fideParser) clause(expr fideExpr) ([]fm.Literal, error) {
	switch expr.XMLName.Local {
	case "imp":
		if len(expr.Kids) != 2 {
			return nil, p.fail(fmt.Sprintf("imp with %d operands", len(expr.Kids)))
		}
		lhs, err := p.literal(expr.Kids[0])
		if err != nil {
			return nil, err
		}
		rhs, err := p.literal(expr.Kids[1])
		if err != nil {
			return nil, err
		}
		lhs.Negated = !lhs.Negated
		return []fm.Literal{lhs, rhs}, nil

	case "disj":
		var lits []fm.Literal
		for _, k := range expr.Kids {
			lit, err := p.literal(k)
			if err != nil {
				return nil, err
			}
			lits = append(lits, lit)
		}
		if len(lits) == 0 {
			return nil, p.fail("empty disjunction")
		}
		return lits, nil

	case "var", "not":
		lit, err := p.literal(expr)
		if err != nil {
			return nil, err
		}
		return []fm.Literal{lit}, nil
	}
	return nil, p.fail(fmt.Sprintf("unsupported constraint element <%s>", expr.XMLName.Local))
}

// literal converts <var>name</var> or <not><var>name</var></not>.
func (p *fideParser) literal(expr fideExpr) (fm.Literal, error) {
	switch expr.XMLName.Local {
	case "var":
		name := strings.TrimSpace(expr.Text)
		if name == "" {
			return fm.Literal{}, p.fail("var element without a feature name")
		}
		return fm.Literal{Feature: name}, nil
	case "not":
		if len(expr.Kids) != 1 {
			return fm.Literal{}, p.fail("not element without a single operand")
		}
		lit, err := p.literal(expr.Kids[0])
		if err != nil {
			return fm.Literal{}, err
		}
		lit.Negated = !lit.Negated
		return lit, nil
	}
	return fm.Literal{}, p.fail(fmt.Sprintf("unsupported literal element <%s>", expr.XMLName.Local))
}
