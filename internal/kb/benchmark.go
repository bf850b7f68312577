package kb

// benchmark.go — the fixed benchmark knowledge bases.
//
// PC, Renault and Camera are configuration benchmarks shipped with the tool.
// Their definitions live in embedded YAML files: variables with finite
// domains and constraints as forbidden value combinations.

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names one of the recognized benchmark knowledge bases.
type Kind string

const (
	PC      Kind = "PC"
	Renault Kind = "Renault"
	Camera  Kind = "Camera"
)

// ErrUnsupportedKB marks a request for a benchmark name outside the
// recognized set. It is a configuration error: callers check it before any
// solver work starts.
var ErrUnsupportedKB = errors.New("unsupported knowledge base")

// Kinds returns the recognized benchmark kinds in their conventional order.
func Kinds() []Kind { return []Kind{PC, Renault, Camera} }

// KindOf resolves a user-supplied benchmark name. Matching is exact.
func KindOf(name string) (Kind, error) {
	for _, k := range Kinds() {
		if name == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKB, name)
}

//go:embed data/*.yaml
var benchmarkData embed.FS

type benchmarkDoc struct {
	Name      string `yaml:"name"`
	Source    string `yaml:"source"`
	Variables []struct {
		Name   string   `yaml:"name"`
		Domain []string `yaml:"domain"`
	} `yaml:"variables"`
	Constraints []struct {
		Name      string `yaml:"name"`
		Forbidden [][]struct {
			Var   string `yaml:"var"`
			Value string `yaml:"value"`
		} `yaml:"forbidden"`
	} `yaml:"constraints"`
}

// Benchmark loads the definition of one benchmark knowledge base.
func Benchmark(kind Kind) (*KB, error) {
	raw, err := benchmarkData.ReadFile("data/" + strings.ToLower(string(kind)) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKB, kind)
	}
	var doc benchmarkDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", kind, err)
	}

	k := &KB{Name: doc.Name, Source: doc.Source}
	for _, v := range doc.Variables {
		k.Variables = append(k.Variables, Variable{Name: v.Name, Domain: v.Domain})
	}
	for _, c := range doc.Constraints {
		constraint := Constraint{Name: c.Name}
		for _, combo := range c.Forbidden {
			assignments := make([]Assignment, len(combo))
			for i, a := range combo {
				assignments[i] = Assignment{Var: a.Var, Value: a.Value}
			}
			constraint.Forbidden = append(constraint.Forbidden, assignments)
		}
		k.Constraints = append(k.Constraints, constraint)
	}
	return k, nil
}
