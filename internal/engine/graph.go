package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adjudex/tribunal/internal/domain"
	"gopkg.in/yaml.v3"
)

// Deltas from a node whose terms do not appear in the claim text are
// halved rather than skipped: an irrelevant rule still carries some
// structural signal.
const irrelevantNodeFactor = 0.5

// Graph is one module's local reasoning structure, loaded from YAML.
// The core treats the content as opaque domain material; only the
// traversal capability matters.
type Graph struct {
	ID    string `yaml:"id"`
	Entry string `yaml:"entry"`
	Nodes []Node `yaml:"nodes"`

	index map[string]*Node
}

type Node struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`

	// Terms gate relevance against the claim text; Contradicts lists
	// phrases that falsify the trajectory when present in the claim.
	Terms       []string `yaml:"terms,omitempty"`
	Contradicts []string `yaml:"contradicts,omitempty"`

	ConfidenceDelta   float64 `yaml:"confidence_delta"`
	ValidityDelta     float64 `yaml:"validity_delta"`
	VerificationDelta float64 `yaml:"verification_delta"`

	Next string `yaml:"next,omitempty"`
}

// LoadGraph reads and indexes one beam graph file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}

	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse graph %s: %w", path, err)
	}

	if g.ID == "" {
		return nil, fmt.Errorf("graph %s: missing id", path)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph %s: no nodes", path)
	}

	g.index = make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("graph %s: node %d missing id", path, i)
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, fmt.Errorf("graph %s: duplicate node %q", path, n.ID)
		}
		g.index[n.ID] = n
	}

	if g.Entry == "" {
		g.Entry = g.Nodes[0].ID
	}
	if _, ok := g.index[g.Entry]; !ok {
		return nil, fmt.Errorf("graph %s: entry %q not found", path, g.Entry)
	}
	for _, n := range g.Nodes {
		if n.Next != "" {
			if _, ok := g.index[n.Next]; !ok {
				return nil, fmt.Errorf("graph %s: node %q links to unknown node %q", path, n.ID, n.Next)
			}
		}
	}

	return &g, nil
}

// LoadGraphDir loads every *.yaml graph in dir, sorted by file name.
func LoadGraphDir(dir string) ([]*Graph, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read beam dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	var graphs []*Graph
	for _, path := range paths {
		g, err := LoadGraph(path)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// graphTraversal walks a graph's next-chain one node at a time.
type graphTraversal struct {
	graph *Graph
	node  *Node
}

func (t *graphTraversal) Next(claim domain.Claim) (Step, bool) {
	if t.node == nil {
		return Step{}, false
	}
	n := t.node

	step := Step{
		ConfidenceDelta:   n.ConfidenceDelta,
		ValidityDelta:     n.ValidityDelta,
		VerificationDelta: n.VerificationDelta,
	}

	text := strings.ToLower(claim.Text)
	if len(n.Terms) > 0 && !anyTermIn(text, n.Terms) {
		step.ConfidenceDelta *= irrelevantNodeFactor
		step.ValidityDelta *= irrelevantNodeFactor
		step.VerificationDelta *= irrelevantNodeFactor
	}

	for _, phrase := range n.Contradicts {
		if phrase != "" && strings.Contains(text, strings.ToLower(phrase)) {
			step.Falsify = true
			break
		}
	}

	if n.Next == "" {
		t.node = nil
	} else {
		t.node = t.graph.index[n.Next]
	}
	return step, true
}

func anyTermIn(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// GraphReasoner adapts a Graph to the Reasoner interface through the
// capping evaluator.
type GraphReasoner struct {
	graph *Graph
	eval  *Evaluator
}

func NewGraphReasoner(g *Graph, eval *Evaluator) *GraphReasoner {
	return &GraphReasoner{graph: g, eval: eval}
}

func (r *GraphReasoner) ID() string { return r.graph.ID }

// Judge traverses the graph from its entry node, or from a seed-context
// override when it names a known node.
func (r *GraphReasoner) Judge(ctx context.Context, claim domain.Claim, shadows domain.ShadowView) (domain.Judgment, error) {
	entry := r.graph.Entry
	if override := claim.SeedContext["entry"]; override != "" {
		if _, ok := r.graph.index[override]; ok {
			entry = override
		}
	}

	t := &graphTraversal{graph: r.graph, node: r.graph.index[entry]}
	j, err := r.eval.Evaluate(ctx, r.graph.ID, t, claim, shadows)
	if err != nil {
		return domain.Judgment{}, &domain.ModuleFailure{ModuleID: r.graph.ID, Cause: err}
	}
	return j, nil
}

var _ domain.Reasoner = (*GraphReasoner)(nil)
