// Package oracle loads a pre-trained diabetes classifier and scores
// feature vectors against it.
//
// The artifact is a JSON document holding either a tree ensemble or a
// logistic regression, exported once from the training pipeline. Loaded
// models are immutable and safe for concurrent use.
package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/glycoguard/glycoguard/internal/model"
)

// Supported artifact kinds.
const (
	KindForest   = "forest"
	KindLogistic = "logistic"
)

// ErrInvalidArtifact is returned for artifacts that decode but cannot be evaluated.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// artifact is the on-disk representation.
type artifact struct {
	Kind         string      `json:"kind"`
	FeatureCount int         `json:"feature_count"`
	Trees        []treeNodes `json:"trees,omitempty"`
	Coefficients []float64   `json:"coefficients,omitempty"`
	Intercept    float64     `json:"intercept,omitempty"`
}

type treeNodes struct {
	Nodes []node `json:"nodes"`
}

// node is a flattened binary decision node. Leaves have Left == -1 and
// carry the class-1 probability in Value. Internal nodes send
// x[Feature] <= Threshold to Left.
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n node) leaf() bool { return n.Left < 0 }

// Model is a loaded classifier.
type Model struct {
	kind      string
	trees     [][]node
	coef      []float64
	intercept float64
}

// LoadModel reads and validates an artifact from disk.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	return ParseModel(f)
}

// ParseModel decodes and validates an artifact.
func ParseModel(r io.Reader) (*Model, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}

	if a.FeatureCount != model.FeatureCount {
		return nil, fmt.Errorf("%w: feature_count %d, want %d", ErrInvalidArtifact, a.FeatureCount, model.FeatureCount)
	}

	switch a.Kind {
	case KindForest:
		return newForest(a.Trees)
	case KindLogistic:
		return newLogistic(a.Coefficients, a.Intercept)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidArtifact, a.Kind)
	}
}

func newForest(trees []treeNodes) (*Model, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}

	m := &Model{kind: KindForest, trees: make([][]node, 0, len(trees))}
	for i, t := range trees {
		if err := validateTree(t.Nodes); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
		m.trees = append(m.trees, t.Nodes)
	}
	return m, nil
}

// validateTree checks every node is reachable only forward (children have
// larger indexes), so evaluation always terminates.
func validateTree(nodes []node) error {
	if len(nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range nodes {
		if n.leaf() {
			if !finite(n.Value) || n.Value < 0 || n.Value > 1 {
				return fmt.Errorf("node %d: leaf value %v outside [0,1]", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= model.FeatureCount {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return fmt.Errorf("node %d: non-finite threshold", i)
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

func newLogistic(coef []float64, intercept float64) (*Model, error) {
	if len(coef) != model.FeatureCount {
		return nil, fmt.Errorf("%w: %d coefficients, want %d", ErrInvalidArtifact, len(coef), model.FeatureCount)
	}
	for i, c := range coef {
		if !finite(c) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	if !finite(intercept) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}

	return &Model{
		kind:      KindLogistic,
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
	}, nil
}

// Kind returns the artifact kind.
func (m *Model) Kind() string {
	return m.kind
}

// Probability returns the class-1 probability for x, in [0,1].
func (m *Model) Probability(x []float64) (float64, error) {
	if len(x) != model.FeatureCount {
		return 0, fmt.Errorf("expected %d features, got %d", model.FeatureCount, len(x))
	}

	if m.kind == KindLogistic {
		z := m.intercept
		for i, c := range m.coef {
			z += c * x[i]
		}
		return sigmoid(z), nil
	}

	var sum float64
	for _, t := range m.trees {
		sum += evalTree(t, x)
	}
	return sum / float64(len(m.trees)), nil
}

func evalTree(nodes []node, x []float64) float64 {
	i := 0
	for !nodes[i].leaf() {
		n := nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return nodes[i].Value
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
