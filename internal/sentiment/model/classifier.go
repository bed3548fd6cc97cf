package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Activations understood by Dense layers
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
)

// Dense is one fully connected layer; Weights is [inputs][outputs]
type Dense struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Artifact is the JSON export of a trained text classifier:
// embedding lookup, average pooling over every position, then dense layers.
type Artifact struct {
	Name      string      `json:"name"`
	Version   string      `json:"version"`
	Embedding [][]float64 `json:"embedding"`
	Layers    []Dense     `json:"layers"`
}

// Classifier predicts the positive-sentiment probability of an encoded headline.
// Weights are read-only after Load, so one instance serves concurrent callers.
type Classifier struct {
	name      string
	version   string
	embedding [][]float64
	layers    []Dense
	dim       int
}

// Load reads a classifier artifact from disk
func Load(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a classifier artifact
func Parse(r io.Reader) (*Classifier, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return New(a)
}

// New validates layer shapes and builds a classifier
func New(a Artifact) (*Classifier, error) {
	if len(a.Embedding) == 0 {
		return nil, fmt.Errorf("model has no embedding table")
	}
	dim := len(a.Embedding[0])
	if dim == 0 {
		return nil, fmt.Errorf("model embedding has zero width")
	}
	for i, row := range a.Embedding {
		if len(row) != dim {
			return nil, fmt.Errorf("embedding row %d has width %d, want %d", i, len(row), dim)
		}
	}

	if len(a.Layers) == 0 {
		return nil, fmt.Errorf("model has no dense layers")
	}
	in := dim
	for i, l := range a.Layers {
		if len(l.Weights) != in {
			return nil, fmt.Errorf("layer %d has %d input rows, want %d", i, len(l.Weights), in)
		}
		out := len(l.Bias)
		for j, w := range l.Weights {
			if len(w) != out {
				return nil, fmt.Errorf("layer %d weight row %d has %d outputs, want %d", i, j, len(w), out)
			}
		}
		switch l.Activation {
		case "", ActivationLinear, ActivationReLU, ActivationSigmoid:
		default:
			return nil, fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		in = out
	}
	if in != 1 {
		return nil, fmt.Errorf("model must end in a single unit, got %d", in)
	}

	return &Classifier{
		name:      a.Name,
		version:   a.Version,
		embedding: a.Embedding,
		layers:    a.Layers,
		dim:       dim,
	}, nil
}

// Version returns "name@version" for logging
func (c *Classifier) Version() string {
	return c.name + "@" + c.version
}

// VocabularySize returns the number of embedding rows
func (c *Classifier) VocabularySize() int {
	return len(c.embedding)
}

// Predict returns a probability in [0, 1]
func (c *Classifier) Predict(encoded []int) (float64, error) {
	if len(encoded) == 0 {
		return 0, fmt.Errorf("predict: empty sequence")
	}

	pooled := make([]float64, c.dim)
	for pos, idx := range encoded {
		if idx < 0 || idx >= len(c.embedding) {
			return 0, fmt.Errorf("predict: token %d at position %d outside embedding table of %d", idx, pos, len(c.embedding))
		}
		for k, v := range c.embedding[idx] {
			pooled[k] += v
		}
	}
	n := float64(len(encoded))
	for k := range pooled {
		pooled[k] /= n
	}

	x := pooled
	for _, l := range c.layers {
		x = l.forward(x)
	}

	return clamp01(x[0]), nil
}

func (l Dense) forward(x []float64) []float64 {
	out := make([]float64, len(l.Bias))
	copy(out, l.Bias)
	for i, xi := range x {
		for j, w := range l.Weights[i] {
			out[j] += xi * w
		}
	}
	for j := range out {
		out[j] = activate(l.Activation, out[j])
	}
	return out
}

func activate(name string, v float64) float64 {
	switch name {
	case ActivationReLU:
		return math.Max(0, v)
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}

// Static always predicts the same score
type Static struct {
	Score float64
}

func (s Static) Predict(encoded []int) (float64, error) {
	return clamp01(s.Score), nil
}
