package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/umputun/sift/pkg/domain"
)

// Model is a linear bag-of-tokens classifier. The logit of a label is its bias plus the sum
// of its weights over all non-padding token indices; confidence is the softmax probability.
type Model struct {
	tokenizer *Tokenizer
	labels    []string
	weights   [][]float64 // [label][vocabulary index]
	bias      []float64
}

type modelFile struct {
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// LoadModel reads model weights from a JSON file. The model labels must match activeLabels,
// order included, otherwise predictions would not come from the active label set.
func LoadModel(path string, tokenizer *Tokenizer, activeLabels []string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", path, err)
	}
	if !slices.Equal(mf.Labels, activeLabels) {
		return nil, fmt.Errorf("model labels %v do not match active label set %v", mf.Labels, activeLabels)
	}
	return NewModel(tokenizer, mf.Labels, mf.Weights, mf.Bias)
}

// NewModel creates a model from in-memory parameters
func NewModel(tokenizer *Tokenizer, labels []string, weights [][]float64, bias []float64) (*Model, error) {
	if tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if err := ValidateLabels(labels); err != nil {
		return nil, err
	}
	if len(weights) != len(labels) {
		return nil, fmt.Errorf("weights rows %d, labels %d", len(weights), len(labels))
	}
	if len(bias) == 0 {
		bias = make([]float64, len(labels))
	}
	if len(bias) != len(labels) {
		return nil, fmt.Errorf("bias size %d, labels %d", len(bias), len(labels))
	}
	return &Model{tokenizer: tokenizer, labels: labels, weights: weights, bias: bias}, nil
}

// Labels returns the labels the model predicts
func (m *Model) Labels() []string {
	return slices.Clone(m.labels)
}

// Classify returns the most probable label for text
func (m *Model) Classify(ctx context.Context, text string) (domain.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Prediction{}, err
	}

	tokens := m.tokenizer.Tokenize(text)
	logits := slices.Clone(m.bias)
	for l := range m.labels {
		row := m.weights[l]
		for _, tok := range tokens {
			if tok == m.tokenizer.PadIndex() || tok < 0 || int(tok) >= len(row) {
				continue
			}
			logits[l] += row[tok]
		}
	}

	probs := softmax(logits)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	scores := make(map[string]float64, len(m.labels))
	for i, l := range m.labels {
		scores[l] = probs[i]
	}
	return domain.Prediction{Label: m.labels[best], Confidence: probs[best], Scores: scores}, nil
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		maxLogit = math.Max(maxLogit, v)
	}
	res := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		res[i] = math.Exp(v - maxLogit)
		sum += res[i]
	}
	for i := range res {
		res[i] /= sum
	}
	return res
}
