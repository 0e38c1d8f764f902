package domain

import "time"

// FallbackLabel is assigned when no classifier is available or inference fails
const FallbackLabel = "Uncategorized"

// LabelSet is an immutable, versioned snapshot of the label vocabulary
type LabelSet struct {
	Version   int
	Labels    []string
	CreatedAt time.Time
}

// Contains reports whether the set has a label with the given name
func (s LabelSet) Contains(name string) bool {
	for _, l := range s.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Label is a single label of a label set with its positional index
type Label struct {
	ID              int64
	LabelSetVersion int
	Name            string
	Index           int
	CreatedAt       time.Time
}

// Prediction is the classifier output for one text
type Prediction struct {
	Label      string
	Confidence float64
	Scores     map[string]float64 // per-label probabilities, may be empty
}
