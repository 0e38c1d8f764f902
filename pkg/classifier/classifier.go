// Package classifier assigns a topical label from the active label set to article summaries.
// Inference runs on a local linear model over a fixed vocabulary; Unavailable stands in
// when no model is configured.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/umputun/sift/pkg/domain"
)

// ErrUnavailable is returned when no model or inference backend is loaded
var ErrUnavailable = errors.New("classifier unavailable")

// Unavailable is the classifier used when no model is bundled, it always fails with ErrUnavailable
type Unavailable struct{}

// Classify always returns ErrUnavailable
func (Unavailable) Classify(context.Context, string) (domain.Prediction, error) {
	return domain.Prediction{}, ErrUnavailable
}

// LoadLabels reads the ordered label vocabulary from a JSON array file
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}

	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parse labels file %s: %w", path, err)
	}
	if err := ValidateLabels(labels); err != nil {
		return nil, fmt.Errorf("labels file %s: %w", path, err)
	}
	return labels, nil
}

// ValidateLabels checks that labels are non-empty, trimmed and unique
func ValidateLabels(labels []string) error {
	if len(labels) == 0 {
		return errors.New("empty label set")
	}
	seen := make(map[string]bool, len(labels))
	for i, l := range labels {
		if l == "" || strings.TrimSpace(l) != l {
			return fmt.Errorf("invalid label %q at %d", l, i)
		}
		if seen[l] {
			return fmt.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
	return nil
}
