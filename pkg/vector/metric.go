package vector

import (
	"fmt"
	"math"
)

// Metric selects the distance function a store ranks results with.
// The choice is fixed for the store's lifetime.
type Metric string

const (
	// MetricCosine ranks by cosine similarity (higher = more similar).
	MetricCosine Metric = "cosine"

	// MetricEuclidean ranks by Euclidean (L2) distance, reported as a
	// similarity score of 1/(1+distance) so ordering stays non-increasing.
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric maps a configuration string to a Metric.
// An empty string selects MetricCosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricCosine, nil
	case MetricCosine, MetricEuclidean:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, s)
	}
}

// Score returns the similarity score of b against a under the metric.
// Both vectors must have the same length; callers validate dimensions.
func (m Metric) Score(a, b []float32) float32 {
	switch m {
	case MetricEuclidean:
		return float32(1.0 / (1.0 + euclideanDistance(a, b)))
	default:
		return float32(cosineSimilarity(a, b))
	}
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// euclideanDistance returns the L2 distance between a and b.
func euclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
