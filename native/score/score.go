package score

import (
	"errors"
	"fmt"
	"math"
)

// ErrWeightsNotNormalized indicates the configured weights do not sum to 1.0.
// This is a configuration-integrity failure checked at registry load, not a
// per-request validation error.
var ErrWeightsNotNormalized = errors.New("score: weights not normalized")

const weightTolerance = 1e-9

// Inputs carries the six normalized sub-metrics feeding the creator score.
// Values outside [0,1] are clamped before weighting.
type Inputs struct {
	Engagement     float64 `json:"engagement"`
	Consistency    float64 `json:"consistency"`
	Retention      float64 `json:"retention"`
	Monetization   float64 `json:"monetization"`
	Responsiveness float64 `json:"responsiveness"`
	Quality        float64 `json:"quality"`
}

// Weights maps each sub-metric to its share of the composite score.
type Weights struct {
	Engagement     float64 `json:"engagement"`
	Consistency    float64 `json:"consistency"`
	Retention      float64 `json:"retention"`
	Monetization   float64 `json:"monetization"`
	Responsiveness float64 `json:"responsiveness"`
	Quality        float64 `json:"quality"`
}

// Validate ensures every weight lies in [0,1] and the sum is 1.0 within
// tolerance.
func (w Weights) Validate() error {
	sum := 0.0
	for _, weight := range w.slice() {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: weight %f outside [0,1]", ErrWeightsNotNormalized, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: sum %f", ErrWeightsNotNormalized, sum)
	}
	return nil
}

func (w Weights) slice() [6]float64 {
	return [6]float64{w.Engagement, w.Consistency, w.Retention, w.Monetization, w.Responsiveness, w.Quality}
}

func (in Inputs) slice() [6]float64 {
	return [6]float64{in.Engagement, in.Consistency, in.Retention, in.Monetization, in.Responsiveness, in.Quality}
}

// Compute folds the weighted sub-metrics into a single score in [0,1]. The
// function is pure: no hidden state, safe for concurrent use, and suitable for
// golden-value testing. Callers are expected to have validated the weights at
// registry load.
func Compute(weights Weights, inputs Inputs) float64 {
	metrics := inputs.slice()
	shares := weights.slice()
	total := 0.0
	for i, metric := range metrics {
		total += shares[i] * clamp(metric)
	}
	return clamp(total)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
