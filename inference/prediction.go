// Package inference - Classifier output.
package inference

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Labels are the classes a digit classifier predicts, in output order.
var Labels = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// distributionTolerance is how far the sum of scores may drift from 1 before
// they are treated as logits.
const distributionTolerance = 1e-3

// Prediction is the result of classifying one digit.
type Prediction struct {
	// Probabilities holds one probability per label, summing to 1.
	Probabilities []float32 `json:"probabilities"`
	// Digit is the index of the most probable label.
	Digit int `json:"digit"`
	// Confidence is the probability of Digit.
	Confidence float32 `json:"confidence"`
}

// NewPrediction builds a prediction from raw model scores.
//
// Scores that already form a probability distribution are kept as-is, anything
// else is passed through a softmax.
//
// Arguments:
//   - scores: One score per label.
//
// Returns:
//   - *Prediction: The prediction.
//   - error: An error if the number of scores is wrong or a score is not finite.
func NewPrediction(scores []float32) (*Prediction, error) {
	if len(scores) != len(Labels) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(Labels), len(scores))
	}
	for i, s := range scores {
		if math32.IsNaN(s) || math32.IsInf(s, 0) {
			return nil, fmt.Errorf("score %d is not finite: %v", i, s)
		}
	}

	probs := make([]float32, len(scores))
	copy(probs, scores)
	if !isDistribution(probs) {
		softmax(probs)
	}

	digit := 0
	for i, p := range probs {
		if p > probs[digit] {
			digit = i
		}
	}

	return &Prediction{
		Probabilities: probs,
		Digit:         digit,
		Confidence:    probs[digit],
	}, nil
}

// Label returns the label of the predicted digit.
func (p *Prediction) Label() string {
	return Labels[p.Digit]
}

func isDistribution(values []float32) bool {
	var sum float32
	for _, v := range values {
		if v < 0 || v > 1 {
			return false
		}
		sum += v
	}
	return math32.Abs(sum-1) <= distributionTolerance
}

// softmax normalizes values in place, shifting by the max for stability.
func softmax(values []float32) {
	maxVal := values[0]
	for _, v := range values[1:] {
		maxVal = math32.Max(maxVal, v)
	}
	var sum float32
	for i, v := range values {
		values[i] = math32.Exp(v - maxVal)
		sum += values[i]
	}
	for i := range values {
		values[i] /= sum
	}
}
