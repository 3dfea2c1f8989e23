// Package controller - Prediction outcomes.
package controller

import (
	"fmt"
	"image"
	"time"

	"github.com/nvr-ai/go-digits/inference"
)

// FailureKind classifies why a prediction did not produce a digit.
type FailureKind int

const (
	// FailureEmptyInput means nothing was drawn.
	FailureEmptyInput FailureKind = iota + 1
	// FailureNoForeground means the drawing rendered to a blank canvas.
	FailureNoForeground
	// FailureModel means the model could not be loaded or run.
	FailureModel
)

// String returns the name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureEmptyInput:
		return "empty_input"
	case FailureNoForeground:
		return "no_foreground"
	case FailureModel:
		return "model"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// Failure is a prediction that did not complete. It is reported to the user
// and never ends the session.
type Failure struct {
	Kind FailureKind
	// Message is the text shown to the user.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Timings records how long each stage of a prediction took.
type Timings struct {
	Render     time.Duration
	Preprocess time.Duration
	Inference  time.Duration
}

// Total is the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Render + t.Preprocess + t.Inference
}

// Outcome is the result of a prediction request. Exactly one of Prediction
// and Failure is set.
type Outcome struct {
	Prediction *inference.Prediction
	// Processed is the 28x28 image that was fed to the model.
	Processed *image.Gray
	Failure   *Failure
	Timings   Timings
}

// OK reports whether the outcome carries a prediction.
func (o *Outcome) OK() bool {
	return o != nil && o.Failure == nil && o.Prediction != nil
}

// Message returns the line shown to the user for this outcome.
func (o *Outcome) Message() string {
	if o.Failure != nil {
		return o.Failure.Message
	}
	return fmt.Sprintf("Predicted Digit: %d with confidence %.2f",
		o.Prediction.Digit, o.Prediction.Confidence)
}

func failed(kind FailureKind, message string, err error) *Outcome {
	return &Outcome{Failure: &Failure{Kind: kind, Message: message, Err: err}}
}
