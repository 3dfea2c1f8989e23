// Package controller - Render, preprocess and classify a drawing.
package controller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/preprocess"
	"github.com/nvr-ai/go-digits/sketch"
)

// Predictor runs the full prediction pipeline for a session.
type Predictor struct {
	Renderer     *sketch.Renderer
	Preprocessor *preprocess.Preprocessor
	Classifier   inference.Classifier
	logger       zerolog.Logger
}

// NewPredictor creates a predictor. A nil renderer or preprocessor takes the
// defaults.
//
// Arguments:
//   - renderer: Rasterizes the stroke buffer.
//   - preprocessor: Turns the snapshot into a tensor.
//   - classifier: Classifies the tensor.
//   - logger: Receives one entry per prediction.
//
// Returns:
//   - *Predictor: The predictor.
func NewPredictor(
	renderer *sketch.Renderer,
	preprocessor *preprocess.Preprocessor,
	classifier inference.Classifier,
	logger zerolog.Logger,
) *Predictor {
	if renderer == nil {
		renderer = sketch.NewRenderer(0, 0, 0)
	}
	if preprocessor == nil {
		preprocessor = preprocess.NewPreprocessor(nil)
	}
	return &Predictor{
		Renderer:     renderer,
		Preprocessor: preprocessor.WithLogger(logger),
		Classifier:   classifier,
		logger:       logger,
	}
}

// Predict classifies what is drawn in s. An empty buffer is reported without
// rendering or invoking the classifier.
//
// Arguments:
//   - ctx: Passed to the classifier.
//   - s: The session to classify. It is not modified.
//
// Returns:
//   - *Outcome: The prediction or the reason there is none, never nil.
func (p *Predictor) Predict(ctx context.Context, s sketch.Session) *Outcome {
	if s.Empty() {
		p.logger.Warn().Msg("Please draw a digit first")
		return failed(FailureEmptyInput, "Please draw a digit first", preprocess.ErrEmptyInput)
	}

	var timings Timings

	start := time.Now()
	snapshot := p.Renderer.Render(s)
	timings.Render = time.Since(start)

	start = time.Now()
	res, err := p.Preprocessor.Preprocess(snapshot, s.Points)
	timings.Preprocess = time.Since(start)
	if err != nil {
		var out *Outcome
		switch {
		case errors.Is(err, preprocess.ErrEmptyInput):
			out = failed(FailureEmptyInput, "Please draw a digit first", err)
		case errors.Is(err, preprocess.ErrNoDigit):
			out = failed(FailureNoForeground, "No digit detected", err)
		default:
			out = failed(FailureModel, "Error preprocessing drawing: "+err.Error(), err)
		}
		out.Timings = timings
		p.logger.Warn().Str("failure", out.Failure.Kind.String()).Msg(out.Failure.Message)
		return out
	}

	if p.Classifier == nil {
		out := failed(FailureModel, "Error loading model: no classifier configured", nil)
		out.Processed, out.Timings = res.Image, timings
		p.logger.Error().Msg(out.Failure.Message)
		return out
	}

	start = time.Now()
	prediction, err := p.Classifier.Classify(ctx, res.Tensor)
	timings.Inference = time.Since(start)
	if err != nil {
		out := failed(FailureModel, "Error loading/predicting with model: "+err.Error(), err)
		out.Processed, out.Timings = res.Image, timings
		p.logger.Error().Err(err).Msg("Error loading/predicting with model")
		return out
	}

	out := &Outcome{Prediction: prediction, Processed: res.Image, Timings: timings}
	p.logger.Info().
		Int("digit", prediction.Digit).
		Float32("confidence", prediction.Confidence).
		Dur("render", timings.Render).
		Dur("preprocess", timings.Preprocess).
		Dur("inference", timings.Inference).
		Msg(out.Message())
	return out
}
