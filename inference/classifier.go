// Package inference - Digit classifiers.
package inference

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-digits/inference/providers"
)

// Classifier turns a preprocessed digit tensor into a prediction.
type Classifier interface {
	// Classify runs the model on input, a (1, 28, 28, 1) float32 tensor.
	Classify(ctx context.Context, input *tensor.Dense) (*Prediction, error)
}

// Config describes which model to load and how.
type Config struct {
	// Engine selects the implementation, ONNX when empty.
	Engine EngineType `toml:"engine"`
	// ModelPath is the model artifact, loaded fresh on every call.
	ModelPath string `toml:"path"`
	// LibraryPath is the ONNX Runtime shared library, platform default when empty.
	LibraryPath string `toml:"ort_library"`
	// InputName and OutputName override the names discovered from the model.
	InputName  string `toml:"input_name"`
	OutputName string `toml:"output_name"`
	// Provider configures the ONNX execution provider.
	Provider providers.Config `toml:"provider"`
	// Logger receives debug output. Disabled when zero.
	Logger zerolog.Logger `toml:"-"`
}

// New creates the classifier selected by cfg.Engine.
//
// Arguments:
//   - cfg: The classifier configuration.
//
// Returns:
//   - Classifier: The classifier.
//   - error: An error if the engine is unknown or the model path is missing.
func New(cfg Config) (Classifier, error) {
	engine, err := ParseEngine(string(cfg.Engine))
	if err != nil {
		return nil, err
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("no model path configured")
	}

	switch engine {
	case EngineDense:
		return NewDenseClassifier(cfg), nil
	default:
		return NewONNXClassifier(cfg), nil
	}
}

// validateInput checks the tensor against the model input contract.
func validateInput(input *tensor.Dense) ([]float32, error) {
	if input == nil {
		return nil, fmt.Errorf("input tensor is nil")
	}
	if !input.Shape().Eq(InputShape) {
		return nil, fmt.Errorf("input shape %v does not match %v", input.Shape(), InputShape)
	}
	data, ok := input.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("input tensor must be float32, got %v", input.Dtype())
	}
	return data, nil
}

// InputShape is the tensor shape every classifier accepts.
var InputShape = tensor.Shape{1, 28, 28, 1}
