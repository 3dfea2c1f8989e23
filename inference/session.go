// Package inference - ONNX Runtime sessions.
package inference

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-digits/inference/providers"
)

var (
	environmentMu          sync.Mutex
	environmentInitialized bool
)

// InitializeEnvironment loads the ONNX Runtime shared library once per
// process. A failed attempt is not remembered, so a later call can succeed
// once the library is in place.
//
// Arguments:
//   - libraryPath: The shared library, platform default when empty.
//
// Returns:
//   - error: An error if the runtime could not be initialized.
func InitializeEnvironment(libraryPath string) error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if environmentInitialized || ort.IsInitialized() {
		environmentInitialized = true
		return nil
	}

	if libraryPath == "" {
		libraryPath = providers.GetSharedLibPath()
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("error initializing ORT environment from %q: %w", libraryPath, err)
	}

	environmentInitialized = true
	return nil
}

// Session represents a model session from the onnxruntime.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// Close releases the resources associated with the Session.
//
// Returns:
//   - No return values.
func (s *Session) Close() {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		s.Session.Destroy()
		s.Session = nil
	}
}

// ONNXClassifier classifies digits with an ONNX model.
//
// The model is loaded for every call so that a replaced model file is picked
// up without restarting.
type ONNXClassifier struct {
	config Config
	logger zerolog.Logger
}

// NewONNXClassifier creates an ONNX classifier. Nothing is loaded until
// Classify is called.
func NewONNXClassifier(cfg Config) *ONNXClassifier {
	return &ONNXClassifier{config: cfg, logger: cfg.Logger}
}

// Classify loads the model, runs it on input and releases the session.
//
// Arguments:
//   - ctx: Checked before the model is loaded and before it runs.
//   - input: A (1, 28, 28, 1) float32 tensor.
//
// Returns:
//   - *Prediction: The prediction.
//   - error: An error if the model is missing, incompatible or fails to run.
func (c *ONNXClassifier) Classify(ctx context.Context, input *tensor.Dense) (*Prediction, error) {
	data, err := validateInput(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	session, err := c.newSession(data)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := session.Session.Run(); err != nil {
		return nil, fmt.Errorf("error running model %s: %w", c.config.ModelPath, err)
	}

	scores := make([]float32, len(session.Output.GetData()))
	copy(scores, session.Output.GetData())

	c.logger.Debug().
		Str("model", c.config.ModelPath).
		Dur("elapsed", time.Since(start)).
		Msg("onnx inference complete")

	return NewPrediction(scores)
}

// newSession loads the model and binds input and output tensors.
func (c *ONNXClassifier) newSession(data []float32) (*Session, error) {
	if _, err := os.Stat(c.config.ModelPath); err != nil {
		return nil, fmt.Errorf("error loading model: %w", err)
	}
	if err := InitializeEnvironment(c.config.LibraryPath); err != nil {
		return nil, err
	}

	inputName, outputName, err := c.names()
	if err != nil {
		return nil, err
	}

	session := &Session{}
	session.Input, err = ort.NewTensor(ort.NewShape(1, 28, 28, 1), data)
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}
	session.Output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(Labels))))
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := providers.NewSessionOptions(c.config.Provider)
	if err != nil {
		session.Close()
		return nil, err
	}
	defer options.Destroy()

	session.Session, err = ort.NewAdvancedSession(
		c.config.ModelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{session.Input},
		[]ort.Value{session.Output},
		options,
	)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("error loading model %s: %w", c.config.ModelPath, err)
	}

	return session, nil
}

// names returns the configured tensor names, asking the model for any that
// are missing.
func (c *ONNXClassifier) names() (string, string, error) {
	input, output := c.config.InputName, c.config.OutputName
	if input != "" && output != "" {
		return input, output, nil
	}

	inputs, outputs, err := ort.GetInputOutputInfo(c.config.ModelPath)
	if err != nil {
		return "", "", fmt.Errorf("error reading model inputs and outputs: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return "", "", fmt.Errorf("expected one input and one output, model has %d and %d",
			len(inputs), len(outputs))
	}
	if input == "" {
		input = inputs[0].Name
	}
	if output == "" {
		output = outputs[0].Name
	}
	return input, output, nil
}
