// Package inference - Feed-forward networks on gorgonia.
package inference

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gopkg.in/yaml.v3"
)

// Activation names accepted in a network file.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
	ActivationSoftmax = "softmax"
)

// Layer is one fully connected layer: out = activation(in x Weights + Bias).
type Layer struct {
	// Weights has one row per input and one column per output.
	Weights    [][]float32 `yaml:"weights"`
	Bias       []float32   `yaml:"bias"`
	Activation string      `yaml:"activation"`
}

// Network is a dense network read from a YAML file.
type Network struct {
	Name   string  `yaml:"name"`
	Layers []Layer `yaml:"layers"`
}

// LoadNetwork reads and validates a network file.
//
// Arguments:
//   - path: The YAML file.
//
// Returns:
//   - *Network: The network.
//   - error: An error if the file is unreadable or the layers do not chain
//     from 784 inputs to 10 outputs.
func LoadNetwork(path string) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading model: %w", err)
	}

	var network Network
	if err := yaml.Unmarshal(raw, &network); err != nil {
		return nil, fmt.Errorf("error parsing model %s: %w", path, err)
	}
	if err := network.Validate(); err != nil {
		return nil, fmt.Errorf("incompatible model %s: %w", path, err)
	}
	return &network, nil
}

// Validate checks that the layers form a 784 -> 10 chain.
func (n *Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}

	width := InputShape.TotalSize()
	for i, layer := range n.Layers {
		if len(layer.Weights) != width {
			return fmt.Errorf("layer %d expects %d inputs, previous layer gives %d", i, len(layer.Weights), width)
		}
		cols := len(layer.Weights[0])
		for r, row := range layer.Weights {
			if len(row) != cols {
				return fmt.Errorf("layer %d row %d has %d columns, want %d", i, r, len(row), cols)
			}
		}
		if len(layer.Bias) != cols {
			return fmt.Errorf("layer %d has %d biases for %d outputs", i, len(layer.Bias), cols)
		}
		switch layer.Activation {
		case "", ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationSoftmax:
		default:
			return fmt.Errorf("layer %d has unknown activation %q", i, layer.Activation)
		}
		width = cols
	}

	if width != len(Labels) {
		return fmt.Errorf("network produces %d outputs, want %d", width, len(Labels))
	}
	return nil
}

// Forward evaluates the network on a flattened input with a tape machine.
//
// Arguments:
//   - input: The flattened input, one value per network input.
//
// Returns:
//   - []float32: The output scores.
//   - error: An error if the graph cannot be built or run.
func (n *Network) Forward(input []float32) ([]float32, error) {
	g := G.NewGraph()

	backing := make([]float32, len(input))
	copy(backing, input)
	x := G.NewMatrix(g, tensor.Float32,
		G.WithShape(1, len(input)),
		G.WithName("input"),
		G.WithValue(tensor.New(tensor.WithShape(1, len(input)), tensor.WithBacking(backing))),
	)

	var err error
	h := x
	for i, layer := range n.Layers {
		if h, err = n.layer(g, h, i, layer); err != nil {
			return nil, err
		}
	}

	var out G.Value
	G.Read(h, &out)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("error running tape machine: %w", err)
	}

	scores, ok := out.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", out.Data())
	}
	return append([]float32(nil), scores...), nil
}

func (n *Network) layer(g *G.ExprGraph, in *G.Node, i int, layer Layer) (*G.Node, error) {
	rows, cols := len(layer.Weights), len(layer.Bias)

	flat := make([]float32, 0, rows*cols)
	for _, row := range layer.Weights {
		flat = append(flat, row...)
	}
	bias := append([]float32(nil), layer.Bias...)

	w := G.NewMatrix(g, tensor.Float32,
		G.WithShape(rows, cols),
		G.WithName(fmt.Sprintf("w%d", i)),
		G.WithValue(tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(flat))),
	)
	b := G.NewMatrix(g, tensor.Float32,
		G.WithShape(1, cols),
		G.WithName(fmt.Sprintf("b%d", i)),
		G.WithValue(tensor.New(tensor.WithShape(1, cols), tensor.WithBacking(bias))),
	)

	h, err := G.Mul(in, w)
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}
	if h, err = G.Add(h, b); err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}

	switch layer.Activation {
	case ActivationReLU:
		h, err = G.Rectify(h)
	case ActivationSigmoid:
		h, err = G.Sigmoid(h)
	case ActivationTanh:
		h, err = G.Tanh(h)
	case ActivationSoftmax:
		h, err = G.SoftMax(h)
	}
	if err != nil {
		return nil, fmt.Errorf("layer %d %s: %w", i, layer.Activation, err)
	}
	return h, nil
}

// DenseClassifier classifies digits with a Network loaded on every call.
type DenseClassifier struct {
	config Config
	logger zerolog.Logger
}

// NewDenseClassifier creates a dense classifier. Nothing is loaded until
// Classify is called.
func NewDenseClassifier(cfg Config) *DenseClassifier {
	return &DenseClassifier{config: cfg, logger: cfg.Logger}
}

// Classify loads the network and evaluates it on input.
//
// Arguments:
//   - ctx: Checked before the network is loaded.
//   - input: A (1, 28, 28, 1) float32 tensor.
//
// Returns:
//   - *Prediction: The prediction.
//   - error: An error if the network is missing, invalid or fails to run.
func (c *DenseClassifier) Classify(ctx context.Context, input *tensor.Dense) (*Prediction, error) {
	data, err := validateInput(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	network, err := LoadNetwork(c.config.ModelPath)
	if err != nil {
		return nil, err
	}

	scores, err := network.Forward(data)
	if err != nil {
		return nil, fmt.Errorf("error predicting with model %s: %w", c.config.ModelPath, err)
	}

	c.logger.Debug().
		Str("model", c.config.ModelPath).
		Str("network", network.Name).
		Int("layers", len(network.Layers)).
		Dur("elapsed", time.Since(start)).
		Msg("dense inference complete")

	return NewPrediction(scores)
}
