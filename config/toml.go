// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields are nil
// when the key is absent, so flags and defaults can tell unset from zero.
type FileConfig struct {
	Model      ModelConfig      `toml:"model"`
	Canvas     CanvasConfig     `toml:"canvas"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Log        LogConfig        `toml:"log"`
}

// ModelConfig maps classifier settings.
type ModelConfig struct {
	Path       *string `toml:"path"`
	Engine     *string `toml:"engine"`
	Provider   *string `toml:"provider"`
	DeviceID   *string `toml:"device_id"`
	Threads    *int    `toml:"threads"`
	ORTLibrary *string `toml:"ort_library"`
	InputName  *string `toml:"input_name"`
	OutputName *string `toml:"output_name"`
}

// CanvasConfig maps drawing canvas settings.
type CanvasConfig struct {
	Width        *float64 `toml:"width"`
	Height       *float64 `toml:"height"`
	Pixels       *int     `toml:"pixels"`
	MarkerRadius *float64 `toml:"marker_radius"`
	Cols         *int     `toml:"cols"`
	Rows         *int     `toml:"rows"`
}

// PreprocessConfig maps preprocessing constants.
type PreprocessConfig struct {
	Threshold  *int `toml:"threshold"`
	Padding    *int `toml:"padding"`
	DigitSize  *int `toml:"digit_size"`
	CanvasSize *int `toml:"canvas_size"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// WriteDefault creates the config file with the commented template unless a
// file already exists.
//
// Arguments:
//   - path: The config file path.
//
// Returns:
//   - bool: True if the file was created.
//   - error: An error if the file could not be checked or written.
func WriteDefault(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultTemplate()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// DefaultTemplate returns the commented config file written by WriteDefault.
func DefaultTemplate() string {
	return fmt.Sprintf(`# go-digits configuration
# Uncomment a value to enable it. CLI flags override config values.

[model]
# path = %q
# engine = "onnx"          # onnx or dense
# provider = "cpu"         # cpu, coreml, cuda or openvino
# device_id = "0"          # Accelerator for cuda and openvino
# threads = 0              # Intra-op threads, 0 lets the runtime decide
# ort_library = ""         # ONNX Runtime shared library, platform default when empty
# input_name = ""          # Discovered from the model when empty
# output_name = ""

[canvas]
# width = 28.0             # Logical canvas width
# height = 28.0            # Logical canvas height
# pixels = 168             # Rendered snapshot side in pixels
# marker_radius = 6.0      # Ink radius per point in snapshot pixels
# cols = 56                # Terminal cells across the canvas
# rows = 28                # Terminal cells down the canvas

[preprocess]
# threshold = 128          # Binarization level (0-255)
# padding = 2              # Margin around the digit before cropping
# digit_size = 20          # Longer side of the digit after resizing
# canvas_size = 28         # Side of the model input

[log]
# level = "info"           # trace, debug, info, warn or error
# file = %q
`,
		DefaultModelPath(),
		DefaultLogPath(),
	)
}
