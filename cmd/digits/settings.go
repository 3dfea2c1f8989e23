package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-digits/config"
	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/inference/providers"
	"github.com/nvr-ai/go-digits/preprocess"
	"github.com/nvr-ai/go-digits/sketch"
	"github.com/nvr-ai/go-digits/tui"
)

// settings is the merged result of defaults, the config file and flags.
type settings struct {
	modelPath  string
	engine     string
	provider   string
	deviceID   string
	threads    int
	ortLibrary string
	inputName  string
	outputName string

	canvasWidth  float64
	canvasHeight float64
	pixels       int
	markerRadius float64
	cols         int
	rows         int

	threshold  int
	padding    int
	digitSize  int
	canvasSize int

	logLevel string
	logFile  string
}

func resolveSettings(cmd *cobra.Command) (*settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyStringConfig(cmd, "model", &modelPath, fileCfg.Model.Path)
	applyStringConfig(cmd, "engine", &engineName, fileCfg.Model.Engine)
	applyStringConfig(cmd, "provider", &providerArg, fileCfg.Model.Provider)
	applyStringConfig(cmd, "ort-lib", &ortLibrary, fileCfg.Model.ORTLibrary)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	s := &settings{
		modelPath:  modelPath,
		engine:     engineName,
		provider:   providerArg,
		ortLibrary: ortLibrary,
		logLevel:   logLevel,
		logFile:    logFile,

		canvasWidth:  sketch.DefaultSize,
		canvasHeight: sketch.DefaultSize,
		pixels:       sketch.DefaultPixels,
		markerRadius: sketch.DefaultMarkerRadius,
		cols:         tui.DefaultCols,
		rows:         tui.DefaultRows,

		threshold:  preprocess.DefaultThreshold,
		padding:    preprocess.DefaultPadding,
		digitSize:  preprocess.DefaultDigitSize,
		canvasSize: preprocess.DefaultCanvasSize,
	}
	setString(&s.deviceID, fileCfg.Model.DeviceID)
	setInt(&s.threads, fileCfg.Model.Threads)
	setString(&s.inputName, fileCfg.Model.InputName)
	setString(&s.outputName, fileCfg.Model.OutputName)

	setFloat(&s.canvasWidth, fileCfg.Canvas.Width)
	setFloat(&s.canvasHeight, fileCfg.Canvas.Height)
	setInt(&s.pixels, fileCfg.Canvas.Pixels)
	setFloat(&s.markerRadius, fileCfg.Canvas.MarkerRadius)
	setInt(&s.cols, fileCfg.Canvas.Cols)
	setInt(&s.rows, fileCfg.Canvas.Rows)

	setInt(&s.threshold, fileCfg.Preprocess.Threshold)
	setInt(&s.padding, fileCfg.Preprocess.Padding)
	setInt(&s.digitSize, fileCfg.Preprocess.DigitSize)
	setInt(&s.canvasSize, fileCfg.Preprocess.CanvasSize)

	if err := validateSettings(s); err != nil {
		return nil, err
	}
	return s, nil
}

func validateSettings(s *settings) error {
	if s.modelPath == "" {
		return fmt.Errorf("--model must not be empty")
	}
	if _, err := inference.ParseEngine(s.engine); err != nil {
		return fmt.Errorf("--engine: %w", err)
	}
	if _, err := providers.ParseBackend(s.provider); err != nil {
		return fmt.Errorf("--provider: %w", err)
	}
	if _, err := zerolog.ParseLevel(s.logLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if s.threshold < 0 || s.threshold > 255 {
		return fmt.Errorf("preprocess.threshold must be between 0 and 255")
	}
	if s.padding < 0 {
		return fmt.Errorf("preprocess.padding must be >= 0")
	}
	if s.digitSize <= 0 || s.canvasSize <= 0 {
		return fmt.Errorf("preprocess.digit_size and preprocess.canvas_size must be > 0")
	}
	if s.canvasSize != preprocess.DefaultCanvasSize {
		return fmt.Errorf("preprocess.canvas_size must be %d to match the model input", preprocess.DefaultCanvasSize)
	}
	if s.canvasWidth <= 0 || s.canvasHeight <= 0 || s.pixels <= 0 || s.markerRadius <= 0 {
		return fmt.Errorf("canvas.width, canvas.height, canvas.pixels and canvas.marker_radius must be > 0")
	}
	if s.cols <= 0 || s.rows <= 0 {
		return fmt.Errorf("canvas.cols and canvas.rows must be > 0")
	}
	return nil
}

func (s *settings) classifierConfig(logger zerolog.Logger) inference.Config {
	return inference.Config{
		Engine:      inference.EngineType(s.engine),
		ModelPath:   s.modelPath,
		LibraryPath: s.ortLibrary,
		InputName:   s.inputName,
		OutputName:  s.outputName,
		Provider: providers.Config{
			Backend:  providers.ProviderBackend(s.provider),
			DeviceID: s.deviceID,
			Threads:  s.threads,
		},
		Logger: logger,
	}
}

func (s *settings) preprocessor() *preprocess.Preprocessor {
	return preprocess.NewPreprocessor(&preprocess.Config{
		Threshold:  uint8(s.threshold),
		Padding:    s.padding,
		DigitSize:  s.digitSize,
		CanvasSize: s.canvasSize,
	})
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}
