// Package main provides the CLI entrypoint for go-digits.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-digits/config"
	"github.com/nvr-ai/go-digits/controller"
	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/sketch"
	"github.com/nvr-ai/go-digits/tui"
)

const (
	defaultEngine   = string(inference.EngineONNX)
	defaultProvider = "cpu"
	defaultLogLevel = "info"
)

var (
	modelPath   string
	engineName  string
	providerArg string
	ortLibrary  string
	logLevel    string
	logFile     string

	predictJobs int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "digits",
		Short:         "Draw a digit and let an MNIST model guess it",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCanvasCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&modelPath, "model", config.DefaultModelPath(), "model file (.onnx, or .yaml for the dense engine)")
	flags.StringVar(&engineName, "engine", defaultEngine, "inference engine: onnx or dense")
	flags.StringVar(&providerArg, "provider", defaultProvider, "onnx execution provider: cpu, coreml, cuda or openvino")
	flags.StringVar(&ortLibrary, "ort-lib", "", "onnxruntime shared library (default: platform specific)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level: trace, debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "", "log file (the canvas discards logs when empty)")

	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runCanvasCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := newFileLogger(s.logLevel, s.logFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	classifier, err := inference.New(s.classifierConfig(logger))
	if err != nil {
		return err
	}

	renderer := sketch.NewRenderer(s.pixels, s.pixels, s.markerRadius)
	predictor := controller.NewPredictor(renderer, s.preprocessor(), classifier, logger)
	ctrl := controller.New(sketch.NewSession(s.canvasWidth, s.canvasHeight), predictor, logger)

	model := tui.NewModel(cmd.Context(), ctrl, tui.Config{
		Cols:         s.cols,
		Rows:         s.rows,
		MarkerRadius: s.markerRadius,
		Pixels:       s.pixels,
	}, logger)

	logger.Info().
		Str("model", s.modelPath).
		Str("engine", s.engine).
		Str("provider", s.provider).
		Msg("starting canvas")

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run canvas: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create the config file and print its path",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	created, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.ErrOrStderr(), "created %s\n", path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
