package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/nvr-ai/go-digits/images"
	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/preprocess"
	"github.com/nvr-ai/go-digits/util"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	maxBarWidth         = 50
	// "  7 " before the bar and " 0.93" after it.
	barChrome = 9
)

// fileResult is the outcome of classifying one file.
type fileResult struct {
	path       string
	prediction *inference.Prediction
	err        error
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict FILE|DIR...",
		Short: "Classify digits in image files (png, jpeg, webp)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPredictCmd,
	}
	cmd.Flags().IntVarP(&predictJobs, "jobs", "j", runtime.NumCPU(), "files classified in parallel")
	return cmd
}

func runPredictCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if predictJobs < 1 {
		return fmt.Errorf("--jobs must be > 0")
	}

	logger, err := newConsoleLogger(s.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	classifier, err := inference.New(s.classifierConfig(logger))
	if err != nil {
		return err
	}
	pre := s.preprocessor().WithLogger(logger)

	paths, err := util.ExpandImagePaths(args)
	if err != nil {
		return err
	}
	results := classifyFiles(cmd.Context(), pre, classifier, paths, predictJobs, logger)

	failed := printResults(cmd.OutOrStdout(), results, terminalWidth())
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// classifyFiles classifies every path with at most jobs files in flight. A
// failing file does not stop the others.
func classifyFiles(
	ctx context.Context,
	pre *preprocess.Preprocessor,
	classifier inference.Classifier,
	paths []string,
	jobs int,
	logger zerolog.Logger,
) []fileResult {
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			prediction, err := classifyFile(ctx, pre, classifier, path)
			if err != nil {
				logger.Error().Err(err).Str("file", path).Msg("classification failed")
			}
			results[i] = fileResult{path: path, prediction: prediction, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func classifyFile(
	ctx context.Context,
	pre *preprocess.Preprocessor,
	classifier inference.Classifier,
	path string,
) (*inference.Prediction, error) {
	format, err := images.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := images.Decode(&images.Image{Format: format, Data: data})
	if err != nil {
		return nil, err
	}
	res, err := pre.PreprocessImage(img)
	if err != nil {
		return nil, err
	}
	return classifier.Classify(ctx, res.Tensor)
}

// printResults writes one block per file and returns the number of failures.
func printResults(w io.Writer, results []fileResult, width int) int {
	barWidth := width - barChrome
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s: error: %v\n", r.path, r.err)
			continue
		}
		p := r.prediction
		fmt.Fprintf(w, "%s: Predicted Digit: %d with confidence %.2f\n", r.path, p.Digit, p.Confidence)
		for i, prob := range p.Probabilities {
			marker := " "
			if i == p.Digit {
				marker = ">"
			}
			filled := int(prob*float32(barWidth) + 0.5)
			fmt.Fprintf(w, "%s %s %s%s %.2f\n", marker, inference.Labels[i],
				strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), prob)
		}
	}
	return failed
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
