package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-digits/config"
	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/preprocess"
)

type stubClassifier struct {
	digit int
}

func (s stubClassifier) Classify(_ context.Context, input *tensor.Dense) (*inference.Prediction, error) {
	if !input.Shape().Eq(inference.InputShape) {
		return nil, assert.AnError
	}
	scores := make([]float32, 10)
	scores[s.digit] = 0.75
	scores[(s.digit+1)%10] = 0.25
	return inference.NewPrediction(scores)
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestResolveSettingsPrecedence(t *testing.T) {
	writeConfig(t, `
[model]
engine = "dense"
provider = "cuda"
device_id = "1"

[preprocess]
padding = 3

[log]
level = "debug"
`)

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--provider", "cpu", "--model", "net.yaml"}))

	s, err := resolveSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "dense", s.engine, "config applies when the flag is unset")
	assert.Equal(t, "cpu", s.provider, "flags win over config")
	assert.Equal(t, "net.yaml", s.modelPath)
	assert.Equal(t, "1", s.deviceID)
	assert.Equal(t, 3, s.padding)
	assert.Equal(t, preprocess.DefaultThreshold, s.threshold)
	assert.Equal(t, "debug", s.logLevel)

	cfg := s.classifierConfig(zerolog.Nop())
	assert.Equal(t, inference.EngineDense, cfg.Engine)
	assert.Equal(t, "1", cfg.Provider.DeviceID)
	assert.Equal(t, 3, s.preprocessor().Config().Padding)
}

// TestResolveSettingsExplicitZero validates that zero threshold and padding
// from the config file reach the preprocessor instead of the defaults.
func TestResolveSettingsExplicitZero(t *testing.T) {
	writeConfig(t, "[preprocess]\nthreshold = 0\npadding = 0\n")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	s, err := resolveSettings(cmd)
	require.NoError(t, err)

	cfg := s.preprocessor().Config()
	assert.Equal(t, uint8(0), cfg.Threshold)
	assert.Equal(t, 0, cfg.Padding)
	assert.Equal(t, preprocess.DefaultDigitSize, cfg.DigitSize)
}

func TestResolveSettingsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		args []string
	}{
		{"Threshold out of range", "[preprocess]\nthreshold = 256\n", nil},
		{"Negative padding", "[preprocess]\npadding = -1\n", nil},
		{"Unknown engine", "", []string{"--engine", "tflite"}},
		{"Unknown provider", "[model]\nprovider = \"tpu\"\n", nil},
		{"Bad log level", "", []string{"--log-level", "loud"}},
		{"Wrong model input size", "[preprocess]\ncanvas_size = 32\n", nil},
		{"Unknown key", "[canvas]\ncolour = \"red\"\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.body)
			cmd := newRootCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))
			_, err := resolveSettings(cmd)
			assert.Error(t, err)
		})
	}
}

func writePNG(t *testing.T, dir, name string, ink bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 56, 56))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	if ink {
		draw.Draw(img, image.Rect(24, 8, 32, 48), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestClassifyFiles(t *testing.T) {
	dir := t.TempDir()
	digit := writePNG(t, dir, "one.png", true)
	blank := writePNG(t, dir, "blank.png", false)
	notes := filepath.Join(dir, "notes.txt")
	missing := filepath.Join(dir, "missing.png")
	paths := []string{digit, blank, notes, missing}

	results := classifyFiles(context.Background(), preprocess.NewPreprocessor(nil), stubClassifier{digit: 1}, paths, 2, zerolog.Nop())
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.path, "results keep the argument order")
	}
	require.NoError(t, results[0].err)
	assert.Equal(t, 1, results[0].prediction.Digit)
	assert.ErrorIs(t, results[1].err, preprocess.ErrNoDigit)
	assert.ErrorContains(t, results[2].err, "unsupported file extension")
	assert.ErrorContains(t, results[3].err, "failed to read image")
}

func TestPrintResults(t *testing.T) {
	p, err := inference.NewPrediction([]float32{0, 0, 0, 0, 0, 0, 0, 1, 0, 0})
	require.NoError(t, err)

	var out bytes.Buffer
	failed := printResults(&out, []fileResult{
		{path: "seven.png", prediction: p},
		{path: "blank.png", err: preprocess.ErrNoDigit},
	}, 29)
	assert.Equal(t, 1, failed)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "seven.png: Predicted Digit: 7 with confidence 1.00", lines[0])
	assert.Equal(t, "> 7 "+strings.Repeat("#", 20)+" 1.00", lines[8])
	assert.Equal(t, "  0 "+strings.Repeat(".", 20)+" 0.00", lines[1])
	assert.Equal(t, "blank.png: error: no digit detected", lines[11])
}

func TestRunConfigCmd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())

	path := config.DefaultConfigPath()
	assert.Equal(t, path+"\n", stdout.String())
	assert.Contains(t, stderr.String(), "created")
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestNewFileLogger(t *testing.T) {
	logger, closer, err := newFileLogger("info", "")
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
	require.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "logs", "digits.log")
	logger, closer, err = newFileLogger("warn", path)
	require.NoError(t, err)
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "kept")

	_, _, err = newFileLogger("loud", path)
	assert.Error(t, err)
}
