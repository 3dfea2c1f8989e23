// Package providers - Session options for ONNX Runtime.
package providers

import (
	"fmt"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
)

// NewSessionOptions creates session options with the execution provider
// described by cfg appended.
//
// **The caller must Destroy the returned options.**
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: The configured options.
//   - error: An error if the options or the provider cannot be set up.
func NewSessionOptions(cfg Config) (*ort.SessionOptions, error) {
	backend, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}

	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			options.Destroy()
			return nil, fmt.Errorf("error setting intra-op threads: %w", err)
		}
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("error setting graph optimization level: %w", err)
	}

	if err := appendProvider(options, backend, cfg); err != nil {
		options.Destroy()
		return nil, err
	}

	return options, nil
}

func appendProvider(options *ort.SessionOptions, backend ProviderBackend, cfg Config) error {
	switch backend {
	case CoreMLProviderBackend:
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			return fmt.Errorf("error enabling CoreML: %w", err)
		}
	case OpenVINOProviderBackend:
		// See:
		// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
		opts := map[string]string{}
		if cfg.DeviceID != "" {
			opts["device_id"] = cfg.DeviceID
		}
		if cfg.DeviceType != "" {
			opts["device_type"] = cfg.DeviceType
		}
		if cfg.Threads > 0 {
			opts["num_of_threads"] = strconv.Itoa(cfg.Threads)
		}
		if err := options.AppendExecutionProviderOpenVINO(opts); err != nil {
			return fmt.Errorf("error enabling OpenVINO: %w", err)
		}
	case CUDAProviderBackend:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return fmt.Errorf("error creating CUDA options: %w", err)
		}
		defer cuda.Destroy()
		if cfg.DeviceID != "" {
			if err := cuda.Update(map[string]string{"device_id": cfg.DeviceID}); err != nil {
				return fmt.Errorf("error converting CUDA options: %w", err)
			}
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return fmt.Errorf("error enabling CUDA: %w", err)
		}
	}
	return nil
}
