// Package providers - ONNX Runtime execution providers.
package providers

import (
	"fmt"
	"strings"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

const (
	// CPUProviderBackend uses the default CPU provider.
	CPUProviderBackend ProviderBackend = "cpu"
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
	// CUDAProviderBackend uses NVIDIA CUDA for GPU acceleration.
	CUDAProviderBackend ProviderBackend = "cuda"
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// Backends lists every supported backend.
var Backends = []ProviderBackend{
	CPUProviderBackend,
	CoreMLProviderBackend,
	CUDAProviderBackend,
	OpenVINOProviderBackend,
}

// Config selects and tunes an execution provider.
type Config struct {
	// Backend specifies the backend to use, CPU when empty.
	Backend ProviderBackend `json:"backend" yaml:"backend" toml:"backend"`
	// DeviceID selects the accelerator for CUDA and OpenVINO.
	DeviceID string `json:"device_id" yaml:"device_id" toml:"device_id"`
	// DeviceType is the OpenVINO device type, e.g. CPU or GPU.
	DeviceType string `json:"device_type" yaml:"device_type" toml:"device_type"`
	// Threads limits intra-op parallelism, 0 lets the runtime decide.
	Threads int `json:"threads" yaml:"threads" toml:"threads"`
}

// ParseBackend maps a user supplied name to a backend.
//
// Arguments:
//   - name: The backend name, case-insensitive. Empty selects CPU.
//
// Returns:
//   - ProviderBackend: The matching backend.
//   - error: An error if the name is unknown.
func ParseBackend(name string) (ProviderBackend, error) {
	if name == "" {
		return CPUProviderBackend, nil
	}
	for _, b := range Backends {
		if strings.EqualFold(string(b), name) {
			return b, nil
		}
	}
	return "", fmt.Errorf("no matching provider backend registered: %s", name)
}
