// Package providers - Utility functions.
package providers

import "runtime"

// GetSharedLibPath returns the default path to the ONNX Runtime shared
// library for the current platform.
//
// Returns:
//   - string: The path to the shared library, empty when the platform has no
//     known default and the runtime's own search should be used.
func GetSharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	default:
		return ""
	}
}
