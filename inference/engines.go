// Package inference - Inference engine interface and implementations
package inference

import (
	"fmt"
	"strings"
)

// EngineType is the type of the engine
type EngineType string

const (
	// EngineONNX is the ONNX engine that uses the onnxruntime library
	EngineONNX EngineType = "onnx"
	// EngineDense is the gorgonia engine that evaluates a dense network
	// described by a YAML weights file
	EngineDense EngineType = "dense"
)

// Engines is a list of all supported engines
var Engines = []EngineType{EngineONNX, EngineDense}

// ParseEngine maps a user supplied name to an engine, ONNX when empty.
func ParseEngine(name string) (EngineType, error) {
	if name == "" {
		return EngineONNX, nil
	}
	for _, e := range Engines {
		if strings.EqualFold(string(e), name) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown engine: %s", name)
}
