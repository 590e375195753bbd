package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/qopt/internal/ir"
)

// marshalPipeline converts pass names to canonical JSON TEXT for storage.
func marshalPipeline(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := ir.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal pipeline: %w", err)
	}
	return string(data), nil
}

// unmarshalPipeline parses a stored pipeline. Empty text yields an empty
// slice, never nil.
func unmarshalPipeline(data string) ([]string, error) {
	names := []string{}
	if data == "" || data == "[]" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal pipeline: %w", err)
	}
	return names, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
