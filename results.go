package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteResultsFile serializes the envelope list, one entry per input ticket
// in input order.
func WriteResultsFile(results []ResultEnvelope, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing results file %s: %w", path, err)
	}
	return nil
}

func WriteEvaluationFile(snapshot MetricsSnapshot, path string) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling evaluation metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing evaluation file %s: %w", path, err)
	}
	return nil
}
