package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteResultsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	results := []ResultEnvelope{
		successEnvelope("T1", CategoryBugs, "BUGS", "Backend", TeamBackend),
		{OriginalTicket: Ticket{TicketID: "T2"}, ProcessingTimeSeconds: 0.2},
	}

	if err := WriteResultsFile(results, path); err != nil {
		t.Fatalf("WriteResultsFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("results file is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded))
	}
	if decoded[1]["router_output"] != routingFailedSentinel {
		t.Fatalf("expected sentinel for failed routing, got %v", decoded[1]["router_output"])
	}
	if decoded[1]["solver_output"] != nil {
		t.Fatalf("expected null solver output, got %v", decoded[1]["solver_output"])
	}
}

func TestWriteEvaluationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluation_results.json")
	snapshot := ComputeMetrics([]ResultEnvelope{
		successEnvelope("T1", CategoryBugs, "BUGS", "General Triage", TeamGeneralTriage),
	}, nil)

	if err := WriteEvaluationFile(snapshot, path); err != nil {
		t.Fatalf("WriteEvaluationFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, section := range []string{"overall_performance", "router_evaluation", "solver_evaluation"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("evaluation file missing %q section: %s", section, data)
		}
	}
	if strings.Contains(string(data), "llm_as_judge_metrics") {
		t.Fatalf("judge section should be omitted when judge did not run: %s", data)
	}
}
