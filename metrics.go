package main

import (
	"fmt"
	"log"
	"strings"
)

// MetricsSnapshot is the read-only aggregate computed wholesale over a
// finished result list. Percentage fields carry their counts so the raw
// denominators survive into the serialized snapshot.
type MetricsSnapshot struct {
	OverallPerformance OverallPerformance `json:"overall_performance"`
	RouterEvaluation   RouterEvaluation   `json:"router_evaluation"`
	SolverEvaluation   SolverEvaluation   `json:"solver_evaluation"`
}

type OverallPerformance struct {
	TotalTicketsProcessed        int    `json:"total_tickets_processed"`
	AverageProcessingTimeSeconds string `json:"average_processing_time_seconds"`
}

type RouterEvaluation struct {
	RoutingAccuracyPercent string `json:"routing_accuracy_percent"`
	UrgencyAccuracyPercent string `json:"urgency_accuracy_percent"`
}

type SolverEvaluation struct {
	SolverSuccessRatePercent      string        `json:"solver_success_rate_percent"`
	TeamAssignmentAccuracyPercent string        `json:"team_assignment_accuracy_percent"`
	LLMAsJudgeMetrics             *JudgeMetrics `json:"llm_as_judge_metrics,omitempty"`
}

type JudgeMetrics struct {
	EvaluationsPerformed  int    `json:"evaluations_performed"`
	AvgRelevanceScore     string `json:"avg_relevance_score"`
	AvgClarityScore       string `json:"avg_clarity_score"`
	AvgActionabilityScore string `json:"avg_actionability_score"`
}

func formatPercent(matched, attempted int) string {
	pct := 0.0
	if attempted > 0 {
		pct = float64(matched) / float64(attempted) * 100
	}
	return fmt.Sprintf("%.2f%% (%d/%d)", pct, matched, attempted)
}

// ComputeMetrics aggregates the envelope list into a snapshot. Accuracy
// denominators count only envelopes where both a prediction and the matching
// ground-truth field exist; an absent ground-truth label means the comparison
// was never attempted, not that it failed. The solver success rate is the one
// exception: its denominator is always the total ticket count. Pass a non-nil
// judge to run the secondary quality pass over successful solves.
func ComputeMetrics(results []ResultEnvelope, judge *Judge) MetricsSnapshot {
	totalTickets := len(results)

	var totalProcessingTime float64
	correctlyRouted, routingAttempts := 0, 0
	correctlyUrgent, urgencyAttempts := 0, 0
	correctTeam, teamAttempts := 0, 0
	successfulSolves := 0

	for _, r := range results {
		totalProcessingTime += r.ProcessingTimeSeconds

		if !r.RoutingFailed() {
			if gt := r.OriginalTicket.GroundTruthCategory; gt != "" {
				routingAttempts++
				if strings.EqualFold(gt, string(r.RouterOutput.Category)) {
					correctlyRouted++
				}
			}
			if gt := r.OriginalTicket.GroundTruthUrgency; gt != "" {
				urgencyAttempts++
				if strings.EqualFold(gt, string(r.RouterOutput.Urgency)) {
					correctlyUrgent++
				}
			}
		}

		if r.SolverOutput.Succeeded() {
			successfulSolves++
			if gt := r.OriginalTicket.GroundTruthTeam; gt != "" {
				if team, ok := r.SolverOutput.AssignedTeam(); ok {
					teamAttempts++
					if strings.EqualFold(gt, string(team)) {
						correctTeam++
					}
				}
			}
		}
	}

	averageProcessingTime := 0.0
	if totalTickets > 0 {
		averageProcessingTime = totalProcessingTime / float64(totalTickets)
	}
	successRate := 0.0
	if totalTickets > 0 {
		successRate = float64(successfulSolves) / float64(totalTickets) * 100
	}

	snapshot := MetricsSnapshot{
		OverallPerformance: OverallPerformance{
			TotalTicketsProcessed:        totalTickets,
			AverageProcessingTimeSeconds: fmt.Sprintf("%.2f", averageProcessingTime),
		},
		RouterEvaluation: RouterEvaluation{
			RoutingAccuracyPercent: formatPercent(correctlyRouted, routingAttempts),
			UrgencyAccuracyPercent: formatPercent(correctlyUrgent, urgencyAttempts),
		},
		SolverEvaluation: SolverEvaluation{
			SolverSuccessRatePercent:      fmt.Sprintf("%.2f%%", successRate),
			TeamAssignmentAccuracyPercent: formatPercent(correctTeam, teamAttempts),
		},
	}

	if judge != nil {
		snapshot.SolverEvaluation.LLMAsJudgeMetrics = runJudgePass(results, judge)
	}

	return snapshot
}

// runJudgePass grades every successful solve, skipping failed grading calls.
// A pacing delay separates judge calls the same way the pipeline paces its
// batches. Returns nil when there is nothing to grade.
func runJudgePass(results []ResultEnvelope, judge *Judge) *JudgeMetrics {
	var graded []*JudgeScore
	first := true
	for _, r := range results {
		if !r.SolverOutput.Succeeded() {
			continue
		}
		if !first && judge.pause > 0 {
			log.Printf("judge pausing %s before next grading call", judge.pause)
			judge.sleep(judge.pause)
		}
		first = false
		if score := judge.Evaluate(r.OriginalTicket, r.SolverOutput); score != nil {
			graded = append(graded, score)
		}
	}
	if first {
		// No successful solves at all; omit the judge section.
		return nil
	}

	var relevance, clarity, actionability int
	for _, s := range graded {
		relevance += s.Relevance
		clarity += s.Clarity
		actionability += s.Actionability
	}
	avg := func(total int) string {
		if len(graded) == 0 {
			return "0.00 / 5"
		}
		return fmt.Sprintf("%.2f / 5", float64(total)/float64(len(graded)))
	}
	return &JudgeMetrics{
		EvaluationsPerformed:  len(graded),
		AvgRelevanceScore:     avg(relevance),
		AvgClarityScore:       avg(clarity),
		AvgActionabilityScore: avg(actionability),
	}
}
