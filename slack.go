package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// SlackConfigured reports whether run summaries should be posted.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

// PostRunSummary posts a one-message digest of a finished run to the report
// channel. Posting failures are logged, never fatal; the run's output files
// are already on disk by the time this is called.
func PostRunSummary(cfg Config, runID string, snapshot MetricsSnapshot) {
	if !cfg.SlackConfigured() {
		return
	}

	text := fmt.Sprintf(
		"Triage run `%s` complete: %d tickets, avg %ss/ticket\n"+
			"Routing accuracy: %s | Urgency accuracy: %s\n"+
			"Solver success rate: %s | Team accuracy: %s",
		runID,
		snapshot.OverallPerformance.TotalTicketsProcessed,
		snapshot.OverallPerformance.AverageProcessingTimeSeconds,
		snapshot.RouterEvaluation.RoutingAccuracyPercent,
		snapshot.RouterEvaluation.UrgencyAccuracyPercent,
		snapshot.SolverEvaluation.SolverSuccessRatePercent,
		snapshot.SolverEvaluation.TeamAssignmentAccuracyPercent,
	)
	if j := snapshot.SolverEvaluation.LLMAsJudgeMetrics; j != nil {
		text += fmt.Sprintf("\nJudge (%d graded): relevance %s, clarity %s, actionability %s",
			j.EvaluationsPerformed, j.AvgRelevanceScore, j.AvgClarityScore, j.AvgActionabilityScore)
	}

	api := slack.New(cfg.SlackBotToken)
	_, _, err := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("slack post run summary failed: %v", err)
		return
	}
	log.Printf("slack run summary posted channel=%s run=%s", cfg.ReportChannelID, runID)
}
