package main

import (
	"log"
	"time"

	"github.com/google/uuid"
)

func main() {
	cfg := LoadConfig()

	if cfg.RunSchedule != "" {
		StartRunScheduler(cfg.RunSchedule, func() { runOnce(cfg) })
		return
	}
	runOnce(cfg)
}

func runOnce(cfg Config) {
	runID := uuid.New().String()[:8]
	log.Printf("run=%s starting, input=%s provider=%s", runID, cfg.InputFile, cfg.LLMProvider)

	tickets, err := LoadTickets(cfg.InputFile)
	if err != nil {
		log.Printf("run=%s aborted: %v", runID, err)
		return
	}
	log.Printf("run=%s found %d tickets in %s", runID, len(tickets), cfg.InputFile)

	llm := NewLLMClient(cfg, cfg.LLMModel)
	pipeline := NewPipeline(
		NewRouter(llm),
		NewSolverRegistry(llm),
		cfg.BatchSize,
		time.Duration(cfg.BatchPauseSeconds)*time.Second,
	)

	results := pipeline.Run(tickets)
	if err := WriteResultsFile(results, cfg.OutputFile); err != nil {
		log.Printf("run=%s write results failed: %v", runID, err)
		return
	}
	log.Printf("run=%s results saved to %s", runID, cfg.OutputFile)

	if len(results) == 0 {
		log.Printf("run=%s no tickets processed, no metrics calculated", runID)
		return
	}

	var judge *Judge
	if cfg.JudgeEnabled {
		judgeModel := cfg.JudgeModel
		if judgeModel == "" {
			judgeModel = cfg.LLMModel
		}
		judge = NewJudge(NewLLMClient(cfg, judgeModel), time.Duration(cfg.JudgePauseSeconds)*time.Second)
	}

	snapshot := ComputeMetrics(results, judge)
	if err := WriteEvaluationFile(snapshot, cfg.EvaluationFile); err != nil {
		log.Printf("run=%s write evaluation failed: %v", runID, err)
		return
	}
	log.Printf("run=%s evaluation metrics saved to %s", runID, cfg.EvaluationFile)

	usage := pipeline.Usage()
	if judge != nil {
		usage.Add(judge.Usage())
	}
	log.Printf("run=%s complete tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d",
		runID, usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)

	PostRunSummary(cfg, runID, snapshot)
}
