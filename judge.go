package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

const judgeSystemPrompt = `You are an expert quality assurance lead. Your sole task is to evaluate the generated output from another AI agent based on the original user ticket. Score the agent's output strictly on a scale of 1 to 5 for each of the following criteria:
- "relevance": How relevant is the output to the original ticket?
- "clarity": Is the output clear and easy to understand?
- "actionability": Can a human act on this output?
Your response MUST be ONLY the JSON object, e.g. {"relevance": 4, "clarity": 5, "actionability": 3}.`

type JudgeScore struct {
	Relevance     int `json:"relevance"`
	Clarity       int `json:"clarity"`
	Actionability int `json:"actionability"`
}

func (s *JudgeScore) validate() error {
	for name, score := range map[string]int{
		"relevance":     s.Relevance,
		"clarity":       s.Clarity,
		"actionability": s.Actionability,
	} {
		if score < 1 || score > 5 {
			return fmt.Errorf("judge score %s=%d out of range 1-5", name, score)
		}
	}
	return nil
}

// Judge grades successful solver outputs with an independent quality pass.
type Judge struct {
	llm   Completer
	pause time.Duration
	sleep func(time.Duration)

	usage LLMUsage
}

func NewJudge(llm Completer, pause time.Duration) *Judge {
	return &Judge{llm: llm, pause: pause, sleep: time.Sleep}
}

// Evaluate scores one solver output against the ticket it answered. The
// ticket is re-sanitized so ground-truth labels never reach the judge.
// A nil score means the grading call failed; the caller skips it.
func (j *Judge) Evaluate(ticket Ticket, solverOutput *SolverResult) *JudgeScore {
	log.Printf("judge grading ticket=%s solver=%s", ticket.TicketID, solverOutput.Solver)

	ticketJSON, err := json.Marshal(ticket.Sanitize())
	if err != nil {
		ticketJSON = []byte("{}")
	}
	outputJSON, err := json.Marshal(solverOutput)
	if err != nil {
		log.Printf("judge skipped ticket=%s err=%v", ticket.TicketID, err)
		return nil
	}

	userPrompt := fmt.Sprintf("Based on the Original Ticket below, please evaluate the provided Agent Output.\n\n--- ORIGINAL TICKET ---\n%s\n\n--- AGENT OUTPUT (to be evaluated) ---\n%s", ticketJSON, outputJSON)

	score, usage, infErr := inferStructured(j.llm, judgeSystemPrompt, userPrompt, (*JudgeScore).validate)
	j.usage.Add(usage)
	if infErr != nil {
		log.Printf("judge failed ticket=%s cause=%s err=%v", ticket.TicketID, infErr.Kind, infErr.Err)
		return nil
	}

	log.Printf("judge done ticket=%s relevance=%d clarity=%d actionability=%d", ticket.TicketID, score.Relevance, score.Clarity, score.Actionability)
	return score
}

func (j *Judge) Usage() LLMUsage {
	return j.usage
}
