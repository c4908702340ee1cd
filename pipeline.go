package main

import (
	"log"
	"time"
)

// Pipeline runs tickets through routing and solving in fixed-size batches.
// Processing is strictly sequential; batches exist only to insert a pacing
// delay between groups of calls so external rate limits are respected.
type Pipeline struct {
	router     *Router
	solvers    *SolverRegistry
	batchSize  int
	batchPause time.Duration

	// sleep is swappable so tests can observe pacing without waiting.
	sleep func(time.Duration)

	usage LLMUsage
}

func NewPipeline(router *Router, solvers *SolverRegistry, batchSize int, batchPause time.Duration) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		router:     router,
		solvers:    solvers,
		batchSize:  batchSize,
		batchPause: batchPause,
		sleep:      time.Sleep,
	}
}

func createBatches(tickets []Ticket, size int) [][]Ticket {
	var batches [][]Ticket
	for start := 0; start < len(tickets); start += size {
		end := start + size
		if end > len(tickets) {
			end = len(tickets)
		}
		batches = append(batches, tickets[start:end])
	}
	return batches
}

// Run produces exactly one envelope per ticket, in input order. A routing
// failure terminates that ticket's processing; a solve failure still yields a
// complete envelope. No per-ticket failure aborts the run.
func (p *Pipeline) Run(tickets []Ticket) []ResultEnvelope {
	batches := createBatches(tickets, p.batchSize)
	log.Printf("pipeline start tickets=%d batches=%d batch_size=%d", len(tickets), len(batches), p.batchSize)

	results := make([]ResultEnvelope, 0, len(tickets))
	for i, batch := range batches {
		log.Printf("pipeline batch %d/%d", i+1, len(batches))
		for _, ticket := range batch {
			results = append(results, p.processTicket(ticket))
		}
		if i < len(batches)-1 && p.batchPause > 0 {
			log.Printf("pipeline pausing %s before next batch", p.batchPause)
			p.sleep(p.batchPause)
		}
	}

	log.Printf("pipeline done tickets=%d tokens_in=%d tokens_out=%d", len(results), p.usage.InputTokens, p.usage.OutputTokens)
	return results
}

func (p *Pipeline) processTicket(ticket Ticket) ResultEnvelope {
	start := time.Now()
	sanitized := ticket.Sanitize()

	slip, routeUsage := p.router.Route(sanitized)
	p.usage.Add(routeUsage)
	if slip == nil {
		return ResultEnvelope{
			OriginalTicket:        ticket,
			ProcessingTimeSeconds: time.Since(start).Seconds(),
		}
	}

	result, solveUsage := p.solvers.Solve(slip.Category, sanitized, slip.Summary)
	p.usage.Add(solveUsage)
	return ResultEnvelope{
		OriginalTicket:        ticket,
		RouterOutput:          slip,
		SolverOutput:          &result,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}
}

// Usage reports the tokens consumed across all routing and solving calls so
// far. Judge usage is accounted separately by the metrics engine.
func (p *Pipeline) Usage() LLMUsage {
	return p.usage
}
