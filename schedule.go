package main

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRunScheduler blocks, re-running the pipeline on a standard 5-field
// cron expression (minute hour day-of-month month day-of-week).
// Examples: "0 9 * * *" (daily 9am), "0 9 * * 1-5" (weekdays 9am).
func StartRunScheduler(schedule string, run func()) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(schedule))
	if err != nil {
		log.Fatalf("Invalid run_schedule '%s': %v", schedule, err)
	}

	log.Printf("Scheduled runs enabled (cron: %s)", schedule)
	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)
		run()
	}
}
