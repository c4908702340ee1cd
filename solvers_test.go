package main

import (
	"errors"
	"strings"
	"testing"
)

var errTest = errors.New("boom")

var solverResponses = map[TicketCategory]string{
	CategoryBugs:          `{"title": "Export 500", "reproduction_steps": ["Open export", "Click CSV"], "severity": "High", "assigned_team": "Backend"}`,
	CategoryQuery:         `{"customer_facing_response": "Here is how...", "is_resolved": true, "assigned_team": "Customer Support"}`,
	CategoryRequest:       `{"feature_summary": "Dark mode", "user_goal": "Reduce eye strain", "business_impact": "Medium", "assigned_team": "Frontend"}`,
	CategorySecurity:      `{"alert_summary": "Token leak", "severity": "Critical", "recommended_action": "Revoke API key", "assigned_team": "Security"}`,
	CategoryCorrectness:   `{"identified_error": "Typo on pricing page", "suggested_correction": "per month", "assigned_team": "Documentation"}`,
	CategoryMiscellaneous: `{"triage_summary": "Unclear rant", "recommended_next_step": "Request clarification from the user", "assigned_team": "General Triage"}`,
}

func TestSolveDispatchesPerCategory(t *testing.T) {
	cases := []struct {
		category   TicketCategory
		wantSolver string
		wantTeam   AssignedTeam
	}{
		{CategoryBugs, "BugSolver", TeamBackend},
		{CategoryQuery, "QuerySolver", TeamCustomerSupport},
		{CategoryRequest, "FeatureRequestSolver", TeamFrontend},
		{CategorySecurity, "SecuritySolver", TeamSecurity},
		{CategoryCorrectness, "CorrectnessSolver", TeamDocumentation},
		{CategoryMiscellaneous, "MiscSolver", TeamGeneralTriage},
	}

	for _, c := range cases {
		t.Run(string(c.category), func(t *testing.T) {
			fake := &fakeCompleter{responses: []string{solverResponses[c.category]}}
			result, usage := NewSolverRegistry(fake).Solve(c.category, sampleTicket().Sanitize(), "summary")

			if result.Status != SolverSuccess {
				t.Fatalf("expected SUCCESS, got %+v", result)
			}
			if result.Solver != c.wantSolver {
				t.Fatalf("expected solver %q, got %q", c.wantSolver, result.Solver)
			}
			team, ok := result.AssignedTeam()
			if !ok || team != c.wantTeam {
				t.Fatalf("expected team %q, got %q (ok=%v)", c.wantTeam, team, ok)
			}
			if usage.TotalTokens() == 0 {
				t.Fatal("expected usage accounting")
			}
		})
	}
}

func TestSolveUnmappedCategoryFallsBackToTriage(t *testing.T) {
	fake := &fakeCompleter{responses: []string{solverResponses[CategoryMiscellaneous]}}
	result, _ := NewSolverRegistry(fake).Solve(TicketCategory("UNMAPPED"), sampleTicket().Sanitize(), "summary")

	if result.Solver != "MiscSolver" || result.Status != SolverSuccess {
		t.Fatalf("expected general-triage fallback, got %+v", result)
	}
}

func TestSolvePromptCombinesTicketAndSummary(t *testing.T) {
	fake := &fakeCompleter{responses: []string{solverResponses[CategoryBugs]}}
	NewSolverRegistry(fake).Solve(CategoryBugs, sampleTicket().Sanitize(), "the router summary")

	if len(fake.calls) != 1 {
		t.Fatalf("expected one solver call, got %d", len(fake.calls))
	}
	user := fake.calls[0].user
	if !strings.Contains(user, "generate the BugReport") {
		t.Fatalf("solver prompt missing artifact name: %s", user)
	}
	if !strings.Contains(user, `"ticket_id":"TKT-2001"`) {
		t.Fatalf("solver prompt missing ticket payload: %s", user)
	}
	if !strings.Contains(user, "SUMMARY: the router summary") {
		t.Fatalf("solver prompt missing routing summary: %s", user)
	}
	if strings.Contains(user, "ground_truth") {
		t.Fatalf("solver prompt leaks ground truth: %s", user)
	}
}

func TestSolveFailureWrapsReason(t *testing.T) {
	cases := []struct {
		name string
		fake *fakeCompleter
	}{
		{"rate limited", &fakeCompleter{errs: []error{&InferenceError{Kind: InferenceRateLimited, Err: errTest}}}},
		{"malformed", &fakeCompleter{responses: []string{"no json"}}},
		{"invalid team", &fakeCompleter{responses: []string{`{"title": "t", "reproduction_steps": ["s"], "severity": "High", "assigned_team": "Kernel"}`}}},
		{"missing field", &fakeCompleter{responses: []string{`{"title": "t", "severity": "High", "assigned_team": "Backend"}`}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, _ := NewSolverRegistry(c.fake).Solve(CategoryBugs, sampleTicket().Sanitize(), "summary")
			if result.Status != SolverFailure {
				t.Fatalf("expected FAILURE, got %+v", result)
			}
			if result.Solver != "BugSolver" {
				t.Fatalf("failure should still name the solver, got %q", result.Solver)
			}
			reason, ok := result.Data.(string)
			if !ok || reason != solverFailureReason {
				t.Fatalf("expected failure reason string, got %#v", result.Data)
			}
			if _, ok := result.AssignedTeam(); ok {
				t.Fatal("failed solve should not expose a team")
			}
		})
	}
}

func TestSolverSystemPromptsListTeams(t *testing.T) {
	for name, prompt := range map[string]string{
		"bug":         bugSolverSystem,
		"query":       querySolverSystem,
		"request":     requestSolverSystem,
		"security":    securitySolverSystem,
		"correctness": correctnessSolverSystem,
		"misc":        miscSolverSystem,
	} {
		for _, team := range allTeams {
			if !strings.Contains(prompt, string(team)) {
				t.Fatalf("%s solver prompt missing team %q", name, team)
			}
		}
	}
}
