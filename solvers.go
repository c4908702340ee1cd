package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// SolverData is the closed set of remediation artifacts a solver can
// produce. Every variant carries an assigned team; the unexported method
// keeps the set sealed so metrics code can switch over it exhaustively.
type SolverData interface {
	Team() AssignedTeam
	solverData()
}

type BugReport struct {
	Title             string       `json:"title"`
	ReproductionSteps []string     `json:"reproduction_steps"`
	Severity          string       `json:"severity"`
	AssignedTeam      AssignedTeam `json:"assigned_team"`
}

func (b BugReport) Team() AssignedTeam { return b.AssignedTeam }
func (BugReport) solverData()          {}

func (b *BugReport) validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("bug report missing title")
	}
	if len(b.ReproductionSteps) == 0 {
		return fmt.Errorf("bug report missing reproduction_steps")
	}
	if strings.TrimSpace(b.Severity) == "" {
		return fmt.Errorf("bug report missing severity")
	}
	if b.AssignedTeam == "" {
		return fmt.Errorf("bug report missing assigned_team")
	}
	return nil
}

type DraftResponse struct {
	CustomerFacingResponse string       `json:"customer_facing_response"`
	IsResolved             *bool        `json:"is_resolved"`
	AssignedTeam           AssignedTeam `json:"assigned_team"`
}

func (d DraftResponse) Team() AssignedTeam { return d.AssignedTeam }
func (DraftResponse) solverData()          {}

func (d *DraftResponse) validate() error {
	if strings.TrimSpace(d.CustomerFacingResponse) == "" {
		return fmt.Errorf("draft response missing customer_facing_response")
	}
	if d.IsResolved == nil {
		return fmt.Errorf("draft response missing is_resolved")
	}
	if d.AssignedTeam == "" {
		return fmt.Errorf("draft response missing assigned_team")
	}
	return nil
}

type FeatureRequestReport struct {
	FeatureSummary string       `json:"feature_summary"`
	UserGoal       string       `json:"user_goal"`
	BusinessImpact string       `json:"business_impact"`
	AssignedTeam   AssignedTeam `json:"assigned_team"`
}

func (f FeatureRequestReport) Team() AssignedTeam { return f.AssignedTeam }
func (FeatureRequestReport) solverData()          {}

func (f *FeatureRequestReport) validate() error {
	if strings.TrimSpace(f.FeatureSummary) == "" {
		return fmt.Errorf("feature request missing feature_summary")
	}
	if strings.TrimSpace(f.UserGoal) == "" {
		return fmt.Errorf("feature request missing user_goal")
	}
	if strings.TrimSpace(f.BusinessImpact) == "" {
		return fmt.Errorf("feature request missing business_impact")
	}
	if f.AssignedTeam == "" {
		return fmt.Errorf("feature request missing assigned_team")
	}
	return nil
}

type SecurityAlert struct {
	AlertSummary      string       `json:"alert_summary"`
	Severity          string       `json:"severity"`
	RecommendedAction string       `json:"recommended_action"`
	AssignedTeam      AssignedTeam `json:"assigned_team"`
}

func (s SecurityAlert) Team() AssignedTeam { return s.AssignedTeam }
func (SecurityAlert) solverData()          {}

func (s *SecurityAlert) validate() error {
	if strings.TrimSpace(s.AlertSummary) == "" {
		return fmt.Errorf("security alert missing alert_summary")
	}
	if strings.TrimSpace(s.Severity) == "" {
		return fmt.Errorf("security alert missing severity")
	}
	if strings.TrimSpace(s.RecommendedAction) == "" {
		return fmt.Errorf("security alert missing recommended_action")
	}
	if s.AssignedTeam == "" {
		return fmt.Errorf("security alert missing assigned_team")
	}
	return nil
}

type CorrectnessReview struct {
	IdentifiedError     string       `json:"identified_error"`
	SuggestedCorrection string       `json:"suggested_correction"`
	AssignedTeam        AssignedTeam `json:"assigned_team"`
}

func (c CorrectnessReview) Team() AssignedTeam { return c.AssignedTeam }
func (CorrectnessReview) solverData()          {}

func (c *CorrectnessReview) validate() error {
	if strings.TrimSpace(c.IdentifiedError) == "" {
		return fmt.Errorf("correctness review missing identified_error")
	}
	if strings.TrimSpace(c.SuggestedCorrection) == "" {
		return fmt.Errorf("correctness review missing suggested_correction")
	}
	if c.AssignedTeam == "" {
		return fmt.Errorf("correctness review missing assigned_team")
	}
	return nil
}

type GeneralTriage struct {
	TriageSummary       string       `json:"triage_summary"`
	RecommendedNextStep string       `json:"recommended_next_step"`
	AssignedTeam        AssignedTeam `json:"assigned_team"`
}

func (g GeneralTriage) Team() AssignedTeam { return g.AssignedTeam }
func (GeneralTriage) solverData()          {}

func (g *GeneralTriage) validate() error {
	if strings.TrimSpace(g.TriageSummary) == "" {
		return fmt.Errorf("general triage missing triage_summary")
	}
	if strings.TrimSpace(g.RecommendedNextStep) == "" {
		return fmt.Errorf("general triage missing recommended_next_step")
	}
	if g.AssignedTeam == "" {
		return fmt.Errorf("general triage missing assigned_team")
	}
	return nil
}

// --- Solver result envelope ---

type SolverStatus string

const (
	SolverSuccess SolverStatus = "SUCCESS"
	SolverFailure SolverStatus = "FAILURE"
)

const solverFailureReason = "Could not generate valid structured output."

// SolverResult wraps one solver invocation. Data holds the SolverData
// artifact on success and the failure reason string otherwise.
type SolverResult struct {
	Status SolverStatus `json:"status"`
	Solver string       `json:"solver"`
	Data   any          `json:"data"`
}

func (r *SolverResult) Succeeded() bool {
	return r != nil && r.Status == SolverSuccess
}

// AssignedTeam returns the team carried by a successful artifact.
func (r *SolverResult) AssignedTeam() (AssignedTeam, bool) {
	if !r.Succeeded() {
		return "", false
	}
	data, ok := r.Data.(SolverData)
	if !ok {
		return "", false
	}
	return data.Team(), true
}

// --- Solver definitions ---

func teamOptionsLine() string {
	opts := make([]string, len(allTeams))
	for i, t := range allTeams {
		opts[i] = fmt.Sprintf("%q", string(t))
	}
	return strings.Join(opts, ", ")
}

func solverSystemPrompt(role, artifact, fieldGuidance string) string {
	return fmt.Sprintf(`%s Your sole task is to produce the %s described below as a single, raw JSON object. Do not add markdown backticks, conversational text, or explanations.

Fields:
%s
- "assigned_team": The internal team responsible for this ticket. Must be exactly one of: %s.`,
		role, artifact, fieldGuidance, teamOptionsLine())
}

var bugSolverSystem = solverSystemPrompt(
	"You are an expert software developer creating a bug report for Jira.", "BugReport",
	`- "title": A descriptive title suitable for a bug ticket. It should clearly state the core problem.
- "reproduction_steps": A JSON array of easy-to-follow steps that an engineer can use to replicate the bug.
- "severity": Must be one of: "Critical", "High", "Medium", or "Low".
Team guidance: if the root cause likely lies in server-side logic, API functionality, database interactions, data processing, authentication mechanisms, or core system performance (e.g., 500 errors, login failures not related to UI, system crashes), assign "Backend". For visual or user interface bugs specific to the client side, assign "Frontend" or "UI/UX". Only assign "General Triage" if the problem domain is highly ambiguous even after analyzing the title and steps.`)

var querySolverSystem = solverSystemPrompt(
	"You are a friendly customer support agent drafting a response.", "DraftResponse",
	`- "customer_facing_response": A helpful, friendly, and empathetic response addressing the customer's issue directly.
- "is_resolved": true if the drafted response fully resolves the user's question, false otherwise.
Team guidance: if the issue relates to server functionality, data, APIs, or system integrations, consider "Backend". For account help, billing, or general guidance, consider "Customer Support". Avoid "General Triage" if a more specific team can be identified.`)

var requestSolverSystem = solverSystemPrompt(
	"You are a product manager analyzing a new feature request.", "FeatureRequestReport",
	`- "feature_summary": The user's core feature request in one or two sentences.
- "user_goal": The underlying goal or problem the user is trying to solve with this new feature.
- "business_impact": Must be one of: "High", "Medium", or "Low".
Team guidance: if the request involves significant data manipulation, new API development, core architectural changes, system integrations, or complex backend logic, assign "Backend". For features primarily focused on user interface changes or visual enhancements, assign "Frontend" or "UI/UX". "General Triage" is inappropriate if the feature's technical domain is reasonably clear.`)

var securitySolverSystem = solverSystemPrompt(
	"You are a security analyst creating a high-priority alert.", "SecurityAlert",
	`- "alert_summary": A concise summary of the potential security vulnerability reported in the ticket.
- "severity": Must be one of: "Critical", "High", "Medium", or "Low".
- "recommended_action": The single most important next step to take immediately, e.g. "Escalate to security team" or "Revoke API key".
Team guidance: assign "Security" for incidents like unauthorized access, direct vulnerability exploitation, or policy violations. Prioritize "Security" for initial assignment of security-flagged issues even when a backend system is implicated. Avoid "General Triage" for clear security alerts.`)

var correctnessSolverSystem = solverSystemPrompt(
	"You are a QA engineer noting a minor correctness issue.", "CorrectnessReview",
	`- "identified_error": The specific factual or textual error found (e.g., a typo in the UI, an incorrect number in a report).
- "suggested_correction": The exact text or value that would correct the identified error.
Team guidance: if the error is in backend-generated data, system calculations, API response content, or server-side configurations, assign "Backend". For UI text errors, assign "Frontend" or "UI/UX"; for documentation errors, assign "Documentation". Do not use "General Triage" if the source of the error can be pinpointed.`)

var miscSolverSystem = solverSystemPrompt(
	"You are a support lead triaging an unclear ticket.", "GeneralTriage",
	`- "triage_summary": A summary of the ticket's content, noting its ambiguity or lack of a clear, actionable request.
- "recommended_next_step": The most logical next action for this unclear ticket, e.g. "Request clarification from the user" or "Forward to Tier 2 support".
Team guidance: assign "General Triage" itself, or "Customer Support" if the recommended next step is direct user interaction for clarification. Only assign a specialized technical team if the summary and next step now very clearly point to it despite the initial ambiguity.`)

// SolverRegistry dispatches a routed ticket to its category's solver.
type SolverRegistry struct {
	llm Completer
}

func NewSolverRegistry(llm Completer) *SolverRegistry {
	return &SolverRegistry{llm: llm}
}

func buildSolverPrompt(artifact string, ticket SanitizedTicket, summary string) string {
	ticketJSON, err := json.Marshal(ticket)
	if err != nil {
		// SanitizedTicket has no unmarshalable fields; this cannot happen.
		ticketJSON = []byte("{}")
	}
	return fmt.Sprintf("Based on the ticket and summary, generate the %s.\nTICKET: %s\nSUMMARY: %s", artifact, ticketJSON, summary)
}

// Solve invokes the solver matching the category. The switch is exhaustive
// over the closed category set; MISCELLANEOUS and anything unmapped fall
// through to the general-triage solver on purpose.
func (s *SolverRegistry) Solve(category TicketCategory, ticket SanitizedTicket, summary string) (SolverResult, LLMUsage) {
	switch category {
	case CategoryBugs:
		log.Printf("solver ticket=%s routed=BugSolver", ticket.TicketID)
		out, usage, infErr := inferStructured(s.llm, bugSolverSystem, buildSolverPrompt("BugReport", ticket, summary), (*BugReport).validate)
		if infErr != nil {
			return failedSolve("BugSolver", ticket.TicketID, infErr), usage
		}
		return solvedWith("BugSolver", *out), usage
	case CategoryQuery:
		log.Printf("solver ticket=%s routed=QuerySolver", ticket.TicketID)
		out, usage, infErr := inferStructured(s.llm, querySolverSystem, buildSolverPrompt("DraftResponse", ticket, summary), (*DraftResponse).validate)
		if infErr != nil {
			return failedSolve("QuerySolver", ticket.TicketID, infErr), usage
		}
		return solvedWith("QuerySolver", *out), usage
	case CategoryRequest:
		log.Printf("solver ticket=%s routed=FeatureRequestSolver", ticket.TicketID)
		out, usage, infErr := inferStructured(s.llm, requestSolverSystem, buildSolverPrompt("FeatureRequestReport", ticket, summary), (*FeatureRequestReport).validate)
		if infErr != nil {
			return failedSolve("FeatureRequestSolver", ticket.TicketID, infErr), usage
		}
		return solvedWith("FeatureRequestSolver", *out), usage
	case CategorySecurity:
		log.Printf("solver ticket=%s routed=SecuritySolver", ticket.TicketID)
		out, usage, infErr := inferStructured(s.llm, securitySolverSystem, buildSolverPrompt("SecurityAlert", ticket, summary), (*SecurityAlert).validate)
		if infErr != nil {
			return failedSolve("SecuritySolver", ticket.TicketID, infErr), usage
		}
		return solvedWith("SecuritySolver", *out), usage
	case CategoryCorrectness:
		log.Printf("solver ticket=%s routed=CorrectnessSolver", ticket.TicketID)
		out, usage, infErr := inferStructured(s.llm, correctnessSolverSystem, buildSolverPrompt("CorrectnessReview", ticket, summary), (*CorrectnessReview).validate)
		if infErr != nil {
			return failedSolve("CorrectnessSolver", ticket.TicketID, infErr), usage
		}
		return solvedWith("CorrectnessSolver", *out), usage
	case CategoryMiscellaneous:
		return s.solveMisc(ticket, summary)
	default:
		// Unmapped categories cannot arise from a validated slip, but the
		// fallback stays explicit rather than becoming a panic.
		return s.solveMisc(ticket, summary)
	}
}

func (s *SolverRegistry) solveMisc(ticket SanitizedTicket, summary string) (SolverResult, LLMUsage) {
	log.Printf("solver ticket=%s routed=MiscSolver", ticket.TicketID)
	out, usage, infErr := inferStructured(s.llm, miscSolverSystem, buildSolverPrompt("GeneralTriage", ticket, summary), (*GeneralTriage).validate)
	if infErr != nil {
		return failedSolve("MiscSolver", ticket.TicketID, infErr), usage
	}
	return solvedWith("MiscSolver", *out), usage
}

func solvedWith(solverName string, data SolverData) SolverResult {
	log.Printf("solver %s succeeded team=%s", solverName, data.Team())
	return SolverResult{Status: SolverSuccess, Solver: solverName, Data: data}
}

func failedSolve(solverName, ticketID string, infErr *InferenceError) SolverResult {
	log.Printf("solver %s failed ticket=%s cause=%s err=%v", solverName, ticketID, infErr.Kind, infErr.Err)
	return SolverResult{Status: SolverFailure, Solver: solverName, Data: solverFailureReason}
}
