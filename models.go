package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ticket is an inbound support request as loaded from the input file. The
// ground_truth_* fields are human labels used only by the metrics engine;
// they are stripped before any ticket data reaches the inference service.
type Ticket struct {
	TicketID        string  `json:"ticket_id"`
	Subject         string  `json:"subject"`
	Message         string  `json:"message"`
	CustomerTier    string  `json:"customer_tier"`
	PreviousTickets int     `json:"previous_tickets"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	AccountAgeDays  int     `json:"account_age_days"`

	GroundTruthCategory string `json:"ground_truth_category,omitempty"`
	GroundTruthUrgency  string `json:"ground_truth_urgency,omitempty"`
	GroundTruthTeam     string `json:"ground_truth_team,omitempty"`
}

// SanitizedTicket is the only ticket form that enters a prompt. It has no
// ground-truth fields at all, so they cannot leak by accident.
type SanitizedTicket struct {
	TicketID        string  `json:"ticket_id"`
	Subject         string  `json:"subject"`
	Message         string  `json:"message"`
	CustomerTier    string  `json:"customer_tier"`
	PreviousTickets int     `json:"previous_tickets"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	AccountAgeDays  int     `json:"account_age_days"`
}

func (t Ticket) Sanitize() SanitizedTicket {
	return SanitizedTicket{
		TicketID:        t.TicketID,
		Subject:         t.Subject,
		Message:         t.Message,
		CustomerTier:    t.CustomerTier,
		PreviousTickets: t.PreviousTickets,
		MonthlyRevenue:  t.MonthlyRevenue,
		AccountAgeDays:  t.AccountAgeDays,
	}
}

// --- Closed enumerations ---

type TicketCategory string

const (
	CategoryBugs          TicketCategory = "BUGS"
	CategoryQuery         TicketCategory = "QUERY"
	CategoryRequest       TicketCategory = "REQUEST"
	CategorySecurity      TicketCategory = "SECURITY"
	CategoryCorrectness   TicketCategory = "CORRECTNESS"
	CategoryMiscellaneous TicketCategory = "MISCELLANEOUS"
)

var allCategories = []TicketCategory{
	CategoryBugs, CategoryQuery, CategoryRequest,
	CategorySecurity, CategoryCorrectness, CategoryMiscellaneous,
}

// ParseTicketCategory matches case-insensitively and canonicalizes. Anything
// outside the closed set is an error, never coerced to MISCELLANEOUS.
func ParseTicketCategory(s string) (TicketCategory, error) {
	for _, c := range allCategories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown ticket category %q", s)
}

func (c *TicketCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTicketCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "High"
	UrgencyMedium UrgencyLevel = "Medium"
	UrgencyLow    UrgencyLevel = "Low"
)

var allUrgencies = []UrgencyLevel{UrgencyHigh, UrgencyMedium, UrgencyLow}

func ParseUrgencyLevel(s string) (UrgencyLevel, error) {
	for _, u := range allUrgencies {
		if strings.EqualFold(strings.TrimSpace(s), string(u)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown urgency level %q", s)
}

func (u *UrgencyLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUrgencyLevel(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

type AssignedTeam string

const (
	TeamFrontend        AssignedTeam = "Frontend"
	TeamBackend         AssignedTeam = "Backend"
	TeamSecurity        AssignedTeam = "Security"
	TeamUIUX            AssignedTeam = "UI/UX"
	TeamCustomerSupport AssignedTeam = "Customer Support"
	TeamDocumentation   AssignedTeam = "Documentation"
	TeamGeneralTriage   AssignedTeam = "General Triage"
)

var allTeams = []AssignedTeam{
	TeamFrontend, TeamBackend, TeamSecurity, TeamUIUX,
	TeamCustomerSupport, TeamDocumentation, TeamGeneralTriage,
}

func ParseAssignedTeam(s string) (AssignedTeam, error) {
	for _, t := range allTeams {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown assigned team %q", s)
}

func (t *AssignedTeam) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAssignedTeam(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// --- Routing ---

// RoutingSlip is the router's judgment for one ticket. Category and urgency
// are validated against their closed sets at decode time, so a populated slip
// is never partially valid.
type RoutingSlip struct {
	Category TicketCategory `json:"category"`
	Urgency  UrgencyLevel   `json:"urgency"`
	Summary  string         `json:"summary"`
}

func (s *RoutingSlip) validate() error {
	if s.Category == "" {
		return fmt.Errorf("routing slip missing category")
	}
	if s.Urgency == "" {
		return fmt.Errorf("routing slip missing urgency")
	}
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("routing slip missing summary")
	}
	return nil
}

// routingFailedSentinel is what router_output serializes to when routing
// failed, matching the snapshot format consumers already parse.
const routingFailedSentinel = "ROUTING FAILED"

// ResultEnvelope is the complete per-ticket record: the original ticket with
// its ground truth, the routing outcome, the solver outcome (nil when routing
// failed), and wall-clock processing time. Appended once, never mutated.
type ResultEnvelope struct {
	OriginalTicket        Ticket
	RouterOutput          *RoutingSlip
	SolverOutput          *SolverResult
	ProcessingTimeSeconds float64
}

func (r ResultEnvelope) RoutingFailed() bool {
	return r.RouterOutput == nil
}

func (r ResultEnvelope) MarshalJSON() ([]byte, error) {
	var router any = routingFailedSentinel
	if r.RouterOutput != nil {
		router = r.RouterOutput
	}
	return json.Marshal(struct {
		OriginalTicket        Ticket        `json:"original_ticket"`
		RouterOutput          any           `json:"router_output"`
		SolverOutput          *SolverResult `json:"solver_output"`
		ProcessingTimeSeconds float64       `json:"processing_time_seconds"`
	}{
		OriginalTicket:        r.OriginalTicket,
		RouterOutput:          router,
		SolverOutput:          r.SolverOutput,
		ProcessingTimeSeconds: r.ProcessingTimeSeconds,
	})
}
