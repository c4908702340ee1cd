package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseTicketCategoryCaseInsensitive(t *testing.T) {
	cases := []struct {
		in   string
		want TicketCategory
	}{
		{"BUGS", CategoryBugs},
		{"bugs", CategoryBugs},
		{" Query ", CategoryQuery},
		{"miscellaneous", CategoryMiscellaneous},
	}
	for _, c := range cases {
		got, err := ParseTicketCategory(c.in)
		if err != nil {
			t.Fatalf("ParseTicketCategory(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseTicketCategory(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := ParseTicketCategory("BILLING"); err == nil {
		t.Fatal("expected ParseTicketCategory to reject value outside the closed set")
	}
}

func TestParseUrgencyAndTeam(t *testing.T) {
	if got, err := ParseUrgencyLevel("HIGH"); err != nil || got != UrgencyHigh {
		t.Fatalf("ParseUrgencyLevel(HIGH) = %q, %v", got, err)
	}
	if _, err := ParseUrgencyLevel("Urgent"); err == nil {
		t.Fatal("expected ParseUrgencyLevel to reject unknown value")
	}

	if got, err := ParseAssignedTeam("backend"); err != nil || got != TeamBackend {
		t.Fatalf("ParseAssignedTeam(backend) = %q, %v", got, err)
	}
	if got, err := ParseAssignedTeam("ui/ux"); err != nil || got != TeamUIUX {
		t.Fatalf("ParseAssignedTeam(ui/ux) = %q, %v", got, err)
	}
	if _, err := ParseAssignedTeam("DevOps"); err == nil {
		t.Fatal("expected ParseAssignedTeam to reject unknown team")
	}
}

func TestSanitizeStripsGroundTruth(t *testing.T) {
	ticket := Ticket{
		TicketID:            "TKT-1001",
		Subject:             "Cannot log in",
		Message:             "Login page returns 500",
		CustomerTier:        "enterprise",
		PreviousTickets:     3,
		MonthlyRevenue:      2500,
		AccountAgeDays:      400,
		GroundTruthCategory: "BUGS",
		GroundTruthUrgency:  "High",
		GroundTruthTeam:     "Backend",
	}

	data, err := json.Marshal(ticket.Sanitize())
	if err != nil {
		t.Fatalf("marshal sanitized ticket: %v", err)
	}
	if strings.Contains(string(data), "ground_truth") {
		t.Fatalf("sanitized ticket still carries ground truth: %s", data)
	}
	var roundTrip SanitizedTicket
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if roundTrip.TicketID != "TKT-1001" || roundTrip.PreviousTickets != 3 {
		t.Fatalf("sanitized copy lost fields: %+v", roundTrip)
	}
}

func TestRoutingSlipUnmarshalRejectsInvalidEnum(t *testing.T) {
	var slip RoutingSlip
	err := json.Unmarshal([]byte(`{"category": "SPAM", "urgency": "High", "summary": "x"}`), &slip)
	if err == nil {
		t.Fatal("expected unmarshal to fail for category outside the enumeration")
	}

	if err := json.Unmarshal([]byte(`{"category": "bugs", "urgency": "medium", "summary": "x"}`), &slip); err != nil {
		t.Fatalf("case-insensitive members should decode: %v", err)
	}
	if slip.Category != CategoryBugs || slip.Urgency != UrgencyMedium {
		t.Fatalf("expected canonicalized enums, got %+v", slip)
	}
}

func TestResultEnvelopeMarshalSentinel(t *testing.T) {
	failed := ResultEnvelope{
		OriginalTicket:        Ticket{TicketID: "TKT-1"},
		ProcessingTimeSeconds: 1.5,
	}
	data, err := json.Marshal(failed)
	if err != nil {
		t.Fatalf("marshal failed envelope: %v", err)
	}
	if !strings.Contains(string(data), `"router_output": "ROUTING FAILED"`) &&
		!strings.Contains(string(data), `"router_output":"ROUTING FAILED"`) {
		t.Fatalf("expected routing failure sentinel, got %s", data)
	}
	if !strings.Contains(string(data), `"solver_output":null`) {
		t.Fatalf("expected null solver output, got %s", data)
	}

	ok := ResultEnvelope{
		OriginalTicket: Ticket{TicketID: "TKT-2"},
		RouterOutput:   &RoutingSlip{Category: CategoryQuery, Urgency: UrgencyLow, Summary: "s"},
		SolverOutput:   &SolverResult{Status: SolverSuccess, Solver: "QuerySolver", Data: GeneralTriage{TriageSummary: "s", RecommendedNextStep: "n", AssignedTeam: TeamGeneralTriage}},
	}
	data, err = json.Marshal(ok)
	if err != nil {
		t.Fatalf("marshal successful envelope: %v", err)
	}
	if !strings.Contains(string(data), `"category":"QUERY"`) {
		t.Fatalf("expected routing slip in router_output, got %s", data)
	}
	if strings.Contains(string(data), routingFailedSentinel) {
		t.Fatalf("sentinel leaked into successful envelope: %s", data)
	}
}
