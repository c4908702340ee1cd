package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTickets reads the inbound ticket snapshot: a JSON array of ticket
// records, processed in file order.
func LoadTickets(path string) ([]Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tickets file %s: %w", path, err)
	}
	var tickets []Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("parsing tickets file %s: %w", path, err)
	}
	return tickets, nil
}
