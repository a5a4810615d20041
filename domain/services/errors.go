package services

import "errors"

var (
	// ErrNoDrawsFound means the page did not contain a single primary record.
	// Either the source layout changed or the fetch returned an unrelated page.
	ErrNoDrawsFound = errors.New("no draw records found: source format changed or unreachable")

	// ErrNoHistory is returned when recommendations are requested on top of zero rounds
	ErrNoHistory = errors.New("no draw history to recommend from")

	// ErrInvalidTicketCount is returned for a non-positive ticket count
	ErrInvalidTicketCount = errors.New("ticket count must be positive")
)
