package entities

import "strconv"

// Ticket is one generated recommendation. Tickets are never persisted.
type Ticket struct {
	Group           int    `json:"group"`
	Digits          Digits `json:"digits"`
	DerivedNumber   string `json:"derived_number"`
	DerivedSuffix   string `json:"derived_suffix"`
	AlternateGroups []int  `json:"alternate_groups"`
}

// NewTicket builds a ticket and fills in its display hints
func NewTicket(group int, digits Digits) Ticket {
	alternates := make([]int, 0, MaxGroup-MinGroup)
	for g := MinGroup; g <= MaxGroup; g++ {
		if g != group {
			alternates = append(alternates, g)
		}
	}
	return Ticket{
		Group:           group,
		Digits:          digits,
		DerivedNumber:   digits.String(),
		DerivedSuffix:   digits.Suffix(),
		AlternateGroups: alternates,
	}
}

// Key identifies a ticket within a batch
func (t Ticket) Key() string {
	return strconv.Itoa(t.Group) + ":" + t.Digits.String()
}
