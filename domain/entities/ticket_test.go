package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTicket(t *testing.T) {
	t.Parallel()

	for group := MinGroup; group <= MaxGroup; group++ {
		ticket := NewTicket(group, Digits{1, 2, 3, 4, 5, 6})

		assert.Equal(t, "123456", ticket.DerivedNumber)
		assert.Equal(t, "23456", ticket.DerivedSuffix)
		assert.Len(t, ticket.AlternateGroups, 4)
		assert.NotContains(t, ticket.AlternateGroups, group)
	}
}

func TestTicket_Key(t *testing.T) {
	t.Parallel()

	a := NewTicket(1, Digits{0, 0, 0, 0, 0, 1})
	b := NewTicket(2, Digits{0, 0, 0, 0, 0, 1})

	assert.Equal(t, "1:000001", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}
