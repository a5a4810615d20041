package services

import (
	"fmt"

	"pension720/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxCollisionRetries bounds how often a duplicate ticket is perturbed
// before it is accepted as is
const DefaultMaxCollisionRetries = 20

// dimension ids fed to the mixer; positions use 1..6
const dimensionGroup uint32 = 0

// Output tier modes fed to the mixer
const (
	TierTop  uint32 = 1
	TierFive uint32 = 5
	TierTen  uint32 = 10
)

// RankBand is a [Start, End) window over a ranking
type RankBand struct {
	Start int
	End   int
}

func (b RankBand) span() int {
	if b.End-b.Start < 1 {
		return 1
	}
	return b.End - b.Start
}

// pick maps a mixed value into the band
func (b RankBand) pick(mixed uint32) int {
	return b.Start + int(mixed%uint32(b.span()))
}

// BandPair holds the group window and the digit window used by one output slot
type BandPair struct {
	Group RankBand
	Digit RankBand
}

var (
	topBands = []BandPair{
		{Group: RankBand{0, 1}, Digit: RankBand{0, 1}},
	}

	fiveBands = []BandPair{
		{Group: RankBand{0, 2}, Digit: RankBand{0, 3}},
		{Group: RankBand{0, 3}, Digit: RankBand{1, 4}},
		{Group: RankBand{1, 3}, Digit: RankBand{2, 5}},
		{Group: RankBand{1, 4}, Digit: RankBand{3, 7}},
		{Group: RankBand{2, 5}, Digit: RankBand{5, 10}},
	}

	tenBands = []BandPair{
		{Group: RankBand{0, 1}, Digit: RankBand{0, 2}},
		{Group: RankBand{0, 2}, Digit: RankBand{0, 3}},
		{Group: RankBand{0, 2}, Digit: RankBand{1, 3}},
		{Group: RankBand{1, 3}, Digit: RankBand{1, 4}},
		{Group: RankBand{1, 3}, Digit: RankBand{2, 5}},
		{Group: RankBand{2, 4}, Digit: RankBand{3, 6}},
		{Group: RankBand{2, 4}, Digit: RankBand{4, 7}},
		{Group: RankBand{3, 5}, Digit: RankBand{5, 8}},
		{Group: RankBand{3, 5}, Digit: RankBand{6, 9}},
		{Group: RankBand{4, 5}, Digit: RankBand{7, 10}},
	}
)

// BandPolicy returns the tier mode and the band table used for n tickets.
// A single ticket always takes the top rank, up to five tickets use the five
// band table and anything larger cycles through the ten band table.
func BandPolicy(n int) (uint32, []BandPair) {
	switch {
	case n <= 1:
		return TierTop, topBands
	case n <= 5:
		return TierFive, fiveBands
	default:
		return TierTen, tenBands
	}
}

// GeneratorOption customizes a TicketGenerator
type GeneratorOption func(*TicketGenerator)

// WithMaxCollisionRetries overrides the collision retry budget
func WithMaxCollisionRetries(n int) GeneratorOption {
	return func(g *TicketGenerator) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithBandPolicy replaces the default band policy
func WithBandPolicy(policy func(n int) (uint32, []BandPair)) GeneratorOption {
	return func(g *TicketGenerator) {
		if policy != nil {
			g.policy = policy
		}
	}
}

// TicketGenerator derives recommendation tickets from a frequency table.
// Output depends only on (table, n, cycle, seed).
type TicketGenerator struct {
	maxRetries int
	policy     func(n int) (uint32, []BandPair)
}

// NewTicketGenerator creates a generator with the default band policy
func NewTicketGenerator(opts ...GeneratorOption) *TicketGenerator {
	g := &TicketGenerator{
		maxRetries: DefaultMaxCollisionRetries,
		policy:     BandPolicy,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces exactly n tickets
func (g *TicketGenerator) Generate(table *entities.FrequencyTable, n int, cycle int64, seed string) ([]entities.Ticket, error) {
	if table.IsEmpty() {
		return nil, ErrNoHistory
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTicketCount, n)
	}
	if len(table.Groups.Ranking) == 0 {
		return nil, fmt.Errorf("frequency table has no group ranking")
	}
	for p := range table.Positions {
		if len(table.Positions[p].Ranking) == 0 {
			return nil, fmt.Errorf("frequency table has no ranking for position %d", p+1)
		}
	}

	mode, bands := g.policy(n)
	if len(bands) == 0 {
		return nil, fmt.Errorf("band policy returned no bands for %d tickets", n)
	}

	seedHash := SeedHash(seed)
	maxRound := uint32(table.MaxRound)
	cycleBits := uint32(cycle) ^ uint32(uint64(cycle)>>32)

	tickets := make([]entities.Ticket, 0, n)
	seen := make(map[string]bool, n)

	for slot := 0; slot < n; slot++ {
		band := bands[slot%len(bands)]
		mix := func(dimension uint32) uint32 {
			return Mix32(seedHash, maxRound, cycleBits, uint32(slot), mode, dimension)
		}

		groupRanking := table.Groups.Ranking
		group := groupRanking[band.Group.pick(mix(dimensionGroup))%len(groupRanking)]

		var digits entities.Digits
		ranks := [entities.DigitCount]int{}
		for p := 0; p < entities.DigitCount; p++ {
			ranking := table.Positions[p].Ranking
			ranks[p] = band.Digit.pick(mix(uint32(p + 1)))
			digits[p] = ranking[ranks[p]%len(ranking)]
		}

		ticket := entities.NewTicket(group, digits)
		last := entities.DigitCount - 1
		lastRanking := table.Positions[last].Ranking
		for attempt := 0; seen[ticket.Key()] && attempt < g.maxRetries; attempt++ {
			ranks[last]++
			digits[last] = lastRanking[ranks[last]%len(lastRanking)]
			ticket = entities.NewTicket(group, digits)
		}
		if seen[ticket.Key()] {
			log.WithFields(log.Fields{
				"slot":   slot,
				"ticket": ticket.Key(),
			}).Warn("Collision retry budget exhausted, keeping duplicate ticket")
		}

		seen[ticket.Key()] = true
		tickets = append(tickets, ticket)
	}

	return tickets, nil
}
