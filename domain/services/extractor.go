package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"pension720/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxBonusGap is the widest character gap between the end of a primary
// record and the start of the bonus record that still counts as adjacent
const DefaultMaxBonusGap = 250

var (
	// <round>회 <YYYY.MM.DD> 1등 <group> <d1..d6> <winners>
	primaryPattern = regexp.MustCompile(
		`(\d+)\s*회\s*(\d{4}\.\d{1,2}\.\d{1,2})\.?\s*1등\s*([1-5])\s*조?\s+` +
			`(\d)\s*(\d)\s*(\d)\s*(\d)\s*(\d)\s*(\d)\s+(\d[\d,]*)`)

	// 보너스 각조 <d1..d6> <winners>
	bonusPattern = regexp.MustCompile(
		`보너스\s*각조\s+(\d)\s*(\d)\s*(\d)\s*(\d)\s*(\d)\s*(\d)\s+(\d[\d,]*)`)
)

// ExtractionStats summarizes one extraction pass
type ExtractionStats struct {
	PrimaryMatches int
	BonusMatches   int
	BonusAttached  int
	UndatedRecords int
}

// DrawExtractor recovers draw records from normalized page text
type DrawExtractor struct {
	maxBonusGap int
}

// NewDrawExtractor creates an extractor; a non-positive gap falls back to DefaultMaxBonusGap
func NewDrawExtractor(maxBonusGap int) *DrawExtractor {
	if maxBonusGap <= 0 {
		maxBonusGap = DefaultMaxBonusGap
	}
	return &DrawExtractor{maxBonusGap: maxBonusGap}
}

// MaxBonusGap returns the configured association distance
func (e *DrawExtractor) MaxBonusGap() int {
	return e.maxBonusGap
}

// Extract scans the whole text for primary and bonus records and pairs every
// primary record with the nearest following bonus record within range.
// The result is duplicate free and ordered by ascending round.
func (e *DrawExtractor) Extract(text, provenance string) ([]entities.DrawRecord, ExtractionStats, error) {
	var stats ExtractionStats

	primaries := primaryPattern.FindAllStringSubmatchIndex(text, -1)
	bonuses := bonusPattern.FindAllStringSubmatchIndex(text, -1)
	stats.PrimaryMatches = len(primaries)
	stats.BonusMatches = len(bonuses)

	if len(primaries) == 0 {
		return nil, stats, ErrNoDrawsFound
	}

	byRound := make(map[int]entities.DrawRecord, len(primaries))
	cursor := 0

	for _, pm := range primaries {
		record, err := parsePrimary(text, pm)
		if err != nil {
			log.WithError(err).WithField("match", text[pm[0]:pm[1]]).Warn("Skipping malformed primary record")
			continue
		}
		record.Provenance = provenance
		if record.Date == nil {
			stats.UndatedRecords++
		}

		primaryEnd := pm[1]
		for cursor < len(bonuses) && bonuses[cursor][0] < primaryEnd {
			cursor++
		}

		if cursor < len(bonuses) {
			bonusStart := bonuses[cursor][0]
			// gap is measured in characters, not bytes
			gap := utf8.RuneCountInString(text[primaryEnd:bonusStart])
			if gap <= e.maxBonusGap {
				bonus, err := parseBonus(text, bonuses[cursor])
				if err != nil {
					log.WithError(err).WithField("round", record.Round).Warn("Skipping malformed bonus record")
				} else {
					record.Bonus = bonus
					stats.BonusAttached++
				}
				cursor++
			}
		}

		if record.Bonus == nil {
			log.WithField("round", record.Round).Debug("No bonus record within range")
		}

		// later occurrences overwrite earlier ones for the same round
		byRound[record.Round] = record
	}

	if len(byRound) == 0 {
		return nil, stats, ErrNoDrawsFound
	}

	records := make([]entities.DrawRecord, 0, len(byRound))
	for _, r := range byRound {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Round < records[j].Round
	})

	log.WithFields(log.Fields{
		"primary_matches": stats.PrimaryMatches,
		"bonus_matches":   stats.BonusMatches,
		"bonus_attached":  stats.BonusAttached,
		"records":         len(records),
	}).Info("Draw extraction complete")

	return records, stats, nil
}

// parsePrimary builds a record from a primaryPattern submatch index slice
func parsePrimary(text string, m []int) (entities.DrawRecord, error) {
	group := func(i int) string {
		return text[m[2*i]:m[2*i+1]]
	}

	round, err := strconv.Atoi(group(1))
	if err != nil {
		return entities.DrawRecord{}, fmt.Errorf("failed to parse round: %w", err)
	}

	grp, err := strconv.Atoi(group(3))
	if err != nil {
		return entities.DrawRecord{}, fmt.Errorf("failed to parse group: %w", err)
	}

	digits, err := entities.ParseDigits([]string{group(4), group(5), group(6), group(7), group(8), group(9)})
	if err != nil {
		return entities.DrawRecord{}, err
	}

	winners, err := parseWinnerCount(group(10))
	if err != nil {
		return entities.DrawRecord{}, err
	}

	record := entities.DrawRecord{
		Round:   round,
		Date:    parseDrawDate(group(2)),
		Primary: entities.PrimaryResult{Group: grp, Digits: digits, WinnerCount: winners},
	}
	return record, record.Validate()
}

// parseBonus builds a bonus result from a bonusPattern submatch index slice
func parseBonus(text string, m []int) (*entities.BonusResult, error) {
	group := func(i int) string {
		return text[m[2*i]:m[2*i+1]]
	}

	digits, err := entities.ParseDigits([]string{group(1), group(2), group(3), group(4), group(5), group(6)})
	if err != nil {
		return nil, err
	}

	winners, err := parseWinnerCount(group(7))
	if err != nil {
		return nil, err
	}

	return &entities.BonusResult{Digits: digits, WinnerCount: winners}, nil
}

func parseWinnerCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("failed to parse winner count %q: %w", s, err)
	}
	return n, nil
}

// parseDrawDate returns nil when the token is not a real YYYY.MM.DD date
func parseDrawDate(s string) *time.Time {
	d, err := time.Parse("2006.1.2", s)
	if err != nil {
		return nil
	}
	return &d
}
