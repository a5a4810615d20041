package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DigitCount is the length of every drawn number
	DigitCount = 6

	// SuffixLength is the number of trailing digits that form a suffix
	SuffixLength = 5

	// MinGroup and MaxGroup bound the group a primary result belongs to
	MinGroup = 1
	MaxGroup = 5
)

// Digits is a six digit drawn number, most significant digit first
type Digits [DigitCount]int

// String returns the digits concatenated, e.g. "639566"
func (d Digits) String() string {
	var b strings.Builder
	b.Grow(DigitCount)
	for _, v := range d {
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Suffix returns the last five digits concatenated
func (d Digits) Suffix() string {
	return d.String()[DigitCount-SuffixLength:]
}

// Validate checks that every element is a single base-10 digit
func (d Digits) Validate() error {
	for i, v := range d {
		if v < 0 || v > 9 {
			return fmt.Errorf("digit at position %d out of range: %d", i+1, v)
		}
	}
	return nil
}

// ParseDigits builds Digits from six single-digit strings
func ParseDigits(parts []string) (Digits, error) {
	var d Digits
	if len(parts) != DigitCount {
		return d, fmt.Errorf("expected %d digits, got %d", DigitCount, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return d, fmt.Errorf("failed to parse digit %q: %w", p, err)
		}
		d[i] = v
	}
	return d, d.Validate()
}

// PrimaryResult is the first prize result of a round
type PrimaryResult struct {
	Group       int    `json:"group"`
	Digits      Digits `json:"digits"`
	WinnerCount int    `json:"winner_count"`
}

// BonusResult is the bonus result shared by every group
type BonusResult struct {
	Digits      Digits `json:"digits"`
	WinnerCount int    `json:"winner_count"`
}

// DrawRecord represents one historical round
type DrawRecord struct {
	Round      int           `json:"round" db:"round"`
	Date       *time.Time    `json:"date,omitempty" db:"draw_date"` // nil when the page did not carry a parseable date
	Primary    PrimaryResult `json:"primary"`
	Bonus      *BonusResult  `json:"bonus,omitempty"` // nil when no bonus line could be associated
	Provenance string        `json:"provenance,omitempty" db:"provenance"`
}

// HasBonus returns true if a bonus result was associated with the round
func (r *DrawRecord) HasBonus() bool {
	return r.Bonus != nil
}

// Validate checks the record invariants
func (r *DrawRecord) Validate() error {
	if r.Round <= 0 {
		return fmt.Errorf("round must be positive, got %d", r.Round)
	}
	if r.Primary.Group < MinGroup || r.Primary.Group > MaxGroup {
		return fmt.Errorf("round %d: group out of range: %d", r.Round, r.Primary.Group)
	}
	if err := r.Primary.Digits.Validate(); err != nil {
		return fmt.Errorf("round %d: primary: %w", r.Round, err)
	}
	if r.Primary.WinnerCount < 0 {
		return fmt.Errorf("round %d: negative winner count", r.Round)
	}
	if r.Bonus != nil {
		if err := r.Bonus.Digits.Validate(); err != nil {
			return fmt.Errorf("round %d: bonus: %w", r.Round, err)
		}
		if r.Bonus.WinnerCount < 0 {
			return fmt.Errorf("round %d: negative bonus winner count", r.Round)
		}
	}
	return nil
}

// FormatDate returns the draw date as YYYY-MM-DD, or "-" when unknown
func (r *DrawRecord) FormatDate() string {
	if r.Date == nil {
		return "-"
	}
	return r.Date.Format("2006-01-02")
}
