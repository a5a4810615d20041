package services

import (
	"time"

	"pension720/domain/entities"
)

// newTestRecord builds a valid record; digits are given as a six character string
func newTestRecord(round, group int, digits string, opts ...func(*entities.DrawRecord)) entities.DrawRecord {
	var d entities.Digits
	for i := range d {
		d[i] = int(digits[i] - '0')
	}
	date := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*round)
	r := entities.DrawRecord{
		Round:   round,
		Date:    &date,
		Primary: entities.PrimaryResult{Group: group, Digits: d, WinnerCount: 1},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withBonus(digits string) func(*entities.DrawRecord) {
	return func(r *entities.DrawRecord) {
		var d entities.Digits
		for i := range d {
			d[i] = int(digits[i] - '0')
		}
		r.Bonus = &entities.BonusResult{Digits: d, WinnerCount: 10}
	}
}

// sampleHistory is a small but varied history used by aggregation and generation tests
func sampleHistory() []entities.DrawRecord {
	return []entities.DrawRecord{
		newTestRecord(1, 3, "123456", withBonus("654321")),
		newTestRecord(2, 1, "987654"),
		newTestRecord(3, 3, "123450", withBonus("000111")),
		newTestRecord(4, 5, "555555"),
		newTestRecord(5, 2, "102938", withBonus("564738")),
		newTestRecord(6, 4, "471625"),
		newTestRecord(7, 3, "823456"),
		newTestRecord(8, 1, "019283"),
		newTestRecord(9, 4, "364738", withBonus("192837")),
		newTestRecord(10, 2, "746352"),
	}
}
