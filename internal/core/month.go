package core

import (
	"fmt"
	"strconv"
)

// MonthRef is a calendar month token in the fixed-width "YYYY-MM" format.
// Because both fields are zero-padded, lexicographic comparison of the
// underlying strings orders tokens chronologically.
type MonthRef string

// NewMonthRef builds a token from a year and a 1-based month.
func NewMonthRef(year, month int) MonthRef {
	return MonthRef(fmt.Sprintf("%04d-%02d", year, month))
}

// ParseMonthRef validates and normalizes a "YYYY-MM" token.
func ParseMonthRef(s string) (MonthRef, error) {
	m := MonthRef(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m MonthRef) Validate() error {
	if len(m) != 7 || m[4] != '-' {
		return ErrInvalidMonth
	}
	year, err := strconv.Atoi(string(m[:4]))
	if err != nil || year < 1 {
		return ErrInvalidMonth
	}
	month, err := strconv.Atoi(string(m[5:]))
	if err != nil || month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Year returns the calendar year of the token.
func (m MonthRef) Year() int {
	y, _ := strconv.Atoi(string(m[:4]))
	return y
}

// MonthNum returns the 1-based month of the token.
func (m MonthRef) MonthNum() int {
	n, _ := strconv.Atoi(string(m[5:]))
	return n
}

// Next advances one month, rolling December over into January of the
// following year.
func (m MonthRef) Next() MonthRef {
	year, month := m.Year(), m.MonthNum()
	month++
	if month > 12 {
		month = 1
		year++
	}
	return NewMonthRef(year, month)
}

// Before reports whether m is strictly earlier than other.
func (m MonthRef) Before(other MonthRef) bool {
	return m < other
}

func (m MonthRef) String() string {
	return string(m)
}
