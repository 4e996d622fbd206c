// Package calendar provides the Yphilios calendar arithmetic.
//
// The calendar has twelve 31-day months and a seven-day week. The last
// month gains a 32nd day in even years, so a two-year cycle is always
// 745 days long. Days are identified by a linear day index: index 1 is
// the first day of year 0.
//
// Arithmetic is plain int arithmetic. Round trips between parts and day
// indexes, monotonicity and the weekday cycle hold for years within
// ±MaxYear and for day numbers, day indexes and offsets within
// ±MaxDayOffset; every intermediate value then stays far below the int64
// limits. Outside that domain results may wrap, so callers handling
// untrusted input check it with YearInDomain and OffsetInDomain first.
package calendar

import (
	"errors"
	"fmt"
)

// Calendar constants
const (
	// MonthsPerYear is the number of months in every year.
	MonthsPerYear = 12

	// DaysPerWeek is the length of the weekly cycle.
	DaysPerWeek = 7

	// RegularYearDays is the length of an odd year.
	RegularYearDays = 372

	// LeapYearDays is the length of an even year.
	LeapYearDays = 373

	// CycleDays is the length of one leap/regular year pair.
	CycleDays = RegularYearDays + LeapYearDays

	// weekOffset anchors weekdays to the epoch. Year 1622 starts on a Siopoia.
	weekOffset = 3
)

// Domain of the arithmetic, see the package documentation.
const (
	MaxYear      = 1_000_000_000
	MaxDayOffset = 1_000_000_000_000
)

// YearInDomain reports whether year is within ±MaxYear.
func YearInDomain(year int64) bool {
	return year >= -MaxYear && year <= MaxYear
}

// OffsetInDomain reports whether a day number, day index or day offset is
// within ±MaxDayOffset.
func OffsetInDomain(n int64) bool {
	return n >= -MaxDayOffset && n <= MaxDayOffset
}

var (
	// ErrUnknownMonth is returned when a month name is not in the month table.
	ErrUnknownMonth = errors.New("unknown month")

	// ErrUnknownMoon is returned when a moon name is not configured.
	ErrUnknownMoon = errors.New("unknown moon")

	// ErrInvalidPeriod is returned for a moon with a non-positive period.
	ErrInvalidPeriod = errors.New("moon period must be positive")
)

// DayNames lists the weekdays, indexed by WeekDayIndex.
var DayNames = [DaysPerWeek]string{
	"Siopoia",
	"Durgoia",
	"Ildaia",
	"Ómuria",
	"Abelaia",
	"Rautayrgoia",
	"Ur-Khaia",
}

// MonthNames lists the months; month m is MonthNames[m-1].
var MonthNames = [MonthsPerYear]string{
	"Psychros",
	"Laspoménos",
	"Anemódis",
	"Brocheros",
	"Zestos",
	"Ilióloustos",
	"Xiros",
	"Katáxiros",
	"Psychóntas",
	"Scoteinos",
	"Sevásmios",
	"Chionódis",
}

// monthLengths holds the candidate lengths per month, selected by
// year modulo the number of candidates.
var monthLengths = [MonthsPerYear][]int{
	{31}, {31}, {31}, {31}, {31}, {31},
	{31}, {31}, {31}, {31}, {31},
	{32, 31},
}

// MonthLength returns the number of days in month (1-12) of year.
// It panics if month is out of range.
func MonthLength(month, year int) int {
	if month < 1 || month > MonthsPerYear {
		panic(fmt.Sprintf("calendar: month %d out of range", month))
	}
	lengths := monthLengths[month-1]
	return lengths[mod(year, len(lengths))]
}

// MonthLengthByName returns the number of days in the named month of year.
func MonthLengthByName(name string, year int) (int, error) {
	month, err := MonthByName(name)
	if err != nil {
		return 0, err
	}
	return MonthLength(month, year), nil
}

// MonthByName returns the 1-based index of the named month.
func MonthByName(name string) (int, error) {
	for i, n := range MonthNames {
		if n == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, name)
}

// IsLeapYear reports whether year has a 32-day final month. Even years,
// including the epoch, are leap years.
func IsLeapYear(year int) bool {
	return mod(year, 2) == 0
}

// YearLength returns the number of days in year.
func YearLength(year int) int {
	if IsLeapYear(year) {
		return LeapYearDays
	}
	return RegularYearDays
}

// yearStartIndex returns the day index of the day before day 1 of year.
func yearStartIndex(year int) int {
	elapsedRegularYears := floorDiv(year, 2)
	elapsedLeapYears := elapsedRegularYears + mod(year, 2)
	return RegularYearDays*elapsedRegularYears + LeapYearDays*elapsedLeapYears
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a modulo b in [0, b).
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
