package calendar

import (
	"fmt"
	"sync"
)

// Date is a single day of the calendar. All fields are computed once at
// construction and a Date is never mutated afterwards.
type Date struct {
	Year           int `json:"year"`
	Month          int `json:"month"`         // 1-12
	Day            int `json:"day"`           // 1-32
	DayIndex       int `json:"day_index"`     // days since the epoch, 1 = year 0 day 1
	DayOfYearIndex int `json:"day_of_year"`   // 1-based
	WeekDayIndex   int `json:"weekday_index"` // 0-6, 0 = Siopoia
	WeekIndex      int `json:"week_of_year"`  // 1-based
}

// Calendar performs date arithmetic. It owns the year-start weekday cache,
// so a single Calendar should be shared. A Calendar is safe for concurrent use.
type Calendar struct {
	starts *YearStartCache
}

// New creates a Calendar with an empty year-start cache.
func New() *Calendar {
	return &Calendar{starts: NewYearStartCache()}
}

// defaultCalendar backs the package-level helpers.
var defaultCalendar = New()

// Default returns the shared Calendar used by the package-level helpers.
func Default() *Calendar {
	return defaultCalendar
}

// DateFromParts builds a date from year, month and day.
//
// The month is taken modulo 12, with 0 meaning the 12th month; the year is
// not adjusted. A day outside the month carries over relative to day 1 of
// that month: day 0 is the last day of the previous month and day 33 of a
// 32-day month is day 1 of the following month, in the next year if needed.
func (c *Calendar) DateFromParts(year, month, day int) Date {
	month = mod(month, MonthsPerYear)
	if month == 0 {
		month = MonthsPerYear
	}

	if day < 1 || day > MonthLength(month, year) {
		first := c.build(year, month, 1)
		return c.DateFromIndex(first.DayIndex + day - 1)
	}
	return c.build(year, month, day)
}

// DateFromIndex returns the date with the given day index. It is the
// inverse of DateFromParts for every valid date.
func (c *Calendar) DateFromIndex(index int) Date {
	cycle := floorDiv(index-1, CycleDays)
	rem := (index - 1) - cycle*CycleDays

	year := 2 * cycle
	if rem >= LeapYearDays {
		year++
		rem -= LeapYearDays
	}

	dayOfYear := rem + 1
	month := (dayOfYear-1)/31 + 1
	if month > MonthsPerYear {
		// Leap day
		month = MonthsPerYear
	}
	return c.build(year, month, dayOfYear-31*(month-1))
}

// DateRelativeTo returns the date delta days after d (before, if negative).
func (c *Calendar) DateRelativeTo(d Date, delta int) Date {
	return c.DateFromIndex(d.DayIndex + delta)
}

// LastOfMonth returns the last day of the month shifted by offset days,
// so an offset of -1 is the second-to-last day.
func (c *Calendar) LastOfMonth(year, month, offset int) Date {
	first := c.DateFromParts(year, month, 1)
	return c.DateFromParts(first.Year, first.Month, MonthLength(first.Month, first.Year)+offset)
}

// YearStartWeekday returns the weekday index of day 1 of year.
func (c *Calendar) YearStartWeekday(year int) int {
	return c.starts.Weekday(year)
}

// build computes every derived field of an in-range date.
func (c *Calendar) build(year, month, day int) Date {
	dayOfYear := 31*(month-1) + day
	dayIndex := yearStartIndex(year) + dayOfYear

	return Date{
		Year:           year,
		Month:          month,
		Day:            day,
		DayIndex:       dayIndex,
		DayOfYearIndex: dayOfYear,
		WeekDayIndex:   mod(dayIndex+weekOffset-1, DaysPerWeek),
		WeekIndex:      (dayOfYear + c.starts.Weekday(year) + DaysPerWeek - 1) / DaysPerWeek,
	}
}

// DateFromParts builds a date using the default Calendar.
func DateFromParts(year, month, day int) Date {
	return defaultCalendar.DateFromParts(year, month, day)
}

// DateFromIndex returns the date for a day index using the default Calendar.
func DateFromIndex(index int) Date {
	return defaultCalendar.DateFromIndex(index)
}

// DateRelativeTo shifts d by delta days using the default Calendar.
func DateRelativeTo(d Date, delta int) Date {
	return defaultCalendar.DateRelativeTo(d, delta)
}

// MonthName returns the name of the date's month.
func (d Date) MonthName() string {
	return MonthNames[d.Month-1]
}

// WeekDay returns the name of the date's weekday.
func (d Date) WeekDay() string {
	return DayNames[d.WeekDayIndex]
}

// Equal reports whether both dates are the same day.
func (d Date) Equal(other Date) bool {
	return d.DayIndex == other.DayIndex
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.DayIndex < other.DayIndex
}

// SameWeek reports whether other falls in the same Siopoia-to-Ur-Khaia week as d.
func (d Date) SameWeek(other Date) bool {
	start := d.DayIndex - d.WeekDayIndex
	return start <= other.DayIndex && start+DaysPerWeek > other.DayIndex
}

// FirstOfMonth returns day 1 of the date's month.
func (d Date) FirstOfMonth() Date {
	return DateFromParts(d.Year, d.Month, 1)
}

// LastOfMonth returns the last day of the date's month.
func (d Date) LastOfMonth() Date {
	return DateFromParts(d.Year, d.Month, MonthLength(d.Month, d.Year))
}

// MoonPhases returns the phase of every configured moon on this date.
func (d Date) MoonPhases() []MoonPhase {
	return PhasesOn(d.DayIndex)
}

// ShortString formats the date as "year/month/day".
func (d Date) ShortString() string {
	return fmt.Sprintf("%d/%d/%d", d.Year, d.Month, d.Day)
}

// LongString formats the date as "year MonthName day, WeekDay".
func (d Date) LongString() string {
	return fmt.Sprintf("%d %s %d, %s", d.Year, d.MonthName(), d.Day, d.WeekDay())
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return d.ShortString()
}

// MaxCachedYears caps the number of years a YearStartCache stores.
const MaxCachedYears = 4096

// YearStartCache memoises the weekday of day 1 for each year. Entries are
// inserted on first use and never change or expire. Once MaxCachedYears
// years are stored, further years are computed on every call instead of
// being added, so a client walking through distinct years cannot grow the
// cache without limit.
type YearStartCache struct {
	mu       sync.RWMutex
	weekdays map[int]int
	limit    int
}

// NewYearStartCache creates an empty cache holding up to MaxCachedYears.
func NewYearStartCache() *YearStartCache {
	return &YearStartCache{weekdays: make(map[int]int), limit: MaxCachedYears}
}

// Weekday returns the weekday index of day 1 of year.
func (c *YearStartCache) Weekday(year int) int {
	c.mu.RLock()
	wd, ok := c.weekdays[year]
	c.mu.RUnlock()
	if ok {
		return wd
	}

	wd = mod(yearStartIndex(year)+weekOffset, DaysPerWeek)

	c.mu.Lock()
	if existing, ok := c.weekdays[year]; ok {
		wd = existing
	} else if len(c.weekdays) < c.limit {
		c.weekdays[year] = wd
	}
	c.mu.Unlock()
	return wd
}

// Len returns the number of cached years.
func (c *YearStartCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.weekdays)
}
