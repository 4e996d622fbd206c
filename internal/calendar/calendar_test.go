package calendar

import (
	"errors"
	"testing"
)

// iterativeDateFromIndex walks forward from the epoch one year at a time.
// It is the reference the closed-form inverse must agree with.
func iterativeDateFromIndex(index int) (year, month, day int) {
	yearDelta := 0
	for days := 0; days < index; yearDelta++ {
		if yearDelta%2 == 0 {
			days += LeapYearDays
		} else {
			days += RegularYearDays
		}
	}
	year = yearDelta - 1

	yearStart := DateFromParts(year, 1, 1).DayIndex
	month = (index - yearStart + 31) / 31
	if month == 13 {
		month = 12
	}
	monthStart := DateFromParts(year, month, 1).DayIndex
	return year, month, index - monthStart + 1
}

func TestMonthLength(t *testing.T) {
	for year := -3; year <= 1625; year++ {
		for month := 1; month <= MonthsPerYear; month++ {
			got := MonthLength(month, year)
			want := 31
			if month == MonthsPerYear && year%2 == 0 {
				want = 32
			}
			if got != want {
				t.Fatalf("MonthLength(%d, %d) = %d, want %d", month, year, got, want)
			}
		}
	}
}

func TestMonthLength_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MonthLength(13, 0) did not panic")
		}
	}()
	MonthLength(13, 0)
}

func TestMonthLengthByName(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		want    int
		wantErr bool
	}{
		{name: "Psychros", year: 1622, want: 31},
		{name: "Chionódis", year: 1622, want: 32},
		{name: "Chionódis", year: 1623, want: 31},
		{name: "January", year: 1622, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthLengthByName(tt.name, tt.year)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMonth) {
					t.Errorf("MonthLengthByName(%q) error = %v, want ErrUnknownMonth", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthLengthByName(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("MonthLengthByName(%q, %d) = %d, want %d", tt.name, tt.year, got, tt.want)
			}
		})
	}
}

func TestYearLength(t *testing.T) {
	if got := YearLength(1622); got != 373 {
		t.Errorf("YearLength(1622) = %d, want 373", got)
	}
	if got := YearLength(1623); got != 372 {
		t.Errorf("YearLength(1623) = %d, want 372", got)
	}
	if got := YearLength(-1); got != 372 {
		t.Errorf("YearLength(-1) = %d, want 372", got)
	}
}

func TestDateFromParts_Epoch(t *testing.T) {
	first := DateFromParts(0, 1, 1)
	if first.DayIndex != 1 {
		t.Errorf("DayIndex of 0/1/1 = %d, want 1", first.DayIndex)
	}

	dec1 := DateFromParts(0, 12, 1)
	if dec1.DayIndex != 342 {
		t.Errorf("DayIndex of 0/12/1 = %d, want 342", dec1.DayIndex)
	}

	last := DateFromParts(0, 12, 32)
	if last.Year != 0 || last.Month != 12 || last.Day != 32 {
		t.Errorf("0/12/32 = %s, want 0/12/32", last)
	}
	if last.DayOfYearIndex != LeapYearDays {
		t.Errorf("DayOfYearIndex of 0/12/32 = %d, want %d", last.DayOfYearIndex, LeapYearDays)
	}
	if last.DayIndex != dec1.DayIndex+31 {
		t.Errorf("DayIndex of 0/12/32 = %d, want %d", last.DayIndex, dec1.DayIndex+31)
	}

	wrapped := DateFromParts(0, 12, 33)
	if wrapped.Year != 1 || wrapped.Month != 1 || wrapped.Day != 1 {
		t.Errorf("0/12/33 = %s, want 1/1/1", wrapped)
	}
	if wrapped.DayIndex != last.DayIndex+1 {
		t.Errorf("DayIndex of 0/12/33 = %d, want %d", wrapped.DayIndex, last.DayIndex+1)
	}
}

func TestDateFromParts_Normalization(t *testing.T) {
	tests := []struct {
		name                string
		year, month, day    int
		wantY, wantM, wantD int
	}{
		{"in range", 1622, 6, 11, 1622, 6, 11},
		{"month 13 wraps to 1", 5, 13, 1, 5, 1, 1},
		{"month 0 is 12", 5, 0, 1, 5, 12, 1},
		{"month -1 is 11", 5, -1, 1, 5, 11, 1},
		{"day 0 is last of previous month", 5, 3, 0, 5, 2, 31},
		{"day -1 is second-to-last of previous month", 5, 3, -1, 5, 2, 30},
		{"day 32 of a 31-day month", 1623, 4, 32, 1623, 5, 1},
		{"day 32 of odd year's last month", 1623, 12, 32, 1624, 1, 1},
		{"day 0 of first month", 1623, 1, 0, 1622, 12, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateFromParts(tt.year, tt.month, tt.day)
			if got.Year != tt.wantY || got.Month != tt.wantM || got.Day != tt.wantD {
				t.Errorf("DateFromParts(%d, %d, %d) = %s, want %d/%d/%d",
					tt.year, tt.month, tt.day, got, tt.wantY, tt.wantM, tt.wantD)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for year := -4; year <= 1630; year++ {
		for month := 1; month <= MonthsPerYear; month++ {
			for day := 1; day <= MonthLength(month, year); day++ {
				d := DateFromParts(year, month, day)
				back := DateFromIndex(d.DayIndex)
				if back != d {
					t.Fatalf("DateFromIndex(%d) = %+v, want %+v", d.DayIndex, back, d)
				}
			}
		}
	}
}

func TestDateFromIndex_MatchesIterative(t *testing.T) {
	for index := 1; index <= 5000; index++ {
		y, m, d := iterativeDateFromIndex(index)
		got := DateFromIndex(index)
		if got.Year != y || got.Month != m || got.Day != d {
			t.Fatalf("DateFromIndex(%d) = %s, want %d/%d/%d", index, got, y, m, d)
		}
		if got.DayIndex != index {
			t.Fatalf("DateFromIndex(%d).DayIndex = %d", index, got.DayIndex)
		}
	}
}

func TestDateFromIndex_BeforeEpoch(t *testing.T) {
	got := DateFromIndex(0)
	if got.Year != -1 || got.Month != 12 || got.Day != 31 {
		t.Errorf("DateFromIndex(0) = %s, want -1/12/31", got)
	}

	got = DateFromIndex(-372)
	if got.Year != -2 || got.Month != 12 || got.Day != 32 {
		t.Errorf("DateFromIndex(-372) = %s, want -2/12/32", got)
	}
}

func TestMonotonicity(t *testing.T) {
	prev := DateFromIndex(-800)
	for index := -799; index <= 3000; index++ {
		d := DateFromIndex(index)
		if d.DayIndex <= prev.DayIndex {
			t.Fatalf("DayIndex not increasing at %d", index)
		}
		switch {
		case d.Year < prev.Year:
			t.Fatalf("year went backwards at index %d: %s after %s", index, d, prev)
		case d.Year == prev.Year && d.DayOfYearIndex != prev.DayOfYearIndex+1:
			t.Fatalf("day of year not consecutive at index %d: %s after %s", index, d, prev)
		case d.Year > prev.Year && (d.Year != prev.Year+1 || d.DayOfYearIndex != 1):
			t.Fatalf("bad year rollover at index %d: %s after %s", index, d, prev)
		}
		prev = d
	}
}

func TestWeekdayCycle(t *testing.T) {
	start := DateFromParts(1622, 1, 1)
	if start.WeekDayIndex != 0 {
		t.Fatalf("1622 starts on weekday %d, want 0 (Siopoia)", start.WeekDayIndex)
	}

	for delta := 0; delta < 800; delta++ {
		d := DateRelativeTo(start, delta)
		if d.WeekDayIndex != delta%DaysPerWeek {
			t.Fatalf("weekday of 1622/1/1 + %d = %d, want %d", delta, d.WeekDayIndex, delta%DaysPerWeek)
		}
		if d.WeekDay() != DayNames[delta%DaysPerWeek] {
			t.Fatalf("WeekDay() = %q, want %q", d.WeekDay(), DayNames[delta%DaysPerWeek])
		}
	}
}

func TestWeekIndex(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             int
	}{
		{1622, 1, 1, 1},
		{1622, 1, 7, 1},
		{1622, 1, 8, 2},
		{1623, 1, 1, 1}, // 1623 starts on an Ildaia
		{1623, 1, 5, 1},
		{1623, 1, 6, 2},
	}

	for _, tt := range tests {
		got := DateFromParts(tt.year, tt.month, tt.day).WeekIndex
		if got != tt.want {
			t.Errorf("WeekIndex of %d/%d/%d = %d, want %d", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestYearStartCache(t *testing.T) {
	c := New()
	if c.starts.Len() != 0 {
		t.Fatalf("new cache has %d entries", c.starts.Len())
	}

	if got := c.YearStartWeekday(1623); got != 2 {
		t.Errorf("YearStartWeekday(1623) = %d, want 2", got)
	}
	c.YearStartWeekday(1623)
	c.DateFromParts(1624, 3, 3)

	if c.starts.Len() != 2 {
		t.Errorf("cache has %d entries, want 2", c.starts.Len())
	}
}

func TestYearStartCache_Bounded(t *testing.T) {
	c := &YearStartCache{weekdays: make(map[int]int), limit: 3}
	fresh := NewYearStartCache()

	for year := 1620; year < 1630; year++ {
		if got, want := c.Weekday(year), fresh.Weekday(year); got != want {
			t.Errorf("Weekday(%d) = %d, want %d", year, got, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("cache has %d entries, want it capped at 3", c.Len())
	}
	if got := c.Weekday(1622); got != 0 {
		t.Errorf("Weekday(1622) past the cap = %d, want 0", got)
	}
}

func TestDomainBoundary(t *testing.T) {
	var maxYear, maxOffset int64 = MaxYear, MaxDayOffset

	for _, year := range []int{int(-maxYear), int(maxYear)} {
		first := DateFromParts(year, 1, 1)
		last := DateFromParts(year, 12, MonthLength(12, year))
		if first.Year != year || last.Year != year {
			t.Fatalf("year %d: got %s and %s", year, first, last)
		}
		if n := last.DayIndex - first.DayIndex + 1; n != YearLength(year) {
			t.Errorf("year %d spans %d days, want %d", year, n, YearLength(year))
		}
		if back := DateFromIndex(first.DayIndex); back != first {
			t.Errorf("DateFromIndex(%d) = %+v, want %+v", first.DayIndex, back, first)
		}
		next := DateFromIndex(last.DayIndex + 1)
		if next.Year != year+1 || next.DayOfYearIndex != 1 {
			t.Errorf("day after %s = %s, want day 1 of %d", last, next, year+1)
		}
		if next.WeekDayIndex != (last.WeekDayIndex+1)%DaysPerWeek {
			t.Errorf("weekday after %s = %d, want %d", last, next.WeekDayIndex, (last.WeekDayIndex+1)%DaysPerWeek)
		}
	}

	for _, index := range []int{int(-maxOffset), int(maxOffset)} {
		d := DateFromIndex(index)
		if d.DayIndex != index {
			t.Errorf("DateFromIndex(%d).DayIndex = %d", index, d.DayIndex)
		}
		if back := DateFromParts(d.Year, d.Month, d.Day); back != d {
			t.Errorf("DateFromParts(%s) = %+v, want %+v", d, back, d)
		}
		if next := DateFromIndex(index + 1); !d.Before(next) || next.DayIndex != index+1 {
			t.Errorf("DateFromIndex(%d) = %s does not follow %s", index+1, next, d)
		}
	}

	base := DateFromParts(int(maxYear), 1, 1)
	if far := DateFromParts(int(maxYear), 1, int(maxOffset)); far.DayIndex != base.DayIndex+int(maxOffset)-1 {
		t.Errorf("carry forward: DayIndex = %d, want %d", far.DayIndex, base.DayIndex+int(maxOffset)-1)
	}
	if far := DateFromParts(int(maxYear), 1, int(-maxOffset)); far.DayIndex != base.DayIndex-int(maxOffset)-1 {
		t.Errorf("carry backward: DayIndex = %d, want %d", far.DayIndex, base.DayIndex-int(maxOffset)-1)
	}
}

func TestInDomain(t *testing.T) {
	tests := []struct {
		n          int64
		year, days bool
	}{
		{0, true, true},
		{MaxYear, true, true},
		{-MaxYear - 1, false, true},
		{MaxDayOffset, false, true},
		{MaxDayOffset + 1, false, false},
		{-9223372036854775808, false, false},
	}

	for _, tt := range tests {
		if got := YearInDomain(tt.n); got != tt.year {
			t.Errorf("YearInDomain(%d) = %v, want %v", tt.n, got, tt.year)
		}
		if got := OffsetInDomain(tt.n); got != tt.days {
			t.Errorf("OffsetInDomain(%d) = %v, want %v", tt.n, got, tt.days)
		}
	}
}

func TestLastOfMonth(t *testing.T) {
	c := Default()

	tests := []struct {
		year, month, offset int
		want                string
	}{
		{1622, 12, 0, "1622/12/32"},
		{1622, 12, -1, "1622/12/31"},
		{1623, 12, 0, "1623/12/31"},
		{1623, 6, -1, "1623/6/30"},
	}

	for _, tt := range tests {
		got := c.LastOfMonth(tt.year, tt.month, tt.offset)
		if got.String() != tt.want {
			t.Errorf("LastOfMonth(%d, %d, %d) = %s, want %s", tt.year, tt.month, tt.offset, got, tt.want)
		}
	}
}

func TestDateStrings(t *testing.T) {
	d := DateFromParts(1622, 6, 11)
	if got := d.ShortString(); got != "1622/6/11" {
		t.Errorf("ShortString() = %q", got)
	}
	// Day 166 of a year starting on a Siopoia.
	if got := d.LongString(); got != "1622 Ilióloustos 11, Abelaia" {
		t.Errorf("LongString() = %q", got)
	}
}

func TestSameWeek(t *testing.T) {
	d := DateFromParts(1622, 1, 10) // weekday 2
	if !d.SameWeek(DateFromParts(1622, 1, 8)) {
		t.Error("1622/1/10 and 1622/1/8 should share a week")
	}
	if !d.SameWeek(DateFromParts(1622, 1, 14)) {
		t.Error("1622/1/10 and 1622/1/14 should share a week")
	}
	if d.SameWeek(DateFromParts(1622, 1, 15)) {
		t.Error("1622/1/10 and 1622/1/15 should not share a week")
	}
}
