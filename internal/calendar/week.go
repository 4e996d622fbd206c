package calendar

// WeekPivotDays returns the first day of the month followed by every
// Siopoia inside the month. Each pivot starts one row of a month grid.
func (c *Calendar) WeekPivotDays(year, month int) []Date {
	first := c.DateFromParts(year, month, 1)
	pivots := []Date{first}

	for d := c.DateFromParts(first.Year, first.Month, DaysPerWeek-first.WeekDayIndex+1); d.Month == first.Month; d = c.DateRelativeTo(d, DaysPerWeek) {
		pivots = append(pivots, d)
	}
	return pivots
}

// WeekDays returns the seven days of the week containing d, Siopoia first.
func (c *Calendar) WeekDays(d Date) [DaysPerWeek]Date {
	var days [DaysPerWeek]Date
	for i := range days {
		days[i] = c.DateRelativeTo(d, i-d.WeekDayIndex)
	}
	return days
}

// DayInWeek returns a day inside week number week of year, counted in
// whole weeks from day 1 of the year.
func (c *Calendar) DayInWeek(year, week int) Date {
	return c.DateRelativeTo(c.DateFromParts(year, 1, 1), DaysPerWeek*(week-1))
}

// WeeksInYear returns the week index of the last day of year.
func (c *Calendar) WeeksInYear(year int) int {
	return c.DateFromParts(year, MonthsPerYear, MonthLength(MonthsPerYear, year)).WeekIndex
}

// AdjacentMonth returns the month delta months away from year/month,
// rolling the year over as needed.
func AdjacentMonth(year, month, delta int) (int, int) {
	total := year*MonthsPerYear + (month - 1) + delta
	return floorDiv(total, MonthsPerYear), mod(total, MonthsPerYear) + 1
}

// WeekPivotDays uses the default Calendar.
func WeekPivotDays(year, month int) []Date {
	return defaultCalendar.WeekPivotDays(year, month)
}

// WeekDays uses the default Calendar.
func WeekDays(d Date) [DaysPerWeek]Date {
	return defaultCalendar.WeekDays(d)
}
