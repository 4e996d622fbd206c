package api

import (
	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
)

// EventView is an occurrence as shown on a day.
type EventView struct {
	Title  string   `json:"title,omitempty"`
	Detail string   `json:"detail,omitempty"`
	Tags   []string `json:"tags"`
}

// DayView is a single day with its moons and occurrences.
type DayView struct {
	calendar.Date
	MonthName string               `json:"month_name"`
	WeekDay   string               `json:"weekday"`
	Short     string               `json:"short"`
	Long      string               `json:"long"`
	Moons     []calendar.MoonPhase `json:"moons"`
	Events    []EventView          `json:"events"`
	Tags      []string             `json:"tags"`
}

// DayCell is one filled cell of a month grid.
type DayCell struct {
	Day          int      `json:"day"`
	DayIndex     int      `json:"day_index"`
	WeekDayIndex int      `json:"weekday_index"`
	Titles       []string `json:"titles"`
	Tags         []string `json:"tags"`
}

// WeekRow is one row of a month grid. Cells outside the month are null.
type WeekRow struct {
	Week int                            `json:"week"`
	Days [calendar.DaysPerWeek]*DayCell `json:"days"`
}

// MonthRef points at a month.
type MonthRef struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Name  string `json:"name"`
}

// MonthView is a month laid out in week rows.
type MonthView struct {
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Name         string    `json:"name"`
	Length       int       `json:"length"`
	FirstWeekday int       `json:"first_weekday"`
	Weeks        []WeekRow `json:"weeks"`
	Prev         MonthRef  `json:"prev"`
	Next         MonthRef  `json:"next"`
}

// WeekRef points at a week.
type WeekRef struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// WeekView is the seven days of one week.
type WeekView struct {
	Year  int       `json:"year"`
	Week  int       `json:"week"`
	First string    `json:"first"`
	Last  string    `json:"last"`
	Days  []DayView `json:"days"`
	Prev  WeekRef   `json:"prev"`
	Next  WeekRef   `json:"next"`
}

// YearView is a whole year as twelve month grids.
type YearView struct {
	Year             int         `json:"year"`
	Leap             bool        `json:"leap"`
	Length           int         `json:"length"`
	FirstWeekday     int         `json:"first_weekday"`
	FirstWeekdayName string      `json:"first_weekday_name"`
	Weeks            int         `json:"weeks"`
	Months           []MonthView `json:"months"`
}

// MarkedDay is one entry of a year's events index.
type MarkedDay struct {
	DayIndex int         `json:"day_index"`
	Date     string      `json:"date"`
	WeekDay  string      `json:"weekday"`
	Events   []EventView `json:"events"`
}

// YearEventsView lists a year's marked days in order.
type YearEventsView struct {
	Year int         `json:"year"`
	Days []MarkedDay `json:"days"`
}

// CalendarView describes the calendar itself.
type CalendarView struct {
	Year         int             `json:"year"`
	Leap         bool            `json:"leap"`
	YearLength   int             `json:"year_length"`
	DayNames     []string        `json:"day_names"`
	MonthNames   []string        `json:"month_names"`
	MonthLengths []int           `json:"month_lengths"`
	Moons        []calendar.Moon `json:"moons"`
}

func eventViews(occ []events.Occurrence) []EventView {
	views := make([]EventView, 0, len(occ))
	for _, o := range occ {
		views = append(views, EventView{Title: o.Title, Detail: o.Detail, Tags: orEmpty(o.Tags)})
	}
	return views
}

func newDayView(d calendar.Date, marked events.MarkedDates) DayView {
	return DayView{
		Date:      d,
		MonthName: d.MonthName(),
		WeekDay:   d.WeekDay(),
		Short:     d.ShortString(),
		Long:      d.LongString(),
		Moons:     d.MoonPhases(),
		Events:    eventViews(marked.On(d.DayIndex)),
		Tags:      orEmpty(marked.Tags(d.DayIndex)),
	}
}

func newMonthView(cal *calendar.Calendar, year, month int, marked events.MarkedDates) MonthView {
	first := cal.DateFromParts(year, month, 1)
	view := MonthView{
		Year:         year,
		Month:        month,
		Name:         first.MonthName(),
		Length:       calendar.MonthLength(month, year),
		FirstWeekday: first.WeekDayIndex,
	}

	for _, pivot := range cal.WeekPivotDays(year, month) {
		row := WeekRow{Week: pivot.WeekIndex}
		for i, d := range cal.WeekDays(pivot) {
			if d.Month != month || d.Year != year {
				continue
			}
			row.Days[i] = &DayCell{
				Day:          d.Day,
				DayIndex:     d.DayIndex,
				WeekDayIndex: d.WeekDayIndex,
				Titles:       orEmpty(marked.Titles(d.DayIndex)),
				Tags:         orEmpty(marked.Tags(d.DayIndex)),
			}
		}
		view.Weeks = append(view.Weeks, row)
	}

	view.Prev = monthRef(calendar.AdjacentMonth(year, month, -1))
	view.Next = monthRef(calendar.AdjacentMonth(year, month, 1))
	return view
}

func monthRef(year, month int) MonthRef {
	return MonthRef{Year: year, Month: month, Name: calendar.MonthNames[month-1]}
}

func newYearEventsView(year int, marked events.MarkedDates) YearEventsView {
	view := YearEventsView{Year: year, Days: []MarkedDay{}}
	for _, idx := range marked.DayIndexes() {
		occ := marked.On(idx)
		d := occ[0].Date
		view.Days = append(view.Days, MarkedDay{
			DayIndex: idx,
			Date:     d.ShortString(),
			WeekDay:  d.WeekDay(),
			Events:   eventViews(occ),
		})
	}
	return view
}

func newCalendarView(year int) CalendarView {
	view := CalendarView{
		Year:       year,
		Leap:       calendar.IsLeapYear(year),
		YearLength: calendar.YearLength(year),
		DayNames:   calendar.DayNames[:],
		MonthNames: calendar.MonthNames[:],
		Moons:      calendar.Moons,
	}
	for m := 1; m <= calendar.MonthsPerYear; m++ {
		view.MonthLengths = append(view.MonthLengths, calendar.MonthLength(m, year))
	}
	return view
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
