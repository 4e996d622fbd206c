package calendar

import (
	"fmt"
	"math"
)

// Moon is a celestial body with a fixed phase cycle.
type Moon struct {
	Name   string `json:"name"`
	Period int    `json:"period"` // days per cycle
	Offset int    `json:"offset"` // phase on day index 0
	Color  string `json:"color"`
}

// NewMoon validates and returns a moon.
func NewMoon(name string, period, offset int, color string) (Moon, error) {
	if period <= 0 {
		return Moon{}, fmt.Errorf("%w: %s has period %d", ErrInvalidPeriod, name, period)
	}
	return Moon{Name: name, Period: period, Offset: offset, Color: color}, nil
}

// Moons are the two moons of Yphilios.
var Moons = []Moon{
	{Name: "Aspris", Period: 7, Offset: 3, Color: "#FFFFFF"},
	{Name: "Aimas", Period: 14, Offset: 3, Color: "#FF0000"},
}

// MoonByName looks up a configured moon.
func MoonByName(name string) (Moon, error) {
	for _, m := range Moons {
		if m.Name == name {
			return m, nil
		}
	}
	return Moon{}, fmt.Errorf("%w: %q", ErrUnknownMoon, name)
}

// Phase returns the moon's phase index in [0, Period) on dayIndex.
// Phase 0 is the full moon.
func (m Moon) Phase(dayIndex int) int {
	return mod(dayIndex+m.Offset, m.Period)
}

// PhaseOf returns the phase of the named moon on dayIndex.
func PhaseOf(name string, dayIndex int) (int, error) {
	m, err := MoonByName(name)
	if err != nil {
		return 0, err
	}
	return m.Phase(dayIndex), nil
}

// MoonPhase is a moon's state on one day.
type MoonPhase struct {
	Moon   string `json:"moon"`
	Phase  int    `json:"phase"`
	Period int    `json:"period"`
	Symbol Symbol `json:"symbol"`
	Glyph  string `json:"glyph"`
	Color  string `json:"color"`
}

// PhasesOn returns the phase of every configured moon on dayIndex, in Moons order.
func PhasesOn(dayIndex int) []MoonPhase {
	phases := make([]MoonPhase, 0, len(Moons))
	for _, m := range Moons {
		p := m.Phase(dayIndex)
		sym := PhaseSymbol(p, m.Period)
		phases = append(phases, MoonPhase{
			Moon:   m.Name,
			Phase:  p,
			Period: m.Period,
			Symbol: sym,
			Glyph:  sym.Glyph(),
			Color:  m.Color,
		})
	}
	return phases
}

// Symbol is one of the eight displayed moon phases.
type Symbol string

// Moon phase symbols, in cycle order starting from the full moon.
const (
	SymbolFull           Symbol = "full"
	SymbolWaningGibbous  Symbol = "waning_gibbous"
	SymbolLastQuarter    Symbol = "last_quarter"
	SymbolWaningCrescent Symbol = "waning_crescent"
	SymbolNew            Symbol = "new"
	SymbolWaxingCrescent Symbol = "waxing_crescent"
	SymbolFirstQuarter   Symbol = "first_quarter"
	SymbolWaxingGibbous  Symbol = "waxing_gibbous"
)

// glyphs use text presentation and the calendar's inverted disc convention.
var glyphs = map[Symbol]string{
	SymbolFull:           "\U0001F311\uFE0E",
	SymbolWaningGibbous:  "\U0001F312\uFE0E",
	SymbolLastQuarter:    "\U0001F313\uFE0E",
	SymbolWaningCrescent: "\U0001F314\uFE0E",
	SymbolNew:            "\U0001F315\uFE0E",
	SymbolWaxingCrescent: "\U0001F316\uFE0E",
	SymbolFirstQuarter:   "\U0001F317\uFE0E",
	SymbolWaxingGibbous:  "\U0001F318\uFE0E",
}

// Glyph returns the display character for the symbol.
func (s Symbol) Glyph() string {
	return glyphs[s]
}

// PhaseSymbol classifies a phase of a moon with the given period.
//
// With an even period the full and new moons last two days; with an odd
// period they last one day and the new moon falls just before the midpoint.
// It panics if period is not positive.
func PhaseSymbol(phase, period int) Symbol {
	if period <= 0 {
		panic(fmt.Sprintf("calendar: moon period %d must be positive", period))
	}

	p := float64(period)
	twoDayPhases := period%2 == 0

	wanGib := roundHalfUp(p / 8)
	lastQuarter := roundHalfUp(p / 4)
	wanCres := roundHalfUp(p * 3 / 8)

	newMoon1 := period / 2
	newMoon2 := newMoon1
	if twoDayPhases {
		newMoon2++
	}

	waxCres := roundHalfUp(float64(newMoon2) + p/8)
	firstQuarter := roundHalfUp(float64(newMoon2) + p/4)
	waxGib := roundHalfUp(float64(newMoon2) + p*3/8)

	// New moon overrides every other bucket; the short-period moon needs it.
	if phase == newMoon1 || phase == newMoon2 {
		return SymbolNew
	}

	switch {
	case phase == 0 || (twoDayPhases && phase == period):
		return SymbolFull
	case phase <= wanGib:
		return SymbolWaningGibbous
	case phase <= lastQuarter:
		return SymbolLastQuarter
	case phase <= wanCres || phase < newMoon1:
		return SymbolWaningCrescent
	case phase <= waxCres:
		return SymbolWaxingCrescent
	case phase <= firstQuarter:
		return SymbolFirstQuarter
	case phase <= waxGib:
		return SymbolWaxingGibbous
	default:
		return SymbolFull
	}
}

// roundHalfUp rounds halves toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
