package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinYear is the first year executive orders can be requested for
const MinYear = 1937

// YearRange is an inclusive range of signing years
type YearRange struct {
	Begin int
	End   int
}

// CurrentYear returns the current calendar year
func CurrentYear() int {
	return time.Now().Year()
}

// NewYearRange creates a range, swapping the bounds if they are out of order
func NewYearRange(begin, end int) YearRange {
	if begin > end {
		begin, end = end, begin
	}
	return YearRange{Begin: begin, End: end}
}

// SingleYear creates a range covering one year
func SingleYear(year int) YearRange {
	return YearRange{Begin: year, End: year}
}

// IsSingleYear reports whether the range covers exactly one year
func (yr YearRange) IsSingleYear() bool {
	return yr.Begin == yr.End
}

// Contains reports whether year lies inside the range
func (yr YearRange) Contains(year int) bool {
	return year >= yr.Begin && year <= yr.End
}

// Validate checks the range against [MinYear, maxYear]
func (yr YearRange) Validate(maxYear int) error {
	if yr.Begin > yr.End {
		return fmt.Errorf("begin year %d is after end year %d", yr.Begin, yr.End)
	}
	if yr.Begin < MinYear {
		return fmt.Errorf("begin year %d is before %d", yr.Begin, MinYear)
	}
	if yr.End > maxYear {
		return fmt.Errorf("end year %d is after %d", yr.End, maxYear)
	}
	return nil
}

// String returns "2024" for a single year and "2020-2024" for a range
func (yr YearRange) String() string {
	if yr.IsSingleYear() {
		return strconv.Itoa(yr.Begin)
	}
	return fmt.Sprintf("%d-%d", yr.Begin, yr.End)
}

// ParseYearRange parses "2024" or "2020-2024"
func ParseYearRange(s string) (YearRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return YearRange{}, fmt.Errorf("empty year range")
	}

	parts := strings.SplitN(s, "-", 2)
	begin, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return YearRange{}, fmt.Errorf("invalid begin year %q: %w", parts[0], err)
	}
	if len(parts) == 1 {
		return SingleYear(begin), nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return YearRange{}, fmt.Errorf("invalid end year %q: %w", parts[1], err)
	}
	return NewYearRange(begin, end), nil
}

// YearSelector holds the two year pickers of the main window and keeps begin <= end.
// Changing one bound past the other drags the other bound along with it.
type YearSelector struct {
	min   int
	max   int
	begin int
	end   int
}

// NewYearSelector creates a selector over [min, max] with both bounds at max
func NewYearSelector(min, max int) *YearSelector {
	if min > max {
		min, max = max, min
	}
	return &YearSelector{min: min, max: max, begin: max, end: max}
}

// Bounds returns the allowed year interval
func (ys *YearSelector) Bounds() (int, int) {
	return ys.min, ys.max
}

// Range returns the currently selected range
func (ys *YearSelector) Range() YearRange {
	return YearRange{Begin: ys.begin, End: ys.end}
}

// SetBegin changes the begin year; end is raised to begin if needed
func (ys *YearSelector) SetBegin(year int) YearRange {
	ys.begin = ys.clamp(year)
	if ys.begin > ys.end {
		ys.end = ys.begin
	}
	return ys.Range()
}

// SetEnd changes the end year; begin is lowered to end if needed
func (ys *YearSelector) SetEnd(year int) YearRange {
	ys.end = ys.clamp(year)
	if ys.end < ys.begin {
		ys.begin = ys.end
	}
	return ys.Range()
}

// Years lists every selectable year in ascending order
func (ys *YearSelector) Years() []int {
	years := make([]int, 0, ys.max-ys.min+1)
	for y := ys.min; y <= ys.max; y++ {
		years = append(years, y)
	}
	return years
}

func (ys *YearSelector) clamp(year int) int {
	if year < ys.min {
		return ys.min
	}
	if year > ys.max {
		return ys.max
	}
	return year
}
