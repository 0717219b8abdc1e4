// Package dates resolves the free-form date strings carried on deals.
package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Parser reads date strings in any format dateparse understands.
// MonthFirst decides how ambiguous slash dates such as 03/04/2024 are read;
// a string that is only valid the other way round is retried swapped.
type Parser struct {
	MonthFirst bool
}

// Month-year partials and browser locale strings ("1/1/2024, 10:00:00 AM")
// that dateparse does not cover.
var (
	monthFirstLayouts = []string{
		"January 2006",
		"Jan 2006",
		"1/2/2006, 3:04:05 PM",
		"1/2/2006, 3:04 PM",
		"1/2/2006, 15:04:05",
	}
	dayFirstLayouts = []string{
		"January 2006",
		"Jan 2006",
		"2/1/2006, 3:04:05 PM",
		"2/1/2006, 3:04 PM",
		"2/1/2006, 15:04:05",
	}
)

// Parse resolves s to a time, or fails when s is not a calendar date
func (p Parser) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := dateparse.ParseAny(s,
		dateparse.PreferMonthFirst(p.MonthFirst),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err == nil {
		return t, nil
	}

	preferred, swapped := monthFirstLayouts, dayFirstLayouts
	if !p.MonthFirst {
		preferred, swapped = swapped, preferred
	}
	for _, layouts := range [][]string{preferred, swapped} {
		for _, layout := range layouts {
			if t, lerr := time.Parse(layout, s); lerr == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, err
}

// Valid reports whether s resolves to a calendar date
func (p Parser) Valid(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := p.Parse(s)
	return err == nil
}
