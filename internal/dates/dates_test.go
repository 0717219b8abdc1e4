package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Valid(t *testing.T) {
	p := Parser{MonthFirst: true}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"iso date", "2024-01-01", true},
		{"iso datetime", "2024-10-15T09:00:00Z", true},
		{"slash", "01/01/2024", true},
		{"long form", "January 1, 2024", true},
		{"partial", "2024-01", true},
		{"day first only", "25/12/2024", true},
		{"month year", "March 2024", true},
		{"short month year", "Mar 2024", true},
		{"locale string", "1/1/2024, 10:00:00 AM", true},
		{"locale string day first only", "25/12/2024, 10:00:00 PM", true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"garbage", "not-a-date", false},
		{"impossible month", "2024-13-45", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Valid(tt.input))
		})
	}
}

func TestParser_LocaleString(t *testing.T) {
	got, err := Parser{MonthFirst: true}.Parse("3/4/2024, 1:30:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 4, 13, 30, 0, 0, time.UTC), got)

	got, err = Parser{MonthFirst: false}.Parse("3/4/2024, 1:30:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 3, got.Day())
}

func TestParser_MonthYear(t *testing.T) {
	got, err := Parser{MonthFirst: true}.Parse("March 2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestParser_AmbiguousOrder(t *testing.T) {
	monthFirst, err := Parser{MonthFirst: true}.Parse("03/04/2024")
	require.NoError(t, err)
	assert.Equal(t, time.March, monthFirst.Month())
	assert.Equal(t, 4, monthFirst.Day())

	dayFirst, err := Parser{MonthFirst: false}.Parse("03/04/2024")
	require.NoError(t, err)
	assert.Equal(t, time.April, dayFirst.Month())
	assert.Equal(t, 3, dayFirst.Day())
}
