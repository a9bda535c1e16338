package dates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name                    string
		day, month, year, local string
		want                    string
	}{
		{name: "norwegian", day: "24", month: "7", year: "2009", local: "nb-NO", want: "24. juli 2009"},
		{name: "norwegian default", day: "1", month: "1", year: "2006", local: "", want: "1. januar 2006"},
		{name: "norwegian underscore", day: "31", month: "12", year: "2024", local: "nb_NO", want: "31. desember 2024"},
		{name: "english", day: "24", month: "7", year: "2009", local: "en-US", want: "July 24, 2009"},
		{name: "english base", day: "5", month: "3", year: "2012", local: "en", want: "March 5, 2012"},
		{name: "leap day", day: "29", month: "2", year: "2024", local: "en", want: "February 29, 2024"},
		{name: "padded input", day: " 09 ", month: "09", year: "2015", local: "nb", want: "9. september 2015"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.day, tc.month, tc.year, tc.local)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFormat_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year string
	}{
		{name: "non numeric", day: "x", month: "1", year: "2020"},
		{name: "empty", day: "", month: "", year: ""},
		{name: "month out of range", day: "1", month: "13", year: "2020"},
		{name: "day out of range", day: "31", month: "4", year: "2020"},
		{name: "not a leap year", day: "29", month: "2", year: "2023"},
		{name: "zero day", day: "0", month: "1", year: "2020"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Format(tc.day, tc.month, tc.year, "en")
			require.ErrorIs(t, err, ErrInvalidDate)
			require.Equal(t, InvalidDate, MustFormat(tc.day, tc.month, tc.year, "nb"))
		})
	}
}
