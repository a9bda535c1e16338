// Package dates renders comic publication dates for display.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	DefaultLocale = "nb-NO"
	InvalidDate   = "Invalid date"
)

var ErrInvalidDate = errors.New("invalid date")

var norwegianMonths = [12]string{
	"januar", "februar", "mars", "april", "mai", "juni",
	"juli", "august", "september", "oktober", "november", "desember",
}

// The first entry is the fallback for unmatched locales.
var (
	supported = []language.Tag{language.MustParse("nb"), language.English}
	matcher   = language.NewMatcher(supported)
)

// Format renders day, month and year in locale. Norwegian Bokmål gives
// "24. juli 2009" and English gives "July 24, 2009".
func Format(day, month, year, locale string) (string, error) {
	d, errD := strconv.Atoi(strings.TrimSpace(day))
	m, errM := strconv.Atoi(strings.TrimSpace(month))
	y, errY := strconv.Atoi(strings.TrimSpace(year))
	if err := errors.Join(errD, errM, errY); err != nil {
		return "", fmt.Errorf("%w: %q-%q-%q", ErrInvalidDate, year, month, day)
	}
	if m < 1 || m > 12 || y < 1 {
		return "", fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, y, m, d)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m || t.Year() != y {
		return "", fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, y, m, d)
	}

	switch supported[match(locale)] {
	case language.English:
		return t.Format("January 2, 2006"), nil
	default:
		return fmt.Sprintf("%d. %s %d", d, norwegianMonths[m-1], y), nil
	}
}

// MustFormat is Format with errors rendered as InvalidDate.
func MustFormat(day, month, year, locale string) string {
	s, err := Format(day, month, year, locale)
	if err != nil {
		return InvalidDate
	}
	return s
}

func match(locale string) int {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return 0
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return 0
	}
	return idx
}
