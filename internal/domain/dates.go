package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the ISO calendar date used as the natural key of entries
// and sessions.
const DateLayout = "2006-01-02"

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
	weekdaysShortES = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
	monthsShortES   = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul",
		"ago", "sept", "oct", "nov", "dic"}
)

// ParseDate parses a YYYY-MM-DD string in the local zone.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// FormatShortDate renders "2024-01-01" as "Lun 1 ene". Invalid input is
// returned unchanged.
func FormatShortDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s %d %s", capitalize(weekdaysShortES[t.Weekday()]), t.Day(), monthsShortES[t.Month()-1])
}

// FormatFullDate renders "2024-01-01" as "Lunes 1 de Enero".
func FormatFullDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s %d de %s",
		capitalize(weekdaysES[t.Weekday()]), t.Day(), capitalize(monthsES[t.Month()-1]))
}

// FormatLongDate renders "2024-01-01" as "Lunes, 1 de Enero de 2024".
func FormatLongDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s, %d de %s de %d",
		capitalize(weekdaysES[t.Weekday()]), t.Day(), capitalize(monthsES[t.Month()-1]), t.Year())
}

// Today returns the local calendar date for t.
func Today(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// capitalize title-cases a Spanish word. Casers carry state, so one is built
// per call.
func capitalize(s string) string {
	return cases.Title(language.Spanish).String(s)
}
