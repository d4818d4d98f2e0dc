package render

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale supplies the month and weekday names printed on the page.
type Locale struct {
	Tag    language.Tag
	Months [12]string
	// Weekdays starts on Monday.
	Weekdays [7]string
}

var Danish = Locale{
	Tag: language.Danish,
	Months: [12]string{
		"Januar", "Februar", "Marts", "April", "Maj", "Juni",
		"Juli", "August", "September", "Oktober", "November", "December",
	},
	Weekdays: [7]string{"Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag", "Søndag"},
}

var English = Locale{
	Tag: language.English,
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
}

// LocaleFor returns the locale for a config code; anything but "en" is Danish.
func LocaleFor(code string) Locale {
	if code == "en" {
		return English
	}
	return Danish
}

// MonthHeader is the uppercase month name of t, e.g. "OKTOBER".
func (l Locale) MonthHeader(t time.Time) string {
	return cases.Upper(l.Tag).String(l.Months[t.Month()-1])
}

// DayHeader is the weekday name and day of month of t, e.g. "Fredag 16.".
func (l Locale) DayHeader(t time.Time) string {
	return fmt.Sprintf("%s %d.", l.Weekdays[(int(t.Weekday())+6)%7], t.Day())
}
