package derive

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// supportedLocales lists the locales with date label tables. The matcher
// maps any requested tag to the closest supported one; English wins for
// everything unrelated.
var supportedLocales = []language.Tag{
	language.English,
	language.Russian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var monthsRU = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdaysRU = [...]string{
	"воскресенье", "понедельник", "вторник", "среда",
	"четверг", "пятница", "суббота",
}

// dateLabel renders the human-readable Today label for the given locale,
// e.g. "Friday, March 7" or "Пятница, 7 марта".
func dateLabel(now time.Time, tag language.Tag) string {
	_, idx, _ := localeMatcher.Match(tag)
	switch supportedLocales[idx] {
	case language.Russian:
		weekday := cases.Title(language.Russian).String(weekdaysRU[now.Weekday()])
		return fmt.Sprintf("%s, %d %s", weekday, now.Day(), monthsRU[now.Month()-1])
	default:
		return now.Format("Monday, January 2")
	}
}
