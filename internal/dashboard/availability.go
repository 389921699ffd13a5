package dashboard

import (
	"strings"
	"time"

	"github.com/jonathan/matching-guru/internal/types"
)

// AnyTime is the reconciled time when two ranges neither match nor include ANYTIME
const AnyTime = "any time"

// DateLabelLayout formats suggested meeting dates, e.g. "12 June"
const DateLabelLayout = "2 January"

// SharedSlot is a suggested meeting day and time
type SharedSlot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

var weekdays = map[string]time.Weekday{
	types.DaySunday:    time.Sunday,
	types.DayMonday:    time.Monday,
	types.DayTuesday:   time.Tuesday,
	types.DayWednesday: time.Wednesday,
	types.DayThursday:  time.Thursday,
	types.DayFriday:    time.Friday,
	types.DaySaturday:  time.Saturday,
}

// SharedAvailability returns the first day both participants list, in a's
// order, with a reconciled time of day. It returns nil when either side is
// missing or there is no common day.
func SharedAvailability(a, b *types.Availability) *SharedSlot {
	if a == nil || b == nil {
		return nil
	}

	theirs := make(map[string]bool, len(b.AvailableDays))
	for _, d := range b.AvailableDays {
		theirs[normalize(d)] = true
	}

	for _, d := range a.AvailableDays {
		day := normalize(d)
		if !theirs[day] {
			continue
		}
		return &SharedSlot{
			Day:  titleCase(day),
			Time: reconcileTime(normalize(a.TimeRange), normalize(b.TimeRange)),
		}
	}
	return nil
}

func reconcileTime(a, b string) string {
	if a == "" {
		a = types.TimeAnytime
	}
	if b == "" {
		b = types.TimeAnytime
	}

	var out string
	switch {
	case a == b:
		out = a
	case a == types.TimeAnytime:
		out = b
	case b == types.TimeAnytime:
		out = a
	default:
		return AnyTime
	}
	if out == types.TimeAnytime {
		return AnyTime
	}
	return strings.ToLower(out)
}

// NextDateForWeekday returns the label of the next date falling on day.
// When day is today's weekday the suggestion is a week out, never today.
// Unknown day names return "".
func NextDateForWeekday(day string, today time.Time) string {
	target, ok := weekdays[normalize(day)]
	if !ok {
		return ""
	}
	diff := (int(target) - int(today.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return today.AddDate(0, 0, diff).Format(DateLabelLayout)
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
