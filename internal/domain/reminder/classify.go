package reminder

import "time"

// Category is the mutually exclusive decision for one payment record on a
// given day. Exactly one category applies per (record, today) pair.
type Category int

const (
	NoAction Category = iota
	ThreeDayReminder
	DueTodayReminder
	OverdueNotice
)

func (c Category) String() string {
	switch c {
	case ThreeDayReminder:
		return "THREE_DAY_REMINDER"
	case DueTodayReminder:
		return "DUE_TODAY_REMINDER"
	case OverdueNotice:
		return "OVERDUE_NOTICE"
	default:
		return "NO_ACTION"
	}
}

// Outcome is the result of classifying one record. DaysPastDue and
// Penalty are set only for OverdueNotice.
type Outcome struct {
	Category    Category
	DaysPastDue int
	Penalty     float64
}

// Classify maps a record's due date and the current date to a reminder
// outcome. Comparisons are by calendar day; time-of-day is irrelevant.
// "Three days ahead" means today plus three calendar days, not a 72-hour
// window. Records 1-2 days past due are in a grace period and trigger
// nothing. The penalty applies only to records 3 or more days overdue.
func Classify(dueDate, today time.Time, globalPenalty float64) Outcome {
	due := calendarDay(dueDate)
	now := calendarDay(today)

	switch {
	case due.Equal(now.AddDate(0, 0, 3)):
		return Outcome{Category: ThreeDayReminder}
	case due.Equal(now):
		return Outcome{Category: DueTodayReminder}
	case due.Before(now):
		daysPastDue := int(now.Sub(due).Hours() / 24)
		if daysPastDue >= 3 {
			return Outcome{Category: OverdueNotice, DaysPastDue: daysPastDue, Penalty: globalPenalty}
		}
		return Outcome{Category: NoAction}
	default:
		return Outcome{Category: NoAction}
	}
}

// calendarDay projects a timestamp onto its wall-clock calendar date,
// normalized to UTC so that day arithmetic is exact and two dates compare
// equal whenever their calendar components match, whatever zone each was
// stored in.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
