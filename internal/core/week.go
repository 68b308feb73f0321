package core

import "time"

// Business weeks close on Wednesday. The reference weekday index matches
// time.Wednesday (3).
const weekCloseDay = time.Wednesday

// ISODate is the wire format for every date in this application.
const ISODate = "2006-01-02"

// WeekWednesday normalizes any date to the Wednesday of its week by
// subtracting the signed day-of-week offset. Normalizing a Wednesday is a
// no-op, and every date in the surrounding 7-day window (Sunday..Saturday)
// maps to the same Wednesday.
func WeekWednesday(t time.Time) time.Time {
	diff := int(t.Weekday()) - int(weekCloseDay)
	day := t.AddDate(0, 0, -diff)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekWednesdayISO normalizes an ISO date string to its week's Wednesday,
// formatted back as YYYY-MM-DD. Unparseable input falls back to the current
// week so the picker always holds a valid Wednesday.
func WeekWednesdayISO(value string) string {
	t, err := time.Parse(ISODate, value)
	if err != nil {
		t = time.Now()
	}
	return WeekWednesday(t).Format(ISODate)
}

// PrevWeekISO returns the Wednesday exactly 7 days before the given value.
func PrevWeekISO(value string) string {
	return shiftWeekISO(value, -7)
}

// NextWeekISO returns the Wednesday exactly 7 days after the given value.
func NextWeekISO(value string) string {
	return shiftWeekISO(value, 7)
}

func shiftWeekISO(value string, days int) string {
	t, err := time.Parse(ISODate, value)
	if err != nil {
		t = time.Now()
	}
	return WeekWednesday(t.AddDate(0, 0, days)).Format(ISODate)
}

// CurrentWeekISO returns the current week's Wednesday. The week-closing view
// uses it as the picker default.
func CurrentWeekISO() string {
	return WeekWednesday(time.Now()).Format(ISODate)
}

// FormatDateBR renders an ISO date (or ISO timestamp prefix) as dd/mm/yyyy
// for display. Unparseable input passes through unchanged.
func FormatDateBR(value string) string {
	s := value
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}
