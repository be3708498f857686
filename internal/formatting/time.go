package formatting

import (
	"fmt"
	"time"
)

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// Ordinal возвращает число с английским суффиксом: 1st, 2nd, 3rd, 11th
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// DayTitle заголовок секции дня: "Monday 12th January (EET)"
func DayTitle(date time.Time, zone string) string {
	title := fmt.Sprintf("%s %s %s", date.Weekday(), Ordinal(date.Day()), date.Month())
	if zone != "" {
		title += " (" + zone + ")"
	}
	return title
}

// Relative человекочитаемое относительное время: "in 3 hours", "25 minutes ago"
func Relative(now, t time.Time) string {
	d := t.Sub(now)
	future := d >= 0
	if !future {
		d = -d
	}

	if d < time.Minute {
		if future {
			return "in less than a minute"
		}
		return "just now"
	}

	var amount string
	switch {
	case d < time.Hour:
		amount = Pluralize(int(d/time.Minute), "minute", "minutes")
	case d < 48*time.Hour:
		amount = Pluralize(int(d/time.Hour), "hour", "hours")
	default:
		amount = Pluralize(int(d/(24*time.Hour)), "day", "days")
	}

	if future {
		return "in " + amount
	}
	return amount + " ago"
}
