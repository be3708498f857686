// Package clock переводит "сейчас" и метки времени слотов ("10AM") в календарное время
// опорного часового пояса и обратно в абсолютные моменты.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var labelPattern = regexp.MustCompile(`^(\d{1,2})(AM|PM)$`)

// Clock адаптер часового пояса. Все решения о времени слотов идут через него.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New создаёт адаптер для пояса loc. now == nil означает time.Now
func New(loc *time.Location, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// Load создаёт адаптер по имени IANA пояса
func Load(name string) (*Clock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return New(loc, nil), nil
}

// Location возвращает опорный пояс
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now возвращает текущее время в опорном поясе
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today возвращает полночь текущей даты опорного пояса
func (c *Clock) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay возвращает полночь календарной даты t в опорном поясе
func (c *Clock) StartOfDay(t time.Time) time.Time {
	z := t.In(c.loc)
	return time.Date(z.Year(), z.Month(), z.Day(), 0, 0, 0, 0, c.loc)
}

// AddDays сдвигает дату на n календарных дней (через AddDate, чтобы не ломаться на DST)
func (c *Clock) AddDays(date time.Time, n int) time.Time {
	return c.StartOfDay(date).AddDate(0, 0, n)
}

// DayBounds возвращает [from, to) абсолютных моментов календарного дня date
func (c *Clock) DayBounds(date time.Time) (time.Time, time.Time) {
	from := c.StartOfDay(date)
	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}

// ToZoned переводит абсолютный момент в календарное время опорного пояса
func (c *Clock) ToZoned(instant time.Time) time.Time {
	return instant.In(c.loc)
}

// Localize соединяет календарную дату и метку "10AM" в абсолютный момент (UTC)
func (c *Clock) Localize(date time.Time, label string) (time.Time, error) {
	hour, err := ParseLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	d := date.In(c.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, c.loc).UTC(), nil
}

// MustLocalize как Localize, но паникует на некорректной метке.
// Метки проверяются при старте, поэтому здесь это ошибка конфигурации.
func (c *Clock) MustLocalize(date time.Time, label string) time.Time {
	t, err := c.Localize(date, label)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseLabel возвращает час (0-23) для метки вида "10AM", "12PM" или "7PM EET"
func ParseLabel(label string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(label), " ")
	m := labelPattern.FindStringSubmatch(strings.ToUpper(head))
	if m == nil {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	hour, _ := strconv.Atoi(m[1])
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("invalid time label %q: hour out of range", label)
	}

	switch {
	case m[2] == "PM" && hour != 12:
		hour += 12
	case m[2] == "AM" && hour == 12:
		hour = 0
	}
	return hour, nil
}

// ValidateLabels проверяет набор меток: все разбираются и нет повторов
func ValidateLabels(labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("no time labels configured")
	}
	seen := make(map[int]string, len(labels))
	for _, label := range labels {
		hour, err := ParseLabel(label)
		if err != nil {
			return err
		}
		if prev, ok := seen[hour]; ok {
			return fmt.Errorf("time labels %q and %q point to the same hour", prev, label)
		}
		seen[hour] = label
	}
	return nil
}
