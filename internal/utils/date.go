package utils

import (
	"time"
)

func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartCurrentWeek возвращает понедельник недели, в которую попадает дата (00:00)
func StartCurrentWeek(t time.Time) time.Time {
	day := StartCurrentDay(t)
	// time.Weekday начинается с воскресенья, неделя у нас начинается с понедельника
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DaysInMonth возвращает количество дней в месяце
func DaysInMonth(year int, month time.Month) int {
	// Нулевой день следующего месяца = последний день текущего
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped прибавляет месяцы к дате, сохраняя день месяца.
// Если в целевом месяце такого дня нет, берется последний день месяца.
func AddMonthsClamped(t time.Time, day int, months int) time.Time {
	// Нормализуем год и месяц через первое число, чтобы time.Date не переносил переполнение дня
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := DaysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// SameDay сравнивает только дату без времени
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateInRange проверяет вхождение даты в диапазон [start, end] включительно, без учета времени
func DateInRange(date, start, end time.Time) bool {
	d := StartCurrentDay(date)
	return !d.Before(StartCurrentDay(start)) && !d.After(StartCurrentDay(end))
}

// DaysBetween возвращает число календарных дней от from до to (отрицательное, если to раньше)
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
