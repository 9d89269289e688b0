package domain

import "time"

// OffDay закрытый диапазон дат [StartDate, EndDate] включительно
type OffDay struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

// Covers попадает ли календарная дата в диапазон.
// Сравниваются только год/месяц/день
func (o *OffDay) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(o.StartDate)) && !d.After(DateOnly(o.EndDate))
}

// DateOnly календарная дата как полночь UTC.
// Используется для сравнения дат из разных источников (БД, запрос, часовой пояс зала)
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
