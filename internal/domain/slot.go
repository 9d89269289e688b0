package domain

import "time"

// Overlaps проверка пересечения полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы, которые только граничат друг с другом, не пересекаются
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Durations длительности сеанса: показываемая клиенту и занимающая календарь
type Durations struct {
	DisplayMinutes  int
	BlockingMinutes int
}

// BufferMinutes буфер между сеансами, никогда не отрицательный
func (d Durations) BufferMinutes() int {
	return d.BlockingMinutes - d.DisplayMinutes
}
