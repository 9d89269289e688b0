package calendar

import "errors"

var (
	// ErrUnknownSessionType неизвестный тип сеанса
	ErrUnknownSessionType = errors.New("calendar: unknown session type")

	// ErrGroupSessionNotAllowed групповые типы доступны только ассоциациям
	ErrGroupSessionNotAllowed = errors.New("calendar: group sessions are only available to associations")

	// ErrAccompanimentNotAllowed сопровождение доступно только для групповых типов
	ErrAccompanimentNotAllowed = errors.New("calendar: accompaniment is only available for group sessions")

	// ErrSessionNotOffered для комбинации не настроены длительности или цена
	ErrSessionNotOffered = errors.New("calendar: session is not offered for this combination")

	// ErrDateInPast дата раньше сегодняшней
	ErrDateInPast = errors.New("calendar: date is in the past")

	// ErrBeyondHorizon дата дальше допустимого горизонта бронирования
	ErrBeyondHorizon = errors.New("calendar: date is beyond the booking horizon")
)
