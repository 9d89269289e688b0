package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrClientInactive аккаунт клиента отключён
	ErrClientInactive = errors.New("create_booking: client account is inactive")

	// ErrDateInPast дата бронирования в прошлом
	ErrDateInPast = errors.New("create_booking: date is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата превышает горизонт бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrDateClosed зал закрыт в указанную дату
	ErrDateClosed = errors.New("create_booking: room is closed on this date")

	// ErrInvalidTimeSlot время не совпадает с сеткой стартов или не помещается в окно работы
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrTooLateToBook возвращается, когда старт раньше минимального уведомления
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotNotAvailable выбранный интервал пересекается с другим бронированием
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrNoCreditAvailable подходящий пакет исчерпан конкурентно
	ErrNoCreditAvailable = errors.New("create_booking: no prepaid credit available")

	// ErrDiscountNotApplicable введённый код не подходит к сеансу или клиенту
	ErrDiscountNotApplicable = errors.New("create_booking: discount code not applicable")

	// ErrDiscountLimitReached лимит использований кода исчерпан
	ErrDiscountLimitReached = errors.New("create_booking: discount code usage limit reached")

	// ErrRateLimited слишком много попыток бронирования
	ErrRateLimited = errors.New("create_booking: too many booking attempts")

	// ErrBusy транзакция не сериализовалась за отведённые попытки, повторить позже
	ErrBusy = errors.New("create_booking: too much contention, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// FieldError ошибка, привязанная к полю запроса
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
