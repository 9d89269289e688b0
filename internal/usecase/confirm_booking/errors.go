package confirm_booking

import "errors"

var (
	// ErrInvalidInput возвращается при пустом токене
	ErrInvalidInput = errors.New("confirm_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_booking: booking not found")

	// ErrNotPending бронирование нельзя подтвердить из текущего статуса
	ErrNotPending = errors.New("confirm_booking: booking is not pending")

	// ErrSlotNotAvailable интервал занят подтверждённым бронированием
	ErrSlotNotAvailable = errors.New("confirm_booking: slot is no longer available")

	// ErrBusy транзакция не сериализовалась за отведённые попытки, повторить позже
	ErrBusy = errors.New("confirm_booking: too much contention, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
