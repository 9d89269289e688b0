package domain

import "errors"

var (
	// ErrUnknownSessionType неизвестный тип сеанса
	ErrUnknownSessionType = errors.New("domain: unknown session type")

	// ErrUnknownClientClass неизвестный класс клиента
	ErrUnknownClientClass = errors.New("domain: unknown client class")

	// ErrInvalidTransition недопустимый переход статуса бронирования
	ErrInvalidTransition = errors.New("domain: invalid booking status transition")

	// ErrInvariantViolation нарушен инвариант сущности
	ErrInvariantViolation = errors.New("domain: invariant violation")

	// ErrInvalidPolicy некорректная конфигурация правил календаря и цен
	ErrInvalidPolicy = errors.New("domain: invalid policy config")
)
