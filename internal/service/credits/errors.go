package credits

import "errors"

var (
	// ErrNoCreditAvailable условное списание не изменило ни одной строки: пакет исчерпан конкурентно.
	// Повторять не нужно, выбор пакета должен быть сделан заново
	ErrNoCreditAvailable = errors.New("credits: no credit available")

	// ErrAlreadyReserved для бронирования уже списан кредит
	ErrAlreadyReserved = errors.New("credits: credit already reserved for booking")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("credits: internal error")
)
