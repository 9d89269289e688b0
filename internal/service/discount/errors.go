package discount

import "errors"

var (
	// ErrCodeNotApplicable введённый код не подходит к типу сеанса или классу клиента
	ErrCodeNotApplicable = errors.New("discount: code not applicable")

	// ErrUsageLimitReached исчерпан общий лимит или лимит на клиента
	ErrUsageLimitReached = errors.New("discount: code usage limit reached")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("discount: internal error")
)
