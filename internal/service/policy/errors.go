package policy

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках провайдера
	ErrInternal = errors.New("policy: internal error")
)
