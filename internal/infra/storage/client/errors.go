package client

import "errors"

var (
	// ErrClientNotFound возвращается, когда клиент не найден
	ErrClientNotFound = errors.New("client.repository: client not found")

	// ErrPersonNotFound возвращается, когда участник не найден
	ErrPersonNotFound = errors.New("client.repository: person not found")

	// ErrClientExists клиент с таким email уже существует
	ErrClientExists = errors.New("client.repository: client already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("client.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("client.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("client.repository: failed to scan row")
)
