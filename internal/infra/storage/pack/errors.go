package pack

import "errors"

var (
	// ErrPackNotFound возвращается, когда пакет не найден
	ErrPackNotFound = errors.New("pack.repository: prepaid pack not found")

	// ErrUsageNotFound возвращается, когда списание для бронирования не найдено
	ErrUsageNotFound = errors.New("pack.repository: pack usage not found")

	// ErrUsageExists для бронирования уже есть списание
	ErrUsageExists = errors.New("pack.repository: pack usage already exists for booking")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("pack.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("pack.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("pack.repository: failed to scan row")
)
