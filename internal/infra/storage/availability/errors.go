package availability

import "errors"

var (
	// ErrWeekConfigNotFound возвращается, когда для недели нет конфигурации (неделя наследует шаблон)
	ErrWeekConfigNotFound = errors.New("availability.repository: week config not found")

	// ErrInvalidBehavior возвращается при неизвестном значении behavior в БД
	ErrInvalidBehavior = errors.New("availability.repository: invalid week behavior")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)
