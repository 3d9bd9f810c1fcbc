package create_appointment

import "errors"

var (
	// ErrPractitionerNotFound возвращается, когда специалист не найден
	ErrPractitionerNotFound = errors.New("create_appointment: practitioner not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
