package profileservice

import "errors"

var (
	// ErrPractitionerNotFound возвращается, когда профиль специалиста не найден
	ErrPractitionerNotFound = errors.New("practitioner profile not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("profileservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("profileservice client: invalid response")
)
