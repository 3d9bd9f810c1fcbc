package create_appointment

import "time"

// Request модель запроса на создание записи
type Request struct {
	PatientID      int64     // ID пациента (из X-User-ID)
	PractitionerID int64     // ID специалиста
	ScheduledAt    time.Time // Начало сессии
}
