package profileservice

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// Practitioner модель профиля специалиста из ProfileService
type Practitioner struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Specialties []string `json:"specialties"`
	Timezone    string   `json:"timezone"`
}

// ToDomain конвертирует ответ сервиса в доменный профиль
func (p *Practitioner) ToDomain() *domain.PractitionerProfile {
	return &domain.PractitionerProfile{
		ID:          p.ID,
		Price:       p.Price,
		Specialties: p.Specialties,
		Timezone:    p.Timezone,
	}
}
