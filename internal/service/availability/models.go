package availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// WeekAvailability эффективная доступность специалиста на конкретной неделе
type WeekAvailability struct {
	PractitionerID int64
	WeekStart      time.Time           // понедельник 00:00 UTC
	Behavior       domain.WeekBehavior // TEMPLATE, если конфигурации недели нет
	Windows        []weekly.Window     // отсортированы по началу, могут пересекаться
}

// WeekView неделя вместе с сеткой для календаря
type WeekView struct {
	WeekAvailability
	Grid weekly.Grid
}

// TemplateView шаблон специалиста вместе с сеткой для календаря
type TemplateView struct {
	PractitionerID int64
	Intervals      []weekly.Interval
	Grid           weekly.Grid
}
