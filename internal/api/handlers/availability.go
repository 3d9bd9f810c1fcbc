package handlers

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// IntervalDTO повторяющийся интервал: ISO день недели (1 = понедельник) и время HH:MM
type IntervalDTO struct {
	StartWeekday int    `json:"startWeekday"`
	StartTime    string `json:"startTime"`
	EndWeekday   int    `json:"endWeekday"`
	EndTime      string `json:"endTime"`
}

// ToDomain переводит интервал, заданный в зоне loc, в UTC точки эталонной недели
func (d IntervalDTO) ToDomain(loc *time.Location) (weekly.Interval, error) {
	startClock, err := parseClock("startTime", d.StartTime)
	if err != nil {
		return weekly.Interval{}, err
	}
	endClock, err := parseClock("endTime", d.EndTime)
	if err != nil {
		return weekly.Interval{}, err
	}
	return weekly.ParseInterval(d.StartWeekday, startClock, d.EndWeekday, endClock, loc)
}

// IntervalsToDomain конвертирует список интервалов
func IntervalsToDomain(list []IntervalDTO, loc *time.Location) ([]weekly.Interval, error) {
	out := make([]weekly.Interval, 0, len(list))
	for _, d := range list {
		iv, err := d.ToDomain(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// FromInterval конвертирует интервал в UTC представление
func FromInterval(iv weekly.Interval) IntervalDTO {
	startDay, startClock := weekly.FromPoint(iv.Start)
	endDay, endClock := weekly.FromPoint(iv.End)
	return IntervalDTO{
		StartWeekday: startDay,
		StartTime:    types.NewTimeStringFromDuration(startClock).String(),
		EndWeekday:   endDay,
		EndTime:      types.NewTimeStringFromDuration(endClock).String(),
	}
}

// LoadLocation возвращает зону по имени IANA, пустое имя означает UTC
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, domain.NewValidationError(domain.ErrInvalidInterval, "timezone", name, err.Error())
	}
	return loc, nil
}

func parseClock(field, s string) (time.Duration, error) {
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return 0, domain.NewValidationError(domain.ErrInvalidInterval, field, s, "expected HH:MM")
	}
	d, err := ts.Duration()
	if err != nil {
		return 0, domain.NewValidationError(domain.ErrInvalidInterval, field, s, err.Error())
	}
	return d, nil
}

// WindowDTO конкретное окно доступности
type WindowDTO struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// TemplateResponse шаблон специалиста
type TemplateResponse struct {
	PractitionerID int64         `json:"practitionerId"`
	Intervals      []IntervalDTO `json:"intervals"`
	Grid           weekly.Grid   `json:"grid"`
}

// WeekResponse эффективная доступность недели
type WeekResponse struct {
	PractitionerID int64       `json:"practitionerId"`
	WeekStart      string      `json:"weekStart"`
	Behavior       string      `json:"behavior"`
	Windows        []WindowDTO `json:"windows"`
	Grid           weekly.Grid `json:"grid"`
}

// NewTemplateResponse собирает ответ из представления сервиса
func NewTemplateResponse(practitionerID int64, intervals []weekly.Interval, grid weekly.Grid) *TemplateResponse {
	resp := &TemplateResponse{
		PractitionerID: practitionerID,
		Intervals:      make([]IntervalDTO, 0, len(intervals)),
		Grid:           grid,
	}
	for _, iv := range intervals {
		resp.Intervals = append(resp.Intervals, FromInterval(iv))
	}
	return resp
}

// NewWeekResponse собирает ответ из представления сервиса
func NewWeekResponse(practitionerID int64, weekStart time.Time, behavior domain.WeekBehavior, windows []weekly.Window, grid weekly.Grid) *WeekResponse {
	resp := &WeekResponse{
		PractitionerID: practitionerID,
		WeekStart:      weekStart.Format(domain.DateFormat),
		Behavior:       string(behavior),
		Windows:        make([]WindowDTO, 0, len(windows)),
		Grid:           grid,
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, WindowDTO{StartsAt: w.Start, EndsAt: w.End})
	}
	return resp
}
