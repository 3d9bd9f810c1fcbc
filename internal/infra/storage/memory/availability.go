package memory

import (
	"context"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	availabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/availability"
)

// AvailabilityRepository in-memory реализация репозитория доступности
type AvailabilityRepository struct {
	store *Store
}

func weekKey(t time.Time) int64 {
	return weekly.WeekStart(t).Unix()
}

func (r *AvailabilityRepository) GetTemplate(ctx context.Context, practitionerID int64) ([]weekly.Interval, error) {
	defer r.store.lock(ctx)()
	return slices.Clone(r.store.templates[practitionerID]), nil
}

func (r *AvailabilityRepository) ReplaceTemplate(ctx context.Context, practitionerID int64, intervals []weekly.Interval) error {
	defer r.store.lock(ctx)()
	r.store.templates[practitionerID] = slices.Clone(intervals)
	return nil
}

func (r *AvailabilityRepository) GetWeekConfig(ctx context.Context, practitionerID int64, weekStart time.Time) (*domain.WeekConfig, error) {
	defer r.store.lock(ctx)()
	cfg, ok := r.store.weekConfigs[practitionerID][weekKey(weekStart)]
	if !ok {
		return nil, availabilityRepo.ErrWeekConfigNotFound
	}
	return &cfg, nil
}

func (r *AvailabilityRepository) ListWeekConfigs(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.WeekConfig, error) {
	defer r.store.lock(ctx)()
	var out []*domain.WeekConfig
	for _, cfg := range r.store.weekConfigs[practitionerID] {
		if cfg.WeekStart.Before(from) || !cfg.WeekStart.Before(to) {
			continue
		}
		c := cfg
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.WeekConfig) int { return a.WeekStart.Compare(b.WeekStart) })
	return out, nil
}

func (r *AvailabilityRepository) UpsertWeekConfig(ctx context.Context, cfg *domain.WeekConfig) error {
	defer r.store.lock(ctx)()
	weeks, ok := r.store.weekConfigs[cfg.PractitionerID]
	if !ok {
		weeks = make(map[int64]domain.WeekConfig)
		r.store.weekConfigs[cfg.PractitionerID] = weeks
	}
	stored := *cfg
	stored.WeekStart = weekly.WeekStart(cfg.WeekStart)
	stored.UpdatedAt = time.Now().UTC()
	weeks[stored.WeekStart.Unix()] = stored
	return nil
}

func (r *AvailabilityRepository) DeleteWeekConfigsFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error {
	defer r.store.lock(ctx)()
	from := weekKey(weekStart)
	for key := range r.store.weekConfigs[practitionerID] {
		if key >= from {
			delete(r.store.weekConfigs[practitionerID], key)
		}
	}
	return nil
}

func (r *AvailabilityRepository) GetOverrides(ctx context.Context, practitionerID int64, weekStart time.Time) ([]weekly.Window, error) {
	defer r.store.lock(ctx)()
	return slices.Clone(r.store.overrides[practitionerID][weekKey(weekStart)]), nil
}

func (r *AvailabilityRepository) ReplaceOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error {
	defer r.store.lock(ctx)()
	r.weekOverrides(practitionerID)[weekKey(weekStart)] = slices.Clone(windows)
	return nil
}

func (r *AvailabilityRepository) AddOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error {
	defer r.store.lock(ctx)()
	weeks := r.weekOverrides(practitionerID)
	key := weekKey(weekStart)
	weeks[key] = append(weeks[key], windows...)
	return nil
}

func (r *AvailabilityRepository) DeleteOverridesFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error {
	defer r.store.lock(ctx)()
	from := weekKey(weekStart)
	for key := range r.store.overrides[practitionerID] {
		if key >= from {
			delete(r.store.overrides[practitionerID], key)
		}
	}
	return nil
}

func (r *AvailabilityRepository) weekOverrides(practitionerID int64) map[int64][]weekly.Window {
	weeks, ok := r.store.overrides[practitionerID]
	if !ok {
		weeks = make(map[int64][]weekly.Window)
		r.store.overrides[practitionerID] = weeks
	}
	return weeks
}
