package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	availabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/availability"
)

// Service сервис доступности: шаблон, исключения недель и их разрешение в эффективные окна
type Service struct {
	repo         AvailabilityRepository
	txManager    TransactionManager
	policy       domain.SchedulingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	repo AvailabilityRepository,
	txManager TransactionManager,
	policy domain.SchedulingPolicy,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		txManager:    txManager,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ResolveWeek возвращает эффективные окна доступности на неделе, содержащей week
//
//   - UNAVAILABLE: пусто
//   - CUSTOM: только исключения недели
//   - TEMPLATE или нет конфигурации: шаблон, спроецированный на неделю, плюс исключения
func (s *Service) ResolveWeek(ctx context.Context, practitionerID int64, week time.Time) (*WeekAvailability, error) {
	weekStart := weekly.WeekStart(week)

	behavior, err := s.weekBehavior(ctx, practitionerID, weekStart)
	if err != nil {
		return nil, err
	}

	result := &WeekAvailability{
		PractitionerID: practitionerID,
		WeekStart:      weekStart,
		Behavior:       behavior,
	}
	if behavior == domain.WeekUnavailable {
		return result, nil
	}

	overrides, err := s.repo.GetOverrides(ctx, practitionerID, weekStart)
	if err != nil {
		s.logger.Error("ResolveWeek: failed to get overrides for practitioner=%d week=%s: %v",
			practitionerID, weekStart.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: ResolveWeek - get overrides: %w", ErrInternal, err)
	}

	if behavior == domain.WeekInherit {
		template, err := s.repo.GetTemplate(ctx, practitionerID)
		if err != nil {
			s.logger.Error("ResolveWeek: failed to get template for practitioner=%d: %v", practitionerID, err)
			return nil, fmt.Errorf("%w: ResolveWeek - get template: %w", ErrInternal, err)
		}
		result.Windows = projectTemplate(template, weekStart)
	}

	result.Windows = append(result.Windows, overrides...)
	weekly.SortWindows(result.Windows)

	return result, nil
}

// GetWeek возвращает разрешенную неделю вместе с сеткой
func (s *Service) GetWeek(ctx context.Context, practitionerID int64, week time.Time) (*WeekView, error) {
	resolved, err := s.ResolveWeek(ctx, practitionerID, week)
	if err != nil {
		return nil, err
	}

	intervals := make([]weekly.Interval, 0, len(resolved.Windows))
	for _, w := range resolved.Windows {
		intervals = append(intervals, w.Interval())
	}

	grid, err := weekly.ToGrid(intervals, s.policy.PeriodsPerDay())
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeek - build grid: %w", ErrInternal, err)
	}

	return &WeekView{WeekAvailability: *resolved, Grid: grid}, nil
}

// GetTemplate возвращает шаблон специалиста вместе с сеткой
func (s *Service) GetTemplate(ctx context.Context, practitionerID int64) (*TemplateView, error) {
	template, err := s.repo.GetTemplate(ctx, practitionerID)
	if err != nil {
		s.logger.Error("GetTemplate: failed to get template for practitioner=%d: %v", practitionerID, err)
		return nil, fmt.Errorf("%w: GetTemplate - repository error: %w", ErrInternal, err)
	}

	grid, err := weekly.ToGrid(template, s.policy.PeriodsPerDay())
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - build grid: %w", ErrInternal, err)
	}

	return &TemplateView{PractitionerID: practitionerID, Intervals: template, Grid: grid}, nil
}

// HasAvailability сообщает, есть ли у специалиста хотя бы один интервал шаблона
func (s *Service) HasAvailability(ctx context.Context, practitionerID int64) (bool, error) {
	template, err := s.repo.GetTemplate(ctx, practitionerID)
	if err != nil {
		return false, fmt.Errorf("%w: HasAvailability - repository error: %w", ErrInternal, err)
	}
	return len(template) > 0, nil
}

// SaveWeekGrid заменяет исключения недели окнами из сетки и переводит неделю в CUSTOM
func (s *Service) SaveWeekGrid(ctx context.Context, practitionerID int64, week time.Time, grid weekly.Grid) (*WeekView, error) {
	weekStart := weekly.WeekStart(week)
	s.logger.Info("SaveWeekGrid: practitioner=%d week=%s", practitionerID, weekStart.Format(domain.DateFormat))

	if err := s.checkNotPast(weekStart); err != nil {
		s.logger.Warn("SaveWeekGrid: %v", err)
		return nil, err
	}
	if err := s.checkGridResolution(grid); err != nil {
		s.logger.Warn("SaveWeekGrid: %v", err)
		return nil, err
	}

	intervals, err := weekly.FromGrid(grid)
	if err != nil {
		s.logger.Warn("SaveWeekGrid: malformed grid: %v", err)
		return nil, err
	}

	var windows []weekly.Window
	for _, iv := range intervals {
		windows = append(windows, projectWithin(iv, weekStart)...)
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.repo.ReplaceOverrides(txCtx, practitionerID, weekStart, windows); err != nil {
			return fmt.Errorf("%w: SaveWeekGrid - replace overrides: %w", ErrInternal, err)
		}
		return s.upsertBehavior(txCtx, practitionerID, weekStart, domain.WeekCustom)
	})
	if err != nil {
		s.logger.Error("SaveWeekGrid: failed for practitioner=%d: %v", practitionerID, err)
		return nil, err
	}

	s.logger.Info("SaveWeekGrid: saved %d windows for practitioner=%d", len(windows), practitionerID)
	return s.GetWeek(ctx, practitionerID, weekStart)
}

// SetWeekBehavior меняет поведение недели
func (s *Service) SetWeekBehavior(ctx context.Context, practitionerID int64, week time.Time, behavior domain.WeekBehavior) (*WeekView, error) {
	weekStart := weekly.WeekStart(week)
	s.logger.Info("SetWeekBehavior: practitioner=%d week=%s behavior=%s",
		practitionerID, weekStart.Format(domain.DateFormat), behavior)

	if _, ok := domain.ParseWeekBehavior(string(behavior)); !ok {
		return nil, fmt.Errorf("%w: unknown week behavior %q", ErrInvalidInput, behavior)
	}
	if err := s.checkNotPast(weekStart); err != nil {
		s.logger.Warn("SetWeekBehavior: %v", err)
		return nil, err
	}

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.weekBehavior(txCtx, practitionerID, weekStart)
		if err != nil {
			return err
		}
		if !domain.CanSwitchWeekBehavior(current, behavior) {
			return domain.NewValidationError(domain.ErrInvalidStateTransition, "behavior", behavior,
				fmt.Sprintf("cannot switch week from %s", current))
		}
		return s.upsertBehavior(txCtx, practitionerID, weekStart, behavior)
	})
	if err != nil {
		s.logger.Warn("SetWeekBehavior: failed for practitioner=%d: %v", practitionerID, err)
		return nil, err
	}

	return s.GetWeek(ctx, practitionerID, weekStart)
}

func (s *Service) weekBehavior(ctx context.Context, practitionerID int64, weekStart time.Time) (domain.WeekBehavior, error) {
	cfg, err := s.repo.GetWeekConfig(ctx, practitionerID, weekStart)
	if errors.Is(err, availabilityRepo.ErrWeekConfigNotFound) {
		return domain.WeekInherit, nil
	}
	if err != nil {
		s.logger.Error("weekBehavior: failed to get week config for practitioner=%d week=%s: %v",
			practitionerID, weekStart.Format(domain.DateFormat), err)
		return "", fmt.Errorf("%w: get week config: %w", ErrInternal, err)
	}
	return cfg.Behavior, nil
}

func (s *Service) upsertBehavior(ctx context.Context, practitionerID int64, weekStart time.Time, behavior domain.WeekBehavior) error {
	err := s.repo.UpsertWeekConfig(ctx, &domain.WeekConfig{
		PractitionerID: practitionerID,
		WeekStart:      weekStart,
		Behavior:       behavior,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert week config: %w", ErrInternal, err)
	}
	return nil
}

// currentWeek понедельник текущей недели
func (s *Service) currentWeek() time.Time {
	return weekly.WeekStart(s.timeProvider.Now())
}

func (s *Service) checkNotPast(weekStart time.Time) error {
	if current := s.currentWeek(); weekStart.Before(current) {
		return domain.NewValidationError(domain.ErrPastWeek, "week", weekStart.Format(domain.DateFormat),
			fmt.Sprintf("current week starts %s", current.Format(domain.DateFormat)))
	}
	return nil
}

func (s *Service) checkGridResolution(grid weekly.Grid) error {
	if want := s.policy.PeriodsPerDay(); grid.PeriodsPerDay() != want {
		return domain.NewValidationError(domain.ErrMalformedGrid, "grid", grid.PeriodsPerDay(),
			fmt.Sprintf("expected %d periods per day", want))
	}
	return nil
}

// projectTemplate проецирует интервалы шаблона на неделю; переходящий интервал заканчивается на следующей неделе
func projectTemplate(template []weekly.Interval, weekStart time.Time) []weekly.Window {
	windows := make([]weekly.Window, 0, len(template))
	for _, iv := range template {
		windows = append(windows, iv.Project(weekStart))
	}
	return windows
}

// projectWithin проецирует интервал на неделю, заворачивая хвост после воскресенья в начало той же недели
func projectWithin(iv weekly.Interval, weekStart time.Time) []weekly.Window {
	w := iv.Project(weekStart)
	weekEnd := weekStart.Add(weekly.Week)
	if !w.End.After(weekEnd) {
		return []weekly.Window{w}
	}
	return []weekly.Window{
		{Start: weekStart, End: weekStart.Add(w.End.Sub(weekEnd))},
		{Start: w.Start, End: weekEnd},
	}
}

func validateTemplate(intervals []weekly.Interval) error {
	for i, iv := range intervals {
		if !iv.Start.Valid() || !iv.End.Valid() {
			return domain.NewValidationError(domain.ErrInvalidInterval, "intervals", iv.String(), "outside of the week")
		}
		if other, ok := weekly.OverlappingAny(intervals[i+1:], iv); ok {
			return domain.NewValidationError(domain.ErrInvalidInterval, "intervals", iv.String(),
				fmt.Sprintf("overlaps %s", other))
		}
	}
	return nil
}
