package availability

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// RedefineTemplateFrom заменяет шаблон начиная с недели week, не меняя прошлые недели
//
// Порядок внутри одной сериализуемой транзакции:
//  1. недели до week, которые наследуют шаблон, получают текущий шаблон как исключения и становятся CUSTOM
//  2. шаблон заменяется на intervals
//  3. конфигурации и исключения недель начиная с week удаляются
//  4. неделя week явно помечается как TEMPLATE
//
// Наследующие недели без конфигурации замораживаются только в пределах HistoryWeeks до текущей недели.
func (s *Service) RedefineTemplateFrom(ctx context.Context, practitionerID int64, week time.Time, intervals []weekly.Interval) (*TemplateView, error) {
	weekStart := weekly.WeekStart(week)
	s.logger.Info("RedefineTemplateFrom: practitioner=%d week=%s intervals=%d",
		practitionerID, weekStart.Format(domain.DateFormat), len(intervals))

	if err := s.checkNotPast(weekStart); err != nil {
		s.logger.Warn("RedefineTemplateFrom: %v", err)
		return nil, err
	}
	if err := validateTemplate(intervals); err != nil {
		s.logger.Warn("RedefineTemplateFrom: invalid template: %v", err)
		return nil, err
	}

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		return s.redefine(txCtx, practitionerID, weekStart, sortedIntervals(intervals))
	})
	if err != nil {
		s.logger.Error("RedefineTemplateFrom: failed for practitioner=%d: %v", practitionerID, err)
		return nil, err
	}

	s.logger.Info("RedefineTemplateFrom: template of practitioner=%d redefined from %s",
		practitionerID, weekStart.Format(domain.DateFormat))
	return s.GetTemplate(ctx, practitionerID)
}

// RedefineTemplateFromGrid то же, что RedefineTemplateFrom, но шаблон задан сеткой
func (s *Service) RedefineTemplateFromGrid(ctx context.Context, practitionerID int64, week time.Time, grid weekly.Grid) (*TemplateView, error) {
	if err := s.checkGridResolution(grid); err != nil {
		s.logger.Warn("RedefineTemplateFromGrid: %v", err)
		return nil, err
	}

	intervals, err := weekly.FromGrid(grid)
	if err != nil {
		s.logger.Warn("RedefineTemplateFromGrid: malformed grid: %v", err)
		return nil, err
	}

	return s.RedefineTemplateFrom(ctx, practitionerID, week, intervals)
}

// AddTemplateInterval добавляет интервал к шаблону начиная с текущей недели
// Интервал, пересекающийся с существующим, отклоняется
func (s *Service) AddTemplateInterval(ctx context.Context, practitionerID int64, interval weekly.Interval) (*TemplateView, error) {
	s.logger.Info("AddTemplateInterval: practitioner=%d interval=%s", practitionerID, interval)

	if err := validateTemplate([]weekly.Interval{interval}); err != nil {
		s.logger.Warn("AddTemplateInterval: %v", err)
		return nil, err
	}

	weekStart := s.currentWeek()
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetTemplate(txCtx, practitionerID)
		if err != nil {
			return fmt.Errorf("%w: AddTemplateInterval - get template: %w", ErrInternal, err)
		}

		if other, ok := weekly.OverlappingAny(current, interval); ok {
			return domain.NewValidationError(domain.ErrInvalidInterval, "interval", interval.String(),
				fmt.Sprintf("overlaps existing interval %s", other))
		}

		return s.redefine(txCtx, practitionerID, weekStart, sortedIntervals(append(current, interval)))
	})
	if err != nil {
		s.logger.Warn("AddTemplateInterval: failed for practitioner=%d: %v", practitionerID, err)
		return nil, err
	}

	s.logger.Info("AddTemplateInterval: template of practitioner=%d extended from %s",
		practitionerID, weekStart.Format(domain.DateFormat))
	return s.GetTemplate(ctx, practitionerID)
}

func (s *Service) redefine(ctx context.Context, practitionerID int64, weekStart time.Time, intervals []weekly.Interval) error {
	previous, err := s.repo.GetTemplate(ctx, practitionerID)
	if err != nil {
		return fmt.Errorf("%w: redefine - get template: %w", ErrInternal, err)
	}

	if len(previous) > 0 {
		if err := s.freezeHistory(ctx, practitionerID, weekStart, previous); err != nil {
			return err
		}
	}

	if err := s.repo.ReplaceTemplate(ctx, practitionerID, intervals); err != nil {
		return fmt.Errorf("%w: redefine - replace template: %w", ErrInternal, err)
	}
	if err := s.repo.DeleteWeekConfigsFrom(ctx, practitionerID, weekStart); err != nil {
		return fmt.Errorf("%w: redefine - delete week configs: %w", ErrInternal, err)
	}
	if err := s.repo.DeleteOverridesFrom(ctx, practitionerID, weekStart); err != nil {
		return fmt.Errorf("%w: redefine - delete overrides: %w", ErrInternal, err)
	}

	return s.upsertBehavior(ctx, practitionerID, weekStart, domain.WeekInherit)
}

// freezeHistory материализует прежний шаблон в исключения для наследующих недель до weekStart
func (s *Service) freezeHistory(ctx context.Context, practitionerID int64, weekStart time.Time, previous []weekly.Interval) error {
	configs, err := s.repo.ListWeekConfigs(ctx, practitionerID, time.Time{}, weekStart)
	if err != nil {
		return fmt.Errorf("%w: freezeHistory - list week configs: %w", ErrInternal, err)
	}

	behaviors := make(map[time.Time]domain.WeekBehavior, len(configs))
	for _, cfg := range configs {
		behaviors[weekly.WeekStart(cfg.WeekStart)] = cfg.Behavior
	}

	horizon := s.currentWeek().AddDate(0, 0, -7*s.policy.HistoryWeeks)
	var weeks []time.Time
	for wk := horizon; wk.Before(weekStart); wk = wk.AddDate(0, 0, 7) {
		if b, ok := behaviors[wk]; !ok || b == domain.WeekInherit {
			weeks = append(weeks, wk)
		}
	}
	for wk, b := range behaviors {
		if wk.Before(horizon) && b == domain.WeekInherit {
			weeks = append(weeks, wk)
		}
	}

	for _, wk := range weeks {
		if err := s.repo.AddOverrides(ctx, practitionerID, wk, projectTemplate(previous, wk)); err != nil {
			return fmt.Errorf("%w: freezeHistory - add overrides for %s: %w", ErrInternal, wk.Format(domain.DateFormat), err)
		}
		if err := s.upsertBehavior(ctx, practitionerID, wk, domain.WeekCustom); err != nil {
			return err
		}
	}

	s.logger.Info("freezeHistory: froze %d weeks for practitioner=%d before %s",
		len(weeks), practitionerID, weekStart.Format(domain.DateFormat))
	return nil
}

func sortedIntervals(intervals []weekly.Interval) []weekly.Interval {
	out := slices.Clone(intervals)
	slices.SortFunc(out, func(a, b weekly.Interval) int { return cmp.Compare(a.Start, b.Start) })
	return out
}
