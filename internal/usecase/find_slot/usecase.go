package find_slot

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// UseCase поиск свободных слотов и проверка момента записи
type UseCase struct {
	resolver        WeekResolver
	appointmentRepo AppointmentRepository
	policy          domain.SchedulingPolicy
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	resolver WeekResolver,
	appointmentRepo AppointmentRepository,
	policy domain.SchedulingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		resolver:        resolver,
		appointmentRepo: appointmentRepo,
		policy:          policy,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// NextBookable возвращает ближайший свободный слот не раньше from+MinLeadTime и не позже from+MaxLeadTime
// ok == false, если такого слота нет
func (uc *UseCase) NextBookable(ctx context.Context, practitionerID int64, from time.Time) (slot Slot, ok bool, err error) {
	earliest := from.Add(uc.policy.MinLeadTime)
	latest := from.Add(uc.policy.MaxLeadTime)

	free, err := uc.freeStarts(ctx, practitionerID, earliest, latest)
	if err != nil {
		return Slot{}, false, err
	}

	for start := range free {
		uc.logger.Info("NextBookable: practitioner=%d next slot %s", practitionerID, start.Format(time.RFC3339))
		return uc.slot(start), true, nil
	}

	uc.logger.Info("NextBookable: practitioner=%d has no slot until %s", practitionerID, latest.Format(time.RFC3339))
	return Slot{}, false, nil
}

// ListBookable возвращает все свободные слоты недели, содержащей week, с учетом ограничений по времени
func (uc *UseCase) ListBookable(ctx context.Context, practitionerID int64, week time.Time) ([]Slot, error) {
	now := uc.timeProvider.Now()
	weekStart := weekly.WeekStart(week)

	lo := maxTime(weekStart, now.Add(uc.policy.MinLeadTime))
	hi := minTime(weekStart.Add(weekly.Week-time.Nanosecond), now.Add(uc.policy.MaxLeadTime))
	if hi.Before(lo) {
		return nil, nil
	}

	free, err := uc.freeStarts(ctx, practitionerID, lo, hi)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for start := range free {
		slots = append(slots, uc.slot(start))
	}
	return slots, nil
}

// IsBookable сообщает, можно ли записаться к специалисту на момент at сейчас
func (uc *UseCase) IsBookable(ctx context.Context, practitionerID int64, at time.Time) (*BookableResult, error) {
	err := uc.Check(ctx, practitionerID, at, uc.timeProvider.Now())
	switch {
	case err == nil:
		return &BookableResult{At: at, Bookable: true}, nil
	case errors.Is(err, domain.ErrLeadTimeViolation),
		errors.Is(err, domain.ErrNoAvailabilityAtInstant),
		errors.Is(err, domain.ErrSchedulingConflict):
		return &BookableResult{At: at, Bookable: false, Reason: err.Error()}, nil
	default:
		return nil, err
	}
}

// FilterBookable возвращает тех специалистов из practitionerIDs, к которым можно записаться на момент at.
// Порядок входного списка сохраняется, повторы отбрасываются.
func (uc *UseCase) FilterBookable(ctx context.Context, practitionerIDs []int64, at time.Time) ([]int64, error) {
	if len(practitionerIDs) > MaxFilterPractitioners {
		return nil, fmt.Errorf("%w: FilterBookable - too many practitioners: %d > %d",
			ErrInvalidInput, len(practitionerIDs), MaxFilterPractitioners)
	}

	bookable := make([]int64, 0, len(practitionerIDs))
	seen := make(map[int64]struct{}, len(practitionerIDs))
	for _, id := range practitionerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		res, err := uc.IsBookable(ctx, id, at)
		if err != nil {
			uc.logger.Error("FilterBookable: failed to check practitioner=%d: %v", id, err)
			return nil, err
		}
		if res.Bookable {
			bookable = append(bookable, id)
		}
	}

	uc.logger.Info("FilterBookable: %d of %d practitioners bookable at %s",
		len(bookable), len(seen), at.Format(time.RFC3339))
	return bookable, nil
}

// Check проверяет момент at относительно now и возвращает типизированную ошибку:
// ErrLeadTimeViolation, ErrNoAvailabilityAtInstant или ErrSchedulingConflict
//
// Сессия [at, at+SessionDuration] должна целиком лежать в одном окне доступности.
func (uc *UseCase) Check(ctx context.Context, practitionerID int64, at, now time.Time) error {
	if err := CheckLeadTime(uc.policy, at, now); err != nil {
		return err
	}

	end := at.Add(uc.policy.SessionDuration)
	windows, err := uc.windows(ctx, practitionerID, at, end)
	if err != nil {
		return err
	}

	if !covered(windows, at, end) {
		return domain.NewValidationError(domain.ErrNoAvailabilityAtInstant, "scheduledAt", at.Format(time.RFC3339),
			"session is outside of practitioner availability")
	}

	busy, err := uc.appointmentRepo.ListActiveByPractitioner(ctx, practitionerID, at, end)
	if err != nil {
		uc.logger.Error("Check: failed to list appointments of practitioner=%d: %v", practitionerID, err)
		return fmt.Errorf("%w: Check - list appointments: %w", ErrInternal, err)
	}
	if len(busy) > 0 {
		return domain.NewValidationError(domain.ErrSchedulingConflict, "scheduledAt", at.Format(time.RFC3339),
			fmt.Sprintf("practitioner already has appointment id=%d", busy[0].ID))
	}

	return nil
}

// CheckLeadTime проверяет, что at лежит в [now+MinLeadTime, now+MaxLeadTime]
func CheckLeadTime(policy domain.SchedulingPolicy, at, now time.Time) error {
	if earliest := now.Add(policy.MinLeadTime); at.Before(earliest) {
		return domain.NewValidationError(domain.ErrLeadTimeViolation, "scheduledAt", at.Format(time.RFC3339),
			fmt.Sprintf("must not be earlier than %s", earliest.Format(time.RFC3339)))
	}
	if latest := now.Add(policy.MaxLeadTime); at.After(latest) {
		return domain.NewValidationError(domain.ErrLeadTimeViolation, "scheduledAt", at.Format(time.RFC3339),
			fmt.Sprintf("must not be later than %s", latest.Format(time.RFC3339)))
	}
	return nil
}

// freeStarts перечисляет выровненные начала сессий в [lo, hi] по возрастанию, пропуская занятые
func (uc *UseCase) freeStarts(ctx context.Context, practitionerID int64, lo, hi time.Time) (iter.Seq[time.Time], error) {
	d := uc.policy.SessionDuration
	if d <= 0 {
		return nil, fmt.Errorf("%w: session duration must be positive", ErrInvalidInput)
	}

	windows, err := uc.windows(ctx, practitionerID, lo, hi.Add(d))
	if err != nil {
		return nil, err
	}
	merged := weekly.MergeWindows(windows)

	busy, err := uc.appointmentRepo.ListActiveByPractitioner(ctx, practitionerID, lo, hi.Add(d))
	if err != nil {
		uc.logger.Error("freeStarts: failed to list appointments of practitioner=%d: %v", practitionerID, err)
		return nil, fmt.Errorf("%w: list appointments: %w", ErrInternal, err)
	}

	return func(yield func(time.Time) bool) {
		for _, w := range merged {
			aligned := weekly.Window{Start: weekly.AlignUp(maxTime(w.Start, lo), d), End: w.End}
			for start := range aligned.SessionStarts(d) {
				if start.After(hi) {
					return
				}
				end := start.Add(d)
				if !covered(windows, start, end) {
					continue
				}
				taken := slices.ContainsFunc(busy, func(a *domain.Appointment) bool { return a.OverlapsWindow(start, end) })
				if taken {
					continue
				}
				if !yield(start) {
					return
				}
			}
		}
	}, nil
}

// windows возвращает эффективные окна доступности недель, затрагивающих [from, to], без объединения
// Предыдущая неделя нужна для окон, переходящих через воскресенье
func (uc *UseCase) windows(ctx context.Context, practitionerID int64, from, to time.Time) ([]weekly.Window, error) {
	var all []weekly.Window
	last := weekly.WeekStart(to)
	for wk := weekly.WeekStart(from).AddDate(0, 0, -7); !wk.After(last); wk = wk.AddDate(0, 0, 7) {
		resolved, err := uc.resolver.ResolveWeek(ctx, practitionerID, wk)
		if err != nil {
			uc.logger.Error("windows: failed to resolve week %s for practitioner=%d: %v",
				wk.Format(domain.DateFormat), practitionerID, err)
			return nil, err
		}
		all = append(all, resolved.Windows...)
	}
	return joinWholeWeeks(all), nil
}

// joinWholeWeeks склеивает соседние окна "вся неделя": такая доступность непрерывна между неделями.
// Остальные окна остаются отдельными интервалами.
func joinWholeWeeks(ws []weekly.Window) []weekly.Window {
	var whole, rest []weekly.Window
	for _, w := range ws {
		if w.Duration() >= weekly.Week {
			whole = append(whole, w)
		} else {
			rest = append(rest, w)
		}
	}
	out := append(rest, weekly.MergeWindows(whole)...)
	weekly.SortWindows(out)
	return out
}

// covered сообщает, лежит ли сессия [start, end] целиком в одном окне
func covered(windows []weekly.Window, start, end time.Time) bool {
	return slices.ContainsFunc(windows, func(w weekly.Window) bool { return w.Covers(start, end) })
}

func (uc *UseCase) slot(start time.Time) Slot {
	return Slot{StartsAt: start, EndsAt: start.Add(uc.policy.SessionDuration)}
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
