package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const (
	templateTable   = "availability_template_intervals"
	overridesTable  = "availability_overrides"
	weekConfigTable = "week_configs"
)

// Repository репозиторий шаблона доступности, исключений и конфигурации недель
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetTemplate возвращает интервалы шаблона специалиста в порядке начала
func (r *Repository) GetTemplate(ctx context.Context, practitionerID int64) ([]weekly.Interval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("start_weekday", "start_time", "end_weekday", "end_time").
		From(templateTable).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		OrderBy("start_weekday ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var intervals []weekly.Interval
	for rows.Next() {
		var (
			startDay, endDay   int
			startTime, endTime types.TimeString
		)
		if err := rows.Scan(&startDay, &startTime, &endDay, &endTime); err != nil {
			return nil, fmt.Errorf("%w: GetTemplate - scan interval: %w", ErrScanRow, err)
		}

		iv, err := toInterval(startDay, startTime, endDay, endTime)
		if err != nil {
			return nil, fmt.Errorf("%w: GetTemplate - decode interval: %w", ErrScanRow, err)
		}
		intervals = append(intervals, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - rows iteration: %w", ErrScanRow, err)
	}

	return intervals, nil
}

// ReplaceTemplate заменяет все интервалы шаблона специалиста
// Вызывается внутри транзакции вместе с заморозкой истории
func (r *Repository) ReplaceTemplate(ctx context.Context, practitionerID int64, intervals []weekly.Interval) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(templateTable).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceTemplate - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceTemplate - execute delete: %w", ErrExecQuery, err)
	}

	if len(intervals) == 0 {
		return nil
	}

	builder := psqlbuilder.Insert(templateTable).
		Columns("practitioner_id", "start_weekday", "start_time", "end_weekday", "end_time")
	for _, iv := range intervals {
		startDay, startClock := weekly.FromPoint(iv.Start)
		endDay, endClock := weekly.FromPoint(iv.End)
		builder = builder.Values(
			practitionerID,
			startDay,
			types.NewTimeStringFromDuration(startClock),
			endDay,
			types.NewTimeStringFromDuration(endClock),
		)
	}

	query, args, err = builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceTemplate - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceTemplate - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetWeekConfig возвращает конфигурацию недели или ErrWeekConfigNotFound
func (r *Repository) GetWeekConfig(ctx context.Context, practitionerID int64, weekStart time.Time) (*domain.WeekConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("practitioner_id", "week_start", "behavior", "updated_at").
		From(weekConfigTable).
		Where(squirrel.Eq{
			"practitioner_id": practitionerID,
			"week_start":      weekly.WeekStart(weekStart),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekConfig - build select query: %v", ErrBuildQuery, err)
	}

	cfg, err := scanWeekConfig(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWeekConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekConfig - scan config: %w", ErrScanRow, err)
	}

	return cfg, nil
}

// ListWeekConfigs возвращает конфигурации недель с началом в [from, to)
func (r *Repository) ListWeekConfigs(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.WeekConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("practitioner_id", "week_start", "behavior", "updated_at").
		From(weekConfigTable).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		Where(squirrel.GtOrEq{"week_start": from.UTC()}).
		Where(squirrel.Lt{"week_start": to.UTC()}).
		OrderBy("week_start ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeekConfigs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeekConfigs - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var configs []*domain.WeekConfig
	for rows.Next() {
		cfg, err := scanWeekConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListWeekConfigs - scan config: %w", ErrScanRow, err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWeekConfigs - rows iteration: %w", ErrScanRow, err)
	}

	return configs, nil
}

// UpsertWeekConfig создает или обновляет конфигурацию недели
func (r *Repository) UpsertWeekConfig(ctx context.Context, cfg *domain.WeekConfig) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(weekConfigTable).
		Columns("practitioner_id", "week_start", "behavior").
		Values(cfg.PractitionerID, weekly.WeekStart(cfg.WeekStart), cfg.Behavior).
		Suffix("ON CONFLICT (practitioner_id, week_start) DO UPDATE SET behavior = EXCLUDED.behavior, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertWeekConfig - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertWeekConfig - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// DeleteWeekConfigsFrom удаляет конфигурации недель начиная с weekStart
func (r *Repository) DeleteWeekConfigsFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error {
	return r.deleteFrom(ctx, "DeleteWeekConfigsFrom", weekConfigTable, practitionerID, weekStart)
}

// GetOverrides возвращает исключения недели в порядке начала
func (r *Repository) GetOverrides(ctx context.Context, practitionerID int64, weekStart time.Time) ([]weekly.Window, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("starts_at", "ends_at").
		From(overridesTable).
		Where(squirrel.Eq{
			"practitioner_id": practitionerID,
			"week_start":      weekly.WeekStart(weekStart),
		}).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var windows []weekly.Window
	for rows.Next() {
		var w weekly.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("%w: GetOverrides - scan window: %w", ErrScanRow, err)
		}
		w.Start = w.Start.UTC()
		w.End = w.End.UTC()
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - rows iteration: %w", ErrScanRow, err)
	}

	return windows, nil
}

// ReplaceOverrides заменяет исключения недели
func (r *Repository) ReplaceOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(overridesTable).
		Where(squirrel.Eq{
			"practitioner_id": practitionerID,
			"week_start":      weekly.WeekStart(weekStart),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceOverrides - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceOverrides - execute delete: %w", ErrExecQuery, err)
	}

	return r.AddOverrides(ctx, practitionerID, weekStart, windows)
}

// AddOverrides добавляет исключения к неделе
func (r *Repository) AddOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error {
	if len(windows) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	week := weekly.WeekStart(weekStart)
	builder := psqlbuilder.Insert(overridesTable).
		Columns("practitioner_id", "week_start", "starts_at", "ends_at")
	for _, w := range windows {
		builder = builder.Values(practitionerID, week, w.Start.UTC(), w.End.UTC())
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddOverrides - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddOverrides - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// DeleteOverridesFrom удаляет исключения недель начиная с weekStart
func (r *Repository) DeleteOverridesFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error {
	return r.deleteFrom(ctx, "DeleteOverridesFrom", overridesTable, practitionerID, weekStart)
}

func (r *Repository) deleteFrom(ctx context.Context, op, table string, practitionerID int64, weekStart time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		Where(squirrel.GtOrEq{"week_start": weekly.WeekStart(weekStart)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build delete query: %v", ErrBuildQuery, op, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute delete: %w", ErrExecQuery, op, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWeekConfig(row rowScanner) (*domain.WeekConfig, error) {
	var (
		cfg       domain.WeekConfig
		behavior  string
		updatedAt sql.NullTime
	)
	if err := row.Scan(&cfg.PractitionerID, &cfg.WeekStart, &behavior, &updatedAt); err != nil {
		return nil, err
	}

	b, ok := domain.ParseWeekBehavior(behavior)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBehavior, behavior)
	}
	cfg.Behavior = b
	cfg.WeekStart = weekly.WeekStart(cfg.WeekStart)
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}

func toInterval(startDay int, startTime types.TimeString, endDay int, endTime types.TimeString) (weekly.Interval, error) {
	startClock, err := startTime.Duration()
	if err != nil {
		return weekly.Interval{}, err
	}
	endClock, err := endTime.Duration()
	if err != nil {
		return weekly.Interval{}, err
	}
	return weekly.ParseInterval(startDay, startClock, endDay, endClock, time.UTC)
}
