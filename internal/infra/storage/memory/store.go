// Package memory keeps scheduling data in process memory. Every call runs
// under one store-wide lock, so DoSerializable gives real serializable
// transactions with rollback; it backs local runs and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

type txKey struct{}

// Store in-memory хранилище шаблонов, исключений недели и записей
type Store struct {
	mu sync.Mutex
	data
}

type data struct {
	templates         map[int64][]weekly.Interval
	weekConfigs       map[int64]map[int64]domain.WeekConfig
	overrides         map[int64]map[int64][]weekly.Window
	appointments      map[int64]domain.Appointment
	nextAppointmentID int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{data: data{
		templates:    make(map[int64][]weekly.Interval),
		weekConfigs:  make(map[int64]map[int64]domain.WeekConfig),
		overrides:    make(map[int64]map[int64][]weekly.Window),
		appointments: make(map[int64]domain.Appointment),
	}}
}

// Appointments возвращает репозиторий записей поверх хранилища
func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

// Availability возвращает репозиторий доступности поверх хранилища
func (s *Store) Availability() *AvailabilityRepository {
	return &AvailabilityRepository{store: s}
}

// Do выполняет fn атомарно
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.DoSerializable(ctx, fn)
}

// DoReadOnly выполняет fn атомарно
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.DoSerializable(ctx, fn)
}

// DoSerializable выполняет fn под блокировкой хранилища; при ошибке изменения откатываются
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// lock захватывает блокировку, если вызов идет вне транзакции
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (d data) clone() data {
	out := data{
		templates:         make(map[int64][]weekly.Interval, len(d.templates)),
		weekConfigs:       make(map[int64]map[int64]domain.WeekConfig, len(d.weekConfigs)),
		overrides:         make(map[int64]map[int64][]weekly.Window, len(d.overrides)),
		appointments:      maps.Clone(d.appointments),
		nextAppointmentID: d.nextAppointmentID,
	}
	for id, ivs := range d.templates {
		out.templates[id] = slices.Clone(ivs)
	}
	for id, weeks := range d.weekConfigs {
		out.weekConfigs[id] = maps.Clone(weeks)
	}
	for id, weeks := range d.overrides {
		cloned := make(map[int64][]weekly.Window, len(weeks))
		for wk, ws := range weeks {
			cloned[wk] = slices.Clone(ws)
		}
		out.overrides[id] = cloned
	}
	return out
}
