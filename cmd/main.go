package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	acceptAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/accept_appointment"
	addTemplateIntervalHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/add_template_interval"
	cancelAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_appointment"
	filterBookableHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/filter_bookable"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	getTemplateHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_template"
	getWeekHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_week"
	isBookableHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/is_bookable"
	listAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_appointments"
	listSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_slots"
	nextSlotHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/next_slot"
	redefineTemplateHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/redefine_template"
	saveWeekGridHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/save_week_grid"
	setWeekBehaviorHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/set_week_behavior"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/notifier"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	profileServiceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/profileservice"
	appointmentsService "github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	createAppointmentUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
	findSlotUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
	runSweepUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/run_sweep"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// appointmentStore объединяет контракты всех потребителей репозитория записей
type appointmentStore interface {
	createAppointmentUC.AppointmentRepository
	findSlotUC.AppointmentRepository
	appointmentsService.AppointmentRepository
	runSweepUC.AppointmentRepository
}

type txManager interface {
	availabilityService.TransactionManager
	createAppointmentUC.TransactionManager
	appointmentsService.TransactionManager
}

type publisher interface {
	createAppointmentUC.EventPublisher
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingService...")
	policy := cfg.Policy()
	log.Info("Scheduling policy: session=%s, min_lead=%s, max_lead=%s, history_weeks=%d",
		policy.SessionDuration, policy.MinLeadTime, policy.MaxLeadTime, policy.HistoryWeeks)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище: PostgreSQL или in-memory
	var (
		appointments appointmentStore
		availability availabilityService.AvailabilityRepository
		txMgr        txManager
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		appointments = store.Appointments()
		availability = store.Availability()
		txMgr = store
		log.Warn("Using in-memory storage, data is lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")
			appointments = appointmentRepo.NewRepository(wrappedDB)
			availability = availabilityRepo.NewRepository(wrappedDB)
			txMgr = txmanager.NewTransactionManager(wrappedDB)
		} else {
			plainDB := dbmetrics.WrapSQL(db)
			appointments = appointmentRepo.NewRepository(plainDB)
			availability = availabilityRepo.NewRepository(plainDB)
			txMgr = txmanager.NewTransactionManager(plainDB)
		}
	}

	// Блокировка слотов (Redis) на время записи
	var locker createAppointmentUC.Locker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			log.Fatal("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		locker = lock.NewRedisLocker(rdb, time.Duration(cfg.Redis.LockTTLSec)*time.Second)
		log.Info("Connected to Redis at %s", cfg.Redis.Addr)
	}

	// Публикация событий
	events, err := newPublisher(cfg.Notifications, log)
	if err != nil {
		log.Fatal("Failed to initialize %s publisher: %v", cfg.Notifications.Driver, err)
	}
	defer events.Close()
	log.Info("Event publisher: %s", cfg.Notifications.Driver)

	// Интеграции
	profileClient := profileServiceClient.NewClient(
		cfg.ProfileService.URL,
		time.Duration(cfg.ProfileService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ProfileService=%s timeout=%ds)",
		cfg.ProfileService.URL, cfg.ProfileService.Timeout)

	// Сервисы и use cases
	availabilitySvc := availabilityService.NewService(availability, txMgr, policy, log)
	appointmentsSvc := appointmentsService.NewService(appointments, events, txMgr, metricsCollector, log)
	findSlotUseCase := findSlotUC.NewUseCase(availabilitySvc, appointments, policy, log)
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointments,
		findSlotUseCase,
		availabilitySvc,
		profileClient,
		locker,
		events,
		txMgr,
		policy,
		metricsCollector,
		log,
	)
	runSweepUseCase := runSweepUC.NewUseCase(appointments, events, cfg.Sweep.BatchSize, metricsCollector, log)

	// Handlers
	getTemplate := getTemplateHandler.NewHandler(availabilitySvc, log)
	getWeek := getWeekHandler.NewHandler(availabilitySvc, log)
	nextSlot := nextSlotHandler.NewHandler(findSlotUseCase, log)
	isBookable := isBookableHandler.NewHandler(findSlotUseCase, log)
	filterBookable := filterBookableHandler.NewHandler(findSlotUseCase, log)
	listSlots := listSlotsHandler.NewHandler(findSlotUseCase, log)
	redefineTemplate := redefineTemplateHandler.NewHandler(availabilitySvc, log)
	addTemplateInterval := addTemplateIntervalHandler.NewHandler(availabilitySvc, log)
	saveWeekGrid := saveWeekGridHandler.NewHandler(availabilitySvc, log)
	setWeekBehavior := setWeekBehaviorHandler.NewHandler(availabilitySvc, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	acceptAppointment := acceptAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/practitioners/bookable", filterBookable.Handle).Methods(http.MethodGet)
	api.HandleFunc("/practitioners/{practitionerId}/template", getTemplate.Handle).Methods(http.MethodGet)
	api.HandleFunc("/practitioners/{practitionerId}/weeks/{week}", getWeek.Handle).Methods(http.MethodGet)
	api.HandleFunc("/practitioners/{practitionerId}/weeks/{week}/slots", listSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/practitioners/{practitionerId}/next-slot", nextSlot.Handle).Methods(http.MethodGet)
	api.HandleFunc("/practitioners/{practitionerId}/bookable", isBookable.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Расписание специалиста ---
	protected.HandleFunc("/practitioners/{practitionerId}/template", redefineTemplate.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/practitioners/{practitionerId}/template/intervals", addTemplateInterval.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/practitioners/{practitionerId}/weeks/{week}/grid", saveWeekGrid.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/practitioners/{practitionerId}/weeks/{week}/behavior", setWeekBehavior.Handle).Methods(http.MethodPut)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/accept", acceptAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// Фоновый проход автоматических переходов
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweepDone := make(chan struct{})
	if cfg.Sweep.Enabled {
		go runSweepLoop(rootCtx, runSweepUseCase, cfg.Sweep, log, sweepDone)
		log.Info("Sweep worker started (interval=%ds, batch=%d)", cfg.Sweep.IntervalSeconds, cfg.Sweep.BatchSize)
	} else {
		close(sweepDone)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-rootCtx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	<-sweepDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

func newPublisher(cfg config.NotificationsConfig, log *logger.Logger) (publisher, error) {
	switch cfg.Driver {
	case config.NotifierDriverRabbitMQ:
		p, err := notifier.NewRabbitPublisher(cfg.RabbitMQURL, cfg.Queue)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.NotifierDriverKafka:
		return notifier.NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic), nil
	default:
		return notifier.NewLogPublisher(log), nil
	}
}

// runSweepLoop запускает проход сразу и затем по таймеру до отмены ctx
func runSweepLoop(ctx context.Context, uc *runSweepUC.UseCase, cfg config.SweepConfig, log *logger.Logger, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Duration(cfg.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		runSweepOnce(ctx, uc, time.Duration(cfg.TimeoutSeconds)*time.Second, log)

		select {
		case <-ctx.Done():
			log.Info("Sweep worker stopped")
			return
		case <-ticker.C:
		}
	}
}

func runSweepOnce(ctx context.Context, uc *runSweepUC.UseCase, timeout time.Duration, log *logger.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := uc.Execute(runCtx, start.UTC())
	if err != nil {
		log.Error("Sweep run failed after %s: %v", time.Since(start), err)
		return
	}
	log.Debug("Sweep run complete in %s: scanned=%d transitions=%d", time.Since(start), result.Scanned, result.Transitions)
}
