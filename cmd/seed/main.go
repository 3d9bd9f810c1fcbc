package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	availabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/availability"
	availabilityService "github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	practitioners := flag.Int("practitioners", 20, "number of practitioners to seed")
	firstID := flag.Int64("first-id", 1, "ID of the first practitioner")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("stdout", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	plainDB := dbmetrics.WrapSQL(db)
	svc := availabilityService.NewService(
		availabilityRepo.NewRepository(plainDB),
		txmanager.NewTransactionManager(plainDB),
		cfg.Policy(),
		log,
	)

	gofakeit.Seed(time.Now().UnixNano())

	ctx := context.Background()
	thisWeek := weekly.WeekStart(time.Now().UTC())
	for i := 0; i < *practitioners; i++ {
		id := *firstID + int64(i)
		if err := seedPractitioner(ctx, svc, id, thisWeek); err != nil {
			log.Fatal("Failed to seed practitioner=%d: %v", id, err)
		}
	}

	log.Info("Seed complete: %d practitioners", *practitioners)
}

// seedPractitioner создает шаблон из рабочих блоков по будним дням и иногда отпускную неделю
func seedPractitioner(ctx context.Context, svc *availabilityService.Service, practitionerID int64, thisWeek time.Time) error {
	var intervals []weekly.Interval
	for day := 1; day <= 7; day++ {
		if day >= 6 && !gofakeit.Bool() {
			continue
		}

		start := gofakeit.Number(7, 12)
		end := start + gofakeit.Number(3, 8)
		iv, err := weekly.ParseInterval(day, time.Duration(start)*time.Hour, day, time.Duration(end)*time.Hour, time.UTC)
		if err != nil {
			return err
		}
		intervals = append(intervals, iv)
	}

	if _, err := svc.RedefineTemplateFrom(ctx, practitionerID, thisWeek, intervals); err != nil {
		return err
	}

	if gofakeit.Number(1, 4) == 1 {
		vacation := thisWeek.AddDate(0, 0, 7*gofakeit.Number(1, 8))
		if _, err := svc.SetWeekBehavior(ctx, practitionerID, vacation, domain.WeekUnavailable); err != nil {
			return err
		}
	}
	return nil
}
