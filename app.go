package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"ecopredict/config"
	"ecopredict/controllers"
	"ecopredict/database"
	"ecopredict/services"
	"ecopredict/utils"
)

// app хранит собранные по конфигурации зависимости сервиса
type app struct {
	cfg         *config.Config
	service     *services.EvaluationService
	memoryStore *services.MemoryRecordStore
	checks      map[string]controllers.HealthCheck
	closers     []func() error
}

// loadApp читает конфигурацию, настраивает логгеры и собирает приложение.
// Для команд, печатающих результат в stdout, информационный лог уходит в stderr.
func loadApp(configPath string, quiet bool) (*app, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, err
	}
	if quiet {
		utils.InfoLogger.SetOutput(os.Stderr)
	}
	if err := utils.InitLoggers(cfg.Log.Dir); err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:    cfg,
		checks: make(map[string]controllers.HealthCheck),
	}

	var db *database.Database
	if cfg.NeedsDatabase() {
		var err error
		db, err = database.NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.checks["database"] = db.Ping
	}

	store, err := a.buildRecordStore(db)
	if err != nil {
		a.Close()
		return nil, err
	}

	history, err := a.buildHistoryLog(db)
	if err != nil {
		a.Close()
		return nil, err
	}

	engine := services.NewSolvencyEngine(services.SolvencyPolicy{
		DebtToIncomeRatio: cfg.Solvency.DebtToIncomeRatio,
		ZeroRatePolicy:    services.ZeroRatePolicy(cfg.Solvency.ZeroRatePolicy),
	})

	policy := engine.Policy()
	utils.LogInfo("solvency policy: debt-to-income %.2f, zero rate %s", policy.DebtToIncomeRatio, policy.ZeroRatePolicy)

	notifier := services.NewNotificationService(cfg)
	a.closers = append(a.closers, func() error {
		notifier.Wait()
		return nil
	})

	a.service = services.NewEvaluationService(store, engine, history, notifier)
	return a, nil
}

func (a *app) buildRecordStore(db *database.Database) (services.RecordStore, error) {
	var base interface {
		services.RecordStore
		services.RecordLoader
	}

	switch a.cfg.Dataset.Source {
	case "postgres":
		base = services.NewDBRecordStore(db.DB)
	default:
		path := a.cfg.Dataset.Path
		base = services.NewCSVRecordStore(path, a.cfg.Dataset.IDColumn)
		a.checks["dataset"] = func(ctx context.Context) error {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("%w: %v", services.ErrDatasetUnavailable, err)
			}
			return nil
		}
	}

	switch a.cfg.Dataset.Cache {
	case "memory":
		a.memoryStore = services.NewMemoryRecordStore(base)
		return a.memoryStore, nil
	case "redis":
		cache := services.NewRedisRecordCache(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		a.closers = append(a.closers, cache.Close)
		a.checks["redis"] = cache.Ping
		ttl := time.Duration(a.cfg.Dataset.CacheTTL) * time.Second
		return services.NewCachedRecordStore(base, cache, ttl), nil
	default:
		return base, nil
	}
}

func (a *app) buildHistoryLog(db *database.Database) (services.HistoryLog, error) {
	switch a.cfg.History.Backend {
	case "sqlite":
		log, err := services.NewSQLiteHistoryLog(a.cfg.History.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, log.Close)
		return log, nil
	case "postgres":
		return services.NewDBHistoryLog(db.DB), nil
	default:
		return services.NewFileHistoryLog(a.cfg.History.Path), nil
	}
}

// Close освобождает ресурсы в обратном порядке
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
