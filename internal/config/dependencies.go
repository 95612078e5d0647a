package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tugas-go/configs"
	"tugas-go/internal/cache"
	"tugas-go/internal/repository"
	"tugas-go/internal/service"
	"tugas-go/internal/token"
	"tugas-go/pkg/crypto"
	"tugas-go/pkg/database"
	"tugas-go/pkg/logger"
)

// Dependencies dibuat sekali saat start lalu dioper ke router; tidak ada
// state global.
type Dependencies struct {
	DB       *sql.DB
	Redis    *redis.Client // nil kalau cache tidak aktif
	Validate *validator.Validate
	Tokens   *token.Service
	Accounts *service.AccountService
	Tasks    *service.TaskService
	Log      *logger.Loggers
}

// Build connects to Postgres (fatal for the caller on error), makes sure the
// schema exists, optionally connects Redis and wires the services.
func Build(ctx context.Context, cfg configs.Config, log *logger.Loggers) (*Dependencies, error) {
	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.System.Info("Database Connected")

	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.ConnectRedis(ctx, cfg)
		if err != nil {
			// cache opsional, jalan terus tanpa Redis
			log.System.Warn("Redis unavailable, task cache disabled", zap.Error(err))
			rdb = nil
		} else {
			log.System.Info("Redis Connected", zap.String("addr", cfg.RedisAddr()))
		}
	}

	deps, err := Wire(cfg, db, rdb, log)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		db.Close()
		return nil, err
	}
	return deps, nil
}

// Wire builds the repositories and services on top of already opened
// connections. rdb may be nil.
func Wire(cfg configs.Config, db *sql.DB, rdb *redis.Client, log *logger.Loggers) (*Dependencies, error) {
	var cipher repository.DescriptionCipher
	if cfg.TaskEncryptionKey != "" {
		fc, err := crypto.NewFieldCipher(cfg.TaskEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("task encryption key: %w", err)
		}
		cipher = fc
	}

	var taskCache service.TaskCache
	if rdb != nil {
		taskCache = cache.NewTaskCache(rdb, cfg.CacheTTL, log.System)
	}

	validate := service.NewValidator()
	tokens := token.New(cfg.SecretKey, cfg.TokenTTL)

	tasks := service.NewTaskService(repository.NewTaskRepository(db, cipher), taskCache, validate)
	accounts, err := service.NewAccountService(repository.NewUserRepository(db), tokens, tasks, validate, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	return &Dependencies{
		DB:       db,
		Redis:    rdb,
		Validate: validate,
		Tokens:   tokens,
		Accounts: accounts,
		Tasks:    tasks,
		Log:      log,
	}, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
