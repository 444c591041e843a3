package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/okoval/giftbox/internal/config"
	"github.com/okoval/giftbox/internal/db"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/service"
	"github.com/okoval/giftbox/internal/storage"
	"github.com/okoval/giftbox/internal/timeutil"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	Clock         *timeutil.AdjustableClock
	AuthService   *service.AuthService
	GiftService   *service.GiftService
	RevealService *service.RevealService
	FileService   *service.FileService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	giftRepository := repository.NewGiftRepository(database)
	contentRepository := repository.NewContentRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Site time. The admin demo clock overrides it process-wide.
	clock := timeutil.NewAdjustableClock()

	location := cfg.RevealLocation()

	words, err := service.LoadWords(cfg.WordsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load word table: %v", err)
	}

	revealCfg := service.RevealConfig{
		Location:        location,
		Words:           words,
		WordCycleLength: cfg.WordCycleLength,
		BirthdayWord:    cfg.BirthdayWord,
		CacheSize:       cfg.RenderCacheSize,
		CacheTTL:        cfg.RenderCacheTTL,
		FetchTimeout:    cfg.ContentFetchTimeout,
	}
	revealCfg.WordCycleStart, err = parseDate(cfg.WordCycleStart, location)
	if err != nil {
		return nil, fmt.Errorf("invalid WORD_CYCLE_START: %v", err)
	}
	revealCfg.Birthday, err = parseDate(cfg.BirthdayDate, location)
	if err != nil {
		return nil, fmt.Errorf("invalid BIRTHDAY_DATE: %v", err)
	}
	revealCfg.CountdownTarget, err = parseDate(cfg.CountdownTarget, location)
	if err != nil {
		return nil, fmt.Errorf("invalid COUNTDOWN_TARGET: %v", err)
	}

	// Services. The reveal service owns the render cache; the gift
	// service flushes it on every mutation.
	revealService := service.NewRevealService(giftRepository, contentRepository, clock, revealCfg)
	giftService := service.NewGiftService(giftRepository, contentRepository, revealService)
	fileService := service.NewFileService(fileRepository, fileStorage)
	authService := service.NewAuthService(
		userRepository,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
	)

	// Seed the admin account
	err = authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin: %v", err)
	}

	return &App{
		Cfg:           cfg,
		DB:            database,
		Clock:         clock,
		AuthService:   authService,
		GiftService:   giftService,
		RevealService: revealService,
		FileService:   fileService,
	}, nil
}

// parseDate reads a YYYY-MM-DD config value as the start of that day in
// the reveal zone. Empty values stay zero.
func parseDate(value string, location *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", value, location)
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
