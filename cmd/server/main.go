package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/glossline/glossline/internal/config"
	"github.com/glossline/glossline/internal/database"
	"github.com/glossline/glossline/internal/handler"
	"github.com/glossline/glossline/internal/middleware"
	"github.com/glossline/glossline/internal/queue"
	"github.com/glossline/glossline/internal/repository"
	"github.com/glossline/glossline/internal/router"
	"github.com/glossline/glossline/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Redis backs the response cache, the rate limiter and the
	// password-reset token store.  A nil client disables all three
	// gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: caching, rate limiting and password reset disabled")
	}

	users := repository.NewUserRepo(db)
	celebs := repository.NewCelebrityRepo(db)
	outfits := repository.NewOutfitRepo(db)
	reviews := repository.NewReviewRepo(db)
	movies := repository.NewMovieRepo(db)
	settings := repository.NewSettingsRepo(db)
	stats := repository.NewStatsRepo(db)
	resets := repository.NewResetTokenStore(rdb)
	audit := service.NewAuditPublisher()

	authH := handler.NewAuthHandler(cfg, users, settings)
	adminH := handler.NewAdminHandler(users)
	superH := handler.NewSuperadminHandler(cfg, users, settings, stats, resets, audit)
	celebH := handler.NewCelebrityHandler(celebs)
	outfitH := handler.NewOutfitHandler(outfits)
	reviewH := handler.NewReviewHandler(reviews)
	movieH := handler.NewMovieHandler(movies)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, celebH, outfitH, reviewH, movieH, cache)
	router.RegisterAuth(e, authH, cfg.AccessSecret)
	router.RegisterAdmin(e, adminH, celebH, outfitH, reviewH, movieH, cfg.AccessSecret)
	router.RegisterSuperadmin(e, superH, cfg.AccessSecret)

	// The audit consumer tails the audit.events queue and appends to
	// logs/audit.log.  It reconnects forever and never takes the API down.
	go queue.StartAuditConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
