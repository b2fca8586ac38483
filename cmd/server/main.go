package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ModawnAI/everything-backend-sub017/internal/config"
	"github.com/ModawnAI/everything-backend-sub017/internal/database"
	"github.com/ModawnAI/everything-backend-sub017/internal/handler"
	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/queue"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
	"github.com/ModawnAI/everything-backend-sub017/internal/router"
	"github.com/ModawnAI/everything-backend-sub017/internal/service"
)

func main() {
	_ = godotenv.Load() // read .env when present; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs the cross-process slot locker and the rate limiter.
	// Without it the engine still serializes correctly inside a single
	// process via the in-memory locker.
	rdb := config.NewRedisClient()
	var locker lock.Locker
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, cfg.LockWaitTimeout, cfg.LockTTL)
	} else {
		log.Println("redis unavailable; using in-process lock manager")
		locker = lock.NewMemoryLocker(cfg.LockWaitTimeout)
	}

	reservationRepo := repository.NewReservationRepo(db)
	statusLogRepo := repository.NewStatusLogRepo(db)
	userRepo := repository.NewUserRepo(db)
	shopRepo := repository.NewShopRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	pointRepo := repository.NewPointRepo(db)

	reservationSvc := service.NewReservationService(locker, reservationRepo, statusLogRepo, userRepo, shopRepo, serviceRepo)
	pointsSvc := service.NewPointsService(locker, pointRepo, userRepo)
	shopSvc := service.NewShopService(locker, shopRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewReservationHandler(reservationSvc), handler.NewPointsHandler(pointsSvc), cfg.JWTSecret, rdb)
	router.RegisterShopAdmin(e, handler.NewShopAdminHandler(shopSvc), cfg.JWTSecret)

	// Background consumer that turns reservation.status events into
	// append-only audit lines. It reconnects forever on its own.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
