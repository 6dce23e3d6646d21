// Command server runs the ticket booking API: catalog browsing, the
// seat reservation engine and booking confirmation over HTTP, plus the
// background expiry sweeper and the booking.confirmed consumer.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/quickseats/booking/internal/config"
	"github.com/quickseats/booking/internal/database"
	"github.com/quickseats/booking/internal/handler"
	"github.com/quickseats/booking/internal/queue"
	"github.com/quickseats/booking/internal/repository"
	"github.com/quickseats/booking/internal/reservation"
	"github.com/quickseats/booking/internal/router"
	"github.com/quickseats/booking/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	coordinator := reservation.NewCoordinator(store, reservation.WithDefaultTTL(cfg.HoldTTL))

	sweeper := reservation.NewSweeper(store, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	defer func() { _ = sweeper.Stop() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	screens := repository.NewScreenRepo(db)
	shows := repository.NewShowRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Cfg:  cfg,
		Auth: &handler.AuthHandler{Users: users, Tokens: tokens, Cfg: cfg},
		Public: &handler.PublicHandler{
			Movies:      movies,
			Screens:     screens,
			Shows:       shows,
			Coordinator: coordinator,
		},
		Booking: &handler.BookingHandler{Coordinator: coordinator, Shows: shows},
		Admin: &handler.AdminHandler{
			Movies:  movies,
			Screens: screens,
			Shows:   shows,
			Store:   store,
		},
		Redis: rdb,
	})

	log.Fatal(e.Start(":" + cfg.Port))
}
