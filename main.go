// Package main book exchange API.
//
// @title           Library Exchange API
// @version         1.0
// @description     Peer-to-peer book lending: shelves, bookings, exchange points, notifications.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/n1x9s/library/app/echoServer"
	authctrl "github.com/n1x9s/library/app/echoServer/controller/auth"
	bookctrl "github.com/n1x9s/library/app/echoServer/controller/book"
	bookingctrl "github.com/n1x9s/library/app/echoServer/controller/booking"
	notifctrl "github.com/n1x9s/library/app/echoServer/controller/notification"
	pointctrl "github.com/n1x9s/library/app/echoServer/controller/point"
	"github.com/n1x9s/library/app/echoServer/validation"
	"github.com/n1x9s/library/config"
	bookrepo "github.com/n1x9s/library/repository/book"
	bookingrepo "github.com/n1x9s/library/repository/booking"
	notifrepo "github.com/n1x9s/library/repository/notification"
	pointrepo "github.com/n1x9s/library/repository/point"
	userrepo "github.com/n1x9s/library/repository/user"
	authsvc "github.com/n1x9s/library/service/auth"
	booksvc "github.com/n1x9s/library/service/book"
	bookingsvc "github.com/n1x9s/library/service/booking"
	notifsvc "github.com/n1x9s/library/service/notification"
	"github.com/n1x9s/library/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	pr := pointrepo.New(db)
	bkr := bookingrepo.New(db)
	nr := notifrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ns := notifsvc.New(nr, log)
	bs := booksvc.New(db, br, bkr)
	bks := bookingsvc.New(db, bkr, br, pr, ur, ns)
	rem := bookingsvc.NewReminder(bkr, br, ns)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bks, V: v, Log: log}
	pointC := &pointctrl.Controller{Repo: pr, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, Log: log}

	// daily sweep: return reminders + old-notification purge
	go func() {
		t := time.NewTicker(24 * time.Hour)
		defer t.Stop()
		for {
			if n, err := rem.SendReturnReminders(ctx); err != nil {
				log.Error("return reminder sweep failed", "err", err)
			} else {
				log.Info("return reminder sweep", "sent", n)
			}
			if n, err := ns.PurgeOld(ctx, 30*24*time.Hour); err != nil {
				log.Error("notification purge failed", "err", err)
			} else if n > 0 {
				log.Info("notification purge", "deleted", n)
			}
			<-t.C
		}
	}()

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Book:         bookC,
		Booking:      bookingC,
		Point:        pointC,
		Notification: notifC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
