package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/n1x9s/library/app/echoServer/controller/auth"
	bookctrl "github.com/n1x9s/library/app/echoServer/controller/book"
	bookingctrl "github.com/n1x9s/library/app/echoServer/controller/booking"
	notifctrl "github.com/n1x9s/library/app/echoServer/controller/notification"
	pointctrl "github.com/n1x9s/library/app/echoServer/controller/point"
	jwtutil "github.com/n1x9s/library/util/jwt"
)

type C struct {
	Auth         *authctrl.Controller
	Book         *bookctrl.Controller
	Booking      *bookingctrl.Controller
	Point        *pointctrl.Controller
	Notification *notifctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction from verified claims
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, ok := ctx.Get("user").(jwt.MapClaims)
			if !ok {
				if tok, tokOK := ctx.Get("user").(*jwt.Token); tokOK {
					claims, ok = tok.Claims.(jwt.MapClaims)
				}
			}
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			uid, err := jwtutil.Subject(claims)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	auth.GET("/auth/me", c.Auth.Me)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/my", c.Book.MyBooks)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)
	auth.PUT("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)

	// Exchange points
	auth.GET("/booking-points", c.Point.List)

	// Bookings
	auth.POST("/bookings", c.Booking.Create)
	auth.GET("/bookings", c.Booking.List)
	auth.GET("/bookings/:id", c.Booking.Get)
	auth.PUT("/bookings/:id/status", c.Booking.UpdateStatus)
	auth.POST("/bookings/:id/confirm-pickup", c.Booking.ConfirmPickup)
	auth.POST("/bookings/:id/confirm-return", c.Booking.ConfirmReturn)
	auth.DELETE("/bookings/:id", c.Booking.Cancel)

	// Notifications
	auth.GET("/notifications", c.Notification.List)
	auth.GET("/notifications/unread-count", c.Notification.UnreadCount)
	auth.PUT("/notifications/:id/read", c.Notification.MarkRead)
	auth.PUT("/notifications/read-all", c.Notification.MarkAllRead)
}
