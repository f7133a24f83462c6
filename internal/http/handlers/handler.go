package handlers

import (
	"context"
	"time"

	"bookmybus/internal/auth"
	"bookmybus/internal/http/middleware"
	"bookmybus/internal/repositories"
	"bookmybus/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the /api routes. Nil stores fall back to the MySQL
// repositories on the shared connection.
type Handler struct {
	Buses    services.BusStore
	Bookings services.BookingStore
	Users    services.UserStore
	Tokens   auth.TokenService
	AdminKey string
	Now      func() time.Time
	// Ping checks the database for /api/db-check.
	Ping func(ctx context.Context) error
}

// Accounts is the user lookup the auth middleware checks tokens against.
func (h Handler) Accounts() middleware.Accounts {
	if h.Users != nil {
		return h.Users
	}
	return repositories.UserRepository{}
}

func (h Handler) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Users:     h.Users,
		Tokens:    h.Tokens,
		AdminKey:  h.AdminKey,
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) userService(c *gin.Context) services.UserService {
	return services.UserService{Users: h.Users, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Buses:     h.Buses,
		Bookings:  h.Bookings,
		IDs:       services.BookingIDGenerator{Now: h.Now},
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) busService(c *gin.Context) services.BusService {
	return services.BusService{Buses: h.Buses, Now: h.Now, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) reportsService() services.ReportsService {
	return services.ReportsService{Users: h.Users, Buses: h.Buses, Bookings: h.Bookings}
}

func (h Handler) docsService(c *gin.Context) services.DocsService {
	return services.DocsService{Bookings: h.Bookings, Now: h.Now, RequestID: middleware.GetRequestID(c)}
}
