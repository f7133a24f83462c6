package api

import (
	"log"
	stdhttp "net/http"

	intconfig "bookmybus/internal/config"
	"bookmybus/internal/domain"
	h "bookmybus/internal/http/handlers"
	"bookmybus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every /api route onto a fresh gin engine.
func NewRouter(env intconfig.Env, hd h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })
	r.NoRoute(h.NoRoute(env.StaticDir))

	authed := middleware.Auth(hd.Tokens, hd.Accounts())
	admin := []gin.HandlerFunc{authed, middleware.RequireRoles(domain.RoleAdmin)}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", append(admin, h.Routes)...)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/login", hd.Login)
		auth.POST("/create-admin", hd.CreateAdmin)
		auth.GET("/user", authed, hd.CurrentUser)

		// Users
		users := api.Group("/users")
		users.PUT("/profile", authed, hd.UpdateProfile)
		usersAdmin := users.Group("/admin", admin...)
		usersAdmin.GET("/all", hd.ListUsers)
		usersAdmin.PUT("/:id/role", hd.ChangeUserRole)
		usersAdmin.DELETE("/:id", hd.DeleteUser)

		// Bookings
		bookings := api.Group("/bookings", authed)
		bookings.POST("", hd.CreateBooking)
		bookings.GET("", hd.ListMyBookings)
		bookings.GET("/admin/all", middleware.RequireRoles(domain.RoleAdmin), hd.ListAllBookings)
		bookings.GET("/:id", hd.GetBooking)
		bookings.PUT("/:id/cancel", hd.CancelBooking)
		bookings.GET("/:id/ticket", hd.BookingTicketPDF)
		bookings.GET("/:id/invoice", hd.BookingInvoicePDF)
		bookings.PUT("/:id/status", middleware.RequireRoles(domain.RoleAdmin), hd.UpdateBookingStatus)

		// Buses
		buses := api.Group("/buses")
		buses.GET("/search", hd.SearchBuses)
		buses.GET("", middleware.OptionalAuth(hd.Tokens, hd.Accounts()), hd.ListBuses)
		buses.GET("/:id", hd.GetBus)
		buses.POST("", append(admin, hd.CreateBus)...)
		buses.PUT("/:id", append(admin, hd.UpdateBus)...)
		buses.DELETE("/:id", append(admin, hd.DeleteBus)...)

		// Reports
		reports := api.Group("/reports", admin...)
		reports.GET("/dashboard", hd.Dashboard)
	}

	h.SetRouter(r)
	return r
}
