package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"roombooking/internal/access"
	"roombooking/internal/config"
	"roombooking/internal/middleware"
	"roombooking/internal/modules/auth"
	"roombooking/internal/modules/booking"
	"roombooking/internal/modules/feed"
	"roombooking/internal/modules/payment"
	"roombooking/internal/modules/rental"
	"roombooking/internal/modules/report"
	"roombooking/internal/modules/room"
	"roombooking/internal/notification"
	"roombooking/internal/pkg/jwt"
)

// App is the assembled HTTP application with the long-lived pieces main has to stop.
type App struct {
	Router *gin.Engine
	Hub    *feed.Hub
	Mailer *notification.Mailer
	Tokens *jwt.Service
}

// Close stops background delivery. Call after the HTTP server has drained.
func (a *App) Close() {
	a.Hub.Close()
	if a.Mailer != nil {
		a.Mailer.Wait()
	}
}

func New(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*App, error) {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	authz, err := access.NewAuthorizer()
	if err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}
	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)

	// Repositories
	userRepo := auth.NewUserRepository(db)
	roomRepo := room.NewRepository(db)
	bookingStore := booking.NewStore(db)
	paymentRepo := payment.NewRepository(db)
	rentalRepo := rental.NewRepository(db)
	reportRepo := report.NewRepository(db)

	// Events
	hub := feed.NewHub(log)
	publishers := notification.Fanout{hub}
	var mailer *notification.Mailer
	if cfg.Mail.Enabled {
		mailer = notification.NewMailer(cfg.Mail, userRepo, log)
		publishers = append(publishers, mailer)
	} else {
		log.Info("mail notifications disabled")
	}

	// Services
	authService := auth.NewService(userRepo, tokens, int64(cfg.JWT.TTL.Seconds()), log)
	roomService := room.NewService(roomRepo, authz, log)
	bookingService := booking.NewService(bookingStore, bookingStore, authz, publishers, log)
	paymentService := payment.NewService(paymentRepo, bookingStore, authz, log)
	rentalService := rental.NewService(rentalRepo, bookingStore, authz, log)
	reportService := report.NewService(reportRepo, report.NewPDFRenderer(), authz, log)

	// Handlers
	authHandler := auth.NewHandler(authService)
	roomHandler := room.NewHandler(roomService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	rentalHandler := rental.NewHandler(rentalService)
	reportHandler := report.NewHandler(reportService)
	feedHandler := feed.NewHandler(hub, tokens, authz)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.GET("/health", health(db))
	feedHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		roomHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(tokens), middleware.StaffOnly())
		{
			// номера и способы оплаты дополнительно требуют роль admin (см. access policy)
			roomHandler.RegisterAdminRoutes(admin)
			bookingHandler.RegisterAdminRoutes(admin)
			paymentHandler.RegisterAdminRoutes(admin)
			rentalHandler.RegisterAdminRoutes(admin)
			reportHandler.RegisterAdminRoutes(admin)
		}
	}

	return &App{Router: r, Hub: hub, Mailer: mailer, Tokens: tokens}, nil
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "time": time.Now().UTC()})
	}
}
