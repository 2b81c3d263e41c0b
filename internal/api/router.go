package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/clientmax/agency-crm/docs"
	"github.com/clientmax/agency-crm/internal/api/handler"
	"github.com/clientmax/agency-crm/internal/api/middleware"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/routing"
	"github.com/clientmax/agency-crm/internal/core/service"
	"github.com/clientmax/agency-crm/internal/core/session"
)

// Deps carries the wired application components the router exposes over HTTP.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string

	Employees *session.Store[domain.Employee]
	Clients   *session.Store[domain.Client]

	Notifications *service.NotificationService
	Hub           *service.Hub
	Assist        *service.AssistService
	Accounts      *service.AccountService
	AlertMail     *service.AlertMailService

	Postgres *sql.DB
	Mongo    *mongo.Database
	Redis    *redis.Client
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Employees, deps.Clients)
	rootHandler := handler.NewRootHandler(deps.Employees, deps.Clients)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications, deps.Hub)
	assistHandler := handler.NewAssistHandler(deps.Assist)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	alertMailHandler := handler.NewAlertMailHandler(deps.AlertMail)

	authMiddleware := middleware.Auth(deps.JWTSecret)
	authState := middleware.AuthStateFunc(rootHandler.AuthState)

	// --- Root dispatch ---
	e.GET("/", rootHandler.Dispatch)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.SignIn)
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/logout", authHandler.SignOut)
	e.GET("/auth/session", authHandler.Session)

	// --- Notification center ---
	notifications := e.Group("/notifications", authMiddleware,
		middleware.Guard(true, routing.UserTypeAny, authState))
	notifications.GET("", notificationHandler.List)
	notifications.POST("", notificationHandler.Add)
	notifications.DELETE("", notificationHandler.ClearAll)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Clear)
	notifications.GET("/settings", notificationHandler.Settings)
	notifications.PUT("/settings", notificationHandler.UpdateSettings)
	notifications.GET("/stream", notificationHandler.Stream)

	// --- AI assist ---
	e.POST("/assist", assistHandler.Assist, authMiddleware,
		middleware.Guard(true, routing.UserTypeAny, authState))

	// --- Account management (owner only) ---
	account := e.Group("/account", authMiddleware,
		middleware.Guard(true, routing.UserTypeEmployee, authState))
	account.POST("/reset-password", accountHandler.ResetPassword)
	account.POST("/delete", accountHandler.DeleteUser)

	// --- Threshold emails ---
	e.POST("/alerts/email", alertMailHandler.Send, authMiddleware,
		middleware.Guard(true, routing.UserTypeAny, authState))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Postgres, deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
