package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/layali/planner-gateway/internal/auth"
	"example.com/layali/planner-gateway/internal/config"
	"example.com/layali/planner-gateway/internal/handlers"
	"example.com/layali/planner-gateway/internal/marketplace"
	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/notifications"
	"example.com/layali/planner-gateway/internal/present"
	"example.com/layali/planner-gateway/internal/repository"
	"example.com/layali/planner-gateway/internal/session"
	"example.com/layali/planner-gateway/internal/validation"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, sessions *session.Registry) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	client := marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Timeout)
	gateway := handlers.MarketplaceGateway(client)
	formatter := present.NewFormatter(cfg.Marketplace.Currency, int32(cfg.Marketplace.CurrencyPlaces))
	suggestionLog := repository.NewSuggestionLogRepository(db)
	notificationHub := notifications.NewHub()

	sessionHandler := handlers.NewSessionHandler(sessions, gateway, notificationHub, suggestionLog, formatter, logger)
	eventHandler := handlers.NewEventHandler(sessions, gateway)
	historyHandler := handlers.NewHistoryHandler(suggestionLog)
	healthHandler := handlers.NewHealthHandler(db, sessions)

	registerRoutes(
		e,
		healthHandler,
		sessionHandler,
		eventHandler,
		historyHandler,
		auth.JWTMiddleware(verifier, allowedRoles(cfg.Auth.AllowedRoles)...),
		authRateLimiter(cfg.Auth),
		suggestionsRateLimiter(cfg.Marketplace),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func allowedRoles(values []string) []models.Role {
	roles := make([]models.Role, 0, len(values))
	for _, value := range values {
		roles = append(roles, models.Role(value))
	}
	return roles
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if userID, ok := auth.UserIDFromContext(c); ok {
				attrs = append(attrs, slog.String("user_id", userID))
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

// suggestionsRateLimiter ограничивает запросы предложений по пользователю,
// поэтому ставится после проверки токена.
func suggestionsRateLimiter(cfg config.MarketplaceConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID, ok := auth.UserIDFromContext(c); ok {
				return "user:" + userID, nil
			}
			return "ip:" + c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many suggestion requests"})
		},
	})
}
