package handler

import (
	"bingo-backend/internal/adapter/http/middleware"
	redisStore "bingo-backend/internal/adapter/storage/redis"
	"bingo-backend/internal/core/ports"
	"bingo-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	ReconcileSvc   ports.ReconcileService
	TokenVerifier  ports.TokenVerifier
	UserRepo       ports.UserRepository
	AvatarSvc      *service.AvatarService
	TranslationSvc *service.TranslationService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	auth := middleware.BearerAuth(deps.TokenVerifier, deps.Logger)

	walletHandler := NewWalletHandler(deps.WalletSvc)
	paymentHandler := NewPaymentHandler(deps.ReconcileSvc, deps.Logger)
	avatarHandler := NewAvatarHandler(deps.AvatarSvc)
	translationHandler := NewTranslationHandler(deps.TranslationSvc)
	appHandler := NewAppHandler(deps.UserRepo, deps.TranslationSvc, deps.AvatarSvc)

	api := r.Group("/api")

	// --- Provider callback (no auth; the payload is re-verified) ---
	api.POST("/payment-callback", rl("callback"), paymentHandler.Callback)
	api.GET("/payment-callback", paymentHandler.CallbackProbe)

	// --- Authenticated wallet and payment routes ---
	wallet := api.Group("/wallet", auth)
	{
		wallet.POST("/deposit", rl("deposit"), walletHandler.Deposit)
	}

	payment := api.Group("/payment", auth)
	{
		payment.POST("/verify-and-update", rl("verify"), paymentHandler.VerifyAndUpdate)
		payment.GET("/verify/:tx_ref", rl("verify"), paymentHandler.Verify)
		payment.GET("/history", rl("history"), walletHandler.History)
	}

	// --- Localization (public) ---
	api.GET("/translations/:language", translationHandler.Translations)
	api.POST("/translations/text/:language", translationHandler.TranslatedText)
	api.GET("/languages", translationHandler.Languages)
	api.GET("/content/:language", translationHandler.Content)

	// --- Avatars (public) ---
	avatar := api.Group("/avatar")
	{
		avatar.GET("/generate/:user_id", avatarHandler.Generate)
		avatar.GET("/variants/:user_id", avatarHandler.Variants)
		avatar.GET("/svg/:user_id", avatarHandler.SVG)
		avatar.GET("/ethiopian/:user_id", avatarHandler.Ethiopian)
		avatar.POST("/initials", avatarHandler.Initials)
	}

	// --- App configuration and profile ---
	api.GET("/config", appHandler.Config)
	api.POST("/user/update-email", auth, appHandler.UpdateEmail)

	return r
}
