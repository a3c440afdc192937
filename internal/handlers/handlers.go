package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockify/internal/config"
	"stockify/internal/mailer"
	"stockify/internal/middleware"
	"stockify/internal/models"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository"
	"stockify/internal/security"
	"stockify/internal/service"
)

// HealthCheck pings one backing dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Dependencies struct {
	Config  *config.AppConfig
	Log     zerolog.Logger
	Store   repository.Store
	Mailer  mailer.Sender
	Uploads service.ImageUploader
	Metrics *metrics.Metrics
	Limiter middleware.Limiter
	Checks  []HealthCheck
}

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	cookies middleware.CookieSettings
	metrics *metrics.Metrics
	limiter middleware.Limiter
	checks  []HealthCheck

	tokens   *security.TokenIssuer
	auth     *service.AuthService
	sessions *service.SessionService
	otps     *service.OTPService
	users    *service.UserService
	brands   *service.BrandService
	clients  *service.ClientService
	ledger   *service.LedgerService
}

func NewHandlerSet(deps Dependencies) HandlerSet {
	cfg := deps.Config
	log := deps.Log

	tokens := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  cfg.Security.JWTAccessSecret,
		RefreshSecret: cfg.Security.JWTRefreshSecret,
		AccessTTL:     cfg.Security.JWTAccessTTL,
		RefreshTTL:    cfg.Security.JWTRefreshTTL,
	})
	hasher := security.NewPasswordHasher(cfg.Security.BcryptCost)

	sessions := service.NewSessionService(deps.Store, cfg.Security.MaxDevices, deps.Metrics, log)
	otps := service.NewOTPService(deps.Store, hasher, deps.Mailer, cfg.OTP.Age, cfg.OTP.MaxAttempts, log)
	auth := service.NewAuthService(deps.Store, tokens, hasher, sessions, otps, cfg.Security.DeviceSecret, deps.Metrics, log)

	return HandlerSet{
		log: log,
		cfg: cfg,
		cookies: middleware.CookieSettings{
			Domain:        cfg.Cookies.Domain,
			Secure:        cfg.IsProduction(),
			AccessMaxAge:  cfg.Cookies.AccessMaxAge,
			RefreshMaxAge: cfg.Cookies.RefreshMaxAge,
		},
		metrics:  deps.Metrics,
		limiter:  deps.Limiter,
		checks:   deps.Checks,
		tokens:   tokens,
		auth:     auth,
		sessions: sessions,
		otps:     otps,
		users:    service.NewUserService(deps.Store, sessions, deps.Uploads, log),
		brands:   service.NewBrandService(deps.Store, deps.Uploads, log),
		clients:  service.NewClientService(deps.Store, deps.Uploads, log),
		ledger:   service.NewLedgerService(deps.Store, deps.Metrics, log),
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
	if h.metrics != nil {
		engine.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	engine.NoRoute(h.NotFound)

	requireAuth := middleware.Auth(h.tokens, h.sessions, h.cookies)
	limited := middleware.RateLimit(h.limiter, h.log)

	v1 := engine.Group("/api/v1")
	{
		auth := v1.Group("/users/auth")
		auth.POST("/register-user", limited, h.RegisterUser)
		auth.POST("/login", limited, h.Login)
		auth.GET("/manage-token", h.ManageToken)
		auth.POST("/logout", h.Logout)
		auth.POST("/verify-otp", limited, h.VerifyOTP)
		auth.POST("/resend-otp", limited, h.ResendOTP)

		protected := v1.Group("/users/auth", requireAuth)
		protected.POST("/logout-all", h.LogoutAll)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:id", h.RevokeSession)
	}

	user := v1.Group("/users/user", requireAuth)
	user.GET("/me", h.Me)
	user.PUT("/edit-user", h.EditUser)

	brands := v1.Group("/brands", requireAuth)
	brands.POST("/create-brand", h.CreateBrand)
	brands.GET("/get-brand-info", h.GetBrand)
	brands.PUT("/edit-brand-info", h.EditBrand)

	clients := v1.Group("/clients", requireAuth)
	clients.POST("/create-client", h.CreateClient)
	clients.GET("/get-clients", h.GetClients)
	clients.GET("/get-client/:id", h.GetClient)
	clients.PUT("/edit-client/:id", h.EditClient)
	clients.DELETE("/delete-client/:id", h.DeleteClient)

	transactions := v1.Group("/transactions", requireAuth)
	transactions.POST("/add-transaction/:id", h.AddTransaction)
	transactions.GET("/get-transactions/:id", h.GetTransactions)
	transactions.GET("/get-transaction/:transactionId", h.GetTransaction)
	transactions.DELETE("/delete-transaction/:id", h.DeleteTransaction)

	admin := v1.Group("/admin", requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	admin.GET("/users", h.AdminListUsers)
	admin.PUT("/users/:id/ban", h.AdminSetBanned)
}
