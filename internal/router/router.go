package router

import (
	"time"

	"fixflow/internal/config"
	"fixflow/internal/handler"
	"fixflow/internal/infra"
	"fixflow/internal/middleware"
	"fixflow/internal/repository"
	"fixflow/internal/service"
	"fixflow/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, webhook *infra.WebhookClient) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	stockRepo := repository.NewStockEntryRepository(db)
	folioRepo := repository.NewFolioSequenceRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	variantSvc := service.NewVariantService(variantRepo)
	folioSvc := service.NewFolioService(folioRepo, branchRepo)
	stockSvc := service.NewStockService(stockRepo)
	movementSvc := service.NewMovementService(movementRepo, stockSvc, folioSvc, variantRepo)
	ticketSvc := service.NewTicketService(ticketRepo, stockSvc, movementSvc, folioSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	variantsH := handler.NewVariantsHandler(variantSvc)
	stockH := handler.NewStockHandler(stockSvc)
	movementsH := handler.NewMovementsHandler(movementSvc)
	ticketsH := handler.NewTicketsHandler(ticketSvc)
	foliosH := handler.NewFoliosHandler(folioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, webhook))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: technician, supervisor, admin — declared per-endpoint
		tickets := v1.Group("/tickets", middleware.RequireRole("technician", "supervisor", "admin"))
		{
			tickets.POST("", ticketsH.Create)
			tickets.GET("", ticketsH.List)
			tickets.GET("/:id", ticketsH.Get)
			tickets.GET("/:id/history", ticketsH.History)
			tickets.POST("/:id/parts", ticketsH.AddPart)
			tickets.POST("/:id/transition", ticketsH.Transition)
		}

		// Movements — supervisors and admins record; everyone reads
		v1.GET("/movements", middleware.RequireRole("technician", "supervisor", "admin"), movementsH.List)
		v1.POST("/movements", middleware.RequireRole("supervisor", "admin"), movementsH.Record)

		stock := v1.Group("/stock", middleware.RequireRole("technician", "supervisor", "admin"))
		{
			stock.GET("", stockH.List)
			stock.GET("/alerts", stockH.Alerts)
		}
		v1.PATCH("/stock/:variant_id/thresholds", middleware.RequireRole("supervisor", "admin"), stockH.UpdateThresholds)

		v1.GET("/folios/preview", middleware.RequireRole("technician", "supervisor", "admin"), foliosH.Preview)

		// Variants — admin can write, all authenticated can read
		v1.GET("/variants", middleware.RequireRole("technician", "supervisor", "admin"), variantsH.List)
		v1.GET("/variants/:id", middleware.RequireRole("technician", "supervisor", "admin"), variantsH.Get)
		variants := v1.Group("/variants", middleware.RequireRole("admin"))
		{
			variants.POST("", variantsH.Create)
			variants.PUT("/:id", variantsH.Update)
			variants.DELETE("/:id", variantsH.Deactivate)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
