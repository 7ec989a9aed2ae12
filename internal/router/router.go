package router

import (
	"time"

	"caixapos/internal/config"
	"caixapos/internal/handler"
	"caixapos/internal/infra"
	"caixapos/internal/middleware"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/service"
	"caixapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
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
	usuarioRepo := repository.NewUsuarioRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	caixaSvc := service.NewCaixaService(caixaRepo, usuarioRepo, dispatcher)
	produtoSvc := service.NewProdutoService(produtoRepo, rdb, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	produtosH := handler.NewProdutoHandler(produtoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		api.GET("/auth/profile", authH.Profile)

		caixa := api.Group("/caixa")
		{
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.POST("/fechar", caixaH.Fechar)
			caixa.GET("/aberto", caixaH.Aberto)
			caixa.GET("/status", caixaH.Status)
			// Kept at the legacy double-segment path the register UI calls.
			caixa.POST("/caixa/limpar", caixaH.Limpar)
		}

		// Product reads — any authenticated operator (catalog + scanner path)
		api.GET("/produtos", produtosH.Listar)
		api.GET("/produtos/estoque-baixo", produtosH.EstoqueBaixo)
		api.GET("/produtos/codigo/:codigo", produtosH.BuscarPorCodigo)
		api.GET("/produtos/:id", produtosH.BuscarPorID)

		// Write operations — admin only
		prods := api.Group("/produtos", middleware.RequireRole(model.RoleAdmin))
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Desativar)
			prods.PATCH("/:id/estoque", produtosH.AjustarEstoque)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
