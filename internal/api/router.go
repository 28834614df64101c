package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/duel-game/internal/middleware"
	"github.com/wfunc/duel-game/internal/service"
	"github.com/wfunc/duel-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	authHandler    *AuthHandler
	matchHandler   *MatchHandler
	assetHandler   *AssetHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, hub *websocket.Hub, log *zap.Logger) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建处理器
	authHandler := NewAuthHandler(services.Auth, services.User)
	matchHandler := NewMatchHandler(services.Match)
	assetHandler := NewAssetHandler(services.User, services.Match)
	wsHandler := NewWebSocketHandler(hub, log)

	// 创建中间件
	authMiddleware := middleware.NewAuthMiddleware(services.Auth)

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		authHandler:    authHandler,
		matchHandler:   matchHandler,
		assetHandler:   assetHandler,
		wsHandler:      wsHandler,
		authMiddleware: authMiddleware,
		log:            log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// OpenAPI文档（swagger构建标签下 /swagger 以此为数据源）
	r.engine.StaticFile("/openapi", "./docs/openapi.yaml")
	registerSwaggerRoutes(r.engine)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			// 需要认证的路由
			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
				authRequired.GET("/profile", r.authHandler.GetProfile)
				authRequired.PUT("/password", r.authHandler.UpdatePassword)
			}
		}

		// 对局路由（需要认证）
		matches := v1.Group("/matches")
		matches.Use(r.authMiddleware.RequireAuth())
		{
			matches.POST("", r.matchHandler.CreateMatch)
			matches.GET("/lobby", r.matchHandler.GetLobbyMatches)
			matches.GET("/in-play", r.matchHandler.GetInPlayMatches)
			matches.GET("/:id", r.matchHandler.GetMatch)
			matches.POST("/:id/join", r.matchHandler.JoinMatch)
			matches.POST("/:id/move", r.matchHandler.SubmitMove)
			matches.POST("/:id/bot-move", r.matchHandler.SupplyBotMove)
			matches.POST("/:id/resolve", r.matchHandler.ResolveMatch)
			matches.GET("/:id/moves", r.matchHandler.GetMoveHistory)
		}

		// 资产路由（需要认证）
		assets := v1.Group("/assets")
		assets.Use(r.authMiddleware.RequireAuth())
		{
			assets.GET("", r.assetHandler.GetHoldings)
			assets.POST("", r.assetHandler.MintAsset)
			assets.GET("/:id/record", r.assetHandler.GetWinLoss)
		}

		// 能力授权路由（需要认证）
		capabilities := v1.Group("/capabilities")
		capabilities.Use(r.authMiddleware.RequireAuth())
		{
			capabilities.POST("/grant", r.assetHandler.GrantCapability)
			capabilities.POST("/revoke", r.assetHandler.RevokeCapability)
		}

		// WebSocket统计
		ws := v1.Group("/ws")
		ws.Use(r.authMiddleware.RequireAuth())
		{
			ws.GET("/stats", r.wsHandler.OnlineStats)
		}
	}

	// WebSocket连接（令牌可经query参数传递）
	r.engine.GET("/ws", r.authMiddleware.RequireAuth(), r.wsHandler.HandleConnection)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
