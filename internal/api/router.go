package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wfunc/liar-game/internal/config"
	"github.com/wfunc/liar-game/internal/game"
	"github.com/wfunc/liar-game/internal/middleware"
	"github.com/wfunc/liar-game/internal/repository"
	"github.com/wfunc/liar-game/internal/room"
	"github.com/wfunc/liar-game/internal/utils"
	"github.com/wfunc/liar-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps 路由依赖
type Deps struct {
	DB        *gorm.DB
	JWT       *utils.JWTManager
	Rooms     *room.Directory
	Sessions  *game.SessionRegistry
	Players   repository.PlayerRepository
	Records   repository.GameRecordRepository
	WebSocket *websocket.Handler
}

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	playerHandler  *PlayerHandler
	roomHandler    *RoomHandler
	wsHandler      *websocket.Handler
	authMiddleware *middleware.AuthMiddleware
	wsPath         string
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(cfg *config.Config, deps Deps, log *zap.Logger) *Router {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))

	router := &Router{
		engine:         engine,
		db:             deps.DB,
		playerHandler:  NewPlayerHandler(deps.Players, deps.Records, deps.JWT, log),
		roomHandler:    NewRoomHandler(deps.Rooms, deps.Sessions, deps.Records, deps.Players, cfg.Server.PublicURL, log),
		wsHandler:      deps.WebSocket,
		authMiddleware: middleware.NewAuthMiddleware(deps.JWT),
		wsPath:         cfg.WebSocket.Path,
		log:            log,
	}
	router.setupRoutes()
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Access-Token", "X-Request-ID")
	c.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		// 访客登录（不需要认证）
		v1.POST("/players", r.playerHandler.Create)
		v1.GET("/players/:id/stats", r.playerHandler.Stats)

		// 房间查询（不需要认证）
		v1.GET("/rooms", r.roomHandler.List)
		v1.GET("/rooms/:id", r.roomHandler.Get)
		v1.GET("/rooms/:id/qrcode", r.roomHandler.QRCode)
		v1.GET("/rooms/:id/records", r.roomHandler.Records)

		// 房间操作（需要认证）
		rooms := v1.Group("/rooms")
		rooms.Use(r.authMiddleware.RequireAuth())
		{
			rooms.POST("", r.roomHandler.Create)
			rooms.DELETE("/:id", r.roomHandler.Delete)
			rooms.POST("/:id/join", r.roomHandler.Join)
			rooms.POST("/:id/leave", r.roomHandler.Leave)
		}
	}

	// WebSocket路由，令牌在查询参数中校验
	if r.wsHandler != nil {
		path := r.wsPath
		if path == "" {
			path = "/ws"
		}
		r.engine.GET(path, r.wsHandler.ServeWS)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "数据库连接失败",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
		"rooms":   r.roomHandler.rooms.Count(),
	})
}

// requestLogger 用 zap 记录请求
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP请求",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// Handler 返回 http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
