package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/controllers"
	"github.com/cppla/aiblog/middleware"
	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/storage"
	"github.com/cppla/aiblog/utils"
)

// Deps are the process-wide handles the router wires into services and controllers.
type Deps struct {
	Config config.AppConfig
	DB     *gorm.DB
	Redis  *redis.Client // optional
	Tokens *utils.TokenManager
	Images storage.ImageStore // optional
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; fall back to the app logger
	accessLog, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err != nil {
		accessLog = utils.Logger
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if local, ok := deps.Images.(*storage.LocalStore); ok {
		r.Static(storage.LocalURLPrefix, local.Dir())
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	cache := utils.NewCache(deps.Redis)
	blacklist := utils.NewTokenBlacklist(deps.Redis)

	authService := services.NewAuthService(deps.DB, cfg, deps.Tokens, blacklist)
	postService := services.NewPostService(deps.DB, deps.Images)

	authController := controllers.NewAuthController(authService)
	postController := controllers.NewPostController(postService, deps.Images, cache)
	commentController := controllers.NewCommentController(services.NewCommentService(deps.DB), cache)
	likeController := controllers.NewLikeController(services.NewLikeService(deps.DB), cache)
	statsController := controllers.NewStatsController(services.NewStatsService(deps.DB))

	authRequired := middleware.AuthRequired(deps.Tokens, blacklist)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.Middleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.PUT("/password", authRequired, authController.ChangePassword)

	api.PATCH("/users/:id/role", authRequired, authController.SetRole)

	api.GET("/stats", statsController.GetStats)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.GET("/:id/comments", commentController.ListComments)
	postsGroup.GET("/:id/likes/count", likeController.LikeCount)

	protected := postsGroup.Group("")
	protected.Use(authRequired)
	protected.POST("", postController.CreatePost)
	protected.GET("/user/posts", postController.ListMyPosts)
	protected.PUT("/:id", postController.UpdatePost)
	protected.DELETE("/:id", postController.DeletePost)
	protected.PATCH("/:id/publish", postController.PublishPost)
	protected.POST("/:id/comment", commentController.CreateComment)
	protected.PUT("/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/comments/:commentId", commentController.DeleteComment)
	protected.POST("/:id/like", likeController.ToggleLike)
	protected.GET("/:id/likes/status", likeController.LikeStatus)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
