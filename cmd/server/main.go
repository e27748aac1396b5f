package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-system/config"
	"social-system/internal/handler"
	"social-system/internal/repository"
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	redisPkg "social-system/pkg/redis"
	"social-system/pkg/response"
	"social-system/pkg/storage"
	"social-system/pkg/store/mongostore"
	"social-system/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 社交系统启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("mongo_uri", cfg.Mongo.URI),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化文档数据库连接
	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancelInit()
	docStore, err := mongostore.New(initCtx, cfg.Mongo)
	if err != nil {
		log.Fatal("文档数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := docStore.Close(context.Background()); err != nil {
			log.Error("关闭文档数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("文档数据库连接成功")

	// 3.1 初始化Redis（在线状态与评分聚合缓存）
	if err := redisPkg.InitRedis(cfg.Redis); err != nil {
		// Redis不可用时降级运行：聚合直接回源，在线状态不可见
		log.Warn("Redis连接失败，缓存与在线状态降级", zap.Error(err))
	} else {
		defer redisPkg.Close()
		log.Info("Redis连接成功")
	}

	// 3.2 初始化对象存储（头像上传）
	files, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		log.Fatal("对象存储初始化失败", zap.Error(err))
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)

	accountRepo := repository.NewAccountRepository(docStore)
	profileRepo := repository.NewProfileRepository(docStore)
	friendRepo := repository.NewFriendRepository(docStore)
	wallRepo := repository.NewWallRepository(docStore)
	chatRepo := repository.NewChatRepository(docStore)
	ratingRepo := repository.NewRatingRepository(docStore)
	brandRepo := repository.NewBrandRepository(docStore)

	profileSvc := service.NewProfileService(profileRepo, files)
	identitySvc := service.NewIdentityService(accountRepo, profileSvc, jwtSvc)
	friendSvc := service.NewFriendService(friendRepo, profileRepo)
	wallSvc := service.NewWallService(wallRepo)
	chatSvc := service.NewChatService(chatRepo)
	ratingSvc := service.NewRatingService(ratingRepo)
	brandSvc := service.NewBrandService(brandRepo)

	authHandler := handler.NewAuthHandler(identitySvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	friendHandler := handler.NewFriendHandler(friendSvc)
	wallHandler := handler.NewWallHandler(wallSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	ratingHandler := handler.NewRatingHandler(ratingSvc)
	brandHandler := handler.NewBrandHandler(brandSvc)

	hub := websocket.NewHub(friendSvc, wallSvc, chatSvc, ratingSvc, profileSvc, jwtSvc, cfg.WebSocket)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()

	// 使用中间件
	router.Use(logger.LoggerMiddleware())      // 自定义日志中间件
	router.Use(logger.ErrorLoggerMiddleware()) // 错误日志中间件

	// 6. 设置基础路由
	setupBasicRoutes(router, docStore)

	// 6.1 静态文件（头像等上传内容）
	router.Static(cfg.Storage.BaseURL, files.RootDir())

	// 6.2 绑定业务路由
	v1 := router.Group("/api/v1")
	{
		// 认证接口（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/anonymous", authHandler.Anonymous)
		}

		// 用户资料（需要认证）
		profiles := v1.Group("/profiles")
		profiles.Use(jwtSvc.AuthMiddleware())
		{
			profiles.GET("/me", profileHandler.Me)                // 我的资料
			profiles.PUT("/me", profileHandler.Update)            // 更新我的资料
			profiles.POST("/me/avatar", profileHandler.UploadAvatar) // 上传头像
			profiles.GET("/search", profileHandler.Search)        // 搜索用户
			profiles.GET("/:user_id", profileHandler.Get)         // 查看他人资料
		}

		// 好友（需要认证）
		friends := v1.Group("/friends")
		friends.Use(jwtSvc.AuthMiddleware())
		{
			friends.POST("/requests", friendHandler.SendRequest)                    // 发送好友请求
			friends.GET("/requests", friendHandler.IncomingRequests)                // 待处理请求
			friends.PUT("/requests/:request_id/accept", friendHandler.Accept)       // 接受请求
			friends.PUT("/requests/:request_id/reject", friendHandler.Reject)       // 拒绝请求
			friends.GET("", friendHandler.ListFriends)                              // 好友列表
		}

		// 留言墙（需要认证）
		wall := v1.Group("/wall")
		wall.Use(jwtSvc.AuthMiddleware())
		{
			wall.POST("/posts", wallHandler.AddPost)          // 发布帖子
			wall.GET("/:user_id/posts", wallHandler.ListPosts) // 某用户的留言墙
		}

		// 私聊（需要认证）
		chats := v1.Group("/chats")
		chats.Use(jwtSvc.AuthMiddleware())
		{
			chats.POST("/send", chatHandler.Send)                  // 发送消息
			chats.GET("/:user_id/messages", chatHandler.History)   // 与某用户的聊天记录
		}

		// 评分（需要认证）
		ratings := v1.Group("/ratings")
		ratings.Use(jwtSvc.AuthMiddleware())
		{
			ratings.POST("", ratingHandler.Rate)                   // 评分
			ratings.GET("/:user_id", ratingHandler.View)           // 评分页视图
			ratings.GET("/:user_id/summary", ratingHandler.Summary) // 聚合结果
		}

		// 品牌建议（需要认证）
		brands := v1.Group("/brands")
		brands.Use(jwtSvc.AuthMiddleware())
		{
			brands.POST("/suggestions", brandHandler.Suggest)                     // 提交建议
			brands.GET("/suggestions", brandHandler.Pending)                      // 待审建议
			brands.PUT("/suggestions/:suggestion_id/approve", brandHandler.Approve) // 批准
			brands.DELETE("/suggestions/:suggestion_id", brandHandler.Remove)     // 驳回删除
			brands.GET("/approved", brandHandler.Approved)                        // 已批准品牌
		}
	}

	// WebSocket路由（实时订阅）
	router.GET("/ws", hub.Handle)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, docStore *mongostore.Store) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := docStore.HealthCheck(c.Request.Context()); err != nil {
			status = "store-down"
		}
		if err := redisPkg.HealthCheck(); err != nil {
			if status == "ok" {
				status = "cache-down"
			}
		}
		response.Success(c, gin.H{
			"status":  status,
			"message": "社交系统运行状态",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	// 完整url为：http://localhost:8080/
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "欢迎使用社交系统",
			"version": "1.0.0",
		})
	})
}
