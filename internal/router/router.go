package router

import (
	"fmt"
	"strings"

	"github.com/optrack-next/internal/cache"
	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/constants"
	adminhandlers "github.com/optrack-next/internal/http/handlers/admin"
	planthandlers "github.com/optrack-next/internal/http/handlers/plant"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按车间/后台分组）
	plantHandler := planthandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的附件）- 必须放在最前面
	r.Static("/uploads", "./uploads")

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 登录接口（无需鉴权）
		apiV1.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), adminHandler.Login)

		// 车间端接口（需鉴权 + RBAC）
		plant := apiV1.Group("/plant")
		plant.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo), RBACMiddleware(c.AuthzService))
		{
			plant.GET("/stages", plantHandler.ListStages)
			plant.GET("/stages/:stage/items", plantHandler.StageBoard)
			plant.GET("/items/:id", plantHandler.GetItem)
			plant.GET("/items/:id/trail", plantHandler.GetItemTrail)
			plant.POST("/items/:id/advance", plantHandler.AdvanceItem)
			plant.POST("/items/:id/return", plantHandler.ReturnItem)
			plant.PUT("/items/:id/started", plantHandler.SetItemStarted)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo), RBACMiddleware(c.AuthzService))
		{
			admin.GET("/me", adminHandler.Me)
			admin.PUT("/password", adminHandler.UpdatePassword)

			// 订单管理
			admin.GET("/orders", adminHandler.ListOrders)
			admin.POST("/orders", adminHandler.CreateOrder)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PUT("/orders/:id", adminHandler.UpdateOrder)
			admin.POST("/orders/:id/cancel", adminHandler.CancelOrder)
			admin.DELETE("/orders/:id", adminHandler.DeleteOrder)
			admin.POST("/orders/reconcile-status", adminHandler.ReconcileOrderStatuses)

			// 工件管理
			admin.GET("/items", adminHandler.ListItems)
			admin.GET("/items/:id", adminHandler.GetItem)
			admin.DELETE("/items/:id", adminHandler.HardCloseItem)

			// 流转记录
			admin.GET("/movements", adminHandler.ListMovements)

			// 操作员管理
			admin.GET("/operators", adminHandler.ListOperators)
			admin.POST("/operators", adminHandler.CreateOperator)
			admin.GET("/operators/:id", adminHandler.GetOperator)
			admin.PUT("/operators/:id", adminHandler.UpdateOperator)
			admin.DELETE("/operators/:id", adminHandler.DeleteOperator)

			// 角色与权限管理
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/operators/:id/roles", adminHandler.GetAuthzOperatorRoles)
			admin.PUT("/operators/:id/roles", adminHandler.SetAuthzOperatorRoles)

			// 附件上传
			admin.POST("/upload", adminHandler.UploadFile)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
