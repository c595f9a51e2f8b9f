package provider

import (
	"github.com/optrack-next/internal/authz"
	"github.com/optrack-next/internal/cache"
	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/queue"
	"github.com/optrack-next/internal/repository"
	"github.com/optrack-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo    repository.OrderRepository
	ItemRepo     repository.ItemRepository
	MovementRepo repository.MovementRepository
	SequenceRepo repository.SequenceRepository
	OperatorRepo repository.OperatorRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	OperatorService   *service.OperatorService
	SequenceService   *service.SequenceService
	OrderService      *service.OrderService
	TransitionService *service.TransitionService
	MovementService   *service.MovementService
	UploadService     *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ItemRepo = repository.NewItemRepository(db)
	c.MovementRepo = repository.NewMovementRepository(db)
	c.SequenceRepo = repository.NewSequenceRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.OperatorRepo)
	c.OperatorService = service.NewOperatorService(c.OperatorRepo, c.AuthService)
	c.SequenceService = service.NewSequenceService(c.SequenceRepo, c.OrderRepo, &c.Config.Workflow)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ItemRepo, c.MovementRepo, c.SequenceService)
	c.TransitionService = service.NewTransitionService(c.OrderRepo, c.ItemRepo, c.MovementRepo, c.QueueClient)
	c.MovementService = service.NewMovementService(c.MovementRepo)
	c.UploadService = service.NewUploadService(c.Config)
}
