package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Jonah-Douglas/Campfire/domain"
	"github.com/Jonah-Douglas/Campfire/internal/config"
	"github.com/Jonah-Douglas/Campfire/internal/infrastructure/auth"
	"github.com/Jonah-Douglas/Campfire/internal/infrastructure/database"
	"github.com/Jonah-Douglas/Campfire/internal/infrastructure/notifications"
	"github.com/Jonah-Douglas/Campfire/internal/infrastructure/repositories"
	"github.com/Jonah-Douglas/Campfire/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService

	// Repositories
	OTPRepo     domain.OTPRepository
	SessionRepo domain.SessionRepository
	UserRepo    domain.UserRepository

	// Services
	TokenSvc   domain.TokenService
	SMSSvc     domain.SMSService
	Throttle   domain.OTPThrottle
	AuthSvc    domain.AuthService
	UserSvc    domain.UserService
	CleanupSvc *services.CleanupService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(); err != nil {
		return nil, err
	}
	if err := c.initCasbin(); err != nil {
		return nil, err
	}

	c.initRepositories()
	c.initServices()

	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	return database.Ping(context.Background(), c.RedisClient)
}

func (c *Container) initCasbin() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.Casbin = cas
	return nil
}

func (c *Container) initRepositories() {
	hasher := auth.NewOTPHasher()
	c.OTPRepo = repositories.NewOTPRepository(c.DB, hasher, c.Logger)
	c.SessionRepo = repositories.NewSessionRepository(c.DB, c.Logger)
	c.UserRepo = repositories.NewUserRepository(c.DB, c.Logger)
}

func (c *Container) initServices() {
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTAccessSecret,
		c.Config.JWTRefreshSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.SMSSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)
	c.Throttle = services.NewRedisOTPThrottle(c.RedisClient, c.Config.OTPResendWindow)

	authCfg := services.AuthConfig{
		OTPTTL:              c.Config.OTPTTL,
		OTPMaxAttempts:      c.Config.OTPMaxAttempts,
		AccessTTL:           c.Config.AccessTTL,
		RefreshTTL:          c.Config.RefreshTTL,
		RotateRefreshTokens: c.Config.RotateRefreshTokens,
		SMSSendTimeout:      c.Config.TwilioSendTimeout,
		Env:                 c.Config.Env,
		DebugOTPInResponse:  c.Config.DebugOTPInResponse,
	}
	c.AuthSvc = services.NewAuthService(
		c.OTPRepo, c.SessionRepo, c.UserRepo,
		c.TokenSvc, c.SMSSvc, c.Throttle,
		authCfg, c.Logger,
	)
	c.UserSvc = services.NewUserService(c.UserRepo, c.Logger)
	c.CleanupSvc = services.NewCleanupService(c.OTPRepo, c.SessionRepo, c.Config.CleanupInterval, c.Logger)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
