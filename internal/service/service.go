package service

import (
	"time"

	"github.com/wfunc/duel-game/internal/config"
	"github.com/wfunc/duel-game/internal/repository"
	"github.com/wfunc/duel-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Match              *config.MatchConfig
	Notifier           MatchNotifier
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "your-secret-key-change-in-production",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Match: &config.MatchConfig{
			DefaultDuration: 10 * time.Minute,
			MinDuration:     time.Minute,
			MaxDuration:     time.Hour,
			WinReward:       100,
			SweepInterval:   30 * time.Second,
		},
	}
}

// Services 服务集合
type Services struct {
	Auth  AuthService
	User  UserService
	Match MatchService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *Config, log *zap.Logger) *Services {
	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewUserAuthRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	capRepo := repository.NewCapabilityRepository(db)

	// 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		cfg.JWTSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)

	authService := NewAuthService(
		db,
		userRepo,
		authRepo,
		sessionRepo,
		jwtManager,
		log,
	)

	userService := NewUserService(
		db,
		userRepo,
		authRepo,
		assetRepo,
		capRepo,
		log,
	)

	matchService := NewMatchService(
		db,
		cfg.Match,
		log,
		cfg.Notifier,
	)

	return &Services{
		Auth:  authService,
		User:  userService,
		Match: matchService,
	}
}
