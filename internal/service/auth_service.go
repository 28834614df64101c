package service

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/duel-game/internal/models"
	"github.com/wfunc/duel-game/internal/repository"
	"github.com/wfunc/duel-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserExists         = errors.New("用户已存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserBanned         = errors.New("用户已被封禁")
	ErrSessionNotFound    = errors.New("会话不存在")
	ErrInvalidToken       = errors.New("无效的令牌")
)

// authService 认证服务实现
type authService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	authRepo    repository.UserAuthRepository
	sessionRepo repository.UserSessionRepository
	jwtManager  *utils.JWTManager
	log         *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	authRepo repository.UserAuthRepository,
	sessionRepo repository.UserSessionRepository,
	jwtManager *utils.JWTManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		db:          db,
		userRepo:    userRepo,
		authRepo:    authRepo,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
		log:         log,
	}
}

// Register 用户注册
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if user, _ := s.userRepo.FindByUsername(ctx, req.Username); user != nil {
		return nil, ErrUserExists
	}
	if req.Username == models.BotUsername {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Nickname: req.Nickname,
		Status:   "active",
	}
	if user.Nickname == "" {
		user.Nickname = req.Username
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.authRepo.WithTx(tx).Create(ctx, &models.UserAuth{
			UserID:   user.ID,
			Password: hashedPassword,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("用户注册成功",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.createSession(ctx, user, req.IP, "")
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Account)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == "banned" {
		return nil, ErrUserBanned
	}
	if user.IsBot {
		return nil, ErrInvalidCredentials
	}

	auth, err := s.authRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if auth.LockedUntil != nil && auth.LockedUntil.After(time.Now()) {
		return nil, ErrUserBanned
	}

	ok, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil || !ok {
		auth.LoginAttempts++
		if auth.LoginAttempts >= 5 {
			lockUntil := time.Now().Add(15 * time.Minute)
			auth.LockedUntil = &lockUntil
		}
		_ = s.authRepo.Update(ctx, auth)
		return nil, ErrInvalidCredentials
	}

	if auth.LoginAttempts > 0 {
		auth.LoginAttempts = 0
		auth.LockedUntil = nil
		_ = s.authRepo.Update(ctx, auth)
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = req.IP
	_ = s.userRepo.Update(ctx, user)

	return s.createSession(ctx, user, req.IP, req.Device)
}

// Logout 用户登出
func (s *authService) Logout(ctx context.Context, userID uint, sessionID string) error {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.UserID != userID {
		return ErrSessionNotFound
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// RefreshToken 用刷新令牌换取新的访问令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, claims.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}
	if session.ExpiredAt.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(
		user.ID, user.Username, session.SessionID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ValidateToken 验证访问令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// createSession 创建会话并签发令牌
func (s *authService) createSession(ctx context.Context, user *models.User, ip, device string) (*AuthResponse, error) {
	sessionID, err := utils.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(
		user.ID, user.Username, sessionID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	session := &models.UserSession{
		UserID:       user.ID,
		SessionID:    sessionID,
		RefreshToken: refreshToken,
		IP:           ip,
		UserAgent:    device,
		ExpiredAt:    time.Now().Add(s.jwtManager.GetTokenExpiry("refresh")),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}
