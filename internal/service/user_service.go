package service

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/duel-game/internal/errors"
	"github.com/wfunc/duel-game/internal/models"
	"github.com/wfunc/duel-game/internal/repository"
	"github.com/wfunc/duel-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userService 用户服务实现
type userService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	authRepo  repository.UserAuthRepository
	assetRepo repository.AssetRepository
	capRepo   repository.CapabilityRepository
	log       *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	authRepo repository.UserAuthRepository,
	assetRepo repository.AssetRepository,
	capRepo repository.CapabilityRepository,
	log *zap.Logger,
) UserService {
	return &userService{
		db:        db,
		userRepo:  userRepo,
		authRepo:  authRepo,
		assetRepo: assetRepo,
		capRepo:   capRepo,
		log:       log,
	}
}

// GetUserByID 根据ID获取用户
func (s *userService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// GetUserByUsername 根据用户名获取用户
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// UpdatePassword 修改密码
func (s *userService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	auth, err := s.authRepo.FindByUserID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	ok, err := utils.VerifyPassword(oldPassword, auth.Password)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	auth.Password = hashed
	return s.authRepo.Update(ctx, auth)
}

// GetHoldingSet 获取用户的持有集（可质押的资产）
// pagination 为 nil 时返回全部
func (s *userService) GetHoldingSet(ctx context.Context, userID uint, pagination *repository.Pagination) ([]*models.Asset, error) {
	return s.assetRepo.FindHolding(ctx, userID, pagination)
}

// MintAsset 铸造资产到用户持有集
func (s *userService) MintAsset(ctx context.Context, userID uint, name string) (*models.Asset, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "资产名称不能为空")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}

	asset := &models.Asset{
		Name:    name,
		OwnerID: userID,
		Status:  models.AssetStatusHeld,
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.log.Info("资产已铸造",
		zap.Uint("asset_id", asset.ID),
		zap.Uint("owner_id", userID))

	return asset, nil
}

// GrantCapability 主账号向子账号授予能力
func (s *userService) GrantCapability(ctx context.Context, grantorID, granteeID uint, capability string) error {
	if capability != models.CapabilityPlay && capability != models.CapabilityEscrow {
		return apperrors.New(apperrors.ErrInvalidParam, "未知的能力类型")
	}
	if grantorID == granteeID {
		return apperrors.New(apperrors.ErrInvalidParam, "不能授权给自己")
	}
	if _, err := s.userRepo.FindByID(ctx, granteeID); err != nil {
		return ErrUserNotFound
	}

	exists, err := s.capRepo.HasGrant(ctx, grantorID, granteeID, capability)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.capRepo.Grant(ctx, grantorID, granteeID, capability)
}

// RevokeCapability 撤销授权
func (s *userService) RevokeCapability(ctx context.Context, grantorID, granteeID uint, capability string) error {
	return s.capRepo.Revoke(ctx, grantorID, granteeID, capability)
}

// HasCapability 检查主体是否持有能力
func (s *userService) HasCapability(ctx context.Context, principalID uint, capability string) (bool, error) {
	ok, err := s.capRepo.HasCapability(ctx, principalID, capability)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return ok, nil
}
