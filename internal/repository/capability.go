package repository

import (
	"context"
	"time"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// CapabilityRepository 能力授权仓储接口
// 主账号向子账号授予限定能力；hasCapability 即查询一条未撤销的授权记录。
type CapabilityRepository interface {
	BaseRepository
	Grant(ctx context.Context, grantorID, granteeID uint, capability string) error
	Revoke(ctx context.Context, grantorID, granteeID uint, capability string) error
	HasCapability(ctx context.Context, principalID uint, capability string) (bool, error)
	HasGrant(ctx context.Context, grantorID, granteeID uint, capability string) (bool, error)
	WithTx(tx *gorm.DB) CapabilityRepository
}

// capabilityRepo 能力授权仓储实现
type capabilityRepo struct {
	*BaseRepo
}

// NewCapabilityRepository 创建能力授权仓储
func NewCapabilityRepository(db *gorm.DB) CapabilityRepository {
	return &capabilityRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *capabilityRepo) WithTx(tx *gorm.DB) CapabilityRepository {
	return &capabilityRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Grant 授予能力
func (r *capabilityRepo) Grant(ctx context.Context, grantorID, granteeID uint, capability string) error {
	grant := &models.CapabilityGrant{
		GrantorID:  grantorID,
		GranteeID:  granteeID,
		Capability: capability,
	}
	return r.db.WithContext(ctx).Create(grant).Error
}

// Revoke 撤销能力
func (r *capabilityRepo) Revoke(ctx context.Context, grantorID, granteeID uint, capability string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.CapabilityGrant{}).
		Where("grantor_id = ? AND grantee_id = ? AND capability = ? AND revoked_at IS NULL",
			grantorID, granteeID, capability).
		Update("revoked_at", &now).Error
}

// HasCapability 检查主体是否持有指定能力
// 主体对自己天然持有全部能力；作为子账号时需要存在未撤销的授权。
func (r *capabilityRepo) HasCapability(ctx context.Context, principalID uint, capability string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CapabilityGrant{}).
		Where("grantee_id = ? AND capability = ? AND revoked_at IS NULL", principalID, capability).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasGrant 检查特定主账号是否向该子账号授予了能力
// 代理行动要求授权方正是被代理的主账号。
func (r *capabilityRepo) HasGrant(ctx context.Context, grantorID, granteeID uint, capability string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CapabilityGrant{}).
		Where("grantor_id = ? AND grantee_id = ? AND capability = ? AND revoked_at IS NULL",
			grantorID, granteeID, capability).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
