package repository

import (
	"context"
	"errors"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrAssetNotFound 资产不存在
	ErrAssetNotFound = errors.New("资产不存在")
	// ErrAssetNotHeld 资产不在持有集中（不属于该所有者或已被质押）
	ErrAssetNotHeld = errors.New("资产不在持有集中")
	// ErrAssetNotStaked 资产未处于托管状态
	ErrAssetNotStaked = errors.New("资产未处于托管状态")
)

// AssetRepository 资产仓储接口
// 质押与解押都是受保护的条件更新：资产只有在持有集中才能被质押，
// 只有在托管中才能被解押，双花在结构上不可能发生。
type AssetRepository interface {
	BaseRepository
	Create(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id uint) (*models.Asset, error)
	FindHolding(ctx context.Context, ownerID uint, pagination *Pagination) ([]*models.Asset, error)
	Stake(ctx context.Context, assetID, ownerID, matchID uint) error
	Unstake(ctx context.Context, assetID, matchID, returnOwner uint) error
	Transfer(ctx context.Context, assetID, fromOwner, toOwner uint) error
	WithTx(tx *gorm.DB) AssetRepository
}

// assetRepo 资产仓储实现
type assetRepo struct {
	*BaseRepo
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *assetRepo) WithTx(tx *gorm.DB) AssetRepository {
	return &assetRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Create 创建资产
func (r *assetRepo) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

// FindByID 根据ID查找资产
func (r *assetRepo) FindByID(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).First(&asset, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// FindHolding 查询所有者的持有集（未质押的资产）
// pagination 为 nil 时返回全部
func (r *assetRepo) FindHolding(ctx context.Context, ownerID uint, pagination *Pagination) ([]*models.Asset, error) {
	var assets []*models.Asset
	query := r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("owner_id = ? AND status = ?", ownerID, models.AssetStatusHeld)

	if pagination != nil {
		var total int64
		query.Count(&total)
		pagination.Total = total
		query = query.Limit(pagination.PageSize).Offset(pagination.Offset())
	}

	err := query.Order("id").Find(&assets).Error
	return assets, err
}

// Stake 将资产从所有者持有集取出并托管给对局
// 仅当资产属于该所有者且处于 held 状态时生效，否则不改变任何状态。
func (r *assetRepo) Stake(ctx context.Context, assetID, ownerID, matchID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND owner_id = ? AND status = ?", assetID, ownerID, models.AssetStatusHeld).
		Updates(map[string]interface{}{
			"status":   models.AssetStatusStaked,
			"match_id": matchID,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotHeld
	}
	return nil
}

// Unstake 将托管中的资产返还给目的地所有者
// 仅当资产确实托管在该对局时生效。
func (r *assetRepo) Unstake(ctx context.Context, assetID, matchID, returnOwner uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND match_id = ? AND status = ?", assetID, matchID, models.AssetStatusStaked).
		Updates(map[string]interface{}{
			"status":   models.AssetStatusHeld,
			"owner_id": returnOwner,
			"match_id": nil,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotStaked
	}
	return nil
}

// Transfer 在用户之间转移资产（仅限持有集中的资产）
func (r *assetRepo) Transfer(ctx context.Context, assetID, fromOwner, toOwner uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND owner_id = ? AND status = ?", assetID, fromOwner, models.AssetStatusHeld).
		Update("owner_id", toOwner)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotHeld
	}
	return nil
}
