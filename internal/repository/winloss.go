package repository

import (
	"context"
	"errors"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// 战绩字段名，IncrementField 只接受这三个值
const (
	WinLossFieldWins   = "wins"
	WinLossFieldLosses = "losses"
	WinLossFieldTies   = "ties"
)

// ErrInvalidWinLossField 非法的战绩字段
var ErrInvalidWinLossField = errors.New("非法的战绩字段")

// WinLossRepository 资产战绩仓储接口
// 记录在首次完成对局时惰性创建，此后只增不删；
// 可独立于任何对局查询。
type WinLossRepository interface {
	BaseRepository
	FindByAssetID(ctx context.Context, assetID uint) (*models.WinLossRecord, error)
	IncrementField(ctx context.Context, assetID uint, field string) error
	WithTx(tx *gorm.DB) WinLossRepository
}

// winLossRepo 资产战绩仓储实现
type winLossRepo struct {
	*BaseRepo
}

// NewWinLossRepository 创建资产战绩仓储
func NewWinLossRepository(db *gorm.DB) WinLossRepository {
	return &winLossRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *winLossRepo) WithTx(tx *gorm.DB) WinLossRepository {
	return &winLossRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// FindByAssetID 查询资产战绩，从未完成过对局的资产返回 gorm.ErrRecordNotFound
func (r *winLossRepo) FindByAssetID(ctx context.Context, assetID uint) (*models.WinLossRecord, error) {
	var record models.WinLossRecord
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// IncrementField 给资产战绩的指定计数器加一，记录不存在时先创建
func (r *winLossRepo) IncrementField(ctx context.Context, assetID uint, field string) error {
	switch field {
	case WinLossFieldWins, WinLossFieldLosses, WinLossFieldTies:
	default:
		return ErrInvalidWinLossField
	}

	db := r.db.WithContext(ctx)

	record := &models.WinLossRecord{AssetID: assetID}
	if err := db.Where("asset_id = ?", assetID).FirstOrCreate(record).Error; err != nil {
		return err
	}

	return db.Model(&models.WinLossRecord{}).
		Where("asset_id = ?", assetID).
		Update(field, gorm.Expr(field+" + 1")).Error
}
