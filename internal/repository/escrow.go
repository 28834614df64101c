package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrStakeExists 该槽位已有托管质押
	ErrStakeExists = errors.New("槽位已有质押")
	// ErrStakeReleased 质押已释放，不可重复释放
	ErrStakeReleased = errors.New("质押已释放")
)

// EscrowRepository 托管质押仓储接口
// 金库对每场对局的在押资产数等于已填充槽位数；释放是一次性的
// 条件更新，重复释放不生效。
type EscrowRepository interface {
	BaseRepository
	Create(ctx context.Context, stake *models.EscrowedStake) error
	FindByMatch(ctx context.Context, matchID uint) ([]*models.EscrowedStake, error)
	FindLiveByMatch(ctx context.Context, matchID uint) ([]*models.EscrowedStake, error)
	CountLiveByMatch(ctx context.Context, matchID uint) (int64, error)
	MarkReleased(ctx context.Context, stakeID uint, at time.Time) error
	WithTx(tx *gorm.DB) EscrowRepository
}

// escrowRepo 托管质押仓储实现
type escrowRepo struct {
	*BaseRepo
}

// NewEscrowRepository 创建托管质押仓储
func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *escrowRepo) WithTx(tx *gorm.DB) EscrowRepository {
	return &escrowRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Create 托管一份质押
// (match_id, slot_no) 唯一索引保证同一槽位不会出现第二份质押。
func (r *escrowRepo) Create(ctx context.Context, stake *models.EscrowedStake) error {
	err := r.db.WithContext(ctx).Create(stake).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrStakeExists
		}
		return err
	}
	return nil
}

// FindByMatch 查找对局的全部质押记录（含已释放）
func (r *escrowRepo) FindByMatch(ctx context.Context, matchID uint) ([]*models.EscrowedStake, error) {
	var stakes []*models.EscrowedStake
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("slot_no").
		Find(&stakes).Error
	return stakes, err
}

// FindLiveByMatch 查找对局仍在托管中的质押
func (r *escrowRepo) FindLiveByMatch(ctx context.Context, matchID uint) ([]*models.EscrowedStake, error) {
	var stakes []*models.EscrowedStake
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND released = ?", matchID, false).
		Order("slot_no").
		Find(&stakes).Error
	return stakes, err
}

// CountLiveByMatch 统计对局在押资产数
func (r *escrowRepo) CountLiveByMatch(ctx context.Context, matchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EscrowedStake{}).
		Where("match_id = ? AND released = ?", matchID, false).
		Count(&count).Error
	return count, err
}

// MarkReleased 标记质押已释放
// 仅当质押仍在托管中时生效，防止双重放款。
func (r *escrowRepo) MarkReleased(ctx context.Context, stakeID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.EscrowedStake{}).
		Where("id = ? AND released = ?", stakeID, false).
		Updates(map[string]interface{}{
			"released":    true,
			"released_at": &at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStakeReleased
	}
	return nil
}
