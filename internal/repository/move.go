package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// ErrMoveExists 该玩家已在此对局提交过手势
var ErrMoveExists = errors.New("手势已提交")

// MoveRepository 手势记录仓储接口
// (match_id, player_id) 唯一索引保证每位玩家每场对局至多一条记录。
type MoveRepository interface {
	BaseRepository
	Create(ctx context.Context, move *models.MoveRecord) error
	FindByMatch(ctx context.Context, matchID uint) ([]*models.MoveRecord, error)
	FindByMatchAndPlayer(ctx context.Context, matchID, playerID uint) (*models.MoveRecord, error)
	CountByMatch(ctx context.Context, matchID uint) (int64, error)
	WithTx(tx *gorm.DB) MoveRepository
}

// moveRepo 手势记录仓储实现
type moveRepo struct {
	*BaseRepo
}

// NewMoveRepository 创建手势记录仓储
func NewMoveRepository(db *gorm.DB) MoveRepository {
	return &moveRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *moveRepo) WithTx(tx *gorm.DB) MoveRepository {
	return &moveRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Create 记录手势
// 唯一索引冲突意味着同一玩家的第二次提交，翻译为 ErrMoveExists，
// 原记录保持不变。
func (r *moveRepo) Create(ctx context.Context, move *models.MoveRecord) error {
	err := r.db.WithContext(ctx).Create(move).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMoveExists
		}
		return err
	}
	return nil
}

// FindByMatch 查找对局的全部手势记录（判定前可能不完整）
func (r *moveRepo) FindByMatch(ctx context.Context, matchID uint) ([]*models.MoveRecord, error) {
	var moves []*models.MoveRecord
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("submitted_at").
		Find(&moves).Error
	return moves, err
}

// FindByMatchAndPlayer 查找指定玩家的手势记录
func (r *moveRepo) FindByMatchAndPlayer(ctx context.Context, matchID, playerID uint) (*models.MoveRecord, error) {
	var move models.MoveRecord
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND player_id = ?", matchID, playerID).
		First(&move).Error
	if err != nil {
		return nil, err
	}
	return &move, nil
}

// CountByMatch 统计对局已提交的手势数
func (r *moveRepo) CountByMatch(ctx context.Context, matchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MoveRecord{}).
		Where("match_id = ?", matchID).
		Count(&count).Error
	return count, err
}

// isUniqueViolation 判断是否为唯一索引冲突
// sqlite/mysql/postgres 的报错文本各不相同，仅靠 gorm.ErrDuplicatedKey
// 在部分驱动上拿不到，代价是这里做一次文本匹配。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
