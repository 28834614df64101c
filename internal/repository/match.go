package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrMatchNotFound 对局不存在
	ErrMatchNotFound = errors.New("对局不存在")
	// ErrStaleState 对局状态已被并发操作改变，本次条件更新未生效
	ErrStaleState = errors.New("对局状态已变化")
)

// MatchRepository 对局仓储接口
// 状态推进一律使用受保护的条件更新（WHERE state = 期望值）：
// 并发提交的冲突操作恰好一个生效，其余得到 ErrStaleState。
type MatchRepository interface {
	BaseRepository
	Create(ctx context.Context, match *models.Match) error
	FindByID(ctx context.Context, id uint) (*models.Match, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Match, error)
	FindWithSlots(ctx context.Context, id uint) (*models.Match, error)
	TransitionState(ctx context.Context, id uint, from, to string) error
	MarkResolved(ctx context.Context, id uint, from string, winnerID *uint, at time.Time) error
	MarkSettled(ctx context.Context, id uint, from, to string, at time.Time) error
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*models.Match, error)
	FindByStates(ctx context.Context, states []string) ([]*models.Match, error)
	CreateSlot(ctx context.Context, slot *models.MatchSlot) error
	FindSlots(ctx context.Context, matchID uint) ([]*models.MatchSlot, error)
	CountSlots(ctx context.Context, matchID uint) (int64, error)
	FindSlotByPlayer(ctx context.Context, matchID, playerID uint) (*models.MatchSlot, error)
	WithTx(tx *gorm.DB) MatchRepository
}

// matchRepo 对局仓储实现
type matchRepo struct {
	*BaseRepo
}

// NewMatchRepository 创建对局仓储
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *matchRepo) WithTx(tx *gorm.DB) MatchRepository {
	return &matchRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Create 创建对局
func (r *matchRepo) Create(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

// FindByID 根据ID查找对局
func (r *matchRepo) FindByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// FindByIDForUpdate 锁定对局用于更新（悲观锁）
// sqlite 不支持 FOR UPDATE，靠单写者和条件更新兜底。
func (r *matchRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Match, error) {
	db := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var match models.Match
	err := db.First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// FindWithSlots 查找对局并预加载槽位
func (r *matchRepo) FindWithSlots(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot_no")
		}).
		First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// TransitionState 受保护的状态转换
func (r *matchRepo) TransitionState(ctx context.Context, id uint, from, to string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// MarkResolved 将对局标记为已判定并记录胜者
func (r *matchRepo) MarkResolved(ctx context.Context, id uint, from string, winnerID *uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]interface{}{
			"state":       models.MatchStateResolved,
			"winner_id":   winnerID,
			"resolved_at": &at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// MarkSettled 将对局推进到终态（settled 或 voided）
func (r *matchRepo) MarkSettled(ctx context.Context, id uint, from, to string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]interface{}{
			"state":      to,
			"settled_at": &at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// FindExpired 查找已超过截止时间且尚未终结的对局
func (r *matchRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]*models.Match, error) {
	var matches []*models.Match
	query := r.db.WithContext(ctx).
		Where("deadline < ? AND state IN ?", now, []string{
			models.MatchStateLobby,
			models.MatchStateActive,
			models.MatchStateAwaitingMove,
		}).
		Order("deadline")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&matches).Error
	return matches, err
}

// FindByStates 查找处于指定状态的对局（启动时重建会话索引用）
func (r *matchRepo) FindByStates(ctx context.Context, states []string) ([]*models.Match, error) {
	var matches []*models.Match
	err := r.db.WithContext(ctx).
		Where("state IN ?", states).
		Order("id").
		Find(&matches).Error
	return matches, err
}

// CreateSlot 创建槽位
// (match_id, slot_no) 唯一索引保证并发加入时只有一个成功。
func (r *matchRepo) CreateSlot(ctx context.Context, slot *models.MatchSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

// FindSlots 查找对局的全部槽位
func (r *matchRepo) FindSlots(ctx context.Context, matchID uint) ([]*models.MatchSlot, error) {
	var slots []*models.MatchSlot
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("slot_no").
		Find(&slots).Error
	return slots, err
}

// CountSlots 统计已填充槽位数
func (r *matchRepo) CountSlots(ctx context.Context, matchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MatchSlot{}).
		Where("match_id = ?", matchID).
		Count(&count).Error
	return count, err
}

// FindSlotByPlayer 查找玩家在对局中占据的槽位
func (r *matchRepo) FindSlotByPlayer(ctx context.Context, matchID, playerID uint) (*models.MatchSlot, error) {
	var slot models.MatchSlot
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND player_id = ?", matchID, playerID).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &slot, nil
}
