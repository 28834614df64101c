package repository

import (
	"context"
	"errors"

	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// ErrWalletNotFound 钱包不存在
var ErrWalletNotFound = errors.New("钱包不存在")

// WalletRepository 钱包仓储接口
type WalletRepository interface {
	BaseRepository
	Create(ctx context.Context, wallet *models.Wallet) error
	FindByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	Credit(ctx context.Context, userID uint, amount int64) error
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	WithTx(tx *gorm.DB) WalletRepository
}

// walletRepo 钱包仓储实现
type walletRepo struct {
	*BaseRepo
}

// NewWalletRepository 创建钱包仓储
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *walletRepo) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// Create 创建钱包
func (r *walletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

// FindByUserID 根据用户ID查找钱包
func (r *walletRepo) FindByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// Credit 给钱包入账（奖励），钱包不存在时先创建
func (r *walletRepo) Credit(ctx context.Context, userID uint, amount int64) error {
	db := r.db.WithContext(ctx)

	wallet := &models.Wallet{UserID: userID}
	if err := db.Where("user_id = ?", userID).FirstOrCreate(wallet).Error; err != nil {
		return err
	}

	return db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_reward": gorm.Expr("total_reward + ?", amount),
		}).Error
}

// CreateTransaction 创建交易记录
func (r *walletRepo) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}
