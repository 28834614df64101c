package database

import (
	"fmt"

	"github.com/wfunc/duel-game/internal/logger"
	"github.com/wfunc/duel-game/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	dbPath := getDBPath()
	if dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	logger.Info("开始数据库迁移...")

	if err := Migrate(DB); err != nil {
		return err
	}

	// 初始化默认数据
	if err := initDefaultData(DB); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// Migrate 在给定连接上迁移全部模型（测试库复用同一张表清单）
func Migrate(db *gorm.DB) error {
	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},
		&models.CapabilityGrant{},

		// 资产相关
		&models.Asset{},
		&models.WinLossRecord{},

		// 对局相关
		&models.Match{},
		&models.MatchSlot{},
		&models.MoveRecord{},
		&models.EscrowedStake{},

		// 交易相关
		&models.Wallet{},
		&models.Transaction{},
	}

	for _, model := range migrationModels {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

// initDefaultData 初始化默认数据
// 自动对手的合成身份必须先于任何单人对局存在。
func initDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ?", models.BotUsername).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	bot := &models.User{
		Username: models.BotUsername,
		Nickname: "自动对手",
		Status:   "active",
		IsBot:    true,
	}
	if err := db.Create(bot).Error; err != nil {
		return err
	}

	logger.Info("已创建自动对手账号", zap.Uint("user_id", bot.ID))
	return nil
}
