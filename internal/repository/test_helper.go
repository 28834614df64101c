package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},
		&models.CapabilityGrant{},

		// 资产系统
		&models.Asset{},
		&models.WinLossRecord{},

		// 对局系统
		&models.Match{},
		&models.MatchSlot{},
		&models.MoveRecord{},
		&models.EscrowedStake{},

		// 交易系统
		&models.Wallet{},
		&models.Transaction{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestUser 创建测试用户
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Status:   "active",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestBot 创建自动对手账号
func CreateTestBot(t *testing.T, db *gorm.DB) *models.User {
	bot := &models.User{
		Username: models.BotUsername,
		Nickname: "自动对手",
		Status:   "active",
		IsBot:    true,
	}
	require.NoError(t, db.Create(bot).Error)
	return bot
}

// CreateTestAsset 创建测试资产
func CreateTestAsset(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Asset {
	asset := &models.Asset{
		Name:    name,
		OwnerID: ownerID,
		Status:  models.AssetStatusHeld,
	}
	require.NoError(t, db.Create(asset).Error)
	return asset
}
