package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// WinLossRepositoryTestSuite 资产战绩仓储测试套件
type WinLossRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	winLossRepo WinLossRepository
}

func (suite *WinLossRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.winLossRepo = NewWinLossRepository(suite.db)
}

func (suite *WinLossRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestWinLossRepository_LazyCreate 测试首次递增时惰性创建记录
func (suite *WinLossRepositoryTestSuite) TestWinLossRepository_LazyCreate() {
	ctx := context.Background()

	// 从未完成过对局的资产没有战绩记录
	_, err := suite.winLossRepo.FindByAssetID(ctx, 7)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)

	err = suite.winLossRepo.IncrementField(ctx, 7, WinLossFieldWins)
	assert.NoError(suite.T(), err)

	record, err := suite.winLossRepo.FindByAssetID(ctx, 7)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), record.Wins)
	assert.Equal(suite.T(), int64(0), record.Losses)
	assert.Equal(suite.T(), int64(0), record.Ties)
}

// TestWinLossRepository_Increment 测试各计数器独立递增
func (suite *WinLossRepositoryTestSuite) TestWinLossRepository_Increment() {
	ctx := context.Background()

	suite.Require().NoError(suite.winLossRepo.IncrementField(ctx, 7, WinLossFieldWins))
	suite.Require().NoError(suite.winLossRepo.IncrementField(ctx, 7, WinLossFieldWins))
	suite.Require().NoError(suite.winLossRepo.IncrementField(ctx, 7, WinLossFieldLosses))
	suite.Require().NoError(suite.winLossRepo.IncrementField(ctx, 7, WinLossFieldTies))

	record, err := suite.winLossRepo.FindByAssetID(ctx, 7)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), record.Wins)
	assert.Equal(suite.T(), int64(1), record.Losses)
	assert.Equal(suite.T(), int64(1), record.Ties)

	// 其他资产的战绩不受影响
	_, err = suite.winLossRepo.FindByAssetID(ctx, 8)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestWinLossRepository_InvalidField 测试非法字段被拒绝
func (suite *WinLossRepositoryTestSuite) TestWinLossRepository_InvalidField() {
	err := suite.winLossRepo.IncrementField(context.Background(), 7, "draws")
	assert.ErrorIs(suite.T(), err, ErrInvalidWinLossField)
}

func TestWinLossRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(WinLossRepositoryTestSuite))
}
