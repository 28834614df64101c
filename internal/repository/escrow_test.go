package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// EscrowRepositoryTestSuite 托管质押仓储测试套件
type EscrowRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	escrowRepo EscrowRepository
}

func (suite *EscrowRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.escrowRepo = NewEscrowRepository(suite.db)
}

func (suite *EscrowRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestEscrowRepository_Create 测试托管与槽位唯一约束
func (suite *EscrowRepositoryTestSuite) TestEscrowRepository_Create() {
	ctx := context.Background()

	err := suite.escrowRepo.Create(ctx, &models.EscrowedStake{
		MatchID:     1,
		SlotNo:      models.SlotOne,
		AssetID:     3,
		ReturnOwner: 10,
	})
	assert.NoError(suite.T(), err)

	// 同一槽位的第二份质押被拒绝
	err = suite.escrowRepo.Create(ctx, &models.EscrowedStake{
		MatchID:     1,
		SlotNo:      models.SlotOne,
		AssetID:     9,
		ReturnOwner: 20,
	})
	assert.ErrorIs(suite.T(), err, ErrStakeExists)

	err = suite.escrowRepo.Create(ctx, &models.EscrowedStake{
		MatchID:     1,
		SlotNo:      models.SlotTwo,
		AssetID:     9,
		ReturnOwner: 20,
	})
	assert.NoError(suite.T(), err)

	count, err := suite.escrowRepo.CountLiveByMatch(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), count)
}

// TestEscrowRepository_MarkReleased 测试一次性释放
func (suite *EscrowRepositoryTestSuite) TestEscrowRepository_MarkReleased() {
	ctx := context.Background()

	stake := &models.EscrowedStake{
		MatchID:     1,
		SlotNo:      models.SlotOne,
		AssetID:     3,
		ReturnOwner: 10,
	}
	suite.Require().NoError(suite.escrowRepo.Create(ctx, stake))

	err := suite.escrowRepo.MarkReleased(ctx, stake.ID, time.Now())
	assert.NoError(suite.T(), err)

	// 重复释放不生效
	err = suite.escrowRepo.MarkReleased(ctx, stake.ID, time.Now())
	assert.ErrorIs(suite.T(), err, ErrStakeReleased)

	live, err := suite.escrowRepo.FindLiveByMatch(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), live, 0)

	all, err := suite.escrowRepo.FindByMatch(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 1)
	assert.True(suite.T(), all[0].Released)
	assert.NotNil(suite.T(), all[0].ReleasedAt)
}

func TestEscrowRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(EscrowRepositoryTestSuite))
}
