package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/duel-game/internal/models"
	"gorm.io/gorm"
)

// AssetRepositoryTestSuite 资产仓储测试套件
type AssetRepositoryTestSuite struct {
	suite.Suite
	db        *gorm.DB
	assetRepo AssetRepository
	owner     *models.User
	rival     *models.User
}

func (suite *AssetRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.assetRepo = NewAssetRepository(suite.db)
	suite.owner = CreateTestUser(suite.T(), suite.db, "owner")
	suite.rival = CreateTestUser(suite.T(), suite.db, "rival")
}

func (suite *AssetRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestAssetRepository_FindHolding 测试持有集查询只返回未质押资产
func (suite *AssetRepositoryTestSuite) TestAssetRepository_FindHolding() {
	ctx := context.Background()

	held := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")
	staked := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "徽章")
	CreateTestAsset(suite.T(), suite.db, suite.rival.ID, "别人的")

	suite.Require().NoError(suite.assetRepo.Stake(ctx, staked.ID, suite.owner.ID, 1))

	assets, err := suite.assetRepo.FindHolding(ctx, suite.owner.ID, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), assets, 1)
	assert.Equal(suite.T(), held.ID, assets[0].ID)
}

// TestAssetRepository_FindHolding_Paginated 测试持有集分页
func (suite *AssetRepositoryTestSuite) TestAssetRepository_FindHolding_Paginated() {
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 5; i++ {
		asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, fmt.Sprintf("宝石%d", i))
		ids = append(ids, asset.ID)
	}

	page := NewPagination(1, 2)
	assets, err := suite.assetRepo.FindHolding(ctx, suite.owner.ID, page)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), assets, 2)
	assert.Equal(suite.T(), int64(5), page.Total)
	assert.Equal(suite.T(), ids[0], assets[0].ID)

	page = NewPagination(3, 2)
	assets, err = suite.assetRepo.FindHolding(ctx, suite.owner.ID, page)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), assets, 1)
	assert.Equal(suite.T(), ids[4], assets[0].ID)
}

// TestAssetRepository_Stake 测试质押状态翻转
func (suite *AssetRepositoryTestSuite) TestAssetRepository_Stake() {
	ctx := context.Background()
	asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")

	err := suite.assetRepo.Stake(ctx, asset.ID, suite.owner.ID, 7)
	assert.NoError(suite.T(), err)

	found, err := suite.assetRepo.FindByID(ctx, asset.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AssetStatusStaked, found.Status)
	assert.NotNil(suite.T(), found.MatchID)
	assert.Equal(suite.T(), uint(7), *found.MatchID)
}

// TestAssetRepository_Stake_DoubleSpend 测试已质押资产不能再次质押
func (suite *AssetRepositoryTestSuite) TestAssetRepository_Stake_DoubleSpend() {
	ctx := context.Background()
	asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")

	suite.Require().NoError(suite.assetRepo.Stake(ctx, asset.ID, suite.owner.ID, 1))

	// 同一资产质押进第二场对局，条件更新不生效
	err := suite.assetRepo.Stake(ctx, asset.ID, suite.owner.ID, 2)
	assert.ErrorIs(suite.T(), err, ErrAssetNotHeld)

	found, err := suite.assetRepo.FindByID(ctx, asset.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), uint(1), *found.MatchID)
}

// TestAssetRepository_Stake_NotOwner 测试非所有者不能质押
func (suite *AssetRepositoryTestSuite) TestAssetRepository_Stake_NotOwner() {
	ctx := context.Background()
	asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")

	err := suite.assetRepo.Stake(ctx, asset.ID, suite.rival.ID, 1)
	assert.ErrorIs(suite.T(), err, ErrAssetNotHeld)
}

// TestAssetRepository_Unstake 测试解押返还给目的地所有者
func (suite *AssetRepositoryTestSuite) TestAssetRepository_Unstake() {
	ctx := context.Background()
	asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")
	suite.Require().NoError(suite.assetRepo.Stake(ctx, asset.ID, suite.owner.ID, 5))

	// 资产易主：返还给对手而不是原所有者
	err := suite.assetRepo.Unstake(ctx, asset.ID, 5, suite.rival.ID)
	assert.NoError(suite.T(), err)

	found, err := suite.assetRepo.FindByID(ctx, asset.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AssetStatusHeld, found.Status)
	assert.Equal(suite.T(), suite.rival.ID, found.OwnerID)
	assert.Nil(suite.T(), found.MatchID)

	// 重复解押不生效
	err = suite.assetRepo.Unstake(ctx, asset.ID, 5, suite.owner.ID)
	assert.ErrorIs(suite.T(), err, ErrAssetNotStaked)
}

// TestAssetRepository_Transfer 测试持有集内转移
func (suite *AssetRepositoryTestSuite) TestAssetRepository_Transfer() {
	ctx := context.Background()
	asset := CreateTestAsset(suite.T(), suite.db, suite.owner.ID, "宝石")

	err := suite.assetRepo.Transfer(ctx, asset.ID, suite.owner.ID, suite.rival.ID)
	assert.NoError(suite.T(), err)

	found, err := suite.assetRepo.FindByID(ctx, asset.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.rival.ID, found.OwnerID)

	// 质押中的资产不可转移
	suite.Require().NoError(suite.assetRepo.Stake(ctx, asset.ID, suite.rival.ID, 1))
	err = suite.assetRepo.Transfer(ctx, asset.ID, suite.rival.ID, suite.owner.ID)
	assert.ErrorIs(suite.T(), err, ErrAssetNotHeld)
}

func TestAssetRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AssetRepositoryTestSuite))
}
