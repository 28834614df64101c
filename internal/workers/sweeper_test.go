package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/duel-game/internal/config"
	"github.com/wfunc/duel-game/internal/models"
	"github.com/wfunc/duel-game/internal/repository"
	"github.com/wfunc/duel-game/internal/service"
	"go.uber.org/zap"
)

func TestSweeperVoidsExpiredMatches(t *testing.T) {
	db := repository.SetupTestDB()
	log := zap.NewNop()

	matches := service.NewMatchService(db, &config.MatchConfig{
		DefaultDuration: 10 * time.Minute,
		MinDuration:     time.Minute,
		MaxDuration:     time.Hour,
		WinReward:       100,
		SweepInterval:   time.Second,
	}, log, nil)

	alice := repository.CreateTestUser(t, db, "alice")
	asset := repository.CreateTestAsset(t, db, alice.ID, "青龙印")

	ctx := context.Background()
	view, err := matches.CreateMatch(ctx, alice.ID, &service.CreateMatchRequest{
		Mode:         models.MatchModeMulti,
		StakeAssetID: asset.ID,
	})
	require.NoError(t, err)

	// 把截止时间拨到过去
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Match{}).
		Where("id = ?", view.MatchID).
		Update("deadline", past).Error)

	sweeper, err := NewSweeper(matches, time.Second, log)
	require.NoError(t, err)

	sweeper.sweep()

	var match models.Match
	require.NoError(t, db.First(&match, view.MatchID).Error)
	require.Equal(t, models.MatchStateVoided, match.State)

	// 质押返还原持有者
	var returned models.Asset
	require.NoError(t, db.First(&returned, asset.ID).Error)
	require.Equal(t, models.AssetStatusHeld, returned.Status)
	require.Equal(t, alice.ID, returned.OwnerID)
}

func TestSweeperStartStop(t *testing.T) {
	db := repository.SetupTestDB()
	log := zap.NewNop()

	matches := service.NewMatchService(db, &config.MatchConfig{
		DefaultDuration: 10 * time.Minute,
		MinDuration:     time.Minute,
		MaxDuration:     time.Hour,
	}, log, nil)

	sweeper, err := NewSweeper(matches, 50*time.Millisecond, log)
	require.NoError(t, err)

	require.NoError(t, sweeper.Start())
	time.Sleep(120 * time.Millisecond)
	require.NoError(t, sweeper.Stop())
}
