package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/duel-game/internal/models"
	"go.uber.org/zap"
)

// TestSessionIndex_Lifecycle 测试对局在索引中的完整生命周期
func TestSessionIndex_Lifecycle(t *testing.T) {
	idx := NewSessionIndex(zap.NewNop())

	// 创建多人对局进入大厅桶
	idx.TrackLobby(1, 100)
	assert.Equal(t, []uint{100}, idx.LobbyMatches(1))
	assert.Empty(t, idx.InPlayMatches(1))

	// 对手加入，双方进入进行中桶，创建者的大厅条目迁移
	idx.TrackActive(100, 1, 2)
	assert.Empty(t, idx.LobbyMatches(1))
	assert.Equal(t, []uint{100}, idx.InPlayMatches(1))
	assert.Equal(t, []uint{100}, idx.InPlayMatches(2))

	// 对局终结后从所有桶移除
	idx.Untrack(100, 1, 2)
	assert.Empty(t, idx.InPlayMatches(1))
	assert.Empty(t, idx.InPlayMatches(2))
}

// TestSessionIndex_MultipleMatches 测试玩家同时参与多场对局
func TestSessionIndex_MultipleMatches(t *testing.T) {
	idx := NewSessionIndex(zap.NewNop())

	idx.TrackLobby(1, 100)
	idx.TrackActive(200, 1, 2)
	idx.TrackActive(300, 1, 3)

	assert.Equal(t, []uint{100}, idx.LobbyMatches(1))
	assert.ElementsMatch(t, []uint{200, 300}, idx.InPlayMatches(1))

	idx.Untrack(200, 1, 2)
	assert.Equal(t, []uint{300}, idx.InPlayMatches(1))
	assert.Equal(t, []uint{100}, idx.LobbyMatches(1))
}

// TestSessionIndex_Rebuild 测试由数据库状态重建
func TestSessionIndex_Rebuild(t *testing.T) {
	idx := NewSessionIndex(zap.NewNop())
	idx.TrackLobby(9, 999) // 陈旧条目，重建后应消失

	deadline := time.Now().Add(10 * time.Minute)
	matches := []*models.Match{
		{BaseModel: models.BaseModel{ID: 100}, Mode: models.MatchModeMulti, State: models.MatchStateLobby, CreatorID: 1, Deadline: deadline},
		{BaseModel: models.BaseModel{ID: 200}, Mode: models.MatchModeMulti, State: models.MatchStateActive, CreatorID: 1, Deadline: deadline},
		{BaseModel: models.BaseModel{ID: 300}, Mode: models.MatchModeMulti, State: models.MatchStateSettled, CreatorID: 2, Deadline: deadline},
	}
	slots := map[uint][]*models.MatchSlot{
		200: {
			{MatchID: 200, SlotNo: models.SlotOne, PlayerID: 1, AssetID: 3},
			{MatchID: 200, SlotNo: models.SlotTwo, PlayerID: 2, AssetID: 9},
		},
	}

	idx.Rebuild(matches, slots)

	assert.Equal(t, []uint{100}, idx.LobbyMatches(1))
	assert.Equal(t, []uint{200}, idx.InPlayMatches(1))
	assert.Equal(t, []uint{200}, idx.InPlayMatches(2))
	assert.Empty(t, idx.LobbyMatches(9))
	assert.Empty(t, idx.LobbyMatches(2))
}
