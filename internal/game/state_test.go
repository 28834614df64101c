package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/duel-game/internal/models"
)

// TestCanTransition 测试状态转换表
func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.MatchStateLobby, models.MatchStateActive))
	assert.True(t, CanTransition(models.MatchStateActive, models.MatchStateAwaitingMove))
	assert.True(t, CanTransition(models.MatchStateAwaitingMove, models.MatchStateResolved))
	assert.True(t, CanTransition(models.MatchStateResolved, models.MatchStateSettled))

	// 未终结的对局都可以超时作废
	assert.True(t, CanTransition(models.MatchStateLobby, models.MatchStateVoided))
	assert.True(t, CanTransition(models.MatchStateActive, models.MatchStateVoided))
	assert.True(t, CanTransition(models.MatchStateAwaitingMove, models.MatchStateVoided))

	// 不允许跳级或回退
	assert.False(t, CanTransition(models.MatchStateLobby, models.MatchStateResolved))
	assert.False(t, CanTransition(models.MatchStateActive, models.MatchStateLobby))
	assert.False(t, CanTransition(models.MatchStateResolved, models.MatchStateVoided))

	// 终态没有出边
	assert.False(t, CanTransition(models.MatchStateSettled, models.MatchStateActive))
	assert.False(t, CanTransition(models.MatchStateVoided, models.MatchStateActive))
}

// TestMoveAccepted 测试手势提交窗口
func TestMoveAccepted(t *testing.T) {
	assert.True(t, MoveAccepted(models.MatchStateActive))
	assert.True(t, MoveAccepted(models.MatchStateAwaitingMove))

	assert.False(t, MoveAccepted(models.MatchStateLobby))
	assert.False(t, MoveAccepted(models.MatchStateResolved))
	assert.False(t, MoveAccepted(models.MatchStateSettled))
	assert.False(t, MoveAccepted(models.MatchStateVoided))
}

// TestInitialState 测试创建后的初始状态
func TestInitialState(t *testing.T) {
	assert.Equal(t, models.MatchStateActive, InitialState(models.MatchModeSingle))
	assert.Equal(t, models.MatchStateLobby, InitialState(models.MatchModeMulti))
}
