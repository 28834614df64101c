package game

import (
	"github.com/wfunc/duel-game/internal/models"
)

// validTransitions 对局状态转换表
// 多人对局从 lobby 开始，单人对局创建即 active；
// settled 和 voided 是终态，没有出边。
var validTransitions = map[string][]string{
	models.MatchStateLobby: {
		models.MatchStateActive,
		models.MatchStateVoided,
	},
	models.MatchStateActive: {
		models.MatchStateAwaitingMove,
		models.MatchStateVoided,
	},
	models.MatchStateAwaitingMove: {
		models.MatchStateResolved,
		models.MatchStateVoided,
	},
	models.MatchStateResolved: {
		models.MatchStateSettled,
	},
}

// CanTransition 判断状态转换是否合法
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MoveAccepted 判断对局当前状态是否接受手势提交
func MoveAccepted(state string) bool {
	return state == models.MatchStateActive || state == models.MatchStateAwaitingMove
}

// InitialState 对局创建后的初始状态
// 单人模式两个槽位创建时即填满，直接进入 active。
func InitialState(mode string) string {
	if mode == models.MatchModeSingle {
		return models.MatchStateActive
	}
	return models.MatchStateLobby
}
