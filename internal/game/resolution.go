package game

import (
	"github.com/wfunc/duel-game/internal/models"
)

// Outcome 判定结果
type Outcome string

const (
	OutcomeSlotOneWins Outcome = "slot_one_wins" // 一号槽位胜
	OutcomeSlotTwoWins Outcome = "slot_two_wins" // 二号槽位胜
	OutcomeTie         Outcome = "tie"           // 平局
)

// beats 压制关系：石头砸剪刀，剪刀剪布，布包石头
var beats = map[string]string{
	models.MoveRock:     models.MoveScissors,
	models.MoveScissors: models.MovePaper,
	models.MovePaper:    models.MoveRock,
}

// Resolve 根据两个槽位的手势判定结果
// 判定是纯函数：相同输入永远产生相同结果，与提交顺序无关。
func Resolve(moveOne, moveTwo string) Outcome {
	if moveOne == moveTwo {
		return OutcomeTie
	}
	if beats[moveOne] == moveTwo {
		return OutcomeSlotOneWins
	}
	return OutcomeSlotTwoWins
}

// Beats 判断 a 是否压制 b
func Beats(a, b string) bool {
	return beats[a] == b
}
