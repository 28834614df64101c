package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/duel-game/internal/models"
)

// TestResolve 测试判定表的全部九种组合
func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		moveOne string
		moveTwo string
		want    Outcome
	}{
		{"石头对石头平局", models.MoveRock, models.MoveRock, OutcomeTie},
		{"布对布平局", models.MovePaper, models.MovePaper, OutcomeTie},
		{"剪刀对剪刀平局", models.MoveScissors, models.MoveScissors, OutcomeTie},
		{"石头砸剪刀", models.MoveRock, models.MoveScissors, OutcomeSlotOneWins},
		{"剪刀剪布", models.MoveScissors, models.MovePaper, OutcomeSlotOneWins},
		{"布包石头", models.MovePaper, models.MoveRock, OutcomeSlotOneWins},
		{"剪刀被石头砸", models.MoveScissors, models.MoveRock, OutcomeSlotTwoWins},
		{"布被剪刀剪", models.MovePaper, models.MoveScissors, OutcomeSlotTwoWins},
		{"石头被布包", models.MoveRock, models.MovePaper, OutcomeSlotTwoWins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.moveOne, tt.moveTwo))
		})
	}
}

// TestResolve_Symmetry 测试交换槽位后结果对称
func TestResolve_Symmetry(t *testing.T) {
	for _, a := range botMoves {
		for _, b := range botMoves {
			forward := Resolve(a, b)
			backward := Resolve(b, a)
			switch forward {
			case OutcomeTie:
				assert.Equal(t, OutcomeTie, backward)
			case OutcomeSlotOneWins:
				assert.Equal(t, OutcomeSlotTwoWins, backward)
			case OutcomeSlotTwoWins:
				assert.Equal(t, OutcomeSlotOneWins, backward)
			}
		}
	}
}

// TestBeats 测试压制关系不自反
func TestBeats(t *testing.T) {
	assert.True(t, Beats(models.MoveRock, models.MoveScissors))
	assert.False(t, Beats(models.MoveScissors, models.MoveRock))
	assert.False(t, Beats(models.MoveRock, models.MoveRock))
}
