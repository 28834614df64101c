package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/duel-game/internal/models"
)

// botMoves 自动对手可选的手势集合
var botMoves = []string{models.MoveRock, models.MovePaper, models.MoveScissors}

// AutomatedOpponent 自动对手
// 手势均匀随机选取，在生成时对对手已提交的手势一无所知。
type AutomatedOpponent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAutomatedOpponent 创建自动对手
// seed 为 0 时使用当前时间作为种子；固定种子用于可复现的测试。
func NewAutomatedOpponent(seed int64) *AutomatedOpponent {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &AutomatedOpponent{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Pick 均匀随机选取一个手势
func (o *AutomatedOpponent) Pick() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return botMoves[o.rng.Intn(len(botMoves))]
}
