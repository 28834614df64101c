package models

import (
	"time"
)

// 对局模式
const (
	MatchModeSingle = "single" // 单人，第二槽位在创建时绑定自动对手
	MatchModeMulti  = "multi"  // 多人，等待第二位玩家质押加入
)

// 对局状态
const (
	MatchStateLobby         = "lobby"           // 仅多人：一个槽位已满，等待第二份质押
	MatchStateActive        = "active"          // 两个槽位已满，等待手势
	MatchStateAwaitingMove  = "awaiting_second" // 已有一个手势
	MatchStateResolved      = "resolved"        // 胜负已判定
	MatchStateSettled       = "settled"         // 质押已返还，终态
	MatchStateVoided        = "voided"          // 超时作废，质押已返还，终态
)

// 手势取值
const (
	MoveRock     = "rock"
	MovePaper    = "paper"
	MoveScissors = "scissors"
)

// 槽位编号，一场对局最多两个槽位
const (
	SlotOne = 1
	SlotTwo = 2
)

// Match 对局表
// ID 即对局编号（自增，创建时分配）。终态（settled/voided）之后记录只读，
// 仅供历史查询。
type Match struct {
	BaseModel
	Mode       string     `gorm:"size:20;not null" json:"mode"`
	State      string     `gorm:"size:20;not null;index" json:"state"`
	CreatorID  uint       `gorm:"not null;index" json:"creator_id"`
	Deadline   time.Time  `gorm:"not null" json:"deadline"`
	WinnerID   *uint      `json:"winner_id,omitempty"` // 平局或未判定时为空
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`

	// 关联
	Slots []MatchSlot  `gorm:"foreignKey:MatchID" json:"slots,omitempty"`
	Moves []MoveRecord `gorm:"foreignKey:MatchID" json:"moves,omitempty"`
}

// MatchSlot 对局槽位表
// 一个槽位要么为空（不存在该行），要么恰好持有一位玩家和一份质押资产。
// (match_id, slot_no) 唯一，槽位数结构上不可能超过两个。
type MatchSlot struct {
	BaseModel
	MatchID  uint `gorm:"not null;index:idx_match_slot,unique" json:"match_id"`
	SlotNo   int  `gorm:"not null;index:idx_match_slot,unique" json:"slot_no"` // 1 或 2
	PlayerID uint `gorm:"not null;index" json:"player_id"`
	AssetID  uint `gorm:"not null" json:"asset_id"`
}

// MoveRecord 手势记录表
// (match_id, player_id) 唯一：每位玩家每场对局至多提交一次，创建后不再修改。
type MoveRecord struct {
	BaseModel
	MatchID     uint      `gorm:"not null;index:idx_match_player,unique" json:"match_id"`
	PlayerID    uint      `gorm:"not null;index:idx_match_player,unique" json:"player_id"`
	Move        string    `gorm:"size:20;not null" json:"move"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
}

// EscrowedStake 托管质押表
// 金库按 (match_id, slot_no) 托管资产；released 翻转后资产已回到
// return_owner 的持有集。对局的在押资产数等于已填充槽位数。
type EscrowedStake struct {
	BaseModel
	MatchID     uint       `gorm:"not null;index:idx_stake_slot,unique" json:"match_id"`
	SlotNo      int        `gorm:"not null;index:idx_stake_slot,unique" json:"slot_no"`
	AssetID     uint       `gorm:"not null;index" json:"asset_id"`
	ReturnOwner uint       `gorm:"not null" json:"return_owner"` // 返还目的地（原所有者）
	Released    bool       `gorm:"default:false;index" json:"released"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
}

// IsTerminal 判断对局状态是否为终态
func IsTerminal(state string) bool {
	return state == MatchStateSettled || state == MatchStateVoided
}

// ValidMove 判断手势取值是否合法
func ValidMove(move string) bool {
	switch move {
	case MoveRock, MovePaper, MoveScissors:
		return true
	}
	return false
}
